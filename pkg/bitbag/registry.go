// Package bitbag holds the hardware component plugins a program can reach:
// call targets such as wait_vblank() and the joypad pollers that back
// joypadN_button handlers.
package bitbag

import (
	"regexp"
	"sort"

	"nescart/pkg/cart"
)

// Factory builds a component bound to the cartridge being compiled.
type Factory func(rom *cart.Cartridge) cart.Component

var registry = map[string]Factory{
	"wait_vblank": func(*cart.Cartridge) cart.Component { return &WaitVBlank{} },
	"clearmem":    func(*cart.Cartridge) cart.Component { return &ClearMem{} },
	"get_sprite":  func(*cart.Cartridge) cart.Component { return &Sprite{} },
	"load_palette": func(rom *cart.Cartridge) cart.Component {
		return &LoadPalette{rom: rom}
	},
}

// Lookup returns the factory for a call-target name.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names lists the known call targets.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// generatedLabel matches every label the components and pollers emit.
var generatedLabel = regexp.MustCompile(`^(WaitVBlank|ClearMem|ClearMemLoop|LoadPalette\d+Loop|` +
	`JOYPAD[12]_(A|B|SELECT|START|UP|DOWN|LEFT|RIGHT)|` +
	`Joypad[12](A|B|Select|Start|Up|Down|Left|Right)End)$`)

// IsGeneratedLabel reports whether name collides with a label emitted by
// a component or a joypad handler.
func IsGeneratedLabel(name string) bool {
	return generatedLabel.MatchString(name)
}
