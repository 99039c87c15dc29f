package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/pkg/errors"

	"nescart/pkg/chr"
	"nescart/pkg/utils"
)

const (
	minScale = 1
	maxScale = 8
)

// palettes cycled with P. The first entry is the grey ramp.
var palettes = []color.Palette{
	chr.DefaultPalette,
	{ // overworld
		color.RGBA{0x5C, 0x94, 0xFC, 0xFF},
		color.RGBA{0xFC, 0xFC, 0xFC, 0xFF},
		color.RGBA{0xE4, 0x5C, 0x10, 0xFF},
		color.RGBA{0x88, 0x14, 0x00, 0xFF},
	},
	{ // player
		color.RGBA{0x00, 0x00, 0x00, 0xFF},
		color.RGBA{0xB8, 0x1E, 0x00, 0xFF},
		color.RGBA{0xF8, 0xB8, 0x00, 0xFF},
		color.RGBA{0x88, 0x70, 0x00, 0xFF},
	},
	{ // underground
		color.RGBA{0x00, 0x00, 0x00, 0xFF},
		color.RGBA{0x00, 0x80, 0x88, 0xFF},
		color.RGBA{0x3C, 0xBC, 0xFC, 0xFF},
		color.RGBA{0x00, 0x40, 0x58, 0xFF},
	},
}

type Game struct {
	data    []byte
	name    string
	palette int
	scale   int
	grid    bool

	sheetImg *ebiten.Image // rebuilt when the palette changes
}

func newGame(name string, data []byte) *Game {
	return &Game{data: data, name: name, scale: 4}
}

func (g *Game) tiles() image.Image {
	return chr.Tiles(g.data, palettes[g.palette])
}

func (g *Game) cyclePalette() {
	g.palette = (g.palette + 1) % len(palettes)
	g.sheetImg = nil
}

func (g *Game) zoom(delta int) {
	g.scale += delta
	if g.scale < minScale {
		g.scale = minScale
	}
	if g.scale > maxScale {
		g.scale = maxScale
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.cyclePalette()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.zoom(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.zoom(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		g.grid = !g.grid
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.sheetImg == nil {
		g.sheetImg = ebiten.NewImageFromImage(g.tiles())
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.sheetImg, op)

	if g.grid {
		g.drawGrid(screen)
	}

	ebitenutil.DebugPrint(screen, g.status())
}

func (g *Game) drawGrid(screen *ebiten.Image) {
	b := g.sheetImg.Bounds()
	step := chr.TileSize * g.scale
	line := color.RGBA{0xFF, 0x00, 0xFF, 0x80}
	for x := step; x < b.Dx()*g.scale; x += step {
		ebitenutil.DrawLine(screen, float64(x), 0, float64(x), float64(b.Dy()*g.scale), line)
	}
	for y := step; y < b.Dy()*g.scale; y += step {
		ebitenutil.DrawLine(screen, 0, float64(y), float64(b.Dx()*g.scale), float64(y), line)
	}
}

func (g *Game) status() string {
	return fmt.Sprintf("%s  %d tiles  palette %d/%d  x%d\nP palette  +/- zoom  G grid",
		g.name, len(g.data)/chr.BytesPerTile, g.palette+1, len(palettes), g.scale)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := g.tiles().Bounds()
	return b.Dx() * g.scale, b.Dy()*g.scale + 32
}

// loadPatterns reads raw CHR data or converts an image.
func loadPatterns(path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".chr", ".bin":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read CHR data")
		}
		if len(data)%chr.BytesPerTile != 0 {
			return nil, errors.Errorf("%d bytes is not a whole number of tiles", len(data))
		}
		return data, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer f.Close()
	img, err := chr.Decode(f)
	if err != nil {
		return nil, err
	}
	return chr.Encode(img)
}

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: chrview <file.chr|sheet.png>")
	}

	fullPath, _, err := utils.GetPathInfo(os.Args[1])
	if err != nil {
		log.Fatalf("Bad path: %v", err)
	}
	data, err := loadPatterns(fullPath)
	if err != nil {
		log.Fatalf("Failed to load patterns: %v", err)
	}

	game := newGame(filepath.Base(fullPath), data)
	w, h := game.Layout(0, 0)

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("CHR Viewer")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
