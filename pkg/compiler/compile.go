// Package compiler turns a program tree into a cartridge. It recognises a
// small closed set of statement patterns and maps each one onto fixed
// 6502 register sequences.
package compiler

import (
	"errors"

	"nescart/pkg/cart"
)

type config struct {
	header *cart.Header
	chr    []byte
}

// Option configures a compile.
type Option func(*config)

// WithHeader overrides the iNES header directives.
func WithHeader(h cart.Header) Option {
	return func(c *config) { c.header = &h }
}

// WithCHR places pattern table data in the CHR bank.
func WithCHR(data []byte) Option {
	return func(c *config) { c.chr = data }
}

// Build compiles mod into a fresh cartridge. On error no cartridge is
// returned.
func Build(mod *Module, opts ...Option) (*cart.Cartridge, error) {
	if mod == nil {
		return nil, errors.New("nil module")
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	rom := cart.New()
	if cfg.header != nil {
		if err := cfg.header.Validate(); err != nil {
			return nil, err
		}
		rom.Header = *cfg.header
	}
	if len(cfg.chr) > 0 {
		if err := rom.SetCHR(cfg.chr); err != nil {
			return nil, err
		}
	}

	v := &visitor{rom: rom}
	if err := v.visitModule(mod); err != nil {
		return nil, err
	}
	return rom, nil
}

// Generate compiles mod and returns the assembly listing.
func Generate(mod *Module, opts ...Option) (string, error) {
	rom, err := Build(mod, opts...)
	if err != nil {
		return "", err
	}
	return rom.Finalize(), nil
}
