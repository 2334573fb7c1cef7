package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/BurntSushi/toml"

	"InkPDF/internal/ink"
	inknet "InkPDF/internal/net"
	"InkPDF/internal/state"
)

const DefaultPath = "inkpdf.toml"

type Config struct {
	Engine Engine `toml:"engine"`
	Bridge Bridge `toml:"bridge"`
}

type Engine struct {
	Tool             string  `toml:"tool"`
	Color            string  `toml:"color"`
	StrokeStep       float64 `toml:"stroke_step"`
	MinDistance      float64 `toml:"min_distance"`
	EraseStride      float64 `toml:"erase_stride"`
	DevicePixelRatio float64 `toml:"device_pixel_ratio"`
	// Pointer is the pointer type that draws: "pen" or "touch".
	Pointer  string `toml:"pointer"`
	MaxPages int    `toml:"max_pages"`
}

type Bridge struct {
	Addr        string `toml:"addr"`
	Advertise   bool   `toml:"advertise"`
	ServiceType string `toml:"service_type"`
}

func Default() Config {
	s := ink.DefaultSettings()
	return Config{
		Engine: Engine{
			Tool:             string(s.Tool),
			Color:            s.Color,
			StrokeStep:       s.StrokeStep,
			MinDistance:      s.MinDistance,
			EraseStride:      s.EraseStride,
			DevicePixelRatio: s.DevicePixelRatio,
			Pointer:          string(s.Accept),
		},
		Bridge: Bridge{
			Addr:        ":8888",
			Advertise:   true,
			ServiceType: inknet.DefaultServiceType,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("[CONFIG] %s not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return Default(), fmt.Errorf("failed to read config %s: %w", path, err)
	}
	for _, k := range md.Undecoded() {
		log.Printf("[CONFIG] Ignoring unknown key %s", k)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if _, err := state.ParseTool(c.Engine.Tool); err != nil {
		return fmt.Errorf("engine.tool: %w", err)
	}
	switch ink.PointerType(c.Engine.Pointer) {
	case ink.PointerPen, ink.PointerTouch:
	default:
		return fmt.Errorf("engine.pointer: %q is neither pen nor touch", c.Engine.Pointer)
	}
	if c.Engine.StrokeStep <= 0 {
		return errors.New("engine.stroke_step must be positive")
	}
	if c.Engine.MinDistance < 0 {
		return errors.New("engine.min_distance must not be negative")
	}
	if c.Engine.EraseStride <= 0 {
		return errors.New("engine.erase_stride must be positive")
	}
	if c.Engine.DevicePixelRatio <= 0 {
		return errors.New("engine.device_pixel_ratio must be positive")
	}
	if c.Engine.MaxPages < 0 {
		return errors.New("engine.max_pages must not be negative")
	}
	return nil
}

// Settings converts the engine section. Drawing starts disabled.
func (c Config) Settings() ink.Settings {
	return ink.Settings{
		Tool:             state.Tool(c.Engine.Tool),
		Color:            c.Engine.Color,
		StrokeStep:       c.Engine.StrokeStep,
		Accept:           ink.PointerType(c.Engine.Pointer),
		MinDistance:      c.Engine.MinDistance,
		EraseStride:      c.Engine.EraseStride,
		DevicePixelRatio: c.Engine.DevicePixelRatio,
	}
}
