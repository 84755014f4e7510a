//Package config reads and writes the TOML configuration file of the simulator
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"cellsim/src/palette"
)

//DefaultFilename is the config file looked up in the working directory
const DefaultFilename = "cells.toml"

//Board section: the board loaded at start up
type Board struct {
	Width        int      `toml:"width"`
	Height       int      `toml:"height"`
	Rules        string   `toml:"rules"`
	MaxSpeed     float64  `toml:"max_speed"`
	Toroidal     bool     `toml:"toroidal"`
	LastFilename string   `toml:"last_filename"`
	Colors       []string `toml:"colors"`
}

//Screenshots section
type Screenshots struct {
	Format          string `toml:"format"`
	AutoSave        bool   `toml:"auto_save"`
	AutoSavePartial bool   `toml:"auto_save_partial"`
}

//Config is the whole configuration file
type Config struct {
	Board        Board               `toml:"board"`
	Screenshots  Screenshots         `toml:"screenshots"`
	PresetColors map[string][]string `toml:"preset_colors"`

	filename string
}

//Default returns the configuration used for the missing options
func Default() *Config {
	return &Config{
		Board: Board{
			Width:        40,
			Height:       15,
			Rules:        "B3/S23",
			MaxSpeed:     60,
			LastFilename: "board",
			Colors:       []string{"#000000", "#FFFFFF"},
		},
		Screenshots: Screenshots{
			Format: "screenshots/board %n.png",
		},
		PresetColors: map[string][]string{
			"classic": {"#000000", "#FFFFFF"},
			"fire":    {"#000000", "#330000", "#990000", "#FF0000", "#FF9900", "#FFFF00"},
			"ocean":   {"#001020", "#003366", "#0066CC", "#33CCFF"},
		},
		filename: DefaultFilename,
	}
}

//Load reads filename on top of the defaults.
//A missing file is not an error, the defaults are returned and Save creates the file.
func Load(filename string) (*Config, error) {
	c := Default()
	if filename == "" {
		filename = DefaultFilename
	}
	c.filename = filename

	md, err := toml.DecodeFile(filename, c)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("config file %s not found, using defaults", filename)
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", filename, err)
	}
	for _, key := range md.Undecoded() {
		log.Printf("config %s: unknown option %s", filename, key)
	}
	c.validate()
	return c, nil
}

//validate brings options out of range back into range, with a warning
func (c *Config) validate() {
	if c.Board.Width < 1 {
		log.Printf("config: board width %d is out of range, using 1", c.Board.Width)
		c.Board.Width = 1
	}
	if c.Board.Height < 1 {
		log.Printf("config: board height %d is out of range, using 1", c.Board.Height)
		c.Board.Height = 1
	}
	if c.Board.MaxSpeed < 0 {
		log.Printf("config: max speed %v is out of range, using 0", c.Board.MaxSpeed)
		c.Board.MaxSpeed = 0
	}
}

//Filename is the file the config was loaded from, Save writes there by default
func (c *Config) Filename() string {
	return c.filename
}

//Save writes the config to filename, or to the loaded file when filename is empty
func (c *Config) Save(filename string) (err error) {
	if filename == "" {
		filename = c.filename
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("save config: %w", cerr)
		}
	}()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("save config %s: %w", filename, err)
	}
	return nil
}

//Palette parses the board colors
func (c *Config) Palette() (palette.Palette, error) {
	return palette.Parse(c.Board.Colors)
}

//Preset parses the named preset palette
func (c *Config) Preset(name string) (palette.Palette, error) {
	codes, ok := c.PresetColors[name]
	if !ok {
		return nil, fmt.Errorf("unknown color preset %q", name)
	}
	return palette.Parse(codes)
}

//Presets returns the preset names sorted
func (c *Config) Presets() []string {
	names := make([]string, 0, len(c.PresetColors))
	for name := range c.PresetColors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
