package stagecraft

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds stage-wide settings. Zero fields fall back to the values of
// DefaultConfig when the stage is created.
type Config struct {
	StageWidth   float64 `yaml:"stage_width"`
	StageHeight  float64 `yaml:"stage_height"`
	PointerScale float64 `yaml:"pointer_scale"`

	DefaultFont      string  `yaml:"default_font"`
	CodingFont       string  `yaml:"coding_font"`
	CodingFontOffset float64 `yaml:"coding_font_offset"`

	// Minimized stages show entities but ignore drags.
	Minimized bool `yaml:"minimized"`
	Debug     bool `yaml:"debug"`

	// PictureRoot is the directory picture file URLs are resolved against.
	PictureRoot   string `yaml:"picture_root"`
	WatchPictures bool   `yaml:"watch_pictures"`
}

// DefaultConfig returns the settings of the standard 480x270 stage.
func DefaultConfig() Config {
	return Config{
		StageWidth:       480,
		StageHeight:      270,
		PointerScale:     0.75,
		DefaultFont:      "20px Nanum Gothic",
		CodingFont:       "Nanum Gothic Coding",
		CodingFontOffset: 10,
	}
}

// ParseConfig decodes YAML settings on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("stagecraft: unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and decodes a YAML settings file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("stagecraft: load config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("stagecraft: load config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StageWidth <= 0 {
		c.StageWidth = d.StageWidth
	}
	if c.StageHeight <= 0 {
		c.StageHeight = d.StageHeight
	}
	if c.PointerScale <= 0 {
		c.PointerScale = d.PointerScale
	}
	if c.DefaultFont == "" {
		c.DefaultFont = d.DefaultFont
	}
	if c.CodingFont == "" {
		c.CodingFont = d.CodingFont
	}
	if c.CodingFontOffset == 0 {
		c.CodingFontOffset = d.CodingFontOffset
	}
	return c
}

// defaultFont parses DefaultFont, falling back to the built-in descriptor.
func (c Config) defaultFont() FontStyle {
	f, err := ParseFontStyle(c.DefaultFont)
	if err != nil || f.Size <= 0 || f.Family == "" {
		f, _ = ParseFontStyle(DefaultConfig().DefaultFont)
	}
	return f
}
