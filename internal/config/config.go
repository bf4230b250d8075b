package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Listen is the HTTP listen address
	Listen string `json:"listen" yaml:"listen"`

	// FontsDir is where template font names are looked up
	FontsDir           string `json:"fonts_dir" yaml:"fonts_dir"`
	DefaultFontRegular string `json:"default_font_regular" yaml:"default_font_regular"`
	DefaultFontBold    string `json:"default_font_bold" yaml:"default_font_bold"`

	// TemplatesDir holds template records, <id>.json
	TemplatesDir string `json:"templates_dir" yaml:"templates_dir"`
	// StaticDir is the base for relative QR logo paths
	StaticDir string `json:"static_dir" yaml:"static_dir"`

	// AssetRoots limits local backgrounds, photos and logos to these
	// directories. Empty means no limit; the server falls back to
	// ServerAssetRoots.
	AssetRoots []string `json:"asset_roots" yaml:"asset_roots"`
	// RemoteHosts limits image downloads to these hosts. Empty allows any.
	RemoteHosts []string `json:"remote_hosts" yaml:"remote_hosts"`

	// FaceCascade is a pigo cascade file. Empty disables face detection
	// and photos are centre cropped.
	FaceCascade string `json:"face_cascade" yaml:"face_cascade"`
	// BackgroundRemovalURL is the photo background removal service.
	// Empty disables background removal.
	BackgroundRemovalURL string `json:"background_removal_url" yaml:"background_removal_url"`

	FetchTimeout time.Duration `json:"fetch_timeout" yaml:"fetch_timeout"`
	PhotoTimeout time.Duration `json:"photo_timeout" yaml:"photo_timeout"`
	JPEGQuality  int           `json:"jpeg_quality" yaml:"jpeg_quality"`
	SheetWorkers int           `json:"sheet_workers" yaml:"sheet_workers"`
}

func Default() Config {
	return Config{
		Listen:             ":8080",
		FontsDir:           "fonts",
		DefaultFontRegular: "arial.ttf",
		DefaultFontBold:    "arialbd.ttf",
		TemplatesDir:       "templates",
		StaticDir:          "static",
		FetchTimeout:       10 * time.Second,
		PhotoTimeout:       8 * time.Second,
		JPEGQuality:        95,
		SheetWorkers:       4,
	}
}

// Load reads path over the defaults. An empty path means defaults only.
// PORT in the environment overrides the listen port.
func Load(path string) (Config, error) {
	conf := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return conf, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &conf); err != nil {
			return conf, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		conf.Listen = ":" + port
	}
	conf.fill()
	return conf, nil
}

// ServerAssetRoots is AssetRoots, or the templates and static directories
// when none are configured.
func (c Config) ServerAssetRoots() []string {
	if len(c.AssetRoots) > 0 {
		return c.AssetRoots
	}
	return []string{c.TemplatesDir, c.StaticDir}
}

func (c *Config) fill() {
	def := Default()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = def.FetchTimeout
	}
	if c.PhotoTimeout <= 0 {
		c.PhotoTimeout = def.PhotoTimeout
	}
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		c.JPEGQuality = def.JPEGQuality
	}
	if c.SheetWorkers <= 0 {
		c.SheetWorkers = def.SheetWorkers
	}
}
