package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/amirbrooks/chatterbox/internal/fsutil"
)

const (
	DefaultBotName  = "ChatterBox"
	DefaultFileName = "config.yaml"
	RootEnv         = "CHATTERBOX_ROOT"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	DataFile         string `yaml:"data_file" toml:"data_file"`
	BotName          string `yaml:"bot_name" toml:"bot_name"`
	RejectDuplicates bool   `yaml:"reject_duplicates" toml:"reject_duplicates"`
}

// Keys lists the settable keys in display order.
var Keys = []string{"data_file", "bot_name", "reject_duplicates"}

func Default() Config {
	return Config{
		DataFile: filepath.Join("data", "tasks.txt"),
		BotName:  DefaultBotName,
	}
}

// DefaultRoot is CHATTERBOX_ROOT, else ~/.chatterbox.
func DefaultRoot() string {
	if env := os.Getenv(RootEnv); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	if home != "" {
		return filepath.Join(home, ".chatterbox")
	}
	return ".chatterbox"
}

// Load reads path as TOML when it ends in .toml and as YAML otherwise.
// A missing file yields Default with found=false.
func Load(path string) (cfg Config, found bool, err error) {
	cfg = Default()
	b, err := os.ReadFile(fsutil.ExpandHome(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}
		return cfg, false, err
	}
	if isTOML(path) {
		if _, err := toml.Decode(string(b), &cfg); err != nil {
			return Default(), true, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
		}
	} else if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Default(), true, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	cfg.applyDefaults()
	return cfg, true, nil
}

func (c Config) Save(path string) error {
	c.applyDefaults()
	var buf bytes.Buffer
	if isTOML(path) {
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return err
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	}
	return fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

// Set assigns one key from its textual value.
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	switch key {
	case "data_file":
		if value == "" {
			return fmt.Errorf("%w: data_file cannot be empty", ErrInvalid)
		}
		c.DataFile = value
	case "bot_name":
		if value == "" || value == "none" || value == "null" {
			c.BotName = DefaultBotName
		} else {
			c.BotName = value
		}
	case "reject_duplicates":
		v, ok := ParseBool(value)
		if !ok {
			return fmt.Errorf("%w: reject_duplicates wants a boolean, got %q", ErrInvalid, value)
		}
		c.RejectDuplicates = v
	default:
		return fmt.Errorf("%w: unknown key %q (allowed: %s)", ErrInvalid, key, strings.Join(Keys, ", "))
	}
	return nil
}

// Get returns the textual value of key, for display.
func (c Config) Get(key string) string {
	switch key {
	case "data_file":
		return c.DataFile
	case "bot_name":
		return c.BotName
	case "reject_duplicates":
		return strconv.FormatBool(c.RejectDuplicates)
	default:
		return ""
	}
}

// DataPath resolves DataFile against root unless it is absolute or starts with "~".
func (c Config) DataPath(root string) string {
	p := fsutil.ExpandHome(strings.TrimSpace(c.DataFile))
	if p == "" {
		p = Default().DataFile
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(fsutil.ExpandHome(root), p)
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.DataFile) == "" {
		c.DataFile = Default().DataFile
	}
	if strings.TrimSpace(c.BotName) == "" {
		c.BotName = DefaultBotName
	}
}

func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
