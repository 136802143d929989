package keydump

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"src.rawkey.dev/pkg/keys"
	"src.rawkey.dev/pkg/logutil"
	"src.rawkey.dev/pkg/prog"
	"src.rawkey.dev/pkg/term"
)

// Config is the content of the config file.
type Config struct {
	EscapeTimeout time.Duration `yaml:"escape-timeout"`
	QuitKey       string        `yaml:"quit-key"`
	Record        string        `yaml:"record"`
	JSON          bool          `yaml:"json"`
	Log           string        `yaml:"log"`
}

// DefaultConfigPath returns the path of the config file used when -config is
// not given.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rawkey", "keydump.yaml"), nil
}

// LoadConfig reads the config file at path. Unknown keys are errors. If
// mustExist is false, a missing file results in a zero Config.
func LoadConfig(path string, mustExist bool) (*Config, error) {
	cfg := &Config{}
	file, err := os.Open(path)
	if err != nil {
		if !mustExist && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	defer file.Close()

	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	err = dec.Decode(cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.EscapeTimeout < 0 {
		return nil, fmt.Errorf("%s: negative escape-timeout %v", path, cfg.EscapeTimeout)
	}
	return cfg, nil
}

// settings are the effective options of a run, after merging the config file
// and the command-line flags.
type settings struct {
	escapeTimeout time.Duration
	quitKey       keys.Key
	record        string
	json          bool
}

var defaultQuitKey = keys.K(keys.EscCode, keys.Escape)

func loadSettings(f *prog.Flags) (*settings, error) {
	path, mustExist := f.Config, true
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			logger.Println("no default config path:", err)
			path = ""
		}
		mustExist = false
	}
	cfg := &Config{}
	if path != "" {
		var err error
		cfg, err = LoadConfig(path, mustExist)
		if err != nil {
			return nil, err
		}
	}

	s := &settings{
		escapeTimeout: term.DefaultEscapeTimeout,
		quitKey:       defaultQuitKey,
		record:        cfg.Record,
		json:          cfg.JSON,
	}
	if cfg.EscapeTimeout > 0 {
		s.escapeTimeout = cfg.EscapeTimeout
	}
	if cfg.QuitKey != "" {
		k, err := keys.Parse(cfg.QuitKey)
		if err != nil {
			return nil, fmt.Errorf("%s: quit-key: %w", path, err)
		}
		s.quitKey = k
	}
	if cfg.Log != "" && !f.Set["log"] {
		if err := logutil.SetOutputFile(cfg.Log); err != nil {
			return nil, err
		}
	}

	if f.Set["timeout"] {
		if f.EscapeTimeout <= 0 {
			return nil, prog.BadUsage(fmt.Sprintf("-timeout must be positive, got %v", f.EscapeTimeout))
		}
		s.escapeTimeout = f.EscapeTimeout
	}
	if f.Set["record"] {
		s.record = f.Record
	}
	if f.Set["json"] {
		s.json = f.JSON
	}
	return s, nil
}
