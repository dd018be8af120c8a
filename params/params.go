// Package params manages persistent user settings, most importantly the
// list of directories searched for instrument data. Settings live as JSON
// under ~/.pysat and survive across runs.
package params

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	settingsDirName  = ".pysat"
	settingsFileName = "settings.json"

	// EnvDataDirs overrides stored data directories when set. Multiple
	// entries are separated by the OS path list separator.
	EnvDataDirs = "PYSAT_DATA_DIR"
)

// Settings is the persisted parameter set.
type Settings struct {
	DataDirs      []string `json:"data_dirs"`
	UserModules   []string `json:"user_modules,omitempty"`
	UpdateFiles   bool     `json:"update_files"`
	WarnEmptyFile bool     `json:"warn_empty_file_list"`
}

// Params couples settings with the file they are stored in.
type Params struct {
	Settings
	path string
}

func defaults(home string) Settings {
	return Settings{
		DataDirs:      []string{filepath.Join(home, settingsDirName, "data")},
		UpdateFiles:   true,
		WarnEmptyFile: false,
	}
}

// Load reads settings from homeDir (the user home directory when empty),
// creating the settings file with defaults on first use.
func Load(homeDir string) (*Params, error) {
	if homeDir == "" {
		var err error
		homeDir, err = os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("params: locating home directory: %w", err)
		}
	}

	dir := filepath.Join(homeDir, settingsDirName)
	p := &Params{path: filepath.Join(dir, settingsFileName)}

	raw, err := os.ReadFile(p.path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &p.Settings); err != nil {
			return nil, fmt.Errorf("params: parsing %s: %w", p.path, err)
		}
	case os.IsNotExist(err):
		p.Settings = defaults(homeDir)
		if err := p.Store(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("params: reading %s: %w", p.path, err)
	}
	return p, nil
}

// Store writes the settings back to disk.
func (p *Params) Store() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("params: creating settings directory: %w", err)
	}
	raw, err := json.MarshalIndent(&p.Settings, "", "  ")
	if err != nil {
		return fmt.Errorf("params: encoding settings: %w", err)
	}
	if err := os.WriteFile(p.path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("params: writing %s: %w", p.path, err)
	}
	return nil
}

// Path returns the settings file location.
func (p *Params) Path() string { return p.path }

// SetDataDirs validates and replaces the stored data directories. Every
// directory must already exist.
func (p *Params) SetDataDirs(dirs []string) error {
	if len(dirs) == 0 {
		return fmt.Errorf("params: at least one data directory is required")
	}
	for _, d := range dirs {
		info, err := os.Stat(d)
		if err != nil {
			return fmt.Errorf("params: data directory %s: %w", d, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("params: %s is not a directory", d)
		}
	}
	p.DataDirs = append([]string(nil), dirs...)
	return p.Store()
}

// ResolveDataDir picks the data directory for a new instrument. An
// explicit non-empty argument wins, then the PYSAT_DATA_DIR environment
// variable, then the first stored directory.
func (p *Params) ResolveDataDir(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvDataDirs); env != "" {
		dirs := strings.Split(env, string(os.PathListSeparator))
		return dirs[0], nil
	}
	if len(p.DataDirs) == 0 {
		return "", fmt.Errorf("params: no data directory configured")
	}
	return p.DataDirs[0], nil
}
