// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const prefsFile = "preferences.json"

// Keys used by the main window.
const (
	KeyWindowWidth  = "windowWidth"
	KeyWindowHeight = "windowHeight"
	KeyMode         = "mode"
	KeyLastText     = "lastText"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
	dirty  bool
}

// Load reads preferences from <user config dir>/fspdf/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFile(filepath.Join(configDir, "fspdf", prefsFile))
}

// LoadFile reads preferences from path. A missing or unreadable file yields
// empty preferences that will be written to path on Save.
func LoadFile(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	var values map[string]interface{}
	if err := json.Unmarshal(data, &values); err == nil && values != nil {
		p.values = values
	}
	return p
}

// Path returns the preferences file.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes preferences to disk if anything changed since the last load
// or save.
func (p *Prefs) Save() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.dirty {
		return nil
	}
	data, err := json.MarshalIndent(p.values, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return err
	}
	p.dirty = false
	return nil
}

// FloatWithFallback returns a float64 preference, or fallback if not set.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.set(key, val)
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.set(key, val)
}

func (p *Prefs) set(key string, val interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if old, ok := p.values[key]; ok && old == val {
		return
	}
	p.values[key] = val
	p.dirty = true
}
