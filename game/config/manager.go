package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

var (
	// Service sentinels, so callers can match them without importing this package
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
	ErrInvalidName    = errors.New("invalid configuration name")
)

// DefaultPreset is the preset used when no name is given
const DefaultPreset = "classic"

// Manager handles preset loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a preset by name
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name = strings.TrimSuffix(name, ".json")
	if err := checkName(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(name)
}

func (m *Manager) loadLocked(name string) (*engine.GameConfig, error) {
	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	configPath := filepath.Join(m.configDir, name+".json")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, name, err)
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[name] = &config
	return &config, nil
}

// ListConfigs returns information about every valid preset in the directory.
// Invalid files are skipped with a warning.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")

		config, err := m.LoadConfig(name)
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping preset")
			continue
		}

		configs = append(configs, Describe(entry.Name(), name, config))
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ConfigID < configs[j].ConfigID
	})

	return configs, nil
}

// Describe summarizes a preset for listings
func Describe(filename, id string, config *engine.GameConfig) *service.ConfigInfo {
	difficulties := config.Difficulties
	if len(difficulties) == 0 {
		difficulties = []int{config.Difficulty}
	}
	return &service.ConfigInfo{
		Filename:     filename,
		ConfigID:     id,
		Name:         config.Name,
		Description:  config.Description,
		Difficulty:   config.Difficulty,
		Difficulties: difficulties,
		CatalogSize:  len(config.Catalog),
		SettleDelay:  config.SettleDelayMs,
	}
}

// GetDefault returns the default preset
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default preset by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached presets and reloads the default from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// Count returns the number of cached presets
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// loadDefaultConfig picks classic.json, then the first valid preset, then the
// built-in classic preset.
func (m *Manager) loadDefaultConfig() {
	config, err := m.LoadConfig(DefaultPreset)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			log.Warn().Str("dir", m.configDir).Msg("no presets found, using built-in classic")
			config = engine.DefaultGameConfig()
		} else {
			config, err = m.LoadConfig(configs[0].ConfigID)
			if err != nil {
				config = engine.DefaultGameConfig()
			}
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig validates a preset and writes it to disk
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	name = strings.TrimSuffix(name, ".json")
	if err := checkName(name); err != nil {
		return err
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	configPath := filepath.Join(m.configDir, name+".json")

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	return nil
}

// checkName rejects names that would escape the config directory
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
