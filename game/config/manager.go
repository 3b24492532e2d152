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
	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/roborally/game/engine"
	"github.com/wricardo/mcp-training/roborally/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrNoConfigDir    = errors.New("no board directory configured")
)

// layoutExtensions are tried in order when looking up a layout file
var layoutExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles board layout loading and caching. Layout files in the
// directory take precedence over built-in layouts of the same name.
type Manager struct {
	configDir     string
	defaultName   string
	defaultConfig *engine.BoardConfig
	configs       map[string]*engine.BoardConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager. An empty configDir serves
// the built-in layouts only.
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if configDir != "" {
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("config directory does not exist: %s", configDir)
		}
	}

	m := &Manager{
		configDir:   configDir,
		defaultName: DefaultBoard,
		configs:     make(map[string]*engine.BoardConfig),
	}

	// Load default config
	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a board layout by name
func (m *Manager) LoadConfig(name string) (*engine.BoardConfig, error) {
	name = trimLayoutExt(name)
	if err := checkName(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	config, err := m.readLayout(name)
	if errors.Is(err, ErrConfigNotFound) {
		builtin, ok := Builtin(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		config, err = builtin, nil
	}
	if err != nil {
		return nil, err
	}

	// Cache the config
	m.configs[name] = config
	return config, nil
}

// readLayout reads name from the layout directory. The caller holds the lock.
func (m *Manager) readLayout(name string) (*engine.BoardConfig, error) {
	if m.configDir == "" {
		return nil, ErrConfigNotFound
	}

	for _, ext := range layoutExtensions {
		configPath := filepath.Join(m.configDir, name+ext)

		data, err := os.ReadFile(configPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		config, err := engine.ParseBoardConfig(data, ext)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, name+ext, err)
		}
		if err := engine.ValidateBoardConfig(config); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return config, nil
	}
	return nil, ErrConfigNotFound
}

// ListConfigs returns information about all available layouts, sorted by ID
func (m *Manager) ListConfigs() ([]*service.BoardInfo, error) {
	files := make(map[string]string)
	if m.configDir != "" {
		entries, err := os.ReadDir(m.configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read config directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !isLayoutFile(entry.Name()) {
				continue
			}
			name := trimLayoutExt(entry.Name())
			// The first extension in lookup order wins, like in LoadConfig
			if _, seen := files[name]; !seen || extRank(entry.Name()) < extRank(files[name]) {
				files[name] = entry.Name()
			}
		}
	}

	var configs []*service.BoardInfo
	for name, filename := range files {
		config, err := m.LoadConfig(name)
		if err != nil {
			// Skip invalid configs
			log.Warn().Err(err).Str("file", filename).Msg("skipping invalid board layout")
			continue
		}
		configs = append(configs, newBoardInfo(name, filename, config, false))
	}

	for _, name := range BuiltinNames() {
		if _, shadowed := files[name]; shadowed {
			continue
		}
		config, err := m.LoadConfig(name)
		if err != nil {
			continue
		}
		configs = append(configs, newBoardInfo(name, "", config, true))
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].BoardID < configs[j].BoardID
	})
	return configs, nil
}

func newBoardInfo(id, filename string, config *engine.BoardConfig, builtin bool) *service.BoardInfo {
	return &service.BoardInfo{
		Filename:    filename,
		BoardID:     id, // This is the identifier to use for session creation
		Name:        config.Name,
		Description: config.Description,
		Width:       config.Width,
		Height:      config.Height,
		Checkpoints: len(config.Checkpoints),
		Conveyors:   len(config.Conveyors),
		Builtin:     builtin,
	}
}

// GetDefault returns the default layout
func (m *Manager) GetDefault() *engine.BoardConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// DefaultName returns the ID of the default layout
func (m *Manager) DefaultName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultName
}

// SetDefault sets the default layout by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = trimLayoutExt(name)
	m.defaultConfig = config
	return nil
}

// RefreshCache drops all cached layouts so they are read from disk again
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.BoardConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig loads the default layout, falling back to the built-in
// one if a file of that name is broken
func (m *Manager) loadDefaultConfig() error {
	name := m.DefaultName()

	config, err := m.LoadConfig(name)
	if err != nil {
		builtin, ok := Builtin(DefaultBoard)
		if !ok {
			return err
		}
		log.Warn().Err(err).Str("board", name).Msg("falling back to built-in default board")
		name, config = DefaultBoard, builtin
	}

	m.mu.Lock()
	m.defaultName = name
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// SaveConfig saves a layout to the layout directory. A name ending in .yaml
// or .yml is written as YAML, anything else as JSON.
func (m *Manager) SaveConfig(name string, config *engine.BoardConfig) error {
	if m.configDir == "" {
		return ErrNoConfigDir
	}

	// Validate config before saving
	if err := engine.ValidateBoardConfig(config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	id := trimLayoutExt(name)
	if err := checkName(id); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	filename := name
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		// Add .json extension if not present
		filename = id + ".json"
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Other formats of the same layout would shadow or be shadowed by this one
	for _, ext := range layoutExtensions {
		if other := id + ext; other != filename {
			if err := os.Remove(filepath.Join(m.configDir, other)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove %s: %w", other, err)
			}
		}
	}

	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.configs[id] = config
	if id == m.defaultName {
		m.defaultConfig = config
	}
	m.mu.Unlock()

	return nil
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: invalid board name %q", ErrInvalidConfig, name)
	}
	return nil
}

func isLayoutFile(filename string) bool {
	return extRank(filename) < len(layoutExtensions)
}

func extRank(filename string) int {
	ext := strings.ToLower(filepath.Ext(filename))
	for i, e := range layoutExtensions {
		if e == ext {
			return i
		}
	}
	return len(layoutExtensions)
}

func trimLayoutExt(name string) string {
	if isLayoutFile(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
