package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/service"
)

var (
	ErrLevelNotFound = service.ErrLevelNotFound
	ErrInvalidLevel  = errors.New("invalid level")
	ErrEmptyCatalog  = errors.New("catalog has no levels")
)

//go:embed levels/*.yaml
var embeddedLevels embed.FS

// Manager loads the level files of a directory and serves them by number.
type Manager struct {
	fsys   fs.FS
	dir    string
	levels []*Level
	mu     sync.RWMutex
}

// NewManager loads the levels in dir. An empty dir selects the built-in
// catalog.
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		return NewManagerFS(embeddedLevels, "levels")
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("levels directory does not exist: %s", dir)
	}
	return NewManagerFS(os.DirFS(dir), ".")
}

// NewManagerFS loads the levels found under dir in fsys.
func NewManagerFS(fsys fs.FS, dir string) (*Manager, error) {
	m := &Manager{fsys: fsys, dir: dir}
	if err := m.RefreshCache(); err != nil {
		return nil, err
	}
	return m, nil
}

// Default returns the built-in catalog.
func Default() *Manager {
	m, err := NewManager("")
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return m
}

// Count returns the number of levels.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.levels)
}

// Level returns the level with the given number.
func (m *Manager) Level(number int) (*Level, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if number < 1 || number > len(m.levels) {
		return nil, fmt.Errorf("%w: %d", ErrLevelNotFound, number)
	}
	return m.levels[number-1], nil
}

// Layout returns a copy of a level's layout.
func (m *Manager) Layout(number int) (engine.Layout, error) {
	level, err := m.Level(number)
	if err != nil {
		return nil, err
	}
	return level.Layout(), nil
}

// ListLevels returns summary information for every level, in order.
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]*service.LevelInfo, 0, len(m.levels))
	for _, level := range m.levels {
		infos = append(infos, Info(level))
	}
	return infos, nil
}

// Info summarizes a level for listings.
func Info(level *Level) *service.LevelInfo {
	return service.LevelSummary(level.Number, level.Name, level.Par, level.Layout())
}

// RefreshCache reloads every level file.
func (m *Manager) RefreshCache() error {
	levels, err := m.load()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels = levels
	return nil
}

func (m *Manager) load() ([]*Level, error) {
	entries, err := fs.ReadDir(m.fsys, m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels directory: %w", err)
	}

	var levels []*Level
	for _, entry := range entries {
		if entry.IsDir() || !isLevelFile(entry.Name()) {
			continue
		}

		level, err := m.loadFile(path.Join(m.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}

	if len(levels) == 0 {
		return nil, ErrEmptyCatalog
	}
	if len(levels) > engine.MaxLevel {
		return nil, fmt.Errorf("%w: catalog holds %d levels, max is %d", ErrInvalidLevel, len(levels), engine.MaxLevel)
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].Number < levels[j].Number })
	for i, level := range levels {
		if level.Number != i+1 {
			return nil, fmt.Errorf("%w: levels must be numbered 1..%d without gaps, found %d at position %d",
				ErrInvalidLevel, len(levels), level.Number, i+1)
		}
	}

	return levels, nil
}

func (m *Manager) loadFile(name string) (*Level, error) {
	data, err := fs.ReadFile(m.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	// YAML is a superset of JSON, so one decoder serves both extensions.
	var level Level
	if err := yaml.Unmarshal(data, &level); err != nil {
		return nil, fmt.Errorf("failed to parse level file %s: %w", name, err)
	}
	if err := level.decode(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLevel, name, err)
	}
	if strings.TrimSpace(level.Name) == "" {
		level.Name = fmt.Sprintf("Level %d", level.Number)
	}
	return &level, nil
}

func isLevelFile(name string) bool {
	switch path.Ext(name) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
