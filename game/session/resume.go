package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileResumeStore keeps a single resume level in a JSON file. The terminal
// client uses it in place of a server session.
type FileResumeStore struct {
	path string
}

type resumeFile struct {
	Level   int       `json:"level"`
	SavedAt time.Time `json:"saved_at"`
}

// NewFileResumeStore stores the resume level at path.
func NewFileResumeStore(path string) *FileResumeStore {
	return &FileResumeStore{path: path}
}

// SaveLevel writes level to the resume file.
func (s *FileResumeStore) SaveLevel(level int) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create resume directory: %w", err)
	}
	data, err := json.Marshal(resumeFile{Level: level, SavedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal resume level: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write resume file: %w", err)
	}
	return nil
}

// Level reads the saved level. A missing file yields 0.
func (s *FileResumeStore) Level() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read resume file: %w", err)
	}

	var f resumeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("failed to parse resume file: %w", err)
	}
	return f.Level, nil
}
