package engine

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

// Persistence writes one JSON file per scope into DataDir.
type Persistence struct {
	DataDir string
	mu      sync.Mutex // Protects concurrent writes to the filesystem
}

// NewPersistence initializes a persistence handler.
func NewPersistence(dir string) (*Persistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Persistence{DataDir: dir}, nil
}

func validScope(scope string) bool {
	return scope != "" && !strings.ContainsAny(scope, `/\.`)
}

// SaveScope writes a single scope's data to a JSON file atomically.
func (p *Persistence) SaveScope(scope string, data map[string][]Record) error {
	if !validScope(scope) {
		return fmt.Errorf("invalid scope name %q", scope)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	filePath := filepath.Join(p.DataDir, scope+".json")
	tempPath := filePath + ".tmp"

	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tempPath, bytes, 0644); err != nil {
		return err
	}

	// Either the old file or the new one survives a crash, never a torn one.
	return os.Rename(tempPath, filePath)
}

// LoadAll returns all scope data found in the data directory.
func (p *Persistence) LoadAll() (map[string]map[string][]Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	allData := make(map[string]map[string][]Record)

	files, err := os.ReadDir(p.DataDir)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		scope := strings.TrimSuffix(file.Name(), ".json")

		content, err := os.ReadFile(filepath.Join(p.DataDir, file.Name()))
		if err != nil {
			log.Printf("Warning: Could not read scope file %s: %v", file.Name(), err)
			continue
		}

		var scopeData map[string][]Record
		if err := json.Unmarshal(content, &scopeData); err != nil {
			log.Printf("Warning: Could not unmarshal scope data from %s: %v", file.Name(), err)
			continue
		}
		allData[scope] = scopeData
	}
	return allData, nil
}
