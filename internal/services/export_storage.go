package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/codyseavey/sld-tracker/internal/models"
)

// ExportService writes the reconciled drop list as JSON into the data directory
type ExportService struct {
	dataDir string
}

// NewExportService creates a new export service
func NewExportService(dataDir string) *ExportService {
	if dataDir == "" {
		dataDir = "./data"
	}

	// Ensure the data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		// Log error but don't fail - will fail on actual writes
		log.Printf("Warning: could not create data directory: %v", err)
	}

	return &ExportService{
		dataDir: dataDir,
	}
}

// SaveDrops writes drops to filename as two-space indented JSON and returns
// the full path. The file is replaced atomically.
func (s *ExportService) SaveDrops(drops []models.EnrichedDrop, filename string) (string, error) {
	if drops == nil {
		drops = []models.EnrichedDrop{}
	}
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	filePath := filepath.Join(s.dataDir, filename)
	tmp, err := os.CreateTemp(s.dataDir, filename+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(drops); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to encode drops: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return "", fmt.Errorf("failed to save drops: %w", err)
	}

	return filePath, nil
}

// LoadDrops reads a drop list previously written by SaveDrops.
func (s *ExportService) LoadDrops(filename string) ([]models.EnrichedDrop, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, filename))
	if err != nil {
		return nil, err
	}
	var drops []models.EnrichedDrop
	if err := json.Unmarshal(data, &drops); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return drops, nil
}

// GetDataDir returns the data directory path
func (s *ExportService) GetDataDir() string {
	return s.dataDir
}
