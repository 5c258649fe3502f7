package services

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codyseavey/sld-tracker/internal/models"
)

func TestSaveDrops(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s := NewExportService(dir)

	drops := []models.EnrichedDrop{
		{RawDrop: models.RawDrop{DropNumber: "1", Name: "Cats & Dogs <3", CardNumbers: "SLD-1"}, Cards: []models.MatchedCard{}},
		{RawDrop: models.RawDrop{DropNumber: "2", Name: "Unknown", CardNumbers: "TBA"}},
	}

	path, err := s.SaveDrops(drops, "secret_lairs.json")
	if err != nil {
		t.Fatalf("SaveDrops failed: %v", err)
	}
	if path != filepath.Join(dir, "secret_lairs.json") {
		t.Errorf("unexpected path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "[\n  {\n    \"drop_number\": \"1\"") {
		t.Errorf("expected two-space indentation, got:\n%s", out)
	}
	if !strings.Contains(out, `"Cats & Dogs <3"`) {
		t.Errorf("HTML characters should not be escaped:\n%s", out)
	}
	if strings.Count(out, `"cards"`) != 1 {
		t.Errorf("only the parsed drop should have a cards key:\n%s", out)
	}

	back, err := s.LoadDrops("secret_lairs.json")
	if err != nil {
		t.Fatalf("LoadDrops failed: %v", err)
	}
	if len(back) != 2 || !back[0].Parsed() || back[1].Parsed() {
		t.Errorf("unexpected drops after reload: %+v", back)
	}
}

func TestSaveDropsNil(t *testing.T) {
	s := NewExportService(t.TempDir())
	path, err := s.SaveDrops(nil, "empty.json")
	if err != nil {
		t.Fatalf("SaveDrops failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("expected empty array, got %q", data)
	}
}

func TestLoadDropsMissing(t *testing.T) {
	s := NewExportService(t.TempDir())
	if _, err := s.LoadDrops("nope.json"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
