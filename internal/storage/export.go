package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"raffleScope/internal/model"
)

// WriteRoundExport writes a round export as one JSON document, atomically via
// a tmp file, and returns the file's content pointer.
func WriteRoundExport(path string, export model.RoundExport) (string, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal round export: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create export dir: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write export tmp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("rename export: %w", err)
	}

	return Pointer(data), nil
}

// ReadRoundExport loads a round export document.
func ReadRoundExport(path string) (model.RoundExport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RoundExport{}, fmt.Errorf("read round export: %w", err)
	}
	var export model.RoundExport
	if err := json.Unmarshal(data, &export); err != nil {
		return model.RoundExport{}, fmt.Errorf("parse round export: %w", err)
	}
	if export.Round.RoundID == 0 {
		return model.RoundExport{}, fmt.Errorf("round export %s carries no round id", path)
	}
	return export, nil
}
