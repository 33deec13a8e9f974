package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"raffleScope/internal/model"
)

// JsonlCommitLog appends commit records to a JSONL file, one record per
// line. This is the public, append-only trail observers tail to learn of new
// roots.
type JsonlCommitLog struct {
	path string
	mu   sync.Mutex
}

func NewJsonlCommitLog(path string) *JsonlCommitLog {
	return &JsonlCommitLog{path: path}
}

// PutCommitRecord appends one commit record.
func (s *JsonlCommitLog) PutCommitRecord(rec model.CommitRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create commit log dir: %w", err)
		}
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open commit log: %w", err)
	}
	defer file.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal commit record: %w", err)
	}
	line = append(line, '\n')
	if _, err := file.Write(line); err != nil {
		return fmt.Errorf("write commit record: %w", err)
	}
	return nil
}

// writeSnapshot marshals rows to JSONL and writes them atomically via a tmp
// file, returning the file's content pointer.
func writeSnapshot[T any](path string, rows []T) (string, error) {
	var buf bytes.Buffer
	for _, row := range rows {
		line, err := json.Marshal(row)
		if err != nil {
			return "", fmt.Errorf("marshal snapshot row: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write snapshot tmp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("rename snapshot: %w", err)
	}

	return Pointer(buf.Bytes()), nil
}

func readSnapshot[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var rows []T
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var row T
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("parse snapshot row %d: %w", len(rows), err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	return rows, nil
}

// WriteEntrantsSnapshot publishes the frozen entrant list and returns its
// content pointer.
func WriteEntrantsSnapshot(path string, rows []model.EntrantRecord) (string, error) {
	return writeSnapshot(path, rows)
}

// ReadEntrantsSnapshot loads a published entrant list, preserving row order.
func ReadEntrantsSnapshot(path string) ([]model.EntrantRecord, error) {
	return readSnapshot[model.EntrantRecord](path)
}

// WriteWinnersSnapshot publishes the winner assignment and returns its
// content pointer.
func WriteWinnersSnapshot(path string, rows []model.WinnerRecord) (string, error) {
	return writeSnapshot(path, rows)
}

// ReadWinnersSnapshot loads a published winner assignment.
func ReadWinnersSnapshot(path string) ([]model.WinnerRecord, error) {
	return readSnapshot[model.WinnerRecord](path)
}
