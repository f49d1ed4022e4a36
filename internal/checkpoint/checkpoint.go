// Package checkpoint persists per-question pipeline outputs as one JSON
// file per (dataset, key) under a results root. A record that exists is
// complete; the orchestrator skips any work whose record is already there,
// which makes interrupted runs resumable without re-paying network cost.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/membench/membench/pkg/logger"
)

// ErrUnsafeKey is returned when a sanitized key still resolves outside the
// results root. This is a contract violation, never silently downgraded.
var ErrUnsafeKey = errors.New("checkpoint key escapes results root")

// Files in a dataset directory that are never per-question checkpoints.
var reservedNames = map[string]bool{
	"report.json": true,
	"report.md":   true,
}

var unsafeChars = regexp.MustCompile(`[^\w\-. ]`)

// Store is a file-backed checkpoint store rooted at a results directory.
type Store struct {
	root string
}

func New(resultsDir string) (*Store, error) {
	root, err := filepath.Abs(resultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve results dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the absolute results root directory.
func (s *Store) Root() string {
	return s.root
}

// Save persists a record under (dataset, key). The write is staged to a
// temp file and renamed so readers never observe a partial record.
func (s *Store) Save(dataset, key string, record any) error {
	path, err := s.path(dataset, key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint dir: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint record: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".ckpt-*")
	if err != nil {
		return fmt.Errorf("failed to create temp checkpoint file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write checkpoint record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp checkpoint file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to commit checkpoint record: %w", err)
	}

	logger.Debug("Checkpoint saved",
		zap.String("dataset", dataset),
		zap.String("key", key),
	)
	return nil
}

// Load reads the record for (dataset, key) into out. The second return is
// false when no record exists.
func (s *Store) Load(dataset, key string, out any) (bool, error) {
	path, err := s.path(dataset, key)
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read checkpoint record: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode checkpoint record: %w", err)
	}
	return true, nil
}

// IsDone reports whether a record exists for (dataset, key).
func (s *Store) IsDone(dataset, key string) bool {
	path, err := s.path(dataset, key)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// All returns every saved record for a dataset, in filename order. Corrupt
// or unreadable records are skipped rather than aborting the listing;
// report files are never included.
func (s *Store) All(dataset string) ([]json.RawMessage, error) {
	dir := filepath.Join(s.root, sanitize(dataset))
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoint dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || reservedNames[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]json.RawMessage, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil || !json.Valid(data) {
			logger.Warn("Skipping unreadable checkpoint record",
				zap.String("dataset", dataset),
				zap.String("file", name),
			)
			continue
		}
		records = append(records, json.RawMessage(data))
	}
	return records, nil
}

// Clear removes every per-question checkpoint for a dataset and returns the
// count removed. Report files survive clearing.
func (s *Store) Clear(dataset string) (int, error) {
	dir := filepath.Join(s.root, sanitize(dataset))
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to list checkpoint dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || reservedNames[name] {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, fmt.Errorf("failed to remove checkpoint record: %w", err)
		}
		removed++
	}
	return removed, nil
}

func (s *Store) path(dataset, key string) (string, error) {
	path := filepath.Join(s.root, sanitize(dataset), sanitize(key)+".json")
	// Sanitization should make escape impossible; verify anyway so a bad
	// key fails loudly instead of writing outside the root.
	if !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s/%s", ErrUnsafeKey, dataset, key)
	}
	return path, nil
}

// sanitize maps an arbitrary key component onto the filename-safe alphabet.
func sanitize(name string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
	safe = unsafeChars.ReplaceAllString(safe, "_")
	if safe == "" {
		safe = "_"
	}
	return safe
}
