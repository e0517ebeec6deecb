package storage

import (
	"compress/gzip"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arrakis/arrakis-server-go/internal/game"
)

const (
	archiveExt     = ".arrakis"
	archiveVersion = 1
)

// archiveHeader precedes the config and entries in an archive.
type archiveHeader struct {
	MatchID    string
	SavedAt    time.Time
	Version    int
	EntryCount int
}

// FileStore keeps one gzip-compressed gob archive per match in a directory.
type FileStore struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+archiveExt)
}

// SaveMatch writes the archive to a temporary file and renames it into place.
func (s *FileStore) SaveMatch(_ context.Context, id string, log game.MatchLog) error {
	if err := checkID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, id+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeArchive(tmp, id, log); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		return fmt.Errorf("failed to replace archive: %w", err)
	}

	s.logger.Debug("saved match archive",
		zap.String("match_id", id),
		zap.Int("entries", len(log.Entries)),
	)
	return nil
}

func writeArchive(f *os.File, id string, log game.MatchLog) error {
	zw := gzip.NewWriter(f)
	enc := gob.NewEncoder(zw)

	header := archiveHeader{
		MatchID:    id,
		SavedAt:    time.Now().UTC(),
		Version:    archiveVersion,
		EntryCount: len(log.Entries),
	}
	if err := enc.Encode(&header); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if err := enc.Encode(&log.Config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	for i := range log.Entries {
		if err := enc.Encode(&log.Entries[i]); err != nil {
			return fmt.Errorf("failed to encode entry %d: %w", i, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush archive: %w", err)
	}
	return nil
}

// LoadMatch reads the archive stored for id.
func (s *FileStore) LoadMatch(_ context.Context, id string) (game.MatchLog, error) {
	if err := checkID(id); err != nil {
		return game.MatchLog{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return game.MatchLog{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return game.MatchLog{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return game.MatchLog{}, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer zr.Close()
	dec := gob.NewDecoder(zr)

	var header archiveHeader
	if err := dec.Decode(&header); err != nil {
		return game.MatchLog{}, fmt.Errorf("failed to decode header: %w", err)
	}
	if header.Version != archiveVersion {
		return game.MatchLog{}, fmt.Errorf("unsupported archive version: %d", header.Version)
	}
	if header.MatchID != id {
		return game.MatchLog{}, fmt.Errorf("archive %s holds match %s", id, header.MatchID)
	}

	var log game.MatchLog
	if err := dec.Decode(&log.Config); err != nil {
		return game.MatchLog{}, fmt.Errorf("failed to decode config: %w", err)
	}
	log.Entries = make([]game.Entry, header.EntryCount)
	for i := range log.Entries {
		if err := dec.Decode(&log.Entries[i]); err != nil {
			return game.MatchLog{}, fmt.Errorf("failed to decode entry %d: %w", i, err)
		}
	}
	return log, nil
}

// ListMatches returns the ids of archived matches, sorted.
func (s *FileStore) ListMatches(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var ids []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), archiveExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(f.Name(), archiveExt))
	}
	slices.Sort(ids)
	return ids, nil
}

// DeleteMatch removes the archive for id.
func (s *FileStore) DeleteMatch(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
