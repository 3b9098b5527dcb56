package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// FileState is a map that is flushed to a JSON snapshot after every write.
// Keys are hex encoded in the file because most of them are binary.
type FileState struct {
	mu       sync.RWMutex
	db       map[string]string
	filename string
}

// OpenFileState loads filename if it exists and starts empty otherwise.
func OpenFileState(filename string) (*FileState, error) {
	f := &FileState{db: make(map[string]string), filename: filename}
	if err := f.loadFromFile(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *FileState) Get(_ context.Context, key string) (*string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	val, ok := f.db[key]
	if !ok {
		return nil, nil
	}
	return &val, nil
}

func (f *FileState) Set(ctx context.Context, key, value string) error {
	return f.Apply(ctx, []Mutation{{Key: key, Value: &value}})
}

func (f *FileState) Delete(ctx context.Context, key string) error {
	return f.Apply(ctx, []Mutation{{Key: key}})
}

// Apply writes the next snapshot first and only swaps the in-memory map once the file is on disk.
func (f *FileState) Apply(_ context.Context, muts []Mutation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := maps.Clone(f.db)
	applyToMap(next, muts)
	if err := f.saveToFile(next); err != nil {
		return err
	}
	f.db = next
	return nil
}

// saveToFile writes the full map to a temp file and renames it over the snapshot.
func (f *FileState) saveToFile(db map[string]string) error {
	enc := make(map[string]string, len(db))
	for k, v := range db {
		enc[hex.EncodeToString([]byte(k))] = hex.EncodeToString([]byte(v))
	}
	data, err := json.MarshalIndent(enc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.filename), filepath.Base(f.filename)+".*")
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), f.filename)
}

func (f *FileState) loadFromFile() error {
	data, err := os.ReadFile(f.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read snapshot: %w", err)
	}
	var enc map[string]string
	if err := json.Unmarshal(data, &enc); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", f.filename, err)
	}
	for k, v := range enc {
		kb, err := hex.DecodeString(k)
		if err != nil {
			return fmt.Errorf("decode snapshot key: %w", err)
		}
		vb, err := hex.DecodeString(v)
		if err != nil {
			return fmt.Errorf("decode snapshot value: %w", err)
		}
		f.db[string(kb)] = string(vb)
	}
	return nil
}
