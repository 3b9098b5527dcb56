package contract

// maintaining index keys for listing data that is otherwise only addressable by key

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// all indexes are split into chunks of maxChunkSize entries so no single value grows unbounded
const maxChunkSize = 2500

// chunkCounterKey stores number of chunks for a base index
func chunkCounterKey(base string) string {
	return base + ":chunks"
}

func chunkKey(base string, chunk int) string {
	return base + ":" + strconv.Itoa(chunk)
}

func getChunkCount(st *txState, base string) (int, error) {
	ptr, err := st.Get(chunkCounterKey(base))
	if err != nil {
		return 0, err
	}
	if ptr == nil || *ptr == "" {
		return 0, nil
	}
	return strconv.Atoi(*ptr)
}

func loadChunk(st *txState, key string) ([]string, error) {
	ptr, err := st.Get(key)
	if err != nil {
		return nil, err
	}
	if ptr == nil || *ptr == "" {
		return nil, nil
	}
	var entries []string
	if err := json.Unmarshal([]byte(*ptr), &entries); err != nil {
		return nil, fmt.Errorf("unmarshal index %s: %w", key, err)
	}
	return entries, nil
}

func saveChunk(st *txState, key string, entries []string) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal index %s: %w", key, err)
	}
	st.Set(key, string(b))
	return nil
}

// addToIndex appends entry to the last chunk with room. Insertion order is preserved.
// Callers dedupe before calling; the index itself does not scan for duplicates.
func addToIndex(st *txState, base, entry string) error {
	chunks, err := getChunkCount(st, base)
	if err != nil {
		return err
	}
	if chunks > 0 {
		key := chunkKey(base, chunks-1)
		entries, err := loadChunk(st, key)
		if err != nil {
			return err
		}
		if len(entries) < maxChunkSize {
			return saveChunk(st, key, append(entries, entry))
		}
	}
	// no chunk yet or the last one is full -> create new chunk
	if err := saveChunk(st, chunkKey(base, chunks), []string{entry}); err != nil {
		return err
	}
	st.Set(chunkCounterKey(base), strconv.Itoa(chunks+1))
	return nil
}

// listIndex collects all entries across all chunks.
func listIndex(st *txState, base string) ([]string, error) {
	all := []string{}
	chunks, err := getChunkCount(st, base)
	if err != nil {
		return nil, err
	}
	for i := 0; i < chunks; i++ {
		entries, err := loadChunk(st, chunkKey(base, i))
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}
