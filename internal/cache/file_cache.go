package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceVersion pins a cached value to the state of the file it was derived from.
type SourceVersion struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	ModTime int64  `json:"mod_time_ns"`
}

// StatSource reads the current version of a source file.
func StatSource(path string) (SourceVersion, error) {
	info, err := os.Stat(path)
	if err != nil {
		return SourceVersion{}, err
	}
	if info.IsDir() {
		return SourceVersion{}, fmt.Errorf("%s is a directory", path)
	}
	return SourceVersion{Path: path, Size: info.Size(), ModTime: info.ModTime().UnixNano()}, nil
}

type Entry[T any] struct {
	Data     T             `json:"data"`
	Source   SourceVersion `json:"source"`
	StoredAt time.Time     `json:"stored_at"`
	Checksum string        `json:"checksum"`
}

// Service is a read-through cache of values computed from one source file each.
type Service[T any] interface {
	Key(params ...any) string
	GetOrCompute(key, sourcePath string, compute func() (T, bool)) (T, bool, error)
}

// FileCache stores one JSON entry per key under a directory. An entry is served
// only while its checksum matches and the source file still has the recorded
// size and modification time.
type FileCache[T any] struct {
	dir string
}

func NewFileCache[T any](dir string) *FileCache[T] {
	return &FileCache[T]{dir: dir}
}

func (fc *FileCache[T]) Key(params ...any) string {
	parts := make([]string, len(params))
	for i, param := range params {
		parts[i] = fmt.Sprintf("%v", param)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// GetOrCompute returns the entry stored for key when it still matches the source
// file, otherwise it calls compute. The computed value is stored only when compute
// reports it as cacheable. hit tells whether compute was skipped. The only error is
// a source file that cannot be stat'ed.
func (fc *FileCache[T]) GetOrCompute(key, sourcePath string, compute func() (T, bool)) (data T, hit bool, err error) {
	version, err := StatSource(sourcePath)
	if err != nil {
		return data, false, err
	}

	if cached, ok := fc.lookup(key, version); ok {
		return cached, true, nil
	}

	data, cacheable := compute()
	if cacheable {
		if err := fc.store(key, version, data); err != nil {
			fmt.Printf("Failed to cache %s: %v\n", sourcePath, err)
		}
	}
	return data, false, nil
}

func (fc *FileCache[T]) entryPath(key string) string {
	return filepath.Join(fc.dir, key+".json")
}

func (fc *FileCache[T]) lookup(key string, version SourceVersion) (T, bool) {
	var zero T

	raw, err := os.ReadFile(fc.entryPath(key))
	if err != nil {
		return zero, false
	}

	var entry Entry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		return zero, false
	}
	if entry.Source != version {
		return zero, false
	}
	if entry.Checksum != checksum(entry.Data, entry.Source) {
		return zero, false
	}

	return entry.Data, true
}

func (fc *FileCache[T]) store(key string, version SourceVersion, data T) error {
	if err := os.MkdirAll(fc.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	raw, err := json.Marshal(Entry[T]{
		Data:     data,
		Source:   version,
		StoredAt: time.Now().UTC(),
		Checksum: checksum(data, version),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	path := fc.entryPath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	// readers never see a half-written entry
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp cache file: %w", err)
	}
	return nil
}

func checksum[T any](data T, version SourceVersion) string {
	raw, _ := json.Marshal(struct {
		Data   T             `json:"data"`
		Source SourceVersion `json:"source"`
	}{data, version})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
