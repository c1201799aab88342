package readthrough

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// New returns a disk cache that stores one file per key in dir, named by
// prefix and the key's sha256.
func New(dir, prefix string) *ReadThrough {
	return &ReadThrough{dir: dir, prefix: prefix}
}

type ReadThrough struct {
	dir, prefix string
}

var ErrMiss = errors.New("cache miss")

// Get returns the cached value for key, or an error wrapping ErrMiss.
func (rt *ReadThrough) Get(key string) ([]byte, error) {
	hash, filename := rt.hashAndFilename(key)

	bs, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cache miss for '%s': %w", hash, ErrMiss)
	} else if err != nil {
		return nil, fmt.Errorf("error reading cache file '%s': %w", hash, err)
	}
	return bs, nil
}

// Put stores value under key. The file is written next to its final name
// and renamed into place, so a crash never leaves a truncated entry behind.
func (rt *ReadThrough) Put(key string, value []byte) error {
	hash, filename := rt.hashAndFilename(key)

	if err := os.MkdirAll(rt.dir, 0755); err != nil {
		return fmt.Errorf("error creating cache dir '%s': %w", rt.dir, err)
	}
	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, value, 0666); err != nil {
		return fmt.Errorf("error writing cache file '%s': %w", hash, err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		return fmt.Errorf("error moving cache file '%s' into place: %w", hash, err)
	}
	return nil
}

func (rt *ReadThrough) hashAndFilename(key string) (string, string) {
	sum := sha256.Sum256([]byte(key))
	hash := hex.EncodeToString(sum[:])
	return hash, filepath.Join(rt.dir, rt.prefix+hash)
}
