package project

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// diskCacheSchemaVersion is bumped whenever DiskPayload's shape changes, so
// a stale cache from an older build is ignored rather than misread.
const diskCacheSchemaVersion uint16 = 1

// Digest is a file's content hash, used both as the cache key and as the
// staleness check recorded inside the payload itself.
type Digest [sha256.Size]byte

// HashFile returns the sha256 digest of path's contents.
func HashFile(path string) (Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, err
	}
	return sha256.Sum256(data), nil
}

// DiskCache persists per-file inference results across runs, keyed by each
// source file's content hash: a file whose bytes haven't changed since the
// last run has an identical Digest, so its signatures never need
// re-inferring. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// SignaturePayload is one cached global's resolved type, keyed by its
// spelled (not interned) name so it survives across runs whose Interner
// assigns different IDs.
type SignaturePayload struct {
	Name string
	Kind uint8 // infer.SignatureKind
	Repr string // a human-readable rendering of the resolved Ty, for display/diffing only
}

// DiskPayload is one file's cached inference output.
type DiskPayload struct {
	Schema     uint16
	FilePath   string
	ContentHash Digest
	Signatures []SignaturePayload
	Broken     bool
}

// OpenDiskCache initializes a disk cache under the user's cache directory
// (or XDG_CACHE_HOME), creating it if absent.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "files", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and atomically writes payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload, reporting false (no error) when no
// entry exists for key yet or the cached schema version is stale.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll removes every cached entry, used after a schema bump.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(c.dir)
}
