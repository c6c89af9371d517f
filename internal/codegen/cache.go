package codegen

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// CacheFile is the name of the digest cache inside the output directory.
const CacheFile = ".blop-cache"

// bump when cachePayload changes shape
const cacheSchema uint16 = 1

type cachePayload struct {
	Schema  uint16
	Digests map[string]string // output base name -> sha256 of its content
}

// Cache remembers the digest of every output written by a previous run.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	path    string
	digests map[string]string
	dirty   bool
}

// OpenCache loads the cache in dir. A missing, unreadable or outdated cache
// file yields an empty cache.
func OpenCache(dir string) *Cache {
	c := &Cache{path: filepath.Join(dir, CacheFile), digests: make(map[string]string)}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return c
	}
	var p cachePayload
	if err := msgpack.Unmarshal(data, &p); err != nil || p.Schema != cacheSchema {
		return c
	}
	for k, v := range p.Digests {
		c.digests[k] = v
	}
	return c
}

// Digest returns the hex sha256 of content.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Fresh reports whether file was last written with digest and still exists.
func (c *Cache) Fresh(file, digest string) bool {
	c.mu.Lock()
	prev, ok := c.digests[filepath.Base(file)]
	c.mu.Unlock()
	if !ok || prev != digest {
		return false
	}
	_, err := os.Stat(file)
	return err == nil
}

// Put records digest for file.
func (c *Cache) Put(file, digest string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := filepath.Base(file)
	if c.digests[key] != digest {
		c.digests[key] = digest
		c.dirty = true
	}
}

// Save writes the cache if anything changed.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	data, err := msgpack.Marshal(&cachePayload{Schema: cacheSchema, Digests: c.digests})
	if err != nil {
		return errors.Wrap(err, "encode generation cache")
	}
	if err := writeAtomic(c.path, data); err != nil {
		return errors.Wrap(err, "write generation cache")
	}
	c.dirty = false
	return nil
}

// writeAtomic writes data next to path and renames it into place.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(f.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
