// Package extractcache provides a persistent, content-addressed record of
// which BOLT file entries have already been written to a given output
// tree, so repeat extractions of the same archive can skip redundant
// disk writes. The cache is a pure write-avoidance layer: a miss, a
// corrupt record, or the cache being disabled entirely never changes
// what gets decoded or written, only whether the write is skipped.
package extractcache

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble/v2"
	"github.com/dgryski/go-tinylfu"
)

// Cache wraps an on-disk pebble store keyed by (archive fingerprint, path
// hash) with a small in-memory tinylfu layer in front of it, since a
// single run revisits the same archive fingerprint for every entry.
type Cache struct {
	db  *pebble.DB
	hot *tinylfu.T[hotKey, uint64]
}

type hotKey struct {
	fingerprint uint64
	pathHash    uint64
}

const hotCacheSize = 4096

// Open opens (creating if necessary) a pebble store rooted at dir.
func Open(dir string) (*Cache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("extractcache: open %s: %w", dir, err)
	}
	return &Cache{
		db:  db,
		hot: tinylfu.New[hotKey, uint64](hotCacheSize, hotCacheSize*10, hashHotKey),
	}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Seen reports whether path in the archive identified by fingerprint was
// already written with exactly this content on a previous run. A false
// result (including any internal error) means the caller should write
// the entry as normal; Seen never causes a correctness-affecting
// decision on its own, only a skipped disk write.
func (c *Cache) Seen(fingerprint uint64, path string, content []byte) bool {
	key := hotKey{fingerprint, xxhash.Sum64String(path)}
	want := xxhash.Sum64(content)

	if got, ok := c.hot.Get(key); ok {
		return got == want
	}

	val, closer, err := c.db.Get(encodeKey(key))
	if err != nil {
		return false
	}
	defer closer.Close()
	if len(val) != 8 {
		return false
	}
	got := binary.BigEndian.Uint64(val)
	c.hot.Add(key, got)
	return got == want
}

// Record notes that path under fingerprint was just written with the
// given content, so a future Seen call can skip it.
func (c *Cache) Record(fingerprint uint64, path string, content []byte) error {
	key := hotKey{fingerprint, xxhash.Sum64String(path)}
	sum := xxhash.Sum64(content)
	c.hot.Add(key, sum)

	var val [8]byte
	binary.BigEndian.PutUint64(val[:], sum)
	return c.db.Set(encodeKey(key), val[:], pebble.NoSync)
}

func encodeKey(k hotKey) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[0:8], k.fingerprint)
	binary.BigEndian.PutUint64(buf[8:16], k.pathHash)
	return buf
}

func hashHotKey(k hotKey) uint64 {
	return k.fingerprint ^ (k.pathHash*0x9E3779B97F4A7C15 + 1)
}

// Fingerprint derives a stable identifier for an archive buffer, used as
// the cache's outer key so unrelated archives (or a changed input file)
// never collide.
func Fingerprint(buf []byte) uint64 {
	return xxhash.Sum64(buf)
}
