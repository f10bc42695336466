// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/skylens-build/skylens/lib/clock"
	"github.com/skylens-build/skylens/lib/codec"
)

// entryVersion is bumped when the envelope layout changes; entries
// with another version read as misses.
const entryVersion = 1

const fileSuffix = ".cbor.zst"

// Key addresses a cache entry. Build one with NewKey from every input
// that influences the cached value.
type Key struct {
	sum [32]byte
}

// NewKey derives a key from the given parts. Parts are
// length-prefixed before hashing, so ("ab", "c") and ("a", "bc")
// produce different keys.
func NewKey(parts ...string) Key {
	hasher := blake3.New()
	var length [8]byte
	for _, part := range parts {
		binary.BigEndian.PutUint64(length[:], uint64(len(part)))
		hasher.Write(length[:])
		hasher.Write([]byte(part))
	}
	var key Key
	hasher.Sum(key.sum[:0])
	return key
}

func (k Key) String() string {
	return hex.EncodeToString(k.sum[:])
}

// ParseKey restores a Key from the hex form produced by [Key.String].
// Entries are stored on disk under that form, so a name taken from
// [Cache.Entries] addresses the entry it was listed as.
func ParseKey(text string) (Key, error) {
	var key Key
	raw, err := hex.DecodeString(text)
	if err != nil || len(raw) != len(key.sum) {
		return Key{}, fmt.Errorf("malformed cache key %q", text)
	}
	copy(key.sum[:], raw)
	return key, nil
}

// Options configures a Cache. The zero value is usable: entries live
// under the user cache directory and expire after a week.
type Options struct {
	// Dir is the cache root. Empty means <user cache dir>/skylens.
	Dir string
	// TTL is the maximum entry age. Zero means DefaultTTL; negative
	// disables expiry.
	TTL time.Duration
	// Logger receives hit/miss/corruption events at debug and warn
	// level. nil discards.
	Logger *slog.Logger
	// Clock supplies time for entry ages. nil means the real clock.
	Clock clock.Clock
}

// DefaultTTL bounds how stale a cached bazel-derived value may get.
// Version changes rotate keys by themselves; the TTL catches drift
// the key inputs cannot see, like registry-driven mapping changes.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is an on-disk cache. Writes are atomic, so concurrent
// processes sharing the directory are safe; last write wins.
type Cache struct {
	dir    string
	ttl    time.Duration
	logger *slog.Logger
	clock  clock.Clock
}

// Open prepares the cache directory and returns a Cache.
func Open(options Options) (*Cache, error) {
	dir := options.Dir
	if dir == "" {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("locate user cache dir: %w", err)
		}
		dir = filepath.Join(userCache, "skylens")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	ttl := options.TTL
	switch {
	case ttl == 0:
		ttl = DefaultTTL
	case ttl < 0:
		ttl = 0
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &Cache{dir: dir, ttl: ttl, logger: logger, clock: clk}, nil
}

// Dir returns the cache root directory.
func (c *Cache) Dir() string {
	return c.dir
}

type entry struct {
	Version int              `cbor:"version"`
	Created time.Time        `cbor:"created"`
	Payload codec.RawMessage `cbor:"payload"`
}

// Put stores value under scope and key, replacing any previous entry.
func (c *Cache) Put(scope string, key Key, value any) error {
	if err := checkScope(scope); err != nil {
		return err
	}
	payload, err := codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache payload: %w", err)
	}

	var buf bytes.Buffer
	compressor, err := zstd.NewWriter(&buf)
	if err != nil {
		return fmt.Errorf("open compressor: %w", err)
	}
	encodeErr := codec.NewEncoder(compressor).Encode(entry{
		Version: entryVersion,
		Created: c.clock.Now().UTC(),
		Payload: payload,
	})
	if err := compressor.Close(); err != nil {
		return fmt.Errorf("compress cache entry: %w", err)
	}
	if encodeErr != nil {
		return fmt.Errorf("encode cache entry: %w", encodeErr)
	}

	path := c.entryPath(scope, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache scope dir: %w", err)
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	c.logger.Debug("cache entry stored", "scope", scope, "key", key.String(), "bytes", buf.Len())
	return nil
}

// Get loads the entry for scope and key into value. It reports
// whether a usable entry was found; expired and corrupt entries are
// removed and count as misses.
func (c *Cache) Get(scope string, key Key, value any) (bool, error) {
	if err := checkScope(scope); err != nil {
		return false, err
	}
	path := c.entryPath(scope, key)
	stored, err := c.read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("cache miss", "scope", scope, "key", key.String())
			return false, nil
		}
		c.logger.Warn("discarding unreadable cache entry", "path", path, "error", err)
		c.remove(path)
		return false, nil
	}

	if stored.Version != entryVersion {
		c.logger.Debug("cache entry from another version", "path", path, "version", stored.Version)
		c.remove(path)
		return false, nil
	}
	if c.ttl > 0 && c.clock.Now().Sub(stored.Created) > c.ttl {
		c.logger.Debug("cache entry expired", "path", path, "created", stored.Created)
		c.remove(path)
		return false, nil
	}
	if err := codec.Unmarshal(stored.Payload, value); err != nil {
		c.logger.Warn("discarding undecodable cache entry", "path", path, "error", err)
		c.remove(path)
		return false, nil
	}
	c.logger.Debug("cache hit", "scope", scope, "key", key.String())
	return true, nil
}

// Delete removes the entry for scope and key if present.
func (c *Cache) Delete(scope string, key Key) error {
	if err := checkScope(scope); err != nil {
		return err
	}
	err := os.Remove(c.entryPath(scope, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry in the cache, keeping the root directory.
func (c *Cache) Clear() error {
	children, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("read cache dir: %w", err)
	}
	for _, child := range children {
		if err := os.RemoveAll(filepath.Join(c.dir, child.Name())); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
	}
	return nil
}

// Entry describes one stored cache file.
type Entry struct {
	Scope   string
	Name    string
	Size    int64
	ModTime time.Time
}

// Entries lists the stored cache files, sorted by scope then name.
func (c *Cache) Entries() ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), fileSuffix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		relative, err := filepath.Rel(c.dir, path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{
			Scope:   filepath.ToSlash(filepath.Dir(relative)),
			Name:    strings.TrimSuffix(d.Name(), fileSuffix),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Scope != entries[j].Scope {
			return entries[i].Scope < entries[j].Scope
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Description is a decoded view of one entry, for inspection.
type Description struct {
	Version int
	Created time.Time
	// Payload is the entry payload in CBOR diagnostic notation.
	Payload string
}

// Describe decodes the entry stored as scope/name for inspection.
// Unlike Get, a broken entry is reported as an error here: the caller
// asked about this specific file.
func (c *Cache) Describe(scope, name string) (Description, error) {
	if err := checkScope(scope); err != nil {
		return Description{}, err
	}
	stored, err := c.read(filepath.Join(c.dir, scope, name+fileSuffix))
	if err != nil {
		return Description{}, err
	}
	notation, err := codec.Diagnose(stored.Payload)
	if err != nil {
		return Description{}, fmt.Errorf("render cache payload: %w", err)
	}
	return Description{
		Version: stored.Version,
		Created: stored.Created,
		Payload: notation,
	}, nil
}

func (c *Cache) read(path string) (entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return entry{}, err
	}
	defer file.Close()

	decompressor, err := zstd.NewReader(file)
	if err != nil {
		return entry{}, fmt.Errorf("open decompressor: %w", err)
	}
	defer decompressor.Close()

	var stored entry
	if err := codec.NewDecoder(decompressor).Decode(&stored); err != nil {
		return entry{}, fmt.Errorf("decode cache entry: %w", err)
	}
	return stored, nil
}

func (c *Cache) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("removing cache entry failed", "path", path, "error", err)
	}
}

func (c *Cache) entryPath(scope string, key Key) string {
	return filepath.Join(c.dir, scope, key.String()+fileSuffix)
}

func checkScope(scope string) error {
	if scope == "" || strings.ContainsAny(scope, `/\`) {
		return fmt.Errorf("invalid cache scope %q", scope)
	}
	return nil
}
