// Package cache persists raw runtime metadata keyed by spec version and
// keeps decorated forms of it in memory.
package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/Polkadex-Substrate/go-scale/db"
	"github.com/Polkadex-Substrate/go-scale/db/badgerdb"
	"github.com/Polkadex-Substrate/go-scale/db/memorydb"
	"github.com/Polkadex-Substrate/go-scale/log"
	"github.com/Polkadex-Substrate/go-scale/metadata"
	"github.com/Polkadex-Substrate/go-scale/metadata/decorate"
	"github.com/Polkadex-Substrate/go-scale/registry"
	"github.com/minio/sha256-simd"
)

var (
	ErrNotFound      = errors.New("metadata not cached")
	ErrUnknownDBType = errors.New("unknown db type")
	ErrConflict      = errors.New("spec version already cached with different metadata")
	ErrNegativeKeep  = errors.New("number of versions to keep is negative")
)

var logger = log.NewLogger("cache")

// OpenDB opens the store named by dbType: "memorydb", or "badgerdb" under
// dir.
func OpenDB(dbType, dir string) (db.DB, error) {
	switch dbType {
	case "memorydb":
		return memorydb.NewDB(), nil
	case "badgerdb":
		return badgerdb.NewDB(dir)
	}
	return nil, fmt.Errorf("%q: %w", dbType, ErrUnknownDBType)
}

// Cache stores metadata blobs and type bundles. Decorated metadata is built
// on first use, each version in a registry of its own.
type Cache struct {
	db db.DB

	// writeMu orders the read-check-write sequences of Put, Delete and Prune.
	writeMu sync.Mutex

	mu        sync.Mutex
	decorated map[uint32]*decorate.Decorated
}

func New(database db.DB) *Cache {
	logger.Debug().Str("db", database.Type()).Msg("open metadata cache")
	return &Cache{
		db:        database,
		decorated: make(map[uint32]*decorate.Decorated),
	}
}

func versionKey(specVersion uint32) []byte {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, specVersion)
	return key
}

// Digest is the content hash used to detect duplicate uploads.
func Digest(raw []byte) [32]byte {
	return sha256.Sum256(raw)
}

// Put validates raw as metadata and stores it for specVersion. Storing the
// same bytes twice is a no-op; different bytes for a cached version fail
// with ErrConflict.
func (c *Cache) Put(specVersion uint32, raw []byte) ([32]byte, error) {
	digest := Digest(raw)
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	existing, found, err := c.db.Get(db.NamespaceMetadata, versionKey(specVersion))
	if err != nil {
		return digest, err
	}
	if found {
		if bytes.Equal(existing, raw) {
			logger.Debug().Uint32("specVersion", specVersion).Hex("digest", digest[:]).Msg("metadata already cached")
			return digest, nil
		}
		return digest, fmt.Errorf("spec version %d: %w", specVersion, ErrConflict)
	}
	md, err := metadata.Decode(registry.New(), raw)
	if err != nil {
		return digest, err
	}

	tx := c.db.NewTx()
	if err := tx.Set(db.NamespaceMetadata, versionKey(specVersion), raw); err != nil {
		tx.Discard()
		return digest, err
	}
	if err := tx.Set(db.NamespaceMetadataDigest, digest[:], versionKey(specVersion)); err != nil {
		tx.Discard()
		return digest, err
	}
	if err := tx.Commit(); err != nil {
		return digest, err
	}
	logger.Info().Uint32("specVersion", specVersion).Int("version", md.Version()).Int("bytes", len(raw)).
		Hex("digest", digest[:]).Msg("cached metadata")
	return digest, nil
}

// Get returns the raw metadata of specVersion.
func (c *Cache) Get(specVersion uint32) ([]byte, error) {
	raw, found, err := c.db.Get(db.NamespaceMetadata, versionKey(specVersion))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("spec version %d: %w", specVersion, ErrNotFound)
	}
	return raw, nil
}

// VersionOf returns the spec version stored under a digest.
func (c *Cache) VersionOf(digest [32]byte) (uint32, error) {
	v, found, err := c.db.Get(db.NamespaceMetadataDigest, digest[:])
	if err != nil {
		return 0, err
	}
	if !found || len(v) != 4 {
		return 0, fmt.Errorf("digest %x: %w", digest, ErrNotFound)
	}
	return binary.BigEndian.Uint32(v), nil
}

// Versions lists the cached spec versions in ascending order.
func (c *Cache) Versions() ([]uint32, error) {
	start, end := db.NamespaceRange(db.NamespaceMetadata)
	iter := c.db.Iterator(start, end)
	defer iter.Close()

	var out []uint32
	for ; iter.Valid(); iter.Next() {
		key, err := iter.Key()
		if err != nil {
			return nil, err
		}
		key = db.TrimNamespace(db.NamespaceMetadata, key)
		if len(key) != 4 {
			continue
		}
		out = append(out, binary.BigEndian.Uint32(key))
	}
	return out, nil
}

// Delete removes specVersion and drops its decorated form.
func (c *Cache) Delete(specVersion uint32) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	raw, err := c.Get(specVersion)
	if err != nil {
		return err
	}
	return c.deleteAll(map[uint32][]byte{specVersion: raw})
}

// Prune keeps the newest keep versions and deletes the rest.
func (c *Cache) Prune(keep int) ([]uint32, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep %d: %w", keep, ErrNegativeKeep)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	versions, err := c.Versions()
	if err != nil {
		return nil, err
	}
	if len(versions) <= keep {
		return nil, nil
	}
	removed := versions[:len(versions)-keep]
	blobs := make(map[uint32][]byte, len(removed))
	for _, v := range removed {
		if blobs[v], err = c.Get(v); err != nil {
			return nil, err
		}
	}
	if err := c.deleteAll(blobs); err != nil {
		return nil, err
	}
	return removed, nil
}

func (c *Cache) deleteAll(blobs map[uint32][]byte) error {
	bulk := c.db.NewBulk()
	for v, raw := range blobs {
		digest := Digest(raw)
		if err := bulk.Delete(db.NamespaceMetadata, versionKey(v)); err != nil {
			bulk.DiscardLast()
			return err
		}
		// identical blobs may be cached under several versions
		if owner, err := c.VersionOf(digest); err != nil || owner != v {
			continue
		}
		if err := bulk.Delete(db.NamespaceMetadataDigest, digest[:]); err != nil {
			bulk.DiscardLast()
			return err
		}
	}
	if err := bulk.Flush(); err != nil {
		return err
	}

	c.mu.Lock()
	for v := range blobs {
		delete(c.decorated, v)
	}
	c.mu.Unlock()
	logger.Info().Int("count", len(blobs)).Msg("deleted cached metadata")
	return nil
}

// PutTypes stores a YAML type bundle that every registry built by the cache
// loads.
func (c *Cache) PutTypes(name string, bundle []byte) error {
	if err := registry.New().LoadYAML(bytes.NewReader(bundle)); err != nil {
		return fmt.Errorf("type bundle %s: %w", name, err)
	}
	return c.db.Set(db.NamespaceTypes, []byte(name), bundle)
}

// DeleteTypes removes a stored type bundle. Decorated metadata built
// earlier keeps the types it was built with.
func (c *Cache) DeleteTypes(name string) error {
	_, found, err := c.db.Get(db.NamespaceTypes, []byte(name))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("type bundle %s: %w", name, ErrNotFound)
	}
	return c.db.Delete(db.NamespaceTypes, []byte(name))
}

// Registry returns a new registry with every stored type bundle loaded, in
// name order.
func (c *Cache) Registry() (*registry.Registry, error) {
	reg := registry.New()
	start, end := db.NamespaceRange(db.NamespaceTypes)
	iter := c.db.Iterator(start, end)
	defer iter.Close()

	for ; iter.Valid(); iter.Next() {
		key, err := iter.Key()
		if err != nil {
			return nil, err
		}
		bundle, err := iter.Value()
		if err != nil {
			return nil, err
		}
		if err := reg.LoadYAML(bytes.NewReader(bundle)); err != nil {
			return nil, fmt.Errorf("type bundle %s: %w", db.TrimNamespace(db.NamespaceTypes, key), err)
		}
	}
	return reg, nil
}

// Decorated returns the decorated metadata of specVersion, building it on
// first use.
func (c *Cache) Decorated(specVersion uint32) (*decorate.Decorated, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.decorated[specVersion]; ok {
		return d, nil
	}
	raw, err := c.Get(specVersion)
	if err != nil {
		return nil, err
	}
	reg, err := c.Registry()
	if err != nil {
		return nil, err
	}
	md, err := metadata.Decode(reg, raw)
	if err != nil {
		return nil, err
	}
	d, err := decorate.New(reg, md)
	if err != nil {
		return nil, err
	}
	c.decorated[specVersion] = d
	return d, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
