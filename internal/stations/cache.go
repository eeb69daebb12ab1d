package stations

import (
	"context"
	"log"
	"sync"
)

// SnapshotStore keeps decoded collections keyed by directory signature so
// that a parse can be reused across processes.
type SnapshotStore interface {
	SaveCollection(ctx context.Context, coll *DatasetCollection) error
	LoadCollection(ctx context.Context, signature string) (*DatasetCollection, error)
}

// Cache holds the collection loaded from one data directory. It reloads when
// the directory signature changes or on Reload.
type Cache struct {
	loader *Loader
	dir    string
	store  SnapshotStore

	mu   sync.Mutex
	coll *DatasetCollection
}

// NewCache creates a cache over dir. store may be nil.
func NewCache(loader *Loader, dir string, store SnapshotStore) *Cache {
	return &Cache{
		loader: loader,
		dir:    dir,
		store:  store,
	}
}

// Get returns the current collection, reloading it first if the directory
// changed. When reloading fails the previous collection is returned.
func (c *Cache) Get(ctx context.Context) (*DatasetCollection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	coll, _, err := c.refreshLocked(ctx)
	return coll, err
}

// Refresh reloads the collection if the directory signature changed and
// reports whether a new collection is now in place.
func (c *Cache) Refresh(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, changed, err := c.refreshLocked(ctx)
	return changed, err
}

// Reload forces a fresh parse of the data directory, bypassing the snapshot
// store.
func (c *Cache) Reload(ctx context.Context) (*DatasetCollection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	coll, err := c.loader.LoadDir(c.dir)
	if err != nil {
		if c.coll != nil {
			log.Printf("ERROR: cache: reload of %s failed, keeping generation %s: %v", c.dir, c.coll.Generation, err)
			return c.coll, err
		}
		return nil, err
	}
	c.coll = coll
	c.save(ctx, coll)
	return coll, nil
}

func (c *Cache) refreshLocked(ctx context.Context) (*DatasetCollection, bool, error) {
	sig, err := c.loader.Signature(c.dir)
	if err != nil {
		if c.coll != nil {
			log.Printf("WARN: cache: cannot read signature of %s, serving cached data: %v", c.dir, err)
			return c.coll, false, nil
		}
		return nil, false, err
	}

	if c.coll != nil && c.coll.Signature == sig {
		return c.coll, false, nil
	}

	if coll := c.fromStore(ctx, sig); coll != nil {
		c.coll = coll
		return coll, true, nil
	}

	coll, err := c.loader.LoadDir(c.dir)
	if err != nil {
		if c.coll != nil {
			log.Printf("ERROR: cache: load of %s failed, keeping generation %s: %v", c.dir, c.coll.Generation, err)
			return c.coll, false, nil
		}
		return nil, false, err
	}

	c.coll = coll
	c.save(ctx, coll)
	return coll, true, nil
}

func (c *Cache) fromStore(ctx context.Context, sig string) *DatasetCollection {
	if c.store == nil {
		return nil
	}
	coll, err := c.store.LoadCollection(ctx, sig)
	if err != nil {
		log.Printf("INFO: cache: no stored snapshot for signature %.12s: %v", sig, err)
		return nil
	}
	log.Printf("INFO: cache: using stored snapshot generation %s", coll.Generation)
	return coll
}

func (c *Cache) save(ctx context.Context, coll *DatasetCollection) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveCollection(ctx, coll); err != nil {
		log.Printf("WARN: cache: failed to store snapshot %s: %v", coll.Generation, err)
	}
}
