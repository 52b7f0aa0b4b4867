package catalog

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/angelmondragon/atacado-catalog/pkg/db/models"
	pkgerrors "github.com/angelmondragon/atacado-catalog/pkg/errors"
	"github.com/angelmondragon/atacado-catalog/pkg/logger"
	"github.com/angelmondragon/atacado-catalog/pkg/metrics"
)

type ReferenceLister interface {
	ListAll(ctx context.Context) ([]models.Reference, error)
}

type ProductLister interface {
	ListAll(ctx context.Context) ([]models.Product, error)
}

type CategoryLister interface {
	ListAll(ctx context.Context) ([]models.Category, error)
}

// VersionStore shares a data version between API instances so a write on one
// instance makes every other instance reload.
type VersionStore interface {
	SnapshotVersion(ctx context.Context) (int64, error)
	BumpSnapshotVersion(ctx context.Context) (int64, error)
}

// Invalidator is implemented by SnapshotCache; write services depend on it.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// CacheParams wires the snapshot cache. Versions and Metrics are optional.
type CacheParams struct {
	References ReferenceLister
	Products   ProductLister
	Categories CategoryLister
	Versions   VersionStore
	Logger     *logger.Logger
	Metrics    *metrics.CatalogMetrics
}

// SnapshotCache is a read-through cache of the whole catalog. Any write
// calls Invalidate; the next Get reloads all three collections.
type SnapshotCache struct {
	references ReferenceLister
	products   ProductLister
	categories CategoryLister
	versions   VersionStore
	logg       *logger.Logger
	metrics    *metrics.CatalogMetrics

	group singleflight.Group

	mu            sync.RWMutex
	current       *Snapshot
	generation    uint64
	loadedGen     uint64
	remoteVersion int64
}

var _ Invalidator = (*SnapshotCache)(nil)

func NewSnapshotCache(p CacheParams) (*SnapshotCache, error) {
	if p.References == nil {
		return nil, errors.New("reference lister required")
	}
	if p.Products == nil {
		return nil, errors.New("product lister required")
	}
	if p.Categories == nil {
		return nil, errors.New("category lister required")
	}
	if p.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &SnapshotCache{
		references: p.References,
		products:   p.Products,
		categories: p.Categories,
		versions:   p.Versions,
		logg:       p.Logger,
		metrics:    p.Metrics,
	}, nil
}

// Get returns the current snapshot, reloading it first when it is missing,
// invalidated locally, or older than the shared version. When a reload fails
// the previous snapshot is served.
func (c *SnapshotCache) Get(ctx context.Context) (*Snapshot, error) {
	remote, remoteOK := c.readRemoteVersion(ctx)

	c.mu.RLock()
	current := c.current
	gen := c.generation
	fresh := current != nil && c.loadedGen == gen && (!remoteOK || remote == c.remoteVersion)
	c.mu.RUnlock()
	if fresh {
		return current, nil
	}

	// A reload is only shared by readers of the same generation.
	result, err, _ := c.group.Do(reloadKey(gen, remote), func() (any, error) {
		return c.reload(context.WithoutCancel(ctx), gen, remote, remoteOK)
	})
	if err != nil {
		if current != nil {
			c.metrics.ObserveReload(metrics.ReloadResultStale, 0)
			c.logg.Warn(ctx, "catalog.snapshot.reload_failed", err)
			return current, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog unavailable")
	}
	return result.(*Snapshot), nil
}

// Invalidate marks the cached snapshot stale here and, through the version
// store, on every other instance.
func (c *SnapshotCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.generation++
	c.mu.Unlock()

	if c.versions == nil {
		return
	}
	if _, err := c.versions.BumpSnapshotVersion(ctx); err != nil {
		c.logg.Warn(ctx, "catalog.snapshot.version_bump_failed", err)
	}
}

func reloadKey(gen uint64, remote int64) string {
	return strconv.FormatUint(gen, 10) + ":" + strconv.FormatInt(remote, 10)
}

func (c *SnapshotCache) reload(ctx context.Context, gen uint64, remote int64, remoteOK bool) (*Snapshot, error) {
	start := time.Now()
	snap, err := c.load(ctx)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveReload(metrics.ReloadResultError, elapsed)
		return nil, err
	}
	c.metrics.ObserveReload(metrics.ReloadResultOK, elapsed)

	c.mu.Lock()
	if c.current == nil || gen >= c.loadedGen {
		c.current = snap
		c.loadedGen = gen
		if remoteOK {
			c.remoteVersion = remote
		}
	}
	c.mu.Unlock()

	c.logg.Info(c.logg.WithFields(ctx, map[string]any{
		"references":  len(snap.References),
		"products":    len(snap.Products),
		"categories":  len(snap.Categories),
		"duration_ms": elapsed.Milliseconds(),
	}), "catalog.snapshot.reloaded")
	return snap, nil
}

func (c *SnapshotCache) load(ctx context.Context) (*Snapshot, error) {
	refs, err := c.references.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	products, err := c.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := c.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return BuildSnapshot(ctx, c.logg, c.metrics, refs, products, categories), nil
}

func (c *SnapshotCache) readRemoteVersion(ctx context.Context) (int64, bool) {
	if c.versions == nil {
		return 0, false
	}
	version, err := c.versions.SnapshotVersion(ctx)
	if err != nil {
		c.logg.Warn(ctx, "catalog.snapshot.version_read_failed", err)
		return 0, false
	}
	return version, true
}
