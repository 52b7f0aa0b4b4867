package catalog

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/atacado-catalog/pkg/db/models"
	"github.com/angelmondragon/atacado-catalog/pkg/enums"
	"github.com/angelmondragon/atacado-catalog/pkg/logger"
)

func testLogger(w io.Writer) *logger.Logger {
	if w == nil {
		w = io.Discard
	}
	return logger.New(logger.Options{ServiceName: "catalog-test", Output: w})
}

func price(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func ref(id, code string, representative, sacoleira int64, colors ...Color) Reference {
	return Reference{
		ID:                  id,
		Code:                code,
		SizeRange:           enums.SizeRangePToGG,
		PriceRepresentative: price(representative),
		PriceSacoleira:      price(sacoleira),
		Colors:              colors,
	}
}

func refIndex(refs ...Reference) map[string]Reference {
	out := make(map[string]Reference, len(refs))
	for _, r := range refs {
		out[r.ID] = r
	}
	return out
}

var errStoreDown = errors.New("store down")

// fakeStore serves rows to the snapshot cache and counts loads.
type fakeStore struct {
	mu         sync.Mutex
	references []models.Reference
	products   []models.Product
	categories []models.Category
	fail       bool
	loads      int

	// When set, the next references load reads its rows, signals entered
	// and waits for release before returning them.
	entered chan struct{}
	release chan struct{}
}

func (f *fakeStore) holdNextLoad() (entered, release chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entered = make(chan struct{})
	f.release = make(chan struct{})
	return f.entered, f.release
}

func (f *fakeStore) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeStore) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func (f *fakeStore) deleteReference(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.references[:0]
	for _, r := range f.references {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	f.references = kept
}

type fakeReferences struct{ *fakeStore }
type fakeProducts struct{ *fakeStore }
type fakeCategories struct{ *fakeStore }

func (f fakeReferences) ListAll(context.Context) ([]models.Reference, error) {
	f.mu.Lock()
	f.loads++
	if f.fail {
		f.mu.Unlock()
		return nil, errStoreDown
	}
	rows := append([]models.Reference(nil), f.references...)
	entered, release := f.entered, f.release
	f.entered, f.release = nil, nil
	f.mu.Unlock()

	if entered != nil {
		close(entered)
		<-release
	}
	return rows, nil
}

func (f fakeProducts) ListAll(context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Product(nil), f.products...), nil
}

func (f fakeCategories) ListAll(context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Category(nil), f.categories...), nil
}

type fakeVersions struct {
	mu      sync.Mutex
	version int64
	err     error
}

func (f *fakeVersions) SnapshotVersion(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version, f.err
}

func (f *fakeVersions) BumpSnapshotVersion(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.version++
	return f.version, nil
}

func newTestCache(store *fakeStore, versions VersionStore, w io.Writer) *SnapshotCache {
	params := CacheParams{
		References: fakeReferences{store},
		Products:   fakeProducts{store},
		Categories: fakeCategories{store},
		Logger:     testLogger(w),
	}
	if versions != nil {
		params.Versions = versions
	}
	cache, err := NewSnapshotCache(params)
	if err != nil {
		panic(err)
	}
	return cache
}
