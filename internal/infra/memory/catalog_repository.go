package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"flag-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches the country catalog from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]string, error)
}

const catalogKey = "catalog"

// CatalogRepository caches the catalog with TTL to avoid repeated DB hits.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu        sync.RWMutex
	countries []string
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetCatalog returns a copy of the cached catalog, loading it on miss or expiry.
func (r *CatalogRepository) GetCatalog(ctx context.Context) ([]string, error) {
	if countries, ok := r.cached(r.clock()); ok {
		return countries, nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		now := r.clock()
		if countries, ok := r.cached(now); ok {
			return countries, nil
		}

		countries, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		countries, err = domain.NormalizeCatalog(countries)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.countries = countries
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return append([]string(nil), countries...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), result.([]string)...), nil
}

func (r *CatalogRepository) cached(now time.Time) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.countries == nil || !r.expiresAt.After(now) {
		return nil, false
	}
	return append([]string(nil), r.countries...), true
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader serves a fixed catalog (the compiled-in default, tests, demos).
type StaticCatalogLoader struct {
	countries []string
}

func NewStaticCatalogLoader(countries []string) *StaticCatalogLoader {
	return &StaticCatalogLoader{countries: countries}
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context) ([]string, error) {
	if len(l.countries) == 0 {
		return nil, domain.ErrCatalogNotFound
	}
	return append([]string(nil), l.countries...), nil
}
