package redis

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"flag-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches the country catalog from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]string, error)
}

// CatalogKey holds the cached catalog as a Redis list, in catalog order:
// RPUSH flagquiz:catalog Estonia France ...
const CatalogKey = "flagquiz:catalog"

// CatalogRepository caches the country catalog in Redis and falls back to a loader on cache miss.
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context) ([]string, error) {
	countries, err := r.client.LRange(ctx, CatalogKey, 0, -1).Result()
	if err == nil && len(countries) > 0 {
		return domain.NormalizeCatalog(countries)
	}

	result, err, _ := r.sf.Do(CatalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		countries, err := r.client.LRange(ctx, CatalogKey, 0, -1).Result()
		if err == nil && len(countries) > 0 {
			return domain.NormalizeCatalog(countries)
		}

		countries, err = r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		countries, err = domain.NormalizeCatalog(countries)
		if err != nil {
			return nil, err
		}

		values := make([]interface{}, len(countries))
		for i, c := range countries {
			values[i] = c
		}
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, CatalogKey)
		pipe.RPush(ctx, CatalogKey, values...)
		if ttl := r.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, CatalogKey, ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			log.Warn().Err(err).Msg("cache country catalog")
		}
		return countries, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), result.([]string)...), nil
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
