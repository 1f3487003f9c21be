package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/penzflow/penzflow-sales-service/internal/config"
	"github.com/penzflow/penzflow-sales-service/internal/logging"
	"github.com/penzflow/penzflow-sales-service/internal/models"
)

const (
	productKeyPrefix = "catalog:product:"
	defaultCacheTTL  = 10 * time.Minute
)

// NewRedisClient builds a client from the service configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisProductCache keeps catalog entries as JSON under catalog:product:<id>.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

func NewRedisProductCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisProductCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisProductCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func productKey(id int64) string {
	return productKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *RedisProductCache) Get(ctx context.Context, id int64) (*models.Product, error) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss", logging.Fields{"product_id": id})
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Cache get error", logging.Fields{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		// An undecodable entry would shadow the catalog until it expires.
		if delErr := c.client.Del(ctx, productKey(id)).Err(); delErr != nil {
			c.logger.Warn("Failed to evict corrupt cache entry", logging.Fields{
				"product_id": id,
				"error":      delErr.Error(),
			})
		}
		return nil, fmt.Errorf("decode cached product %d: %w", id, err)
	}

	c.logger.Debug("Cache hit", logging.Fields{"product_id": id})
	return &product, nil
}

func (c *RedisProductCache) Set(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, productKey(product.ID), data, c.ttl).Err(); err != nil {
		c.logger.Error("Cache set error", logging.Fields{
			"product_id": product.ID,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

func (c *RedisProductCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// CacheRecorder observes cache lookups.
type CacheRecorder interface {
	CacheLookup(cache string, hit bool)
}

// CachedProductCatalog reads products through the cache. Cache failures are
// logged and fall through to the repository; they never fail a lookup.
type CachedProductCatalog struct {
	repo     ProductRepository
	cache    ProductCache
	recorder CacheRecorder
	logger   *logging.Logger
}

func NewCachedProductCatalog(repo ProductRepository, cache ProductCache, recorder CacheRecorder, logger *logging.Logger) *CachedProductCatalog {
	return &CachedProductCatalog{
		repo:     repo,
		cache:    cache,
		recorder: recorder,
		logger:   logger,
	}
}

func (c *CachedProductCatalog) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	cached, err := c.cache.Get(ctx, id)
	if err != nil {
		c.logger.Warn("Catalog cache unavailable", logging.Fields{
			"product_id": id,
			"error":      err.Error(),
		})
	}
	if cached != nil {
		c.record(true)
		return cached, nil
	}
	c.record(false)

	product, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, product); err != nil {
		c.logger.Warn("Failed to cache product", logging.Fields{
			"product_id": id,
			"error":      err.Error(),
		})
	}
	return product, nil
}

func (c *CachedProductCatalog) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return c.repo.GetBySKU(ctx, sku)
}

func (c *CachedProductCatalog) List(ctx context.Context, filter *models.ProductListFilter) ([]*models.Product, error) {
	return c.repo.List(ctx, filter)
}

func (c *CachedProductCatalog) record(hit bool) {
	if c.recorder != nil {
		c.recorder.CacheLookup("catalog", hit)
	}
}
