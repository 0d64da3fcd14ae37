package di

import (
	"github.com/benbjohnson/clock"
	"github.com/goliatone/go-variant-patients/cache"
	"github.com/goliatone/go-variant-patients/httpsource"
	"github.com/goliatone/go-variant-patients/popup"
	"github.com/goliatone/go-variant-patients/preload"
	"github.com/goliatone/go-variant-patients/sourcecache"
	"github.com/rs/zerolog"
)

// Container owns the per-session singletons: one cache, one HTTP source and
// one preload fetcher. Popup controllers created from the same container
// share the cache.
type Container struct {
	config        Config
	clock         clock.Clock
	logger        zerolog.Logger
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	client        *httpsource.Client
	store         *sourcecache.CachedSource
	fetcher       *preload.Fetcher
}

// NewContainer validates config and wires the data layer.
func NewContainer(config Config, logger zerolog.Logger) (*Container, error) {
	return NewContainerWithClock(config, clock.New(), logger)
}

// NewContainerWithClock is NewContainer with an injected clock, used by tests.
func NewContainerWithClock(config Config, clk clock.Clock, logger zerolog.Logger) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cacheService, err := cache.NewCacheService(config.Cache())
	if err != nil {
		return nil, err
	}
	keySerializer := cache.NewNamespacedKeySerializer("patients")

	httpConfig := config.HTTP()
	httpConfig.Clock = clk
	client, err := httpsource.New(httpConfig, logger)
	if err != nil {
		return nil, err
	}

	store := sourcecache.New(client, cacheService, keySerializer, logger)
	fetcher := preload.New(store, config.Preload(), clk, logger)

	return &Container{
		config:        config,
		clock:         clk,
		logger:        logger,
		cacheService:  cacheService,
		keySerializer: keySerializer,
		client:        client,
		store:         store,
		fetcher:       fetcher,
	}, nil
}

// NewContainerFromEnv loads PATIENTS_* variables and wires the data layer.
func NewContainerFromEnv(logger zerolog.Logger) (*Container, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewContainer(config, logger)
}

// NewController returns a popup controller rendering into sink.
func (c *Container) NewController(sink popup.RenderSink) *popup.Controller {
	return popup.NewController(c.fetcher, c.store, sink, c.config.Popup(), c.clock, c.logger)
}

// CacheService is the sturdyc-backed service behind the store.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer builds the "patients" namespaced cache keys.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Store is the cached patient source shared by every controller.
func (c *Container) Store() *sourcecache.CachedSource {
	return c.store
}

// Fetcher is the preload fetcher every controller shares.
func (c *Container) Fetcher() *preload.Fetcher {
	return c.fetcher
}

// Client is the HTTP source the store fetches from on a miss.
func (c *Container) Client() *httpsource.Client {
	return c.client
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() Config {
	return c.config
}
