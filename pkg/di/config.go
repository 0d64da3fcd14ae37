package di

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-variant-patients/cache"
	"github.com/goliatone/go-variant-patients/httpsource"
	"github.com/goliatone/go-variant-patients/popup"
	"github.com/goliatone/go-variant-patients/preload"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by LoadConfig.
const EnvPrefix = "PATIENTS"

// Config is everything needed to assemble a popup session.
type Config struct {
	BaseURL        string            `envconfig:"BASE_URL" required:"true"`
	ShortReadPath  string            `envconfig:"SHORT_READ_PATH" default:"/get_patients"`
	LongReadPath   string            `envconfig:"LONG_READ_PATH" default:"/get_patients_longread_ajax"`
	RequestTimeout time.Duration     `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	RetryMax       int               `envconfig:"RETRY_MAX" default:"0"`
	Headers        map[string]string `envconfig:"HEADERS"`

	MinLoadingTime  time.Duration `envconfig:"MIN_LOADING_TIME" default:"500ms"`
	DebounceDelay   time.Duration `envconfig:"DEBOUNCE_DELAY" default:"300ms"`
	WarmConcurrency int           `envconfig:"WARM_CONCURRENCY" default:"4"`

	// CacheCapacity/CacheShards bounds the variants one shard keeps before
	// evicting; see cache.Config.
	CacheCapacity int           `envconfig:"CACHE_CAPACITY" default:"5000"`
	CacheShards   int           `envconfig:"CACHE_SHARDS" default:"16"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"12h"`
	CacheEviction int           `envconfig:"CACHE_EVICTION_PERCENTAGE" default:"10"`
}

// DefaultConfig returns the built-in defaults for a server at baseURL.
func DefaultConfig(baseURL string) Config {
	cc := cache.DefaultConfig()
	return Config{
		BaseURL:         baseURL,
		ShortReadPath:   httpsource.DefaultShortReadPath,
		LongReadPath:    httpsource.DefaultLongReadPath,
		RequestTimeout:  httpsource.DefaultTimeout,
		MinLoadingTime:  preload.DefaultMinLoadingTime,
		DebounceDelay:   popup.DefaultDebounceDelay,
		WarmConcurrency: preload.DefaultWarmConcurrency,
		CacheCapacity:   cc.Capacity,
		CacheShards:     cc.NumShards,
		CacheTTL:        cc.TTL,
		CacheEviction:   cc.EvictionPercentage,
	}
}

// LoadConfig reads PATIENTS_* variables and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the session settings and then the cache settings.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, is.RequestURL),
		validation.Field(&c.ShortReadPath, validation.Required),
		validation.Field(&c.LongReadPath, validation.Required),
		validation.Field(&c.RequestTimeout, validation.Min(time.Millisecond)),
		validation.Field(&c.RetryMax, validation.Min(0)),
		validation.Field(&c.MinLoadingTime, validation.Min(time.Duration(0))),
		validation.Field(&c.DebounceDelay, validation.Min(time.Millisecond)),
		validation.Field(&c.WarmConcurrency, validation.Min(1)),
	)
	if err != nil {
		return err
	}
	return c.Cache().Validate()
}

// Cache returns the cache settings.
func (c Config) Cache() cache.Config {
	cc := cache.DefaultConfig().WithTTL(c.CacheTTL)
	cc.Capacity = c.CacheCapacity
	cc.NumShards = c.CacheShards
	cc.EvictionPercentage = c.CacheEviction
	return cc
}

// HTTP returns the transport settings.
func (c Config) HTTP() httpsource.Config {
	return httpsource.Config{
		BaseURL:       c.BaseURL,
		ShortReadPath: c.ShortReadPath,
		LongReadPath:  c.LongReadPath,
		Timeout:       c.RequestTimeout,
		RetryMax:      c.RetryMax,
		Headers:       c.Headers,
	}
}

// Preload returns the fetcher settings.
func (c Config) Preload() preload.Config {
	return preload.Config{
		MinLoadingTime:  c.MinLoadingTime,
		WarmConcurrency: c.WarmConcurrency,
	}
}

// Popup returns the controller settings.
func (c Config) Popup() popup.Config {
	return popup.Config{DebounceDelay: c.DebounceDelay}
}
