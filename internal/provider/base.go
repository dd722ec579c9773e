package provider

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/seenimoa/stonks/internal/infra"
)

// BaseFetcher gives concrete fetchers caching and rate limiting.
type BaseFetcher struct {
	model       ModelType
	description string
	required    []string
	optional    []string
	cache       *infra.Cache
	limiter     *infra.RateLimiter
}

var cacheTTLOverride atomic.Int64

// SetCacheTTL makes fetchers created afterwards cache for d instead of
// their own TTL. Zero restores the per-fetcher TTLs.
func SetCacheTTL(d time.Duration) { cacheTTLOverride.Store(int64(d)) }

// NewBaseFetcher uses a 5 minute cache and 10 requests per second.
func NewBaseFetcher(model ModelType, desc string, required, optional []string) BaseFetcher {
	return NewBaseFetcherWithOpts(model, desc, required, optional, 5*time.Minute, 10, time.Second)
}

// NewBaseFetcherWithOpts sets the cache TTL and allows rateLimit requests
// per rateWindow.
func NewBaseFetcherWithOpts(model ModelType, desc string, required, optional []string, cacheTTL time.Duration, rateLimit int, rateWindow time.Duration) BaseFetcher {
	if d := time.Duration(cacheTTLOverride.Load()); d > 0 {
		cacheTTL = d
	}
	return BaseFetcher{
		model:       model,
		description: desc,
		required:    required,
		optional:    optional,
		cache:       infra.NewCache(cacheTTL),
		limiter:     infra.NewRateLimiter(rateLimit, rateWindow),
	}
}

func (b *BaseFetcher) ModelType() ModelType     { return b.model }
func (b *BaseFetcher) Description() string      { return b.description }
func (b *BaseFetcher) RequiredParams() []string { return b.required }
func (b *BaseFetcher) OptionalParams() []string { return b.optional }

func (b *BaseFetcher) CacheTTL() time.Duration { return b.cache.TTL() }

func (b *BaseFetcher) CacheGet(key string) (any, bool) { return b.cache.Get(key) }
func (b *BaseFetcher) CacheSet(key string, value any) { b.cache.Set(key, value) }

// RateLimit waits for a request slot.
func (b *BaseFetcher) RateLimit(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// Cached runs load on a cache miss and stores a successful result. The
// returned FetchResult is marked Cached on a hit.
func (b *BaseFetcher) Cached(ctx context.Context, params QueryParams, load func(ctx context.Context) (any, error)) (*FetchResult, error) {
	key := CacheKey(b.model, params)
	if v, ok := b.cache.Get(key); ok {
		return &FetchResult{Data: v, FetchedAt: time.Now(), Cached: true}, nil
	}
	if err := b.RateLimit(ctx); err != nil {
		return nil, err
	}
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	b.cache.Set(key, v)
	return &FetchResult{Data: v, FetchedAt: time.Now()}, nil
}

// CacheKey builds a deterministic key from the model and params. The
// provider override is excluded so fallbacks share entries.
func CacheKey(model ModelType, params QueryParams) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == ParamProvider {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(string(model))
	for _, k := range keys {
		sb.WriteString(":" + k + "=" + params[k])
	}
	return sb.String()
}

// BaseProvider implements the bookkeeping half of Provider.
type BaseProvider struct {
	info        ProviderInfo
	fetchers    map[ModelType]Fetcher
	credentials map[string]string
}

func NewBaseProvider(name, description, website string, creds []ProviderCredential) BaseProvider {
	return BaseProvider{
		info: ProviderInfo{
			Name:        name,
			Description: description,
			Website:     website,
			Credentials: creds,
		},
		fetchers:    make(map[ModelType]Fetcher),
		credentials: make(map[string]string),
	}
}

func (bp *BaseProvider) Info() ProviderInfo { return bp.info }

// Init checks required credentials and stores all of them.
func (bp *BaseProvider) Init(credentials map[string]string) error {
	for _, cred := range bp.info.Credentials {
		if !cred.Required {
			continue
		}
		if credentials[cred.Name] == "" {
			return &ErrInvalidCredentials{
				Provider: bp.info.Name,
				Detail:   "missing required credential: " + cred.Name,
			}
		}
	}
	if credentials == nil {
		credentials = make(map[string]string)
	}
	bp.credentials = credentials
	return nil
}

func (bp *BaseProvider) Fetcher(model ModelType) Fetcher {
	return bp.fetchers[model]
}

// SupportedModels is sorted for stable output.
func (bp *BaseProvider) SupportedModels() []ModelType {
	models := make([]ModelType, 0, len(bp.fetchers))
	for m := range bp.fetchers {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
	return models
}

func (bp *BaseProvider) Ping(ctx context.Context) error {
	return nil
}

// RegisterFetcher adds or replaces the fetcher for its model.
func (bp *BaseProvider) RegisterFetcher(f Fetcher) {
	bp.fetchers[f.ModelType()] = f
	bp.info.Models = bp.SupportedModels()
}

// Credential returns a stored credential value.
func (bp *BaseProvider) Credential(name string) string {
	return bp.credentials[name]
}
