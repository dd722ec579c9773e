package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry is a thread-safe set of providers with a per-model priority
// list. The first provider registered for a model becomes its default.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	modelIdx  map[ModelType][]string // model → provider names, priority order
	defaults  map[ModelType]string
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		modelIdx:  make(map[ModelType][]string),
		defaults:  make(map[ModelType]string),
	}
}

// Register adds p. Call Init first. Re-registering a name replaces it.
func (r *Registry) Register(p Provider) error {
	info := p.Info()
	if info.Name == "" {
		return errors.New("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[info.Name] = p
	for _, model := range p.SupportedModels() {
		names := r.modelIdx[model]
		if !containsName(names, info.Name) {
			r.modelIdx[model] = append(names, info.Name)
		}
		if _, ok := r.defaults[model]; !ok {
			r.defaults[model] = info.Name
		}
	}
	return nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Unregister removes a provider and repairs defaults.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.providers, name)
	for model, names := range r.modelIdx {
		filtered := names[:0]
		for _, n := range names {
			if n != name {
				filtered = append(filtered, n)
			}
		}
		if len(filtered) == 0 {
			delete(r.modelIdx, model)
			delete(r.defaults, model)
			continue
		}
		r.modelIdx[model] = filtered
		if r.defaults[model] == name {
			r.defaults[model] = filtered[0]
		}
	}
}

func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// List returns provider info sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ProvidersFor returns provider names for model in priority order.
func (r *Registry) ProvidersFor(model ModelType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.modelIdx[model]...)
}

func (r *Registry) DefaultProvider(model ModelType) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.defaults[model]
	return name, ok
}

// SetDefault makes providerName the default for model.
func (r *Registry) SetDefault(model ModelType, providerName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[providerName]
	if !ok {
		return &ErrProviderNotFound{Name: providerName}
	}
	if p.Fetcher(model) == nil {
		return &ErrModelNotSupported{Provider: providerName, Model: model}
	}
	r.defaults[model] = providerName
	return nil
}

// Fetch routes to params[ParamProvider], or the model default when unset.
func (r *Registry) Fetch(ctx context.Context, model ModelType, params QueryParams) (*FetchResult, error) {
	providerName := params[ParamProvider]

	r.mu.RLock()
	if providerName == "" {
		providerName = r.defaults[model]
	}
	p, ok := r.providers[providerName]
	r.mu.RUnlock()

	if !ok || providerName == "" {
		return nil, &ErrProviderNotFound{Name: providerName}
	}

	fetcher := p.Fetcher(model)
	if fetcher == nil {
		return nil, &ErrModelNotSupported{Provider: providerName, Model: model}
	}
	if err := ValidateParams(params, fetcher.RequiredParams()); err != nil {
		return nil, err
	}

	result, err := fetcher.Fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("provider %q fetch %s: %w", providerName, model, err)
	}

	result.Provider = providerName
	result.Model = model
	if result.FetchedAt.IsZero() {
		result.FetchedAt = time.Now()
	}
	return result, nil
}

// FetchWithFallback tries the requested (or default) provider and then
// every other provider for the model in priority order. Missing-parameter
// errors are not retried. All failures are joined in the returned error.
func (r *Registry) FetchWithFallback(ctx context.Context, model ModelType, params QueryParams) (*FetchResult, error) {
	first := params[ParamProvider]
	if first == "" {
		first, _ = r.DefaultProvider(model)
	}

	result, err := r.Fetch(ctx, model, params)
	if err == nil {
		return result, nil
	}
	var missing *ErrMissingParam
	if errors.As(err, &missing) {
		return nil, err
	}
	errs := []error{err}

	for _, name := range r.ProvidersFor(model) {
		if name == first {
			continue
		}
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		fallback := make(QueryParams, len(params)+1)
		for k, v := range params {
			fallback[k] = v
		}
		fallback[ParamProvider] = name

		result, err = r.Fetch(ctx, model, fallback)
		if err == nil {
			return result, nil
		}
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("all providers failed for model %s: %w", model, errors.Join(errs...))
}

// ModelCoverage maps each model to its providers.
func (r *Registry) ModelCoverage() map[ModelType][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coverage := make(map[ModelType][]string, len(r.modelIdx))
	for model, names := range r.modelIdx {
		coverage[model] = append([]string(nil), names...)
	}
	return coverage
}

// Data extracts a typed payload from a result.
func Data[T any](res *FetchResult) (T, error) {
	var zero T
	if res == nil {
		return zero, errors.New("nil fetch result")
	}
	v, ok := res.Data.(T)
	if !ok {
		return zero, fmt.Errorf("provider %q returned %T for %s, want %T", res.Provider, res.Data, res.Model, zero)
	}
	return v, nil
}

var global = NewRegistry()

// Global returns the process-wide registry.
func Global() *Registry {
	return global
}
