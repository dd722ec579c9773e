// Package provider defines the data-provider abstraction: a Provider
// owns one Fetcher per model type, and a Registry routes requests to the
// default provider for a model with ordered fallback.
package provider

import (
	"context"
	"fmt"
	"time"
)

// ProviderCredential describes a credential a provider accepts.
type ProviderCredential struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"`
}

// ProviderInfo is provider metadata.
type ProviderInfo struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Website     string               `json:"website"`
	Credentials []ProviderCredential `json:"credentials"`
	Models      []ModelType          `json:"models"`
}

// Provider is implemented by every upstream data source.
type Provider interface {
	Info() ProviderInfo

	// Init is called once before registration with credential values
	// keyed by ProviderCredential.Name.
	Init(credentials map[string]string) error

	// Fetcher returns nil when the model is unsupported.
	Fetcher(model ModelType) Fetcher

	SupportedModels() []ModelType

	Ping(ctx context.Context) error
}

// QueryParams is the parameter map passed to fetchers.
type QueryParams map[string]string

const (
	ParamSymbol   = "symbol"
	ParamPeriod   = "period"   // Yahoo-style range: 1mo, 3mo, 1y, 5y...
	ParamInterval = "interval" // bar size, default 1d
	ParamDays     = "days"     // CoinGecko lookback in days
	ParamQuery    = "query"
	ParamName     = "name" // display name override
	ParamProvider = "provider"
)

// FetchResult wraps fetched data with provenance.
type FetchResult struct {
	Provider  string    `json:"provider"`
	Model     ModelType `json:"model"`
	Data      any       `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"`
}

// Fetcher fetches a single model type.
type Fetcher interface {
	ModelType() ModelType
	Description() string
	RequiredParams() []string
	OptionalParams() []string
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

// ErrProviderNotFound is returned when a provider name is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrModelNotSupported is returned when a provider lacks a model.
type ErrModelNotSupported struct {
	Provider string
	Model    ModelType
}

func (e *ErrModelNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support model %q", e.Provider, e.Model)
}

// ErrMissingParam is returned when a required parameter is empty.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidCredentials is returned by Init.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}

// ErrNoData is returned when the upstream answered but had nothing usable
// for the symbol.
type ErrNoData struct {
	Provider string
	Symbol   string
	Detail   string
}

func (e *ErrNoData) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: no data for %s: %s", e.Provider, e.Symbol, e.Detail)
	}
	return fmt.Sprintf("%s: no data for %s", e.Provider, e.Symbol)
}

// ValidateParams checks that every required key is present and non-empty.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if v, ok := params[key]; !ok || v == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
