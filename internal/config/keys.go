package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name     string       `json:"name"`
	EnvVar   string       `json:"env_var"`
	Source   APIKeySource `json:"source"`
	IsSet    bool         `json:"is_set"`
	Masked   string       `json:"masked,omitempty"` // e.g., "abc...xyz"
	Fallback string       `json:"fallback,omitempty"`
}

// CheckAPIKeys returns the status of every provider key.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	td := checkKey("Twelve Data API Key", cfg.Providers.TwelveDataKey, "TWELVE_DATA_KEY")
	if !td.IsSet {
		td.Fallback = "demo key, then Yahoo Finance"
	}
	fred := checkKey("FRED API Key", cfg.Providers.FREDKey, "FRED_API_KEY")
	if !fred.IsSet {
		fred.Fallback = "public fredgraph CSV"
	}
	return []KeyStatus{td, fred}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value, envVar string) KeyStatus {
	status := KeyStatus{
		Name:   name,
		EnvVar: envVar,
		IsSet:  value != "",
		Source: KeySourceNone,
	}
	if value != "" {
		if os.Getenv(envVar) != "" {
			status.Source = KeySourceEnv
		} else {
			status.Source = KeySourceConfig
		}
		status.Masked = maskKey(value)
	}
	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
