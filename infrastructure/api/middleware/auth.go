package middleware

import (
	"net/http"
)

// AuthConfig holds API key authentication configuration.
type AuthConfig struct {
	apiKeys map[string]struct{}
	enabled bool
}

// NewAuthConfig creates an AuthConfig with a single API key.
// An empty key disables authentication.
func NewAuthConfig(apiKey string) AuthConfig {
	if apiKey == "" {
		return AuthConfig{}
	}
	return AuthConfig{
		apiKeys: map[string]struct{}{apiKey: {}},
		enabled: true,
	}
}

// NewAuthConfigWithKeys creates an AuthConfig with multiple API keys.
// Empty keys are ignored; no keys disables authentication.
func NewAuthConfigWithKeys(apiKeys []string) AuthConfig {
	keys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys[k] = struct{}{}
		}
	}
	if len(keys) == 0 {
		return AuthConfig{}
	}
	return AuthConfig{
		apiKeys: keys,
		enabled: true,
	}
}

// Enabled returns true if authentication is enabled.
func (c AuthConfig) Enabled() bool { return c.enabled }

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"errors":[{"status":"401","title":"Unauthorized","detail":"` + detail + `"}]}`))
}

func checkKey(config AuthConfig, r *http.Request, w http.ResponseWriter) bool {
	apiKey := r.Header.Get("X-API-KEY")
	if apiKey == "" {
		unauthorized(w, "X-API-KEY header is required")
		return false
	}
	if _, ok := config.apiKeys[apiKey]; !ok {
		unauthorized(w, "Invalid API key")
		return false
	}
	return true
}

// APIKey returns middleware that requires X-API-KEY header authentication on
// every request. If the config has no keys, all requests pass through.
func APIKey(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.enabled {
				next.ServeHTTP(w, r)
				return
			}
			if !checkKey(config, r, w) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteProtect returns middleware that requires X-API-KEY authentication for
// mutating methods (POST, PUT, PATCH, DELETE) and passes reads through.
func WriteProtect(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.enabled {
				next.ServeHTTP(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if !checkKey(config, r, w) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteProtectAuth creates write-protect middleware from a slice of API keys.
func WriteProtectAuth(apiKeys []string) func(http.Handler) http.Handler {
	return WriteProtect(NewAuthConfigWithKeys(apiKeys))
}

// APIKeyAuth creates full auth middleware from a slice of API keys.
func APIKeyAuth(apiKeys []string) func(http.Handler) http.Handler {
	return APIKey(NewAuthConfigWithKeys(apiKeys))
}
