package config

import (
	"encoding/json"
	"net/http"

	coreConfig "financial_forecast/pkg/core/config"
)

// Response is the effective configuration exposed to clients.
type Response struct {
	Engine       coreConfig.EngineConfig  `json:"engine"`
	Report       coreConfig.ReportConfig  `json:"report"`
	Logging      coreConfig.LoggingConfig `json:"logging"`
	CacheEnabled bool                     `json:"cache_enabled"`
	CacheTTL     int                      `json:"cache_ttl_seconds"`
	StoreBackend string                   `json:"store_backend"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Config       *coreConfig.Config
	CacheEnabled bool
	StoreBackend string
}

// NewHandler creates a new config handler
func NewHandler(cfg *coreConfig.Config, cacheEnabled bool, storeBackend string) *Handler {
	return &Handler{
		Config:       cfg,
		CacheEnabled: cacheEnabled,
		StoreBackend: storeBackend,
	}
}

// HandleConfig reports the engine settings in effect. Secrets such as the
// database URL are never included.
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := Response{
		Engine:       h.Config.Engine,
		Report:       h.Config.Report,
		Logging:      h.Config.Logging,
		CacheEnabled: h.CacheEnabled,
		CacheTTL:     h.Config.Cache.TTLSeconds,
		StoreBackend: h.StoreBackend,
	}
	data, err := json.Marshal(resp)
	if err != nil {
		coreConfig.LogError(coreConfig.GetLogger(), "api.config", "HandleConfig", "encode response", nil, err)
		http.Error(w, "failed to encode config", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
