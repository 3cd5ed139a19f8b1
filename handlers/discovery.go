package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"servora/models"
	"servora/services/discovery"
	"servora/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// searchCacheTTL keeps hot queries cheap without letting results go stale.
const searchCacheTTL = 30 * time.Second

// DiscoveryHandler serves the service and nearby-user search endpoints.
type DiscoveryHandler struct {
	Engine *discovery.Engine
	Cache  *redis.Client
	Logger *zap.Logger
}

// NewDiscoveryHandler creates a DiscoveryHandler.
func NewDiscoveryHandler(engine *discovery.Engine, cache *redis.Client, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{Engine: engine, Cache: cache, Logger: logger}
}

// cacheKey hashes the full query so every filter combination gets its own slot.
func cacheKey(prefix string, q models.SearchQuery) string {
	raw, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// SearchServices handles POST /api/search/services.
func (h *DiscoveryHandler) SearchServices(c *gin.Context) {
	var q models.SearchQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid search query", err.Error())
		return
	}

	key := cacheKey("search:services", q)
	if h.Cache != nil && key != "" {
		if cached, err := h.Cache.Get(context.Background(), key).Result(); err == nil {
			var resp models.ServiceSearchResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				utils.JSONSuccess(c, http.StatusOK, "services found", resp)
				return
			}
		}
	}

	resp, err := h.Engine.SearchServices(c.Request.Context(), q)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "search failed", err.Error())
		return
	}

	if h.Cache != nil && key != "" {
		if raw, err := json.Marshal(resp); err == nil {
			if err := h.Cache.Set(context.Background(), key, raw, searchCacheTTL).Err(); err != nil {
				h.Logger.Warn("search cache write failed", zap.Error(err))
			}
		}
	}
	utils.JSONSuccess(c, http.StatusOK, "services found", resp)
}

// SearchUsers handles POST /api/search/users.
func (h *DiscoveryHandler) SearchUsers(c *gin.Context) {
	var q models.SearchQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid search query", err.Error())
		return
	}

	resp, err := h.Engine.SearchNearbyUsers(c.Request.Context(), q)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "search failed", err.Error())
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "users found", resp)
}
