package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/SscSPs/ledger_sync/internal/dto"
	"github.com/SscSPs/ledger_sync/internal/middleware"
)

type referenceCacheHandler struct {
	cacheService portssvc.ReferenceCacheSvc
	realmID      string
}

// RegisterReferenceCacheRoutes registers the reference cache routes on rg.
func RegisterReferenceCacheRoutes(rg *gin.RouterGroup, svc portssvc.ReferenceCacheSvc, realmID string) {
	h := &referenceCacheHandler{cacheService: svc, realmID: realmID}
	rg.POST("/reference-cache/refresh", h.refreshReferenceCache)
}

// refreshReferenceCache godoc
// @Summary Rebuild the reference cache
// @Description Reloads every account, customer, vendor and location of the realm from the remote ledger. The previous contents stay in place if any listing fails.
// @Tags reference-cache
// @Produce  json
// @Success 200 {object} dto.CacheRefreshResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Remote ledger failure"
// @Failure 504 {object} map[string]string "Remote ledger timeout"
// @Security BearerAuth
// @Router /reference-cache/refresh [post]
func (h *referenceCacheHandler) refreshReferenceCache(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	stats, err := h.cacheService.RefreshReferenceCache(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to refresh reference cache", nil)
		return
	}

	logger.Info("Reference cache refreshed via API", slog.Int("accounts", stats.Accounts))
	c.JSON(http.StatusOK, dto.CacheRefreshResponse{
		RealmID:   h.realmID,
		Accounts:  stats.Accounts,
		Customers: stats.Customers,
		Vendors:   stats.Vendors,
		Locations: stats.Locations,
	})
}
