package handlers

import (
	"net/http"

	"toolkeeper/internal/caching"
	"toolkeeper/internal/services"

	"github.com/labstack/echo/v4"
)

// MaintenanceHandlers exposes operator tooling: on-demand snapshots, snapshot
// management and a cache flush.
type MaintenanceHandlers struct {
	backupService services.BackupService
	cacheService  caching.CacheService
}

func NewMaintenanceHandlers(backupService services.BackupService, cacheService caching.CacheService) *MaintenanceHandlers {
	return &MaintenanceHandlers{backupService: backupService, cacheService: cacheService}
}

// CreateSnapshot handles POST /snapshots
func (h *MaintenanceHandlers) CreateSnapshot(c echo.Context) error {
	object, err := h.backupService.SnapshotInventory(c.Request().Context())
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"object": object})
}

// ListSnapshots handles GET /snapshots
func (h *MaintenanceHandlers) ListSnapshots(c echo.Context) error {
	objects, err := h.backupService.ListSnapshots(c.Request().Context())
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"objects": objects})
}

// GetSnapshotURL handles GET /snapshots/download-url?object=...
func (h *MaintenanceHandlers) GetSnapshotURL(c echo.Context) error {
	object := c.QueryParam("object")
	if object == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Object name is required")
	}
	url, err := h.backupService.SnapshotDownloadURL(c.Request().Context(), object)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"object": object, "url": url})
}

// DeleteSnapshot handles DELETE /snapshots?object=...
func (h *MaintenanceHandlers) DeleteSnapshot(c echo.Context) error {
	object := c.QueryParam("object")
	if object == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Object name is required")
	}
	if err := h.backupService.DeleteSnapshot(c.Request().Context(), object); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// FlushCache handles POST /cache/flush. Useful after out-of-band data fixes;
// the cache refills on the next reads.
func (h *MaintenanceHandlers) FlushCache(c echo.Context) error {
	if err := h.cacheService.InvalidateAll(c.Request().Context()); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
