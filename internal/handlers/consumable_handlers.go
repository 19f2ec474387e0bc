package handlers

import (
	"net/http"
	"strings"

	"toolkeeper/internal/models"
	"toolkeeper/internal/services"

	"github.com/labstack/echo/v4"
)

// ConsumableHandlers handles HTTP requests for the consumable registry.
type ConsumableHandlers struct {
	consumableService services.ConsumableService
}

func NewConsumableHandlers(consumableService services.ConsumableService) *ConsumableHandlers {
	return &ConsumableHandlers{consumableService: consumableService}
}

// consumableResponse adds the derived stock status to the stored fields.
type consumableResponse struct {
	*models.Consumable
	StockStatus models.StockStatus `json:"stock_status"`
}

func toConsumableResponse(c *models.Consumable) consumableResponse {
	return consumableResponse{Consumable: c, StockStatus: c.StockStatus()}
}

func toConsumableResponses(consumables []*models.Consumable) []consumableResponse {
	out := make([]consumableResponse, 0, len(consumables))
	for _, c := range consumables {
		out = append(out, toConsumableResponse(c))
	}
	return out
}

// CreateConsumable handles POST /consumables
func (h *ConsumableHandlers) CreateConsumable(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Barcode     string  `json:"barcode"`
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Location    *string `json:"location"`
		Quantity    int     `json:"quantity"`
		MinQuantity int     `json:"min_quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Barcode) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Barcode is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Consumable name is required")
	}
	if req.Quantity < 0 || req.MinQuantity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Quantities cannot be negative")
	}

	consumable := &models.Consumable{
		Barcode:     strings.TrimSpace(req.Barcode),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
	}
	if err := h.consumableService.CreateConsumable(ctx, consumable); err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toConsumableResponse(consumable))
}

// GetConsumable handles GET /consumables/:barcode
func (h *ConsumableHandlers) GetConsumable(c echo.Context) error {
	consumable, err := h.consumableService.GetConsumable(c.Request().Context(), c.Param("barcode"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toConsumableResponse(consumable))
}

// ListConsumables handles GET /consumables
func (h *ConsumableHandlers) ListConsumables(c echo.Context) error {
	limit, offset := pagination(c)
	consumables, err := h.consumableService.ListConsumables(c.Request().Context(), limit, offset)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toConsumableResponses(consumables))
}

// ListLowStock handles GET /consumables/low-stock
func (h *ConsumableHandlers) ListLowStock(c echo.Context) error {
	consumables, err := h.consumableService.ListBelowMinimum(c.Request().Context())
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toConsumableResponses(consumables))
}

// UpdateConsumable handles PUT /consumables/:barcode
func (h *ConsumableHandlers) UpdateConsumable(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Location    *string `json:"location"`
		MinQuantity int     `json:"min_quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Consumable name is required")
	}

	consumable := &models.Consumable{
		Barcode:     c.Param("barcode"),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		MinQuantity: req.MinQuantity,
	}
	if err := h.consumableService.UpdateConsumable(ctx, consumable); err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, consumable)
}

// RestockConsumable handles POST /consumables/:barcode/restock
func (h *ConsumableHandlers) RestockConsumable(c echo.Context) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := h.consumableService.RestockConsumable(c.Request().Context(), c.Param("barcode"), req.Quantity); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteConsumable handles DELETE /consumables/:barcode
func (h *ConsumableHandlers) DeleteConsumable(c echo.Context) error {
	if err := h.consumableService.DeleteConsumable(c.Request().Context(), c.Param("barcode")); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RestoreConsumable handles POST /trash/consumables/:barcode/restore
func (h *ConsumableHandlers) RestoreConsumable(c echo.Context) error {
	if err := h.consumableService.RestoreConsumable(c.Request().Context(), c.Param("barcode")); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTrashedConsumables handles GET /trash/consumables
func (h *ConsumableHandlers) ListTrashedConsumables(c echo.Context) error {
	limit, offset := pagination(c)
	consumables, err := h.consumableService.ListTrashedConsumables(c.Request().Context(), limit, offset)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toConsumableResponses(consumables))
}

// GetUsageHistory handles GET /consumables/:barcode/history
func (h *ConsumableHandlers) GetUsageHistory(c echo.Context) error {
	limit, offset := pagination(c)
	history, err := h.consumableService.GetUsageHistory(c.Request().Context(), c.Param("barcode"), limit, offset)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, history)
}
