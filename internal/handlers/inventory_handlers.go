package handlers

import (
	"net/http"
	"strings"

	"toolkeeper/internal/models"
	"toolkeeper/internal/services"

	"github.com/labstack/echo/v4"
)

// InventoryHandlers exposes the lending and consumption operations. All of
// them delegate to the inventory core service; this layer only shapes
// requests and responses.
type InventoryHandlers struct {
	inventoryService services.InventoryService
}

func NewInventoryHandlers(inventoryService services.InventoryService) *InventoryHandlers {
	return &InventoryHandlers{inventoryService: inventoryService}
}

// LendTool handles POST /lendings
func (h *InventoryHandlers) LendTool(c echo.Context) error {
	var req struct {
		ToolBarcode   string `json:"tool_barcode"`
		WorkerBarcode string `json:"worker_barcode"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.ToolBarcode) == "" || strings.TrimSpace(req.WorkerBarcode) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tool and worker barcodes are required")
	}

	lending, err := h.inventoryService.LendTool(c.Request().Context(), strings.TrimSpace(req.ToolBarcode), strings.TrimSpace(req.WorkerBarcode))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, lending)
}

// ReturnTool handles POST /returns
func (h *InventoryHandlers) ReturnTool(c echo.Context) error {
	var req struct {
		ToolBarcode   string  `json:"tool_barcode"`
		WorkerBarcode *string `json:"worker_barcode"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.ToolBarcode) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tool barcode is required")
	}

	lending, err := h.inventoryService.ReturnTool(c.Request().Context(), strings.TrimSpace(req.ToolBarcode), req.WorkerBarcode)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, lending)
}

// MarkDefective handles POST /tools/:barcode/defective
func (h *InventoryHandlers) MarkDefective(c echo.Context) error {
	tool, err := h.inventoryService.MarkDefective(c.Request().Context(), c.Param("barcode"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, tool)
}

// MarkAvailable handles POST /tools/:barcode/available
func (h *InventoryHandlers) MarkAvailable(c echo.Context) error {
	tool, err := h.inventoryService.MarkAvailable(c.Request().Context(), c.Param("barcode"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, tool)
}

// WithdrawConsumable handles POST /withdrawals
func (h *InventoryHandlers) WithdrawConsumable(c echo.Context) error {
	var req struct {
		ConsumableBarcode string  `json:"consumable_barcode"`
		WorkerBarcode     *string `json:"worker_barcode"`
		Quantity          int     `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.ConsumableBarcode) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Consumable barcode is required")
	}

	usage, err := h.inventoryService.WithdrawConsumable(c.Request().Context(), strings.TrimSpace(req.ConsumableBarcode), req.WorkerBarcode, req.Quantity)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, usage)
}

// UpdateBarcode handles POST /barcodes/rename
func (h *InventoryHandlers) UpdateBarcode(c echo.Context) error {
	var req struct {
		OldBarcode string `json:"old_barcode"`
		NewBarcode string `json:"new_barcode"`
		ItemType   string `json:"item_type"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	itemType := models.ItemType(req.ItemType)
	if !itemType.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Item type must be tool, consumable or worker")
	}
	if strings.TrimSpace(req.OldBarcode) == "" || strings.TrimSpace(req.NewBarcode) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Old and new barcodes are required")
	}

	err := h.inventoryService.UpdateBarcode(c.Request().Context(), strings.TrimSpace(req.OldBarcode), strings.TrimSpace(req.NewBarcode), itemType)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
