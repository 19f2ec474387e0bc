package handlers

import (
	"net/http"
	"strings"

	"toolkeeper/internal/models"
	"toolkeeper/internal/services"

	"github.com/labstack/echo/v4"
)

// ToolHandlers handles HTTP requests for the tool registry.
type ToolHandlers struct {
	toolService services.ToolService
}

func NewToolHandlers(toolService services.ToolService) *ToolHandlers {
	return &ToolHandlers{toolService: toolService}
}

// CreateTool handles POST /tools
func (h *ToolHandlers) CreateTool(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Barcode     string  `json:"barcode"`
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Location    *string `json:"location"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Barcode) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Barcode is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tool name is required")
	}

	tool := &models.Tool{
		Barcode:     strings.TrimSpace(req.Barcode),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
	}
	if err := h.toolService.CreateTool(ctx, tool); err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, tool)
}

// GetTool handles GET /tools/:barcode
func (h *ToolHandlers) GetTool(c echo.Context) error {
	tool, err := h.toolService.GetTool(c.Request().Context(), c.Param("barcode"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, tool)
}

// ListTools handles GET /tools
func (h *ToolHandlers) ListTools(c echo.Context) error {
	limit, offset := pagination(c)
	tools, err := h.toolService.ListTools(c.Request().Context(), limit, offset)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, tools)
}

// UpdateTool handles PUT /tools/:barcode
func (h *ToolHandlers) UpdateTool(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Location    *string `json:"location"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tool name is required")
	}

	tool := &models.Tool{
		Barcode:     c.Param("barcode"),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
	}
	if err := h.toolService.UpdateTool(ctx, tool); err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, tool)
}

// DeleteTool handles DELETE /tools/:barcode (moves the tool to the trash)
func (h *ToolHandlers) DeleteTool(c echo.Context) error {
	if err := h.toolService.DeleteTool(c.Request().Context(), c.Param("barcode")); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RestoreTool handles POST /trash/tools/:barcode/restore
func (h *ToolHandlers) RestoreTool(c echo.Context) error {
	if err := h.toolService.RestoreTool(c.Request().Context(), c.Param("barcode")); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTrashedTools handles GET /trash/tools
func (h *ToolHandlers) ListTrashedTools(c echo.Context) error {
	limit, offset := pagination(c)
	tools, err := h.toolService.ListTrashedTools(c.Request().Context(), limit, offset)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, tools)
}

// GetLendingHistory handles GET /tools/:barcode/history
func (h *ToolHandlers) GetLendingHistory(c echo.Context) error {
	limit, offset := pagination(c)
	history, err := h.toolService.GetLendingHistory(c.Request().Context(), c.Param("barcode"), limit, offset)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, history)
}
