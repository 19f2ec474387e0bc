package handlers

import (
	"net/http"
	"strings"

	"toolkeeper/internal/models"
	"toolkeeper/internal/services"

	"github.com/labstack/echo/v4"
)

// WorkerHandlers handles HTTP requests for the worker registry.
type WorkerHandlers struct {
	workerService services.WorkerService
}

func NewWorkerHandlers(workerService services.WorkerService) *WorkerHandlers {
	return &WorkerHandlers{workerService: workerService}
}

// CreateWorker handles POST /workers
func (h *WorkerHandlers) CreateWorker(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Barcode    string  `json:"barcode"`
		FirstName  string  `json:"first_name"`
		LastName   string  `json:"last_name"`
		Department *string `json:"department"`
		Email      *string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.Barcode) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Barcode is required")
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "First and last name are required")
	}

	worker := &models.Worker{
		Barcode:    strings.TrimSpace(req.Barcode),
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Department: req.Department,
		Email:      req.Email,
	}
	if err := h.workerService.CreateWorker(ctx, worker); err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, worker)
}

// GetWorker handles GET /workers/:barcode
func (h *WorkerHandlers) GetWorker(c echo.Context) error {
	detail, err := h.workerService.GetWorkerDetail(c.Request().Context(), c.Param("barcode"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

// ListWorkers handles GET /workers
func (h *WorkerHandlers) ListWorkers(c echo.Context) error {
	limit, offset := pagination(c)
	workers, err := h.workerService.ListWorkers(c.Request().Context(), limit, offset)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, workers)
}

// UpdateWorker handles PUT /workers/:barcode
func (h *WorkerHandlers) UpdateWorker(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		FirstName  string  `json:"first_name"`
		LastName   string  `json:"last_name"`
		Department *string `json:"department"`
		Email      *string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "First and last name are required")
	}

	worker := &models.Worker{
		Barcode:    c.Param("barcode"),
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Department: req.Department,
		Email:      req.Email,
	}
	if err := h.workerService.UpdateWorker(ctx, worker); err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, worker)
}

// DeleteWorker handles DELETE /workers/:barcode
func (h *WorkerHandlers) DeleteWorker(c echo.Context) error {
	if err := h.workerService.DeleteWorker(c.Request().Context(), c.Param("barcode")); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RestoreWorker handles POST /trash/workers/:barcode/restore
func (h *WorkerHandlers) RestoreWorker(c echo.Context) error {
	if err := h.workerService.RestoreWorker(c.Request().Context(), c.Param("barcode")); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTrashedWorkers handles GET /trash/workers
func (h *WorkerHandlers) ListTrashedWorkers(c echo.Context) error {
	limit, offset := pagination(c)
	workers, err := h.workerService.ListTrashedWorkers(c.Request().Context(), limit, offset)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, workers)
}

// GetOpenLendings handles GET /workers/:barcode/lendings
func (h *WorkerHandlers) GetOpenLendings(c echo.Context) error {
	lendings, err := h.workerService.GetOpenLendings(c.Request().Context(), c.Param("barcode"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, lendings)
}
