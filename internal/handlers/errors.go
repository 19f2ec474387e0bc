package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"toolkeeper/internal/models"

	"github.com/labstack/echo/v4"
)

// domainHTTPError translates service errors into HTTP errors. Anything not
// recognized is a 500 with a generic message; the detail lands in the
// response only for known domain errors.
func domainHTTPError(err error) error {
	var alreadyLent *models.AlreadyLentError
	var wrongHolder *models.WrongHolderError
	var insufficient *models.InsufficientStockError

	switch {
	case errors.Is(err, models.ErrToolNotFound),
		errors.Is(err, models.ErrConsumableNotFound),
		errors.Is(err, models.ErrWorkerNotFound),
		errors.Is(err, models.ErrSnapshotNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidQuantity):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrDuplicateBarcode),
		errors.Is(err, models.ErrBarcodeInUse),
		errors.Is(err, models.ErrNotCurrentlyLent),
		errors.Is(err, models.ErrToolDefective),
		errors.Is(err, models.ErrToolCurrentlyLent),
		errors.Is(err, models.ErrHasOpenLending):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &alreadyLent):
		return echo.NewHTTPError(http.StatusConflict, map[string]string{
			"message":        alreadyLent.Error(),
			"holder_barcode": alreadyLent.HolderBarcode,
		})
	case errors.As(err, &wrongHolder):
		return echo.NewHTTPError(http.StatusConflict, map[string]string{
			"message":        wrongHolder.Error(),
			"actual_holder":  wrongHolder.ActualHolder,
			"claimed_holder": wrongHolder.ClaimedHolder,
		})
	case errors.As(err, &insufficient):
		return echo.NewHTTPError(http.StatusConflict, map[string]any{
			"message":   insufficient.Error(),
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// pagination reads limit/offset query parameters with sane bounds.
func pagination(c echo.Context) (limit, offset int) {
	limit = defaultPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
