package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/uuid"
	"fintrack/internal/validator"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID reads a UUID path parameter in canonical lower-case form.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// bindJSON decodes the request body into req. Validation failures are
// reported per field.
func bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		if fields, ok := validator.FieldErrors(err); ok {
			appErr := apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid input")
			appErr.Fields = fields
			return appErr
		}
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return nil
}

// parseEntryFilter reads the list filters shared by income and expenses.
// searchParam names the free-text query parameter.
func parseEntryFilter(c *gin.Context, searchParam string) (services.EntryFilter, error) {
	filter := services.EntryFilter{Search: c.Query(searchParam), Ordering: c.Query("ordering")}

	intParam := func(name string) (*int, error) {
		raw := c.Query(name)
		if raw == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.WithField(apperrors.ErrInvalidInput, name, "Enter a whole number.")
		}
		return &n, nil
	}
	dateParam := func(name string) (*models.Date, error) {
		raw := c.Query(name)
		if raw == "" {
			return nil, nil
		}
		d, err := models.ParseDate(raw)
		if err != nil {
			return nil, apperrors.WithField(apperrors.ErrInvalidInput, name, "Enter a valid date (YYYY-MM-DD).")
		}
		return &d, nil
	}

	var err error
	if filter.Year, err = intParam("year"); err != nil {
		return filter, err
	}
	if filter.Month, err = intParam("month"); err != nil {
		return filter, err
	}
	if filter.DateFrom, err = dateParam("date_from"); err != nil {
		return filter, err
	}
	if filter.DateTo, err = dateParam("date_to"); err != nil {
		return filter, err
	}
	limit, err := intParam("limit")
	if err != nil {
		return filter, err
	}
	if limit != nil {
		if *limit < 1 {
			return filter, apperrors.WithField(apperrors.ErrInvalidInput, "limit", "Ensure this value is greater than 0.")
		}
		filter.Limit = *limit
	}
	return filter, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, middleware.ErrorBody(appErr))
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, middleware.ErrorBody(apperrors.ErrInternalServer))
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse represents a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
