package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopmap/internal/logger"
	"shopmap/internal/service"
	"shopmap/internal/store"
	"shopmap/pkg/location"
)

// UserIDHeader carries the signed-in user's id. Requests without it work on
// the local record file.
const UserIDHeader = "X-User-ID"

var errBadUserID = errors.New("invalid " + UserIDHeader + " header")

type Response struct {
	Data any `json:"data,omitempty"`
}

type ErrorResponse struct {
	Error   string             `json:"error"`
	Details []ValidationDetail `json:"details,omitempty"`
}

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// userID returns the caller's id, uuid.Nil for anonymous requests.
func userID(c *gin.Context) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.GetHeader(UserIDHeader))
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errBadUserID
	}
	return id, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", service.ErrInvalidInput, name)
	}
	return v, nil
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Data: data})
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Data: data})
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *BaseHandler) Error(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{Error: message})
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, message)
}

// ValidationError reports binding failures. Validator errors are listed per
// field; anything else (malformed JSON, bad form values) is a plain 400.
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		h.BadRequest(c, err.Error())
		return
	}
	details := make([]ValidationDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, ValidationDetail{Field: fe.Namespace(), Message: validationMessage(fe)})
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "request validation failed", Details: details})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed on the " + fe.Tag() + " rule"
	}
}

// HandleError maps service errors to HTTP responses.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	switch {
	case errors.Is(err, errBadUserID), errors.Is(err, service.ErrInvalidInput):
		h.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		h.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCloudRequired):
		h.Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrUnsupportedImage):
		h.Error(c, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, store.ErrCloudUnavailable),
		errors.Is(err, service.ErrStorageUnavailable),
		errors.Is(err, location.ErrNoAPIKey):
		h.Error(c, http.StatusServiceUnavailable, err.Error())
	default:
		logger.FromGin(c).Error("request failed", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, err.Error())
	}
}
