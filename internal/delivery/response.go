package delivery

import (
	"errors"
	"net/http"

	"pos_service/internal/domain"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Kind    string      `json:"Kind,omitempty"`
	Data    interface{} `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

// FailureResponse reports err with its kind and, when given, the data that
// was still produced.
func FailureResponse(c *gin.Context, err error, message string, data interface{}) {
	c.JSON(mapErrorToStatus(err), Response{
		Status:  "Fail",
		Message: message + ": " + err.Error(),
		Kind:    domain.KindOf(err).String(),
		Data:    data,
	})
}

func mapErrorToStatus(err error) int {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}
	switch domainErr.Kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindPersistenceFailed, domain.KindRenderFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
