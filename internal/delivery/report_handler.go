package delivery

import (
	"fmt"
	"net/http"
	"strings"

	"pos_service/internal/domain"
	"pos_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the history and analytics screens.
type ReportHandler struct {
	history   usecase.HistoryUseCase
	analytics usecase.AnalyticsUseCase
	log       *logrus.Logger
}

func NewReportHandler(history usecase.HistoryUseCase, analytics usecase.AnalyticsUseCase, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		history:   history,
		analytics: analytics,
		log:       logger,
	}
}

func (h *ReportHandler) RegisterRoutes(router gin.IRouter) {
	transactions := router.Group("/transactions")
	{
		transactions.GET("", h.History)
		transactions.GET("/export", h.Export)
		transactions.GET("/:id", h.GetTransaction)
	}
	router.GET("/analytics", h.Analytics)
}

func (h *ReportHandler) parseRange(c *gin.Context, fallback domain.DateRange) (domain.DateRange, bool) {
	r, err := domain.ParseDateRange(c.Query("range"), fallback)
	if err != nil {
		h.log.Warnf("Invalid range parameter: %v", err)
		FailureResponse(c, err, "Invalid range", nil)
		return "", false
	}
	return r, true
}

func (h *ReportHandler) History(c *gin.Context) {
	r, ok := h.parseRange(c, domain.RangeToday)
	if !ok {
		return
	}
	view := h.history.History(c.Request.Context(), r, c.Query("q"))
	SuccessResponse(c, http.StatusOK, "History retrieved successfully", view)
}

func (h *ReportHandler) GetTransaction(c *gin.Context) {
	id := c.Param("id")
	tx, err := h.history.Get(c.Request.Context(), id)
	if err != nil {
		FailureResponse(c, err, "Failed to retrieve transaction", nil)
		return
	}
	SuccessResponse(c, http.StatusOK, "Transaction retrieved successfully", tx)
}

func (h *ReportHandler) Export(c *gin.Context) {
	r, ok := h.parseRange(c, domain.RangeToday)
	if !ok {
		return
	}
	data, err := h.history.Export(c.Request.Context(), r)
	if err != nil {
		h.log.Errorf("Failed to export history for range %s: %v", r, err)
		FailureResponse(c, err, "Failed to export history", nil)
		return
	}

	filename := fmt.Sprintf("transaksi_%s.xlsx", strings.ToLower(string(r)))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *ReportHandler) Analytics(c *gin.Context) {
	r, ok := h.parseRange(c, domain.RangeWeek)
	if !ok {
		return
	}
	view := h.analytics.Analytics(c.Request.Context(), r)
	SuccessResponse(c, http.StatusOK, "Analytics retrieved successfully", view)
}
