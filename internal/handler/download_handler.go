package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meetcrm/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DownloadHandler struct {
	exports *service.ExportService
	logger  *zap.Logger
}

func NewDownloadHandler(exports *service.ExportService, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{exports: exports, logger: logger}
}

func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := time.Parse("2006-01-02", c.Query("startDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startDate, want YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse("2006-01-02", c.Query("endDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endDate, want YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	// Make the end bound inclusive of the whole day.
	return start, end.Add(24*time.Hour - time.Nanosecond), true
}

func attachmentHeaders(c *gin.Context, contentType, filename string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func (h *DownloadHandler) MeetsCSV(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	attachmentHeaders(c, "text/csv; charset=utf-8", "meets.csv")
	if err := h.exports.MeetsCSV(c.Request.Context(), start, end, c.Writer); err != nil {
		h.logger.Error("Failed to export meets csv", zap.Error(err))
	}
}

func (h *DownloadHandler) LecturesCSV(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	attachmentHeaders(c, "text/csv; charset=utf-8", "lectures.csv")
	if err := h.exports.LecturesCSV(c.Request.Context(), start, end, c.Writer); err != nil {
		h.logger.Error("Failed to export lectures csv", zap.Error(err))
	}
}

func (h *DownloadHandler) MeetsXLSX(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	r, err := h.exports.MeetsXLSX(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("Failed to export meets xlsx", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export meets"})
		return
	}

	attachmentHeaders(c, xlsxContentType, "meets.xlsx")
	if _, err := io.Copy(c.Writer, r); err != nil {
		h.logger.Error("Failed to write meets xlsx", zap.Error(err))
	}
}

func (h *DownloadHandler) LecturesXLSX(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	r, err := h.exports.LecturesXLSX(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("Failed to export lectures xlsx", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export lectures"})
		return
	}

	attachmentHeaders(c, xlsxContentType, "lectures.xlsx")
	if _, err := io.Copy(c.Writer, r); err != nil {
		h.logger.Error("Failed to write lectures xlsx", zap.Error(err))
	}
}
