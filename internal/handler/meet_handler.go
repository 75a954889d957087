package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"meetcrm/internal/model"
	"meetcrm/internal/repository"
	"meetcrm/internal/service"
)

type MeetHandler struct {
	meets  *service.MeetService
	logger *zap.Logger
}

func NewMeetHandler(meets *service.MeetService, logger *zap.Logger) *MeetHandler {
	return &MeetHandler{meets: meets, logger: logger}
}

type meetRequest struct {
	EventName    *string    `json:"eventName"`
	CustomerName *string    `json:"customerName"`
	Email        *string    `json:"email"`
	Phone        *string    `json:"phone"`
	Location     *string    `json:"location"`
	Platform     *string    `json:"platform"`
	Devices      *string    `json:"devices"`
	URL          *string    `json:"url"`
	Status       *string    `json:"status"`
	Description  *string    `json:"description"`
	AdminID      *uuid.UUID `json:"adminId"`
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
}

func parseMeetStatus(s string) (model.MeetStatus, bool) {
	switch st := model.MeetStatus(s); st {
	case model.MeetStatusNew, model.MeetStatusPending, model.MeetStatusCompleted:
		return st, true
	}
	return "", false
}

func (h *MeetHandler) Create(c *gin.Context) {
	var req meetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := &model.Meet{
		EventName:    req.EventName,
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Location:     req.Location,
		Platform:     req.Platform,
		Devices:      req.Devices,
		URL:          req.URL,
		Description:  req.Description,
		AdminID:      req.AdminID,
		Start:        req.Start,
		End:          req.End,
	}
	if req.Status != nil {
		status, ok := parseMeetStatus(*req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		m.Status = status
	}

	created, err := h.meets.Create(c.Request.Context(), m)
	if err != nil {
		h.logger.Error("Failed to create meet", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create meet"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *MeetHandler) List(c *gin.Context) {
	page, limit := pageParams(c)

	var f repository.MeetFilter
	if s := c.Query("status"); s != "" {
		status, ok := parseMeetStatus(s)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		f.Status = &status
	}
	f.SortBy = c.Query("sortBy")
	f.Order = c.Query("order")

	meets, pagination, err := h.meets.FindAll(c.Request.Context(), f, page, limit)
	if err != nil {
		h.logger.Error("Failed to list meets", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list meets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": meets, "pagination": pagination})
}

func (h *MeetHandler) Search(c *gin.Context) {
	term := c.Query("searchTerm")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "searchTerm required"})
		return
	}
	page, limit := pageParams(c)

	meets, pagination, err := h.meets.Search(c.Request.Context(), term, page, limit)
	if err != nil {
		h.logger.Error("Failed to search meets", zap.String("term", term), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search meets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": meets, "pagination": pagination})
}

func (h *MeetHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meet id"})
		return
	}

	var req meetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := repository.MeetUpdate{
		EventName:    req.EventName,
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Location:     req.Location,
		Platform:     req.Platform,
		Devices:      req.Devices,
		URL:          req.URL,
		Description:  req.Description,
		AdminID:      req.AdminID,
		Start:        req.Start,
		End:          req.End,
	}
	if req.Status != nil {
		status, ok := parseMeetStatus(*req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		upd.Status = &status
	}

	m, err := h.meets.Update(c.Request.Context(), id, upd)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "meet not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to update meet", zap.String("meet_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update meet"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MeetHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meet id"})
		return
	}

	err = h.meets.Delete(c.Request.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "meet not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete meet", zap.String("meet_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete meet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	return page, limit
}
