package handler

import (
	"encoding/json"
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

type LectureHandler struct {
	lectures *service.LectureService
	logger   *zap.Logger
}

func NewLectureHandler(lectures *service.LectureService, logger *zap.Logger) *LectureHandler {
	return &LectureHandler{lectures: lectures, logger: logger}
}

type lectureRequest struct {
	Group        *string    `json:"group"`
	Lector       *string    `json:"lector"`
	Platform     *string    `json:"platform"`
	Unit         *string    `json:"unit"`
	Location     *string    `json:"location"`
	URL          *string    `json:"url"`
	StreamKey    *string    `json:"streamKey"`
	Description  *string    `json:"description"`
	AdminID      *uuid.UUID `json:"adminId"`
	Date         *time.Time `json:"date"`
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
	AbnormalTime *string    `json:"abnormalTime"`
}

func (r *lectureRequest) toModel() (*model.Lecture, error) {
	if r.Date == nil {
		return nil, errors.New("date required")
	}
	return &model.Lecture{
		Group:        r.Group,
		Lector:       r.Lector,
		Platform:     r.Platform,
		Unit:         r.Unit,
		Location:     r.Location,
		URL:          r.URL,
		StreamKey:    r.StreamKey,
		Description:  r.Description,
		AdminID:      r.AdminID,
		Date:         *r.Date,
		Start:        r.Start,
		End:          r.End,
		AbnormalTime: r.AbnormalTime,
	}, nil
}

// Create accepts either one lecture object or an array of them, the
// way the schedule importer posts a whole semester at once.
func (h *LectureHandler) Create(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	var reqs []lectureRequest
	if err := json.Unmarshal(body, &reqs); err != nil {
		var single lectureRequest
		if err := json.Unmarshal(body, &single); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lecture payload"})
			return
		}
		reqs = []lectureRequest{single}
	}
	if len(reqs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty lecture payload"})
		return
	}

	lectures := make([]model.Lecture, 0, len(reqs))
	for _, r := range reqs {
		l, err := r.toModel()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		lectures = append(lectures, *l)
	}

	if len(lectures) == 1 {
		created, err := h.lectures.Create(c.Request.Context(), &lectures[0])
		if err != nil {
			h.logger.Error("Failed to create lecture", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create lecture"})
			return
		}
		c.JSON(http.StatusCreated, created)
		return
	}

	created, err := h.lectures.CreateBulk(c.Request.Context(), lectures)
	if err != nil {
		h.logger.Error("Failed to create lectures", zap.Int("count", len(lectures)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create lectures"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *LectureHandler) Dates(c *gin.Context) {
	groups, err := h.lectures.Dates(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list lecture dates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list dates"})
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *LectureHandler) Days(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}
	month := c.Query("month")

	lectures, err := h.lectures.Days(c.Request.Context(), year, month)
	if errors.Is(err, service.ErrBadInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown month"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to list lecture days",
			zap.Int("year", year),
			zap.String("month", month),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list days"})
		return
	}
	c.JSON(http.StatusOK, lectures)
}

func (h *LectureHandler) ScheduleByDate(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return
	}

	lectures, err := h.lectures.ScheduleByDate(c.Request.Context(), date)
	if err != nil {
		h.logger.Error("Failed to list schedule", zap.Time("date", date), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list schedule"})
		return
	}
	c.JSON(http.StatusOK, lectures)
}

func (h *LectureHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lecture id"})
		return
	}

	var req lectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l, err := h.lectures.Update(c.Request.Context(), id, repository.LectureUpdate{
		Group:        req.Group,
		Lector:       req.Lector,
		Platform:     req.Platform,
		Unit:         req.Unit,
		Location:     req.Location,
		URL:          req.URL,
		StreamKey:    req.StreamKey,
		Description:  req.Description,
		AdminID:      req.AdminID,
		Date:         req.Date,
		Start:        req.Start,
		End:          req.End,
		AbnormalTime: req.AbnormalTime,
	})
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "lecture not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to update lecture", zap.String("lecture_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update lecture"})
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *LectureHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lecture id"})
		return
	}

	err = h.lectures.Delete(c.Request.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "lecture not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete lecture", zap.String("lecture_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete lecture"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
