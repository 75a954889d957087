package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"meetcrm/internal/handler"
	"meetcrm/internal/model"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Meets     *handler.MeetHandler
	Lectures  *handler.LectureHandler
	Downloads *handler.DownloadHandler
}

func NewRouter(h Handlers, jwtSecret string, logger *zap.Logger, db *pgxpool.Pool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		logger.Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
	}

	// The meet request form is the one public mutating endpoint:
	// visitors submit conference requests without an account.
	r.POST("/meets", h.Meets.Create)

	authed := r.Group("/", handler.AuthMiddleware(jwtSecret))

	users := authed.Group("/users", handler.RequireRole(model.RoleAdmin))
	{
		users.POST("", h.Users.Create)
		users.GET("", h.Users.List)
		users.GET("/search", h.Users.Search)
		users.PATCH("/:id", h.Users.Update)
		users.DELETE("/:id", h.Users.Delete)
	}

	meets := authed.Group("/meets")
	{
		meets.GET("/find", h.Meets.List)
		meets.GET("/search", h.Meets.Search)
		meets.PATCH("/:id", h.Meets.Update)
		meets.DELETE("/:id", h.Meets.Delete)
	}

	lectures := authed.Group("/lectures")
	{
		lectures.POST("", h.Lectures.Create)
		lectures.GET("/dates", h.Lectures.Dates)
		lectures.GET("/days", h.Lectures.Days)
		lectures.GET("/schedule/:date", h.Lectures.ScheduleByDate)
		lectures.PATCH("/:id", h.Lectures.Update)
		lectures.DELETE("/:id", h.Lectures.Delete)
	}

	downloads := authed.Group("/downloads")
	{
		downloads.GET("/meets", h.Downloads.MeetsCSV)
		downloads.GET("/lectures", h.Downloads.LecturesCSV)
		downloads.GET("/meets.xlsx", h.Downloads.MeetsXLSX)
		downloads.GET("/lectures.xlsx", h.Downloads.LecturesXLSX)
	}

	return r
}
