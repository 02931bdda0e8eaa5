package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/timelinetracker/backend/internal/config"
	"github.com/timelinetracker/backend/internal/http/handlers"
	"github.com/timelinetracker/backend/internal/http/middleware"
	"github.com/timelinetracker/backend/internal/models"
	"github.com/timelinetracker/backend/internal/store"

	_ "github.com/timelinetracker/backend/docs"
)

func Router(cfg config.Config, estimates *store.Estimates, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:              []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type", "Authorization"},
		ExposeHeaders:             []string{middleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}
	if cfg.CORSAllowed == "" || cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		for _, o := range strings.Split(cfg.CORSAllowed, ",") {
			if o = strings.TrimSpace(o); o != "" {
				corsCfg.AllowOrigins = append(corsCfg.AllowOrigins, o)
			}
		}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:          estimates,
		Validator:      models.NewValidator(),
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   cfg.MaxBodyKB << 10,
	}

	r.NoMethod(h.MethodNotAllowed)
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/timeline", h.GetTimeline)
		api.POST("/timeline", h.SaveTimeline)
		api.DELETE("/timeline", h.DeleteTimeline)
		api.OPTIONS("/timeline", h.Options)
		api.GET("/timeline/export", h.ExportTimeline)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
