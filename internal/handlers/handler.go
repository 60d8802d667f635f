package handlers

import (
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/lahn92/AquaTimer/docs"
	"github.com/lahn92/AquaTimer/internal/logger"
	"github.com/lahn92/AquaTimer/internal/service"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
// The control surface is deliberately unauthenticated: the device sits on a
// trusted LAN, the way its firmware predecessor did.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Live status stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerScheduleRoutes(api)
		h.registerStatusRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerScheduleRoutes(api *gin.RouterGroup) {
	schedule := api.Group("/schedule")
	{
		schedule.GET("", h.getSchedule)
		// Body: a JSON array of {"time":"HH:MM","duty":0-100}, optionally
		// wrapped as {"schedule":[...]}
		schedule.POST("", h.replaceSchedule)
	}
}

func (h *Handler) registerStatusRoutes(api *gin.RouterGroup) {
	api.GET("/status", h.getStatus)
	api.POST("/settings/timezone", h.setTimezone)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
