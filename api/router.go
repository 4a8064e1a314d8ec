package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const swaggerDocURL = "/swagger/callbacks.swagger.json"

type RouterOptions struct {
	// SwaggerDir holds the static callback contract; empty disables /docs.
	SwaggerDir        string
	RequestsPerMinute int
}

// NewRouter wires both gateway callbacks. Each callback is rate limited per
// caller phone number.
func NewRouter(ussdHandler *USSDHandler, smsHandler *SMSHandler, logger *zap.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	limiter := NewCallerLimiter(opts.RequestsPerMinute)

	callbacks := router.Group("/callbacks")
	ussdHandler.Register(callbacks.Group("", limiter.Middleware("phoneNumber", logger, func(c *gin.Context) {
		c.String(http.StatusOK, "END Too many requests. Please try again later.")
	})))
	smsHandler.Register(callbacks.Group("", limiter.Middleware("from", logger, func(c *gin.Context) {
		c.String(http.StatusTooManyRequests, "Too Many Requests")
	})))

	if opts.SwaggerDir != "" {
		router.Static("/swagger", opts.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerDocURL))))
	}

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()))
	}
}
