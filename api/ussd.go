package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/homecare/internal/service/directory"
	"github.com/Domenick1991/homecare/internal/ussd"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgUnavailable = "Service temporarily unavailable. Please try again later."
	msgBadRequest  = "Invalid request."
)

// Renderer decides the next menu screen for one gateway callback.
type Renderer interface {
	Render(ctx context.Context, req ussd.Request) ussd.Screen
}

type USSDHandler struct {
	directory directory.DirectoryUseCase
	renderer  Renderer
	logger    *zap.Logger
}

type ussdCallback struct {
	SessionID   string `form:"sessionId" binding:"required"`
	ServiceCode string `form:"serviceCode"`
	PhoneNumber string `form:"phoneNumber" binding:"required"`
	Text        string `form:"text"`
}

func NewUSSDHandler(dir directory.DirectoryUseCase, renderer Renderer, logger *zap.Logger) *USSDHandler {
	return &USSDHandler{directory: dir, renderer: renderer, logger: logger}
}

func (h *USSDHandler) Register(router gin.IRoutes) {
	router.POST("/ussd", h.callback)
}

func (h *USSDHandler) callback(c *gin.Context) {
	var req ussdCallback
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, ussd.Screen{Type: ussd.Terminal, Text: msgBadRequest}.String())
		return
	}

	ctx := c.Request.Context()
	client, err := h.directory.Resolve(ctx, req.PhoneNumber)
	if err != nil {
		h.logger.Error("resolve caller failed",
			zap.String("session", req.SessionID),
			zap.String("phone", req.PhoneNumber),
			zap.Error(err))
		c.String(http.StatusOK, ussd.Screen{Type: ussd.Terminal, Text: msgUnavailable}.String())
		return
	}

	screen := h.renderer.Render(ctx, ussd.Request{
		SessionID: req.SessionID,
		Phone:     req.PhoneNumber,
		Text:      req.Text,
		Client:    client,
	})
	h.logger.Debug("menu screen",
		zap.String("session", req.SessionID),
		zap.String("service_code", req.ServiceCode),
		zap.String("text", req.Text),
		zap.Bool("terminal", screen.Type == ussd.Terminal),
		zap.Bool("registered", client != nil))

	c.String(http.StatusOK, screen.String())
}
