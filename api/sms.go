package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Domenick1991/homecare/internal/command"
	"github.com/Domenick1991/homecare/internal/notify"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Interpreter turns one inbound message into its reply text.
type Interpreter interface {
	Handle(ctx context.Context, msg command.Message) string
}

// SMSHandler accepts shortcode callbacks. The reply travels back as a
// separate outbound message, the HTTP body only acknowledges receipt.
type SMSHandler struct {
	interpreter Interpreter
	sender      notify.Sender
	logger      *zap.Logger
}

type smsCallback struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Text   string `form:"text"`
	LinkID string `form:"linkId"`
	Date   string `form:"date"`
}

func NewSMSHandler(interpreter Interpreter, sender notify.Sender, logger *zap.Logger) *SMSHandler {
	return &SMSHandler{interpreter: interpreter, sender: sender, logger: logger}
}

func (h *SMSHandler) Register(router gin.IRoutes) {
	router.POST("/sms", h.callback)
}

func (h *SMSHandler) callback(c *gin.Context) {
	var req smsCallback
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}
	if strings.TrimSpace(req.From) == "" || strings.TrimSpace(req.Text) == "" {
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}

	ctx := c.Request.Context()
	reply := h.interpreter.Handle(ctx, command.Message{
		From:   req.From,
		To:     req.To,
		Text:   req.Text,
		LinkID: req.LinkID,
		Date:   req.Date,
	})

	if err := h.sender.Send(ctx, req.From, reply); err != nil {
		h.logger.Warn("reply delivery failed",
			zap.String("phone", req.From),
			zap.String("link_id", req.LinkID),
			zap.Error(err))
	}

	c.String(http.StatusOK, "OK")
}
