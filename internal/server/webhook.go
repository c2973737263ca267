package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
	obscontext "github.com/hudsor01/tenant-flow-sub006/internal/observability/context"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/logger"
)

// HandleWebhook receives processor events. The body must reach the verifier
// as the exact bytes sent; nothing is parsed before the signature check.
func (s *Server) HandleWebhook(c *gin.Context) {
	if !s.limiter.Allow(c.ClientIP()) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": apiError{Kind: "rate_limited", Message: "too many requests"},
		})
		return
	}

	payload, err := c.GetRawData()
	if err != nil || len(payload) == 0 {
		AbortWithError(c, errmap.Newf(errmap.KindSignatureInvalid, errmap.Context{
			Operation: "webhook.read_body",
		}, "empty or unreadable body"))
		return
	}

	ctx := obscontext.WithActor(c.Request.Context(), "processor", c.ClientIP())
	if err := s.webhooks.IngestWebhook(ctx, payload, c.Request.Header); err != nil {
		kind := errmap.KindOf(err)
		logger.FromContext(ctx).Warn("webhook not fully processed",
			zap.String("kind", string(kind)),
			zap.Any("request", logger.SafeFieldsFromRequest(c.Request)),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
