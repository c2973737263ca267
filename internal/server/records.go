package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
	onboardingdomain "github.com/hudsor01/tenant-flow-sub006/internal/onboarding/domain"
	subscriptiondomain "github.com/hudsor01/tenant-flow-sub006/internal/subscription/domain"
)

func externalID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("external_id"))
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": apiError{Kind: "invalid_request", Message: "external id required"},
		})
		return "", false
	}
	return id, true
}

func notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
		"error": apiError{Kind: "not_found", Message: "no such record"},
	})
}

func (s *Server) GetPayment(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}
	record, err := s.payments.FindByExternalID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, errmap.Classify(err, errmap.Context{
			ResourceType: "payment_record",
			ResourceID:   id,
			Operation:    "payment.get",
		}))
		return
	}
	if record == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) GetSubscription(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}
	record, err := s.subscriptions.FindByExternalID(c.Request.Context(), id)
	if errors.Is(err, subscriptiondomain.ErrRecordNotFound) {
		notFound(c)
		return
	}
	if err != nil {
		AbortWithError(c, errmap.Classify(err, errmap.Context{
			ResourceType: "subscription_record",
			ResourceID:   id,
			Operation:    "subscription.get",
		}))
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) GetOnboarding(c *gin.Context) {
	id, ok := externalID(c)
	if !ok {
		return
	}
	record, err := s.onboarding.FindByExternalID(c.Request.Context(), id)
	if errors.Is(err, onboardingdomain.ErrRecordNotFound) {
		notFound(c)
		return
	}
	if err != nil {
		AbortWithError(c, errmap.Classify(err, errmap.Context{
			ResourceType: "onboarding_record",
			ResourceID:   id,
			Operation:    "onboarding.get",
		}))
		return
	}
	c.JSON(http.StatusOK, record)
}

// Healthz reports liveness plus a database ping so the orchestrator can
// pull a wedged instance out of rotation.
func (s *Server) Healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
