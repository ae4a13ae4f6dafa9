package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	intakeDto "evergreenrx.com/pharmanotify/internal/modules/intake/dto"
	intake "evergreenrx.com/pharmanotify/internal/modules/intake/service"
	"evergreenrx.com/pharmanotify/pkg/apperror"
	"evergreenrx.com/pharmanotify/pkg/ratelimiter"
	"evergreenrx.com/pharmanotify/pkg/response"
	"evergreenrx.com/pharmanotify/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type IntakeHandler struct {
	service     intake.IntakeService
	redisClient *redis.Client
	rateLimit   time.Duration
}

func NewIntakeHandler(service intake.IntakeService, redisClient *redis.Client, rateLimit time.Duration) *IntakeHandler {
	return &IntakeHandler{
		service:     service,
		redisClient: redisClient,
		rateLimit:   rateLimit,
	}
}

// checkRateLimit throttles public intake per client IP. Redis being down
// fails open: a storefront submission is worth more than the throttle.
func (h *IntakeHandler) checkRateLimit(c *gin.Context, action string) bool {
	allowed, err := ratelimiter.CheckAndSet(c.Request.Context(), h.redisClient, c.ClientIP(), action, h.rateLimit)
	if err != nil {
		return true
	}
	if !allowed {
		if ttl, err := ratelimiter.GetTTL(c.Request.Context(), h.redisClient, c.ClientIP(), action); err == nil && ttl > 0 {
			c.Header("Retry-After", fmt.Sprintf("%.0f", ttl.Seconds()))
		}
		response.ResponseError(c, apperror.ErrRateLimitExceeded)
		return false
	}
	return true
}

// releaseRateLimit frees the window when the submission never happened, so
// the visitor can correct a validation error and resubmit right away.
func (h *IntakeHandler) releaseRateLimit(c *gin.Context, action string) {
	_ = ratelimiter.Clear(c.Request.Context(), h.redisClient, c.ClientIP(), action)
}

func (h *IntakeHandler) SubmitContact(c *gin.Context) {
	if !h.checkRateLimit(c, "contact") {
		return
	}

	var req intakeDto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.releaseRateLimit(c, "contact")
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	msg, err := h.service.SubmitContact(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": msg})
}

func (h *IntakeHandler) SubmitAppointment(c *gin.Context) {
	if !h.checkRateLimit(c, "appointment") {
		return
	}

	var req intakeDto.AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.releaseRateLimit(c, "appointment")
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	appt, err := h.service.SubmitAppointment(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": appt})
}

func (h *IntakeHandler) SubmitRefill(c *gin.Context) {
	if !h.checkRateLimit(c, "refill") {
		return
	}

	var req intakeDto.RefillRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.releaseRateLimit(c, "refill")
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	refill, err := h.service.SubmitRefill(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": refill})
}

func (h *IntakeHandler) SubmitTransfer(c *gin.Context) {
	if !h.checkRateLimit(c, "transfer") {
		return
	}

	var req intakeDto.TransferRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.releaseRateLimit(c, "transfer")
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	transfer, err := h.service.SubmitTransfer(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": transfer})
}

// Webhooks keep the raw body so the notification payload carries the
// original event unmodified.

func (h *IntakeHandler) CommerceWebhook(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	var event intakeDto.CommerceWebhook
	if err := json.Unmarshal(raw, &event); err != nil || event.Event == "" || event.OrderID == "" {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	if err := h.service.HandleCommerceEvent(c.Request.Context(), event, raw); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "event accepted"})
}

func (h *IntakeHandler) InventoryWebhook(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	var event intakeDto.InventoryWebhook
	if err := json.Unmarshal(raw, &event); err != nil || event.SKU == "" || event.Product == "" {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	if err := h.service.HandleInventoryEvent(c.Request.Context(), event, raw); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "event accepted"})
}
