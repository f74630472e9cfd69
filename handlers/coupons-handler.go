package handlers

import (
	"log/slog"
	"net/http"

	"grocery-order-service/internal/coupons"
	"grocery-order-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateCoupon(c *gin.Context) {
	traceId := getTraceId(c)

	var req coupons.NewCoupon
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coupon, err := h.cp.InsertCoupon(c.Request.Context(), req)
	if err != nil {
		slog.Error("error creating coupon", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, coupon)
}

func (h *Handler) DeleteCoupon(c *gin.Context) {
	traceId := getTraceId(c)
	code := c.Param("code")

	if err := h.cp.SoftDelete(c.Request.Context(), code); err != nil {
		slog.Error("error deleting coupon", slog.String(logkey.TraceID, traceId),
			slog.String("code", code), slog.String(logkey.ERROR, err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted"})
}

type PreviewCouponRequest struct {
	Code      string `json:"code" validate:"required"`
	CartTotal int64  `json:"cart_total" validate:"required,min=1"`
}

// PreviewCoupon checks a coupon against the user's cart total without
// reserving anything. The checkout transaction re-validates under lock, so
// a positive preview is advisory only.
func (h *Handler) PreviewCoupon(c *gin.Context) {
	traceId := getTraceId(c)
	userID, ok := userIDFromClaims(c)
	if !ok {
		return
	}

	var req PreviewCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coupon, err := h.cp.Preview(c.Request.Context(), req.Code, userID, req.CartTotal)
	if err != nil {
		respondError(c, err)
		return
	}
	if coupon.OffValue > req.CartTotal {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Discount exceeds cart total"})
		return
	}

	slog.Info("coupon preview", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.UserID, userID), slog.String("code", req.Code))

	c.JSON(http.StatusOK, gin.H{
		"code":            coupon.Code,
		"discount_amount": coupon.OffValue,
		"final_amount":    req.CartTotal - coupon.OffValue,
	})
}
