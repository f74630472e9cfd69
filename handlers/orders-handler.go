package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"grocery-order-service/internal/orders"
	"grocery-order-service/internal/stores/kafka"
	"grocery-order-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest is the JSON body of POST /checkout. The user id comes
// from the token, never the payload; prices come from the catalog.
type CheckoutRequest struct {
	StoreID          string        `json:"store_id" validate:"required"`
	Items            []ItemRequest `json:"items" validate:"required,min=1,dive"`
	IsCashOnDelivery bool          `json:"is_cash_on_delivery"`
	DeliveryAddress  string        `json:"delivery_address" validate:"required"`
	CouponCode       string        `json:"coupon_code"`
}

type ItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

func (h *Handler) CreateOrder(c *gin.Context) {
	traceId := getTraceId(c)
	userID, ok := userIDFromClaims(c)
	if !ok {
		return
	}

	if c.Request.ContentLength > 16*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId), slog.Int64("size", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Request body too large."})
		return
	}

	var req CheckoutRequest
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

	items := make([]orders.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, orders.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.o.CreateOrder(c.Request.Context(), orders.CreateOrderRequest{
		UserID:           userID,
		StoreID:          req.StoreID,
		Items:            items,
		IsCashOnDelivery: req.IsCashOnDelivery,
		DeliveryAddress:  req.DeliveryAddress,
		CouponCode:       req.CouponCode,
	})
	if err != nil {
		slog.Error("error creating order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, userID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, err)
		return
	}

	h.publishEvent(kafka.TopicOrderPlaced, order.ID, kafka.OrderPlacedEvent{
		OrderId:     order.ID,
		UserId:      order.UserID,
		StoreId:     order.StoreID,
		TotalAmount: order.TotalAmount,
		TotalItems:  order.TotalItems,
		CreatedAt:   time.Now().UTC(),
	})

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	traceId := getTraceId(c)
	userID, ok := userIDFromClaims(c)
	if !ok {
		return
	}

	orderID := c.Param("orderID")
	order, err := h.o.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		slog.Error("error fetching order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, err)
		return
	}
	if order.UserID != userID {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": orders.ErrOrderNotFound.Error()})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetInvoice(c *gin.Context) {
	traceId := getTraceId(c)
	userID, ok := userIDFromClaims(c)
	if !ok {
		return
	}

	orderID := c.Param("orderID")
	order, err := h.o.GetOrder(c.Request.Context(), orderID)
	if err != nil || order.UserID != userID {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": orders.ErrOrderNotFound.Error()})
		return
	}

	inv, err := h.iv.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		slog.Error("error fetching invoice", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, inv)
}

func (h *Handler) ListUserOrders(c *gin.Context) {
	traceId := getTraceId(c)
	userID, ok := userIDFromClaims(c)
	if !ok {
		return
	}

	list, err := h.o.ListByUser(c.Request.Context(), userID)
	if err != nil {
		slog.Error("error listing orders", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, userID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	traceId := getTraceId(c)
	userID, ok := userIDFromClaims(c)
	if !ok {
		return
	}

	orderID := c.Param("orderID")
	existing, err := h.o.GetOrder(c.Request.Context(), orderID)
	if err != nil || existing.UserID != userID {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": orders.ErrOrderNotFound.Error()})
		return
	}

	order, err := h.o.CancelOrder(c.Request.Context(), orderID)
	if err != nil {
		slog.Error("error cancelling order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, err)
		return
	}

	h.publishEvent(kafka.TopicOrderCancelled, order.ID, kafka.OrderCancelledEvent{
		OrderId:   order.ID,
		UserId:    order.UserID,
		CreatedAt: time.Now().UTC(),
	})

	c.JSON(http.StatusOK, order)
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateOrderStatus is the admin entry point for status changes. It goes
// through the same state machine as everything else.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	traceId := getTraceId(c)

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orderID := c.Param("orderID")
	order, err := h.o.ChangeStatus(c.Request.Context(), orderID, orders.Status(req.Status))
	if err != nil {
		slog.Error("error changing order status", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, orderID), slog.String("status", req.Status), slog.String(logkey.ERROR, err.Error()))
		respondError(c, err)
		return
	}

	if order.Status == orders.StatusCancelled {
		h.publishEvent(kafka.TopicOrderCancelled, order.ID, kafka.OrderCancelledEvent{
			OrderId:   order.ID,
			UserId:    order.UserID,
			CreatedAt: time.Now().UTC(),
		})
	}

	c.JSON(http.StatusOK, order)
}

// publishEvent is fire-and-forget: a broker outage never fails the request.
func (h *Handler) publishEvent(topic, key string, event any) {
	if h.k == nil {
		return
	}
	go func() {
		data, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to marshal event", slog.String("topic", topic), slog.String(logkey.ERROR, err.Error()))
			return
		}
		if err := h.k.ProduceMessage(topic, []byte(key), data); err != nil {
			slog.Error("failed to produce event", slog.String("topic", topic), slog.String(logkey.ERROR, err.Error()))
		}
	}()
}
