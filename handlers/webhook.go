package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"grocery-order-service/internal/stores/kafka"
	"grocery-order-service/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v81"
)

// Webhook receives payment-provider events. The provider's internals stay
// opaque: the only thing that crosses into the core is "this order is paid".
func (h *Handler) Webhook(c *gin.Context) {
	traceId := getTraceId(c)
	const MaxBodyBytes = int64(65536)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	var event stripe.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		slog.Error("failed to bind webhook event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var paymentIntent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
			slog.Error("failed to unmarshal payment intent", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
			return
		}

		orderId := paymentIntent.Metadata["order_id"]
		if orderId == "" {
			slog.Error("payment intent missing order id", slog.String(logkey.TraceID, traceId))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing order_id metadata"})
			return
		}

		order, err := h.o.MarkOrderPaid(c.Request.Context(), orderId, paymentIntent.ID)
		if err != nil {
			slog.Error("failed to mark order paid", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.OrderID, orderId), slog.String(logkey.ERROR, err.Error()))
			respondError(c, err)
			return
		}

		h.publishEvent(kafka.TopicOrderPaid, order.ID, kafka.OrderPaidEvent{
			OrderId:     order.ID,
			ProviderRef: paymentIntent.ID,
			CreatedAt:   time.Now().UTC(),
		})

		slog.Info("order marked paid", slog.String(logkey.TraceID, traceId), slog.String(logkey.OrderID, orderId))
		c.Status(http.StatusOK)

	default:
		slog.Info("unhandled event type", slog.String(logkey.TraceID, traceId), slog.String("event_type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{
			"message": "Event type not handled",
			"event":   event.Type,
		})
	}
}
