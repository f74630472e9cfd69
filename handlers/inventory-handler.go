package handlers

import (
	"log/slog"
	"net/http"

	"grocery-order-service/internal/inventory"
	"grocery-order-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

type UpsertStockRequest struct {
	Quantity  int `json:"quantity" validate:"min=0"`
	Threshold int `json:"threshold" validate:"min=0"`
}

// UpsertStock seeds or replaces a store's ledger row for one product.
func (h *Handler) UpsertStock(c *gin.Context) {
	traceId := getTraceId(c)
	storeID := c.Param("storeID")
	productID := c.Param("productID")

	var req UpsertStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Referential checks before touching the ledger.
	if _, err := h.p.GetProductByID(c.Request.Context(), productID); err != nil {
		respondError(c, err)
		return
	}

	rec, err := h.inv.Upsert(c.Request.Context(), storeID, productID, req.Quantity, req.Threshold)
	if err != nil {
		slog.Error("error upserting stock", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.StoreID, storeID), slog.String("product_id", productID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

type AdjustStockRequest struct {
	Quantity     *int  `json:"quantity" validate:"omitempty,min=0"`
	Threshold    *int  `json:"threshold" validate:"omitempty,min=0"`
	Availability *bool `json:"availability"`
}

// AdjustStock applies a partial override; omitted availability is derived
// from the resulting quantity and threshold.
func (h *Handler) AdjustStock(c *gin.Context) {
	traceId := getTraceId(c)
	storeID := c.Param("storeID")
	productID := c.Param("productID")

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == nil && req.Threshold == nil && req.Availability == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Nothing to adjust"})
		return
	}

	rec, err := h.inv.Adjust(c.Request.Context(), storeID, productID, inventory.Adjustment{
		Quantity:     req.Quantity,
		Threshold:    req.Threshold,
		Availability: req.Availability,
	})
	if err != nil {
		slog.Error("error adjusting stock", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.StoreID, storeID), slog.String("product_id", productID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *Handler) GetStoreInventory(c *gin.Context) {
	traceId := getTraceId(c)
	storeID := c.Param("storeID")

	records, err := h.inv.ListByStore(c.Request.Context(), storeID)
	if err != nil {
		slog.Error("error listing inventory", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.StoreID, storeID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"store_id": storeID, "inventory": records})
}
