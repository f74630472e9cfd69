package handlers

import (
	"log/slog"
	"net/http"

	"grocery-order-service/internal/products"
	"grocery-order-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateProduct(c *gin.Context) {
	traceId := getTraceId(c)

	if c.Request.ContentLength > 5*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId), slog.Int64("size", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Request body too large."})
		return
	}

	var req products.NewProduct
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

	product, err := h.p.InsertProduct(c.Request.Context(), req)
	if err != nil {
		slog.Error("error inserting product", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	traceId := getTraceId(c)
	productID := c.Param("productID")

	var req products.NewProduct
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.p.UpdateProduct(c.Request.Context(), productID, req)
	if err != nil {
		slog.Error("error updating product", slog.String(logkey.TraceID, traceId),
			slog.String("product_id", productID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}
