package handlers

import (
	"errors"
	"net/http"
	"os"

	"grocery-order-service/internal/auth"
	"grocery-order-service/internal/coupons"
	"grocery-order-service/internal/inventory"
	"grocery-order-service/internal/invoices"
	"grocery-order-service/internal/orders"
	"grocery-order-service/internal/pricing"
	"grocery-order-service/internal/products"
	"grocery-order-service/internal/shops"
	"grocery-order-service/internal/stores/kafka"
	"grocery-order-service/internal/users"
	"grocery-order-service/middleware"
	"grocery-order-service/pkg/ctxmanage"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	consulapi "github.com/hashicorp/consul/api"
)

type Handler struct {
	client   *consulapi.Client
	o        *orders.Conf
	inv      *inventory.Conf
	cp       *coupons.Conf
	p        *products.Conf
	u        *users.Conf
	iv       *invoices.Conf
	k        *kafka.Conf
	validate *validator.Validate
}

func NewHandler(client *consulapi.Client, o *orders.Conf, inv *inventory.Conf, cp *coupons.Conf,
	p *products.Conf, u *users.Conf, iv *invoices.Conf, k *kafka.Conf) *Handler {
	return &Handler{
		client:   client,
		o:        o,
		inv:      inv,
		cp:       cp,
		p:        p,
		u:        u,
		iv:       iv,
		k:        k,
		validate: validator.New(),
	}
}

func API(endpointPrefix string, keys *auth.Keys, client *consulapi.Client, o *orders.Conf,
	inv *inventory.Conf, cp *coupons.Conf, p *products.Conf, u *users.Conf,
	iv *invoices.Conf, k *kafka.Conf) *gin.Engine {
	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	m, err := middleware.NewMid(keys)
	if err != nil {
		panic(err)
	}

	h := NewHandler(client, o, inv, cp, p, u, iv, k)
	r.Use(middleware.Logger(), gin.Recovery())

	r.GET("/ping", HealthCheck)

	v1 := r.Group(endpointPrefix)
	{
		v1.POST("/webhook", h.Webhook)

		v1.Use(m.Authentication())
		v1.POST("/checkout", h.CreateOrder)
		v1.GET("/:orderID", h.GetOrder)
		v1.GET("/:orderID/invoice", h.GetInvoice)
		v1.GET("/history", h.ListUserOrders)
		v1.POST("/:orderID/cancel", h.CancelOrder)
		v1.POST("/coupons/preview", h.PreviewCoupon)

		admin := v1.Group("/admin")
		admin.Use(m.AdminOnly())
		{
			admin.PATCH("/:orderID/status", h.UpdateOrderStatus)
			admin.PUT("/inventory/:storeID/:productID", h.UpsertStock)
			admin.PATCH("/inventory/:storeID/:productID", h.AdjustStock)
			admin.GET("/inventory/:storeID", h.GetStoreInventory)
			admin.POST("/coupons", h.CreateCoupon)
			admin.DELETE("/coupons/:code", h.DeleteCoupon)
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:productID", h.UpdateProduct)
		}
	}
	return r
}

func HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}

// userIDFromClaims pulls the authenticated subject, aborting with 401 when
// the middleware did not run or the claims are missing.
func userIDFromClaims(c *gin.Context) (string, bool) {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok || claims.Subject == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return claims.Subject, true
}

// statusForError maps core errors onto HTTP statuses: not-found 404,
// conflicts 409, rule violations 422, everything unexpected 500. Internal
// details never reach the response body; handlers log them instead.
func statusForError(err error) int {
	switch {
	case errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, users.ErrUserNotFound),
		errors.Is(err, shops.ErrStoreNotFound),
		errors.Is(err, products.ErrProductNotFound),
		errors.Is(err, coupons.ErrCouponNotFound),
		errors.Is(err, invoices.ErrInvoiceNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrProductNotInInventory),
		errors.Is(err, coupons.ErrAlreadyUsed),
		errors.Is(err, coupons.ErrMaxUsageReached),
		errors.Is(err, orders.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, coupons.ErrCouponInactive),
		errors.Is(err, coupons.ErrCouponDeleted),
		errors.Is(err, coupons.ErrCouponExpired),
		errors.Is(err, coupons.ErrBelowMinValue),
		errors.Is(err, coupons.ErrMinOrdersNotMet),
		errors.Is(err, pricing.ErrDiscountExceedsTotal),
		errors.Is(err, orders.ErrDuplicateLine):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the mapped status. 500s get a generic message so
// persistence details stay out of responses.
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func getTraceId(c *gin.Context) string {
	return ctxmanage.GetTraceIdOfRequest(c)
}
