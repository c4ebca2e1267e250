package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"storefront-service/internal/service"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Authenticator resolves an auth-token header value to a user id
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// ImageStore persists uploaded product images
type ImageStore interface {
	StoreImage(ctx context.Context, originalName string, r io.Reader) (string, error)
	Dir() string
}

// Pinger is a dependency checked by the readiness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the business services the handlers call
type Services struct {
	Accounts *service.AccountService
	Carts    *service.CartService
	Catalog  *service.CatalogService
	Orders   *service.OrderService
	Feedback *service.FeedbackService
}

// Handler contains HTTP handlers
type Handler struct {
	svc    Services
	gate   Authenticator
	images ImageStore
	checks map[string]Pinger
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler. images may be nil, which disables
// /upload and /images.
func NewHandler(svc Services, gate Authenticator, images ImageStore, checks map[string]Pinger) *Handler {
	return &Handler{
		svc:    svc,
		gate:   gate,
		images: images,
		checks: checks,
		logger: util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(requestLogger(h.logger))
	router.Use(corsMiddleware())

	router.GET("/", h.index)
	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/signup", h.signup)
	router.POST("/login", h.login)

	cart := router.Group("/", h.requireUser())
	{
		cart.POST("/addtocart", h.addToCart)
		cart.POST("/removefromcart", h.removeFromCart)
		cart.POST("/getcart", h.getCart)
		cart.POST("/updatecart", h.updateCart)
	}

	router.POST("/addproduct", h.addProduct)
	router.POST("/removeproduct", h.removeProduct)
	router.GET("/allproducts", h.allProducts)
	router.GET("/newcollections", h.newCollections)
	router.GET("/relatedproducts", h.relatedProducts)
	router.GET("/popularindc", h.popularInDC)

	router.POST("/order", h.createOrder)
	router.POST("/sendfeedback", h.sendFeedback)

	admin := router.Group("/api/admin")
	{
		admin.GET("/orders", h.listOrders)
		admin.POST("/orders/confirm", h.confirmOrder)
		admin.POST("/orders/delete", h.deleteOrder)
	}

	if h.images != nil {
		router.POST("/upload", h.uploadImage)
		router.Static("/images", h.images.Dir())
	}
}

func (h *Handler) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "running"})
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every dependency and reports the failing ones
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failing := gin.H{}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			failing[name] = err.Error()
		}
	}

	if len(failing) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"failing": failing,
			"time":    time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}
