package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/metric"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/trace"
)

type Deps struct {
	Sessions repository.SessionRepository
	Auth     *auth.Service
	Products *service.ProductService
	Orders   *service.OrderService
	Users    *service.UserService
	HTTP     config.HTTPConfig
	Session  config.SessionConfig
	Service  string
	Logger   *zap.Logger
}

type Server struct {
	engine   *gin.Engine
	sessions repository.SessionRepository
	auth     *auth.Service
	products *service.ProductService
	orders   *service.OrderService
	users    *service.UserService
	cookies  cookieConfig
	log      *zap.Logger
}

func NewServer(d Deps) *Server {
	r := gin.New()
	log := logger.OrNop(d.Logger).Named("http")
	if d.Service == "" {
		d.Service = "storefront"
	}
	if len(d.HTTP.CORSOrigins) == 0 {
		d.HTTP.CORSOrigins = []string{"*"}
	}
	r.Use(gin.Recovery(), otelgin.Middleware(d.Service), accessLog(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.HTTP.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	s := &Server{
		engine:   r,
		sessions: d.Sessions,
		auth:     d.Auth,
		products: d.Products,
		orders:   d.Orders,
		users:    d.Users,
		cookies:  newCookieConfig(d.HTTP, d.Session),
		log:      log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := s.engine.Group("/api/v1", s.withSession)
	{
		v1.GET("/menu", s.listMenu)
		v1.GET("/menu/:id", s.getProduct)
		v1.GET("/ingredients", s.listIngredients)

		cart := v1.Group("/cart")
		cart.GET("", s.getCart)
		cart.POST("/items", s.addItem)
		cart.PUT("/items/:id", s.updateItem)
		cart.DELETE("/items/:id", s.removeItem)

		co := v1.Group("/checkout")
		co.PATCH("/address", s.setAddress)
		co.PATCH("/payment", s.setPayment)
		co.PUT("/method", s.setMethod)
		co.POST("/next", s.nextStep)
		co.POST("/prev", s.prevStep)
		co.POST("/submit", s.submit)
		co.POST("/resume-payment", s.resumePayment)
		co.GET("/cities", s.cities)
		co.POST("/cities/retry", s.retryCities)
		co.GET("/addresses", s.checkoutAddresses)
		co.POST("/addresses/:id/use", s.useAddress)

		a := v1.Group("/auth")
		a.POST("/login", s.login)
		a.POST("/register", s.register)
		a.POST("/logout", s.logout)
		a.GET("/me", s.me)
		a.POST("/forgot-password", s.forgotPassword)
		a.POST("/reset-password", s.resetPassword)

		v1.GET("/orders", s.requireLogin, s.myOrders)

		addr := v1.Group("/addresses", s.requireLogin)
		addr.GET("", s.listAddresses)
		addr.POST("", s.createAddress)
		addr.PUT("/:id", s.updateAddress)
		addr.DELETE("/:id", s.deleteAddress)

		admin := v1.Group("/admin", s.requireAdmin)
		admin.GET("/products", s.adminProducts)
		admin.POST("/products", s.createProduct)
		admin.GET("/products/export", s.exportProducts)
		admin.PUT("/products/:id", s.updateProduct)
		admin.DELETE("/products/:id", s.deleteProduct)
		admin.GET("/ingredients", s.listIngredients)
		admin.POST("/ingredients", s.createIngredient)
		admin.PUT("/ingredients/:id", s.updateIngredient)
		admin.DELETE("/ingredients/:id", s.deleteIngredient)
		admin.GET("/users", s.listUsers)
		admin.PUT("/users/:id/role", s.setUserRole)
		admin.DELETE("/users/:id", s.deleteUser)
		admin.GET("/orders", s.allOrders)
		admin.GET("/orders/:id", s.getOrder)
		admin.PUT("/orders/:id/status", s.setOrderStatus)
	}
}

// accessLog one line per request plus the latency summary
func accessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()
		metric.ObserveRequest(duration, status)
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", duration),
			trace.Field(c.Request.Context()),
		)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, service.ErrInvalidInput
	}
	return id, nil
}

const loginPath = "/login"

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, checkout.ErrInvalidCity):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrLoginRequired), errors.Is(err, api.ErrUnauthorized),
		errors.Is(err, auth.ErrNoToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, api.ErrNotFound),
		errors.Is(err, checkout.ErrAddressNotFound), errors.Is(err, checkout.ErrNoPendingOrder):
		return http.StatusNotFound
	case errors.Is(err, checkout.ErrCheckoutInProgress), errors.Is(err, checkout.ErrStale):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrStepIncomplete):
		return http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrPaymentPending):
		return http.StatusAccepted
	case errors.Is(err, checkout.ErrPurchaseFailed), errors.Is(err, checkout.ErrInvalidOrderID),
		errors.Is(err, checkout.ErrInvalidAmount), errors.Is(err, checkout.ErrCitiesUnavailable),
		errors.Is(err, checkout.ErrAddressesUnavailable):
		return http.StatusBadGateway
	}
	if status := api.StatusOf(err); status == http.StatusUnprocessableEntity || status == http.StatusForbidden {
		return status
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	s.failWith(c, err, nil)
}

// failWith writes the error body merged with extra fields
func (s *Server) failWith(c *gin.Context, err error, extra gin.H) {
	status := mapErrorToStatus(err)
	body := gin.H{"error": err.Error()}
	for k, v := range extra {
		body[k] = v
	}
	if status == http.StatusUnauthorized {
		body["redirect"] = loginPath
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err), trace.Field(c.Request.Context()))
	}
	c.AbortWithStatusJSON(status, body)
}

func badJSON(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
}
