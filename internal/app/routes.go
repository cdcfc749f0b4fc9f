package app

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"

	"github.com/biey-root/serverless-rest-api/internal/auth"
	"github.com/biey-root/serverless-rest-api/internal/cache"
	"github.com/biey-root/serverless-rest-api/internal/config"
	"github.com/biey-root/serverless-rest-api/internal/handlers"
	"github.com/biey-root/serverless-rest-api/internal/httperr"
	"github.com/biey-root/serverless-rest-api/internal/service"
	"github.com/biey-root/serverless-rest-api/internal/store"
)

// newRouter builds the engine with its full middleware chain. Preflight and
// health bypass auth; everything under /todos requires a verified token.
func newRouter(cfg config.Config, todoStore store.TodoStore, listCache *cache.ListCache, verifier auth.TokenVerifier) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		httperr.Write(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error")
	}))
	r.Use(handlers.RequestID())
	r.Use(securityHeaders(cfg.CORS))
	r.Use(cors.New(corsConfig(cfg.CORS)))

	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		httperr.Write(c, http.StatusNotFound, "ROUTE_NOT_FOUND", "Route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		httperr.Write(c, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Unsupported method")
	})

	Setup(r, cfg, todoStore, listCache, verifier)
	return r
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, todoStore store.TodoStore, listCache *cache.ListCache, verifier auth.TokenVerifier) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", handlers.Health)
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	// Non-preflight OPTIONS still gets an empty 204 with CORS headers.
	r.OPTIONS("/*any", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	todoSvc := service.NewTodoService(todoStore, listCache, cfg.DDB.OpTimeout.Duration())
	todoHandler := handlers.NewTodoHandler(todoSvc)

	protected := r.Group("", auth.RequireAuth(verifier))
	registerTodoRoutes(protected, todoHandler)
}

func registerTodoRoutes(api *gin.RouterGroup, h *handlers.TodoHandler) {
	api.POST("/todos", h.Create)
	api.GET("/todos", h.List)
	api.GET("/todos/:id", h.GetByID)
	api.PUT("/todos/:id", h.Update)
	api.DELETE("/todos/:id", h.Delete)
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       600 * time.Second,
	}
	if cfg.AllowOrigin == "" || cfg.AllowOrigin == "*" {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = []string{cfg.AllowOrigin}
	}
	return c
}

// securityHeaders stamps the fixed header set on every response, including
// the allowed origin regardless of whether the request carried one. The CORS
// middleware refines the origin header on actual cross-origin requests.
func securityHeaders(cfg config.CORSConfig) gin.HandlerFunc {
	origin := cfg.AllowOrigin
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "0")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Vary", "Origin")
		c.Next()
	}
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Todo API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
		})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			httperr.Write(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error")
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}
