package routes

import (
	"net/http"
	"time"

	"igbridge/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes registers the liveness probe and the dependency report.
func RegisterHealthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
	r.GET("/health/details", hb.HealthDetailsHandler)
}

// RegisterOAuthRoutes registers the browser-facing consent flow.
func RegisterOAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	oauthGroup := r.Group("/oauth")
	{
		oauthGroup.GET("/start", hb.StartHandler)
		oauthGroup.GET("/callback", hb.CallbackHandler)
	}
}

// RegisterExchangeRoute registers the endpoint devices poll for their credentials.
func RegisterExchangeRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/exchange", hb.ExchangeHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.SetHTMLTemplate(handlers.Pages())

	// Device clients may poll from a webview.
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterHealthRoutes(r, hb)
	RegisterOAuthRoutes(r, hb)
	RegisterExchangeRoute(r, hb)
}
