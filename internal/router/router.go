package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/arm-service-desk/api"
	"github.com/psds-microservice/arm-service-desk/internal/handler"
	"github.com/psds-microservice/arm-service-desk/internal/service"
	"github.com/psds-microservice/helpy/paths"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps are the collaborators the desk API routes need.
type Deps struct {
	Auth service.Authenticator
	Desk service.DeskServicer
	// Ping backs the readiness probe; nil means always ready.
	Ping func() error
	Log  zerolog.Logger
}

func New(d Deps) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handler.RequestLogger(d.Log))
	r.GET(paths.PathHealth, gin.WrapF(handler.Health))
	r.GET(paths.PathReady, gin.WrapF(handler.Ready(d.Ping)))
	r.GET(paths.PathSwagger, func(c *gin.Context) { c.Redirect(http.StatusFound, paths.PathSwagger+"/") })
	r.GET(paths.PathSwagger+"/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = paths.PathSwagger + "/index.html"
			c.Request.RequestURI = paths.PathSwagger + "/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(paths.PathSwagger+"/openapi.json"))(c)
	})

	authHandler := handler.NewAuthHandler(d.Auth, d.Log)
	deskHandler := handler.NewDeskHandler(d.Desk, d.Log)

	v := r.Group("/api")
	v.POST("/login", authHandler.Login)

	user := v.Group("", handler.RequireAuth(d.Auth))
	{
		user.GET("/arms", deskHandler.ListWorkstations)
		user.GET("/arms/:id", deskHandler.GetWorkstation)
		user.GET("/tickets", deskHandler.ListTickets)
		user.POST("/tickets", deskHandler.CreateTicket)
		user.GET("/stats", deskHandler.Stats)
	}

	admin := user.Group("/admin", handler.RequireAdmin())
	{
		admin.POST("/arms", deskHandler.CreateWorkstation)
		admin.PUT("/arms/:id", deskHandler.UpdateWorkstation)
		admin.DELETE("/arms/:id", deskHandler.DeleteWorkstation)
		admin.PUT("/tickets/:id", deskHandler.UpdateTicketStatus)
	}

	return r
}
