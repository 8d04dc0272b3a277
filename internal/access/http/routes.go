package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/allisson/roleguard/internal/access/usecase"
)

// AdminRoute is the catalog route guarding the admin endpoints.
const AdminRoute = "/admin"

// Routes bundles what RegisterRoutes needs.
type Routes struct {
	Resolver        usecase.SubjectResolver
	Resources       usecase.ResourceUseCase
	AuthHandler     *AuthHandler
	SubjectHandler  *SubjectHandler
	ResourceHandler *ResourceHandler
	// AuthRateLimit guards the unauthenticated endpoints. Nil disables it.
	AuthRateLimit gin.HandlerFunc
	Logger        *slog.Logger
}

// RegisterRoutes mounts the /v1 API on router.
func RegisterRoutes(router gin.IRouter, r Routes) {
	v1 := router.Group("/v1")

	public := v1.Group("")
	if r.AuthRateLimit != nil {
		public.Use(r.AuthRateLimit)
	}
	public.POST("/auth/authorize", r.AuthHandler.AuthorizeHandler)
	public.POST("/token", r.AuthHandler.TokenHandler)

	authenticated := v1.Group("")
	authenticated.Use(AuthenticationMiddleware(r.Resolver, r.Logger))
	{
		authenticated.GET("/me", r.SubjectHandler.MeHandler)
		authenticated.PATCH("/me", r.SubjectHandler.UpdateMeHandler)
		authenticated.POST("/token/revoke", r.AuthHandler.RevokeHandler)
		authenticated.POST("/decisions", r.ResourceHandler.DecideHandler)
		authenticated.GET("/resources", r.ResourceHandler.ListHandler)
		authenticated.GET("/resources/*id", r.ResourceHandler.GetHandler)
	}

	admin := authenticated.Group("")
	admin.Use(RequireResourceMiddleware(r.Resources, AdminRoute, r.Logger))
	{
		admin.POST("/resources", r.ResourceHandler.RegisterHandler)
		admin.GET("/admin/subjects", r.SubjectHandler.ListHandler)
		admin.POST("/admin/subjects", r.SubjectHandler.CreateHandler)
		admin.PATCH("/admin/subjects/:id/role", r.SubjectHandler.SetRoleHandler)
		admin.PATCH("/admin/subjects/:id/status", r.SubjectHandler.SetStatusHandler)
	}
}
