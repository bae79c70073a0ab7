package router

import (
	"github.com/coachpoint/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// RouteRegistrar registers a set of routes on a router group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration. API registrars mount under the
// versioned /api prefix; root registrars mount at the engine root for the
// browser-facing portal paths.
type Router struct {
	engine         *gin.Engine
	apiVersion     string
	apiRegistrars  []RouteRegistrar
	rootRegistrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a registrar under the versioned API prefix
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.apiRegistrars = append(r.apiRegistrars, registrar)
	return r
}

// RegisterRoot adds a registrar at the engine root
func (r *Router) RegisterRoot(registrar RouteRegistrar) *Router {
	r.rootRegistrars = append(r.rootRegistrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.apiRegistrars {
		registrar.RegisterRoutes(api)
	}

	root := r.engine.Group("/")
	for _, registrar := range r.rootRegistrars {
		registrar.RegisterRoutes(root)
	}
}

// DomainGroup groups the routes of one domain under a common prefix with
// shared middleware
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{
		name:   name,
		prefix: prefix,
	}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle("GET", path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle("POST", path, handlers)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle("PUT", path, handlers)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle("DELETE", path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{
		method:   method,
		path:     path,
		handlers: handlers,
	})
	return dg
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)

	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}

	for _, route := range dg.routes {
		switch route.method {
		case "GET":
			group.GET(route.path, route.handlers...)
		case "POST":
			group.POST(route.path, route.handlers...)
		case "PUT":
			group.PUT(route.path, route.handlers...)
		case "DELETE":
			group.DELETE(route.path, route.handlers...)
		}
	}

	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// BuildAuthRoutes wires the staff authentication endpoints
func BuildAuthRoutes(h *handler.AuthHandler) *DomainGroup {
	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)
	auth.GET("/me", h.Me)
	auth.POST("/change-password", h.ChangePassword)
	return auth
}

// BuildClientRoutes wires the staff-facing client management endpoints
func BuildClientRoutes(h *handler.ClientHandler) *DomainGroup {
	clients := NewDomainGroup("clients", "/clients")
	clients.GET("", h.List)
	clients.POST("", h.Create)
	clients.GET("/:id", h.Get)
	clients.PUT("/:id", h.Update)
	clients.POST("/:id/activate", h.Activate)
	clients.POST("/:id/archive", h.Archive)
	clients.PUT("/:id/portal-access", h.SetPortalAccess)
	clients.POST("/:id/charges", h.RecordCharge)
	clients.POST("/:id/payments", h.RecordPayment)
	return clients
}

// BuildImpersonationRoutes wires the staff-facing preview control endpoint
func BuildImpersonationRoutes(h *handler.PortalHandler, adminOnly gin.HandlerFunc) *DomainGroup {
	portal := NewDomainGroup("portal-admin", "/portal")
	portal.POST("/impersonate", adminOnly, h.StartImpersonation)
	return portal
}

// BuildPortalRoutes wires the browser-facing portal paths. The access guard
// runs on the portal group; the preview entry point sits outside it so an
// admin without a portal session can still enter a preview.
func BuildPortalRoutes(h *handler.PortalHandler, accessGuard gin.HandlerFunc, previewAuth gin.HandlerFunc) *DomainGroup {
	root := NewDomainGroup("portal-root", "")
	root.GET("/client-preview", previewAuth, h.PreviewEntry)

	portal := root.Group("portal", "/portal")
	portal.Use(accessGuard)
	portal.GET("/me", h.Me)
	portal.POST("/exit-preview", h.ExitPreview)

	return root
}
