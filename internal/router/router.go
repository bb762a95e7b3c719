package router

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/mfauzi77/paudhi-backend/internal/handler"
	"github.com/mfauzi77/paudhi-backend/internal/middleware"
	"github.com/mfauzi77/paudhi-backend/internal/models"
	"github.com/mfauzi77/paudhi-backend/internal/repository"
	"github.com/mfauzi77/paudhi-backend/internal/service"
	"github.com/mfauzi77/paudhi-backend/pkg/config"
	"github.com/mfauzi77/paudhi-backend/pkg/logger"
	corsmiddleware "github.com/mfauzi77/paudhi-backend/pkg/middleware/cors"
	reqidmiddleware "github.com/mfauzi77/paudhi-backend/pkg/middleware/requestid"

	"go.uber.org/zap"
)

// Deps carries everything the router needs to wire routes.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *service.MetricsService
	DB      *sqlx.DB

	Users *repository.UserRepository

	Auth      *service.AuthService
	User      *service.UserService
	Report    *service.ReportService
	Export    *service.ExportService
	News      *service.NewsService
	Resource  *service.ResourceService
	FAQ       *service.FAQService
	Dashboard *service.DashboardService
}

// New builds the gin engine with every route attached.
//
// Gating is uniform per route family:
//   - public reads use OptionalJWT so staff tokens widen visibility
//   - authenticated routes use JWT, which resolves the full account and
//     rejects deactivated ones
//   - reports, news, resources and faq writes gate on the module grant;
//     organization scoping happens inside the services
//   - review and account management additionally gate on role
func New(deps Deps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	authRequired := middleware.JWT(deps.Auth, deps.Users)
	authOptional := middleware.OptionalJWT(deps.Auth, deps.Users)
	reviewers := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.User)
	reportHandler := handler.NewReportHandler(deps.Report, deps.Export)
	newsHandler := handler.NewNewsHandler(deps.News)
	resourceHandler := handler.NewResourceHandler(deps.Resource)
	faqHandler := handler.NewFAQHandler(deps.FAQ)
	orgHandler := handler.NewOrgHandler()
	dashboardHandler := handler.NewDashboardHandler(deps.Dashboard)
	metricsHandler := handler.NewMetricsHandler(deps.Metrics, deps.DB)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(deps.Config.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authRequired, authHandler.Logout)
		auth.POST("/change-password", authRequired, authHandler.ChangePassword)
		auth.GET("/me", authRequired, authHandler.Me)
		auth.PUT("/me", authRequired, userHandler.UpdateProfile)
	}

	api.GET("/orgs", authRequired, orgHandler.List)

	api.GET("/dashboard", dashboardHandler.Public)
	api.GET("/dashboard/summary", dashboardHandler.Public)
	api.GET("/dashboard/admin", authRequired, dashboardHandler.Admin)

	// Approved reports feed the public site without a token.
	api.GET("/reports/public", reportHandler.PublicList)
	api.GET("/reports/public/:id", reportHandler.PublicGet)
	api.GET("/reports/years/public", reportHandler.Years)
	api.GET("/reports/summary/public", dashboardHandler.Public)

	reports := api.Group("/reports", authRequired)
	{
		reports.GET("", middleware.RequirePermission(models.ModuleReports, models.ActionRead), reportHandler.List)
		reports.GET("/export", middleware.RequirePermission(models.ModuleReports, models.ActionRead), reportHandler.Export)
		reports.GET("/pending", reviewers, reportHandler.Pending)
		// Staff summary covers every workflow state, not just approved.
		reports.GET("/summary", middleware.RequirePermission(models.ModuleReports, models.ActionRead), dashboardHandler.Admin)
		reports.GET("/:id", middleware.RequirePermission(models.ModuleReports, models.ActionRead), reportHandler.Get)
		reports.POST("", middleware.RequirePermission(models.ModuleReports, models.ActionCreate), reportHandler.Create)
		reports.PUT("/:id", middleware.RequirePermission(models.ModuleReports, models.ActionUpdate), reportHandler.Update)
		reports.POST("/:id/submit",
			middleware.RequirePermission(models.ModuleReports, models.ActionUpdate),
			middleware.Audit(deps.Users, models.AuditActionReportSubmit, "indicator_report"),
			reportHandler.Submit)
		reports.POST("/:id/review",
			reviewers,
			middleware.Audit(deps.Users, models.AuditActionReportReview, "indicator_report"),
			reportHandler.Review)
		reports.POST("/:id/approve",
			reviewers,
			middleware.Audit(deps.Users, models.AuditActionReportReview, "indicator_report"),
			reportHandler.Approve)
		reports.POST("/:id/reject",
			reviewers,
			middleware.Audit(deps.Users, models.AuditActionReportReview, "indicator_report"),
			reportHandler.Reject)
		reports.POST("/:id/return-draft",
			reviewers,
			middleware.Audit(deps.Users, models.AuditActionReportReview, "indicator_report"),
			reportHandler.ReturnToDraft)
		reports.DELETE("/:id", middleware.RequirePermission(models.ModuleReports, models.ActionDelete), reportHandler.Delete)
		// Bulk gates delete vs update grants inside the handler.
		reports.POST("/bulk", reportHandler.Bulk)
	}

	news := api.Group("/news")
	{
		news.GET("", authOptional, newsHandler.List)
		news.GET("/:id", authOptional, newsHandler.Get)
		news.POST("/:id/like", newsHandler.Like)
		news.POST("", authRequired, middleware.RequirePermission(models.ModuleNews, models.ActionCreate), newsHandler.Create)
		news.PUT("/:id", authRequired, middleware.RequirePermission(models.ModuleNews, models.ActionUpdate), newsHandler.Update)
		news.PATCH("/:id/status",
			authRequired,
			middleware.RequirePermission(models.ModuleNews, models.ActionUpdate),
			middleware.Audit(deps.Users, models.AuditActionNewsPublish, "news"),
			newsHandler.UpdateStatus)
		news.POST("/:id/publish",
			authRequired,
			middleware.RequireRoles(models.RoleSuperAdmin),
			middleware.Audit(deps.Users, models.AuditActionNewsPublish, "news"),
			newsHandler.Publish)
		news.POST("/:id/return-draft",
			authRequired,
			middleware.RequireRoles(models.RoleSuperAdmin),
			middleware.Audit(deps.Users, models.AuditActionNewsPublish, "news"),
			newsHandler.ReturnToDraft)
		news.DELETE("/:id", authRequired, middleware.RequirePermission(models.ModuleNews, models.ActionDelete), newsHandler.Delete)
	}

	resources := api.Group("/resources")
	{
		resources.GET("", authOptional, resourceHandler.List)
		resources.GET("/stats", resourceHandler.Stats)
		resources.GET("/:id", authOptional, resourceHandler.Get)
		resources.GET("/stats/summary", resourceHandler.Stats)
		resources.GET("/:id/download", resourceHandler.Download)
		resources.PATCH("/:id/stats", resourceHandler.UpdateStats)
		resources.POST("", authRequired, middleware.RequirePermission(models.ModuleResources, models.ActionCreate), resourceHandler.Create)
		resources.PUT("/:id", authRequired, middleware.RequirePermission(models.ModuleResources, models.ActionUpdate), resourceHandler.Update)
		resources.DELETE("/:id", authRequired, middleware.RequirePermission(models.ModuleResources, models.ActionDelete), resourceHandler.Delete)
	}

	faqs := api.Group("/faq")
	{
		faqs.GET("", authOptional, faqHandler.List)
		faqs.GET("/all", authRequired, reviewers, faqHandler.All)
		faqs.GET("/:id", authOptional, faqHandler.Get)
		faqs.POST("", authRequired, middleware.RequirePermission(models.ModuleFAQ, models.ActionCreate), faqHandler.Create)
		faqs.PUT("/reorder", authRequired, reviewers, faqHandler.Reorder)
		faqs.PUT("/:id", authRequired, middleware.RequirePermission(models.ModuleFAQ, models.ActionUpdate), faqHandler.Update)
		faqs.PATCH("/:id/toggle", authRequired, middleware.RequirePermission(models.ModuleFAQ, models.ActionUpdate), faqHandler.Toggle)
		faqs.DELETE("/:id", authRequired, middleware.RequirePermission(models.ModuleFAQ, models.ActionDelete), faqHandler.Delete)
	}

	users := api.Group("/users", authRequired, reviewers)
	{
		users.GET("", middleware.RequirePermission(models.ModuleUsers, models.ActionRead), userHandler.List)
		users.GET("/:id", middleware.RequirePermission(models.ModuleUsers, models.ActionRead), userHandler.Get)
		users.POST("",
			middleware.RequirePermission(models.ModuleUsers, models.ActionCreate),
			middleware.Audit(deps.Users, models.AuditActionUserCreate, "user"),
			userHandler.Create)
		users.PUT("/:id",
			middleware.RequirePermission(models.ModuleUsers, models.ActionUpdate),
			middleware.Audit(deps.Users, models.AuditActionUserUpdate, "user"),
			userHandler.Update)
		users.PUT("/:id/permissions", middleware.RequireRoles(models.RoleSuperAdmin), userHandler.UpdatePermissions)
		users.PATCH("/:id/toggle-status",
			middleware.RequirePermission(models.ModuleUsers, models.ActionUpdate),
			middleware.Audit(deps.Users, models.AuditActionUserUpdate, "user"),
			userHandler.ToggleStatus)
		users.POST("/:id/reset-password",
			middleware.RequirePermission(models.ModuleUsers, models.ActionUpdate),
			middleware.Audit(deps.Users, models.AuditActionPasswordChange, "user"),
			userHandler.ResetPassword)
		users.DELETE("/:id",
			middleware.RequirePermission(models.ModuleUsers, models.ActionDelete),
			middleware.Audit(deps.Users, models.AuditActionUserDelete, "user"),
			userHandler.Deactivate)
	}

	return r
}
