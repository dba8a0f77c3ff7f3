package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"edulist/internal/errors"
	"edulist/internal/handler"
	"edulist/internal/logger"
	"edulist/internal/metrics"
	"edulist/internal/model"
	"edulist/internal/service"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Institute *handler.InstituteHandler
	Course    *handler.CourseHandler
	Review    *handler.ReviewHandler
	Enquiry   *handler.EnquiryHandler
	Facility  *handler.FacilityHandler
	Admin     *handler.AdminHandler
	Health    *handler.HealthHandler
}

// Options carries the cross-cutting dependencies of the router.
type Options struct {
	Auth     service.AuthService
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Register wires routes and middleware.
func Register(e *echo.Echo, h Handlers, opts Options) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(logger.Middleware(opts.Logger))
	if opts.Metrics != nil {
		e.Use(opts.Metrics.Middleware())
	}

	e.Validator = NewValidator()

	e.GET("/healthz", h.Health.Health)
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authRequired := RequireAuth(opts.Auth)
	authOptional := OptionalAuth(opts.Auth)
	institutesOnly := RequireRoles(model.RoleInstitute)
	adminsOnly := RequireRoles(model.RoleAdmin)

	api := e.Group("/api")

	// Auth
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout, authRequired)
	api.GET("/auth/me", h.Auth.Me, authRequired)

	// Users
	api.GET("/users/me", h.User.GetMe, authRequired)
	api.PUT("/users/me", h.User.UpdateMe, authRequired)

	// Institutes
	api.GET("/institutes", h.Institute.List)
	api.GET("/institutes/featured", h.Institute.Featured)
	api.GET("/institutes/me", h.Institute.Mine, authRequired, institutesOnly)
	api.PUT("/institutes/me", h.Institute.UpdateMine, authRequired, institutesOnly)
	api.POST("/institutes", h.Institute.Create, authRequired, institutesOnly)
	api.GET("/institutes/:id", h.Institute.Get)
	api.GET("/institutes/:id/courses", h.Institute.Courses)
	api.GET("/institutes/:id/reviews", h.Institute.Reviews)
	api.GET("/institutes/:id/stats", h.Institute.Stats, authRequired)

	// Courses
	api.GET("/courses/mine", h.Course.Mine, authRequired, institutesOnly)
	api.POST("/courses", h.Course.Create, authRequired, institutesOnly)
	api.PUT("/courses/:id", h.Course.Update, authRequired, institutesOnly)
	api.DELETE("/courses/:id", h.Course.Delete, authRequired, institutesOnly)

	// Reviews
	api.POST("/reviews", h.Review.Create, authRequired)
	api.GET("/reviews/mine", h.Review.Mine, authRequired)
	api.PUT("/reviews/:id", h.Review.Update, authRequired)
	api.DELETE("/reviews/:id", h.Review.Delete, authRequired)

	// Enquiries
	api.POST("/enquiries", h.Enquiry.Create, authOptional)
	api.GET("/enquiries/mine", h.Enquiry.Mine, authRequired)
	api.GET("/enquiries/institute", h.Enquiry.ForInstitute, authRequired, institutesOnly)
	api.PUT("/enquiries/:id/respond", h.Enquiry.Respond, authRequired, institutesOnly)
	api.PUT("/enquiries/:id/status", h.Enquiry.UpdateStatus, authRequired, institutesOnly)

	// Facilities
	api.GET("/facilities", h.Facility.List)
	api.POST("/facilities", h.Facility.Create, authRequired, adminsOnly)
	api.DELETE("/facilities/:id", h.Facility.Delete, authRequired, adminsOnly)

	// Admin
	admin := api.Group("/admin", authRequired, adminsOnly)
	admin.GET("/analytics", h.Admin.Analytics)
	admin.GET("/pending/:entity", h.Admin.Pending)
	admin.GET("/institutes", h.Admin.Institutes)
	admin.PUT("/institutes/:id/featured", h.Admin.SetFeatured)
	admin.GET("/users", h.Admin.Users)
	admin.DELETE("/users/:id", h.Admin.DeleteUser)
	admin.GET("/reviews", h.Admin.Reviews)
	admin.GET("/enquiries", h.Admin.Enquiries)
	admin.PUT("/:entity/:id/status", h.Admin.Decide)
}

func jwtConfig(authService service.AuthService) echojwt.Config {
	return echojwt.Config{
		ContextKey: handler.ClaimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.Authenticate(c.Request().Context(), token)
		},
	}
}

// RequireAuth rejects requests without a valid, unrevoked bearer token.
func RequireAuth(authService service.AuthService) echo.MiddlewareFunc {
	cfg := jwtConfig(authService)
	cfg.ErrorHandler = func(c echo.Context, err error) error {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "invalid or missing token",
			Code:  "UNAUTHORIZED",
		})
	}
	return echojwt.WithConfig(cfg)
}

// OptionalAuth attaches claims when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(authService service.AuthService) echo.MiddlewareFunc {
	cfg := jwtConfig(authService)
	cfg.ContinueOnIgnoredError = true
	cfg.ErrorHandler = func(c echo.Context, err error) error {
		return nil
	}
	return echojwt.WithConfig(cfg)
}

// RequireRoles allows the request only for the given roles. It must run
// after RequireAuth.
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := handler.Claims(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "authentication required",
					Code:  "UNAUTHORIZED",
				})
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
				Error: "insufficient role",
				Code:  "FORBIDDEN",
			})
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the validator used for request DTOs.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
