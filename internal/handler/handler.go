package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/walterfan/reminder-service/internal/errs"
	md "github.com/walterfan/reminder-service/pkg/middleware"
	"github.com/walterfan/reminder-service/pkg/validate"
)

type Handler struct {
	bookSvc   BookService
	taskSvc   TaskService
	tenantSvc TenantService
	log       *zap.Logger
}

func New(bookSvc BookService, taskSvc TaskService, tenantSvc TenantService, log *zap.Logger) *Handler {
	return &Handler{
		bookSvc:   bookSvc,
		taskSvc:   taskSvc,
		tenantSvc: tenantSvc,
		log:       log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/books", h.GetBooks)
	api.GET("/books/:id", h.GetBook)
	api.POST("/books", h.CreateBook)
	api.PUT("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.DeleteBook)
	api.POST("/books/:id/borrow", h.BorrowBook)
	api.POST("/books/:id/return", h.ReturnBook)

	api.GET("/tasks", h.ListTasks)
	api.GET("/tasks/:id", h.GetTask)
	api.POST("/tasks", h.CreateTask)
	api.PUT("/tasks/:id", h.UpdateTask)
	api.DELETE("/tasks/:id", h.DeleteTask)

	api.GET("/tenants", h.ListTenants)
	api.GET("/tenants/:id", h.GetTenant)
	api.POST("/tenants", h.CreateTenant)
	api.DELETE("/tenants/:id", h.DeleteTenant)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps the error taxonomy onto status codes. Both kinds of
// conflict (illegal transition, lost optimistic-concurrency race) answer
// 409 but keep their distinct messages, so a caller can tell the
// retry-worthy one apart.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrAlreadyBorrowed),
		errors.Is(err, errs.ErrNotBorrowed),
		errors.Is(err, errs.ErrConcurrentModification),
		errors.Is(err, errs.ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
