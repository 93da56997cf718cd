// Package router registers every HTTP route on an echo instance.
package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/library-seat-booking/internal/config"
	"github.com/iliyamo/library-seat-booking/internal/handler"
	"github.com/iliyamo/library-seat-booking/internal/metrics"
	"github.com/iliyamo/library-seat-booking/internal/middleware"
	"github.com/iliyamo/library-seat-booking/internal/model"
)

// Handlers bundles the HTTP handlers.
type Handlers struct {
	Auth          *handler.AuthHandler
	Absence       *handler.AbsenceHandler
	Bookings      *handler.BookingHandler
	Attendance    *handler.AttendanceHandler
	Admissions    *handler.AdmissionHandler
	Payments      *handler.PaymentHandler
	Notifications *handler.NotificationHandler
	Admin         *handler.AdminHandler
}

// Options carries what the middleware needs.  Redis may be nil, which
// disables rate limiting and caching.  Metrics may be nil.
type Options struct {
	JWTSecret string
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Redis     *redis.Client
	Metrics   *metrics.Metrics
	Log       *slog.Logger
}

// Register wires public, student and admin routes.
func Register(e *echo.Echo, h Handlers, opts Options) {
	e.GET("/healthz", handler.Health)
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	}

	limit := middleware.NewTokenBucket(opts.RateLimit, opts.Redis, opts.Log)
	cache := middleware.NewRedisCache(opts.Cache, opts.Redis)
	auth := middleware.JWTAuth(opts.JWTSecret)

	// The sweep endpoint is public, matching the scheduler-facing route of
	// the legacy API.
	e.POST("/check-absent-students", h.Absence.CheckAbsentStudents, limit)
	e.GET("/check-absent-students", h.Absence.CheckAbsentStudents, limit)

	v1 := e.Group("/v1", limit)
	v1.GET("/shifts", handler.ListShifts)
	v1.GET("/shifts/quote", h.Admissions.Quote)

	a := v1.Group("/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.POST("/refresh", h.Auth.Refresh)
	a.POST("/logout", h.Auth.Logout)

	me := v1.Group("", auth, middleware.RequireRole(model.RoleStudent, model.RoleAdmin))
	me.GET("/me", h.Auth.Me)
	me.POST("/logout-all", h.Auth.LogoutAll)
	me.GET("/notifications", h.Notifications.List)
	me.PATCH("/notifications/:id/read", h.Notifications.MarkRead)

	st := v1.Group("", auth, middleware.RequireRole(model.RoleStudent))
	// Not cached: a booking must show up in the next read.
	st.GET("/seats", h.Bookings.SeatMap)
	st.POST("/bookings", h.Bookings.Book)
	st.GET("/bookings/me", h.Bookings.Mine)
	st.POST("/admissions", h.Admissions.Submit)
	st.GET("/admissions/me", h.Admissions.Mine)
	st.POST("/payments", h.Payments.Submit)
	st.GET("/payments/me", h.Payments.Mine)
	st.GET("/attendance/today", h.Attendance.Today)
	st.POST("/attendance/check-in", h.Attendance.CheckIn)
	st.POST("/attendance/check-out", h.Attendance.CheckOut)
	st.GET("/attendance/recent", h.Attendance.Recent)

	ad := v1.Group("/admin", auth, middleware.RequireRole(model.RoleAdmin))
	ad.GET("/students", h.Admin.Students)
	ad.PATCH("/students/:id", h.Admin.DecideStudent)
	ad.GET("/payments", h.Payments.List)
	ad.POST("/payments/:id/approve", h.Payments.Approve)
	ad.POST("/payments/:id/reject", h.Payments.Reject)
	ad.POST("/notifications", h.Notifications.Send)
	ad.GET("/dashboard", h.Admin.Dashboard, cache)
	ad.GET("/attendance/export", h.Admin.ExportAttendance)
	ad.GET("/logs", h.Admin.Logs)
}
