package router

import (
	"coaching/attendance/foundation/web"
	"coaching/attendance/internal/auth"
	"coaching/attendance/internal/middleware"
	"coaching/attendance/internal/service/holiday"
	"coaching/attendance/internal/service/workflow"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attendance_controller "coaching/attendance/internal/controller/http/v1/attendance"
	holiday_controller "coaching/attendance/internal/controller/http/v1/holiday"
	shift_controller "coaching/attendance/internal/controller/http/v1/shift"
)

type Router struct {
	*web.App
	auth           *auth.Auth
	workflow       *workflow.Workflow
	rules          holiday.Store
	resolver       *holiday.Resolver
	shifts         shift_controller.Shifts
	allowedOrigins []string
}

func NewRouter(
	app *web.App,
	auth *auth.Auth,
	workflow *workflow.Workflow,
	rules holiday.Store,
	resolver *holiday.Resolver,
	shifts shift_controller.Shifts,
	allowedOrigins []string,
) *Router {
	return &Router{
		app,
		auth,
		workflow,
		rules,
		resolver,
		shifts,
		allowedOrigins,
	}
}

func (r Router) Init() error {

	r.HandleMethodNotAllowed = true
	r.Use(middleware.CORS(r.allowedOrigins))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// controller
	attendanceController := attendance_controller.NewController(r.workflow)
	holidayController := holiday_controller.NewController(r.rules, r.resolver)
	shiftController := shift_controller.NewController(r.shifts)

	// #holiday
	r.Get("/api/v1/holiday/resolve", holidayController.Resolve, middleware.Authenticate(r.auth))
	r.Get("/api/v1/holiday/check", holidayController.Check, middleware.Authenticate(r.auth))
	r.Get("/api/v1/holiday/list", holidayController.GetList, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Post("/api/v1/holiday/create", holidayController.Create, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Put("/api/v1/holiday/:id", holidayController.Update, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Delete("/api/v1/holiday/:id", holidayController.Delete, middleware.Authenticate(r.auth, auth.RoleAdmin))

	// #shift
	r.Get("/api/v1/shift/list", shiftController.GetList, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Post("/api/v1/shift/create", shiftController.Create, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Put("/api/v1/shift/:id", shiftController.Update, middleware.Authenticate(r.auth, auth.RoleAdmin))

	// #attendance
	r.Post("/api/v1/attendance/roster", attendanceController.MarkRoster, middleware.Authenticate(r.auth, auth.RoleTeacher, auth.RoleAdmin))
	r.Post("/api/v1/attendance/self", attendanceController.SubmitSelf, middleware.Authenticate(r.auth, auth.RoleTeacher))
	r.Patch("/api/v1/attendance/:id/approve", attendanceController.Approve, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/attendance/history", attendanceController.GetHistory, middleware.Authenticate(r.auth))
	r.Get("/api/v1/attendance/history/export", attendanceController.ExportHistory, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/attendance/pending", attendanceController.GetPending, middleware.Authenticate(r.auth, auth.RoleAdmin))
	r.Get("/api/v1/attendance/summary", attendanceController.GetSummary, middleware.Authenticate(r.auth))

	return nil
}
