package shift

import (
	"net/http"
	"reflect"

	"coaching/attendance/foundation/web"
	"coaching/attendance/internal/auth"
	"coaching/attendance/internal/entity"
	"coaching/attendance/internal/service/shift"
)

type Controller struct {
	shifts Shifts
}

func NewController(shifts Shifts) *Controller {
	return &Controller{shifts: shifts}
}

type Request struct {
	Name         string `json:"name"          form:"name"`
	StartTime    string `json:"start_time"    form:"start_time"`
	EndTime      string `json:"end_time"      form:"end_time"`
	GraceMinutes int    `json:"grace_minutes" form:"grace_minutes"`
}

type Response struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	GraceMinutes int    `json:"grace_minutes"`
}

// toEntity validates the request and normalizes the clock values to HH:MM.
func (r Request) toEntity(tenantID int) (entity.Shift, error) {
	s := entity.Shift{
		TenantID:     tenantID,
		Name:         r.Name,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		GraceMinutes: r.GraceMinutes,
	}

	def, err := shift.FromEntity(s)
	if err != nil {
		return entity.Shift{}, err
	}
	s.StartTime, s.EndTime = def.Start.String(), def.End.String()
	return s, nil
}

func toResponse(s entity.Shift) Response {
	res := Response{ID: s.ID, Name: s.Name, StartTime: s.StartTime, EndTime: s.EndTime, GraceMinutes: s.GraceMinutes}
	// TIME columns come back with seconds.
	if def, err := shift.FromEntity(s); err == nil {
		res.StartTime, res.EndTime = def.Start.String(), def.End.String()
	}
	return res
}

func (uc Controller) GetList(c *web.Context) error {
	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return c.RespondError(web.NewRequestError(err, http.StatusUnauthorized))
	}

	list, err := uc.shifts.List(c.Ctx, claims.TenantId)
	if err != nil {
		return c.RespondError(err)
	}

	results := make([]Response, len(list))
	for i, s := range list {
		results[i] = toResponse(s)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": results,
			"count":   len(results),
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Create(c *web.Context) error {
	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return c.RespondError(web.NewRequestError(err, http.StatusUnauthorized))
	}

	var request Request
	if err := c.BindFunc(&request, "Name", "StartTime", "EndTime"); err != nil {
		return c.RespondError(err)
	}

	s, err := request.toEntity(claims.TenantId)
	if err != nil {
		return c.RespondError(err)
	}

	s, err = uc.shifts.Create(c.Ctx, s)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   toResponse(s),
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Update(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return c.RespondError(web.NewRequestError(err, http.StatusUnauthorized))
	}

	var request Request
	if err := c.BindFunc(&request, "Name", "StartTime", "EndTime"); err != nil {
		return c.RespondError(err)
	}

	s, err := request.toEntity(claims.TenantId)
	if err != nil {
		return c.RespondError(err)
	}
	s.ID = id

	s, err = uc.shifts.Update(c.Ctx, s)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   toResponse(s),
		"status": true,
	}, http.StatusOK)
}
