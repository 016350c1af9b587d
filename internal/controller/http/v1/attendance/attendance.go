package attendance

import (
	"bytes"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"coaching/attendance/foundation/web"
	"coaching/attendance/internal/auth"
	"coaching/attendance/internal/entity"
	"coaching/attendance/internal/service/report"
	"coaching/attendance/internal/service/workflow"

	"github.com/pkg/errors"
)

type Controller struct {
	workflow Workflow
	now      func() time.Time
}

func NewController(workflow Workflow) *Controller {
	return &Controller{workflow: workflow, now: time.Now}
}

func claimsOf(c *web.Context) (auth.Claims, error) {
	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return auth.Claims{}, web.NewRequestError(err, http.StatusUnauthorized)
	}
	return claims, nil
}

func (uc Controller) MarkRoster(c *web.Context) error {
	claims, err := claimsOf(c)
	if err != nil {
		return c.RespondError(err)
	}

	var request RosterRequest
	if err := c.BindFunc(&request, "BatchID", "Date", "Items"); err != nil {
		return c.RespondError(err)
	}

	branchID, err := branchOf(claims, request.BranchID)
	if err != nil {
		return c.RespondError(err)
	}

	req := workflow.RosterRequest{
		TenantID: claims.TenantId,
		BranchID: branchID,
		BatchID:  request.BatchID,
		Date:     request.Date.ToTime(),
		Items:    make([]workflow.RosterItem, len(request.Items)),
	}
	for i, item := range request.Items {
		req.Items[i] = workflow.RosterItem{StudentID: item.StudentID, Status: item.Status, Remarks: item.Remarks}
	}

	result, err := uc.workflow.MarkRoster(c.Ctx, req)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": toResponses(result.Records),
			"holiday": toHolidayNote(result.Holiday),
		},
		"status": true,
	}, http.StatusOK)
}

// branchOf picks the branch a request acts on. A branch-scoped token can only
// act on its own branch.
func branchOf(claims auth.Claims, requested *int) (int, error) {
	switch {
	case claims.BranchId != nil && requested != nil && *requested != *claims.BranchId:
		return 0, errors.Wrapf(entity.ErrTenantMismatch, "token is scoped to branch %d", *claims.BranchId)
	case claims.BranchId != nil:
		return *claims.BranchId, nil
	case requested != nil:
		return *requested, nil
	}
	return 0, &web.Error{
		Err:    errors.New("missing required fields"),
		Status: http.StatusBadRequest,
		Fields: []web.FieldError{{Field: "branch_id", Error: "required"}},
	}
}

func (uc Controller) SubmitSelf(c *web.Context) error {
	claims, err := claimsOf(c)
	if err != nil {
		return c.RespondError(err)
	}

	var request SelfRequest
	if c.Request.ContentLength > 0 {
		if err := c.BindFunc(&request); err != nil {
			return c.RespondError(err)
		}
	}

	result, err := uc.workflow.SubmitSelf(c.Ctx, workflow.SelfRequest{
		TenantID:  claims.TenantId,
		TeacherID: claims.UserId,
		CheckIn:   uc.now(),
		Remarks:   request.Remarks,
	})
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"result":  toResponse(result.Record),
			"holiday": toHolidayNote(result.Holiday),
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Approve(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	claims, err := claimsOf(c)
	if err != nil {
		return c.RespondError(err)
	}

	record, err := uc.workflow.Approve(c.Ctx, claims.TenantId, id, claims.UserId)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   toResponse(record),
		"status": true,
	}, http.StatusOK)
}

// historyQuery reads subject_type, subject_id, from and to.
func historyQuery(c *web.Context, tenantID int) (workflow.HistoryQuery, error) {
	q := workflow.HistoryQuery{TenantID: tenantID}

	if subjectType, ok := c.GetQueryFunc(reflect.String, "subject_type").(*string); ok {
		q.SubjectType = entity.SubjectType(*subjectType)
	}
	if subjectID, ok := c.GetQueryFunc(reflect.Int, "subject_id").(*int); ok {
		q.SubjectID = *subjectID
	}
	if from := c.GetDateQuery("from"); from != nil {
		q.From = from.ToTime()
	}
	if to := c.GetDateQuery("to"); to != nil {
		q.To = to.ToTime()
	}
	if err := c.ValidQuery(); err != nil {
		return workflow.HistoryQuery{}, err
	}

	return q, nil
}

func (uc Controller) GetHistory(c *web.Context) error {
	claims, err := claimsOf(c)
	if err != nil {
		return c.RespondError(err)
	}

	q, err := historyQuery(c, claims.TenantId)
	if err != nil {
		return c.RespondError(err)
	}

	list, err := uc.workflow.History(c.Ctx, q)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": toResponses(list),
			"count":   len(list),
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) ExportHistory(c *web.Context) error {
	claims, err := claimsOf(c)
	if err != nil {
		return c.RespondError(err)
	}

	format := report.FormatXLSX
	if f, ok := c.GetQueryFunc(reflect.String, "format").(*string); ok {
		format = *f
	}
	contentType := report.ContentType(format)
	if contentType == "" {
		return c.RespondError(errors.Wrapf(entity.ErrValidation, "format must be %s or %s", report.FormatXLSX, report.FormatPDF))
	}

	q, err := historyQuery(c, claims.TenantId)
	if err != nil {
		return c.RespondError(err)
	}

	list, err := uc.workflow.History(c.Ctx, q)
	if err != nil {
		return c.RespondError(err)
	}

	title := fmt.Sprintf("%s %d: %s to %s", q.SubjectType, q.SubjectID, q.From.Format("2006-01-02"), q.To.Format("2006-01-02"))

	var buf bytes.Buffer
	if err := report.Write(&buf, format, title, list); err != nil {
		return c.RespondError(err)
	}

	filename := fmt.Sprintf("attendance_%s_%d_%s_%s.%s",
		q.SubjectType, q.SubjectID, q.From.Format("20060102"), q.To.Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())

	return nil
}

func (uc Controller) GetPending(c *web.Context) error {
	claims, err := claimsOf(c)
	if err != nil {
		return c.RespondError(err)
	}

	branchID, _ := c.GetQueryFunc(reflect.Int, "branch_id").(*int)
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}
	branchID, err = scopedBranch(claims, branchID)
	if err != nil {
		return c.RespondError(err)
	}

	list, err := uc.workflow.PendingApprovals(c.Ctx, claims.TenantId, branchID)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": toResponses(list),
			"count":   len(list),
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetSummary(c *web.Context) error {
	claims, err := claimsOf(c)
	if err != nil {
		return c.RespondError(err)
	}

	branchID, _ := c.GetQueryFunc(reflect.Int, "branch_id").(*int)
	q, err := historyQuery(c, claims.TenantId)
	if err != nil {
		return c.RespondError(err)
	}
	branchID, err = scopedBranch(claims, branchID)
	if err != nil {
		return c.RespondError(err)
	}

	summary, err := uc.workflow.Summary(c.Ctx, q, branchID)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   summary,
		"status": true,
	}, http.StatusOK)
}

// scopedBranch narrows an optional branch filter to the token's branch. A
// branch-scoped token may not ask for another branch.
func scopedBranch(claims auth.Claims, branchID *int) (*int, error) {
	if claims.BranchId == nil {
		return branchID, nil
	}
	if branchID != nil && *branchID != *claims.BranchId {
		return nil, errors.Wrapf(entity.ErrTenantMismatch, "token is scoped to branch %d", *claims.BranchId)
	}
	return claims.BranchId, nil
}
