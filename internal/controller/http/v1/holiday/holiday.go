package holiday

import (
	"net/http"
	"reflect"

	"coaching/attendance/foundation/web"
	"coaching/attendance/internal/auth"
	"coaching/attendance/internal/entity"

	"github.com/pkg/errors"
)

type Controller struct {
	rules    Rules
	resolver Resolver
}

func NewController(rules Rules, resolver Resolver) *Controller {
	return &Controller{rules: rules, resolver: resolver}
}

func claimsOf(c *web.Context) (auth.Claims, error) {
	claims, err := auth.GetClaims(c.Ctx)
	if err != nil {
		return auth.Claims{}, web.NewRequestError(err, http.StatusUnauthorized)
	}
	return claims, nil
}

// scope returns the branch to resolve for: the query's branch_id, limited to
// the token's branch when the token has one.
func scope(c *web.Context, claims auth.Claims) (*int, error) {
	branchID, _ := c.GetQueryFunc(reflect.Int, "branch_id").(*int)
	if claims.BranchId == nil {
		return branchID, nil
	}
	if branchID != nil && *branchID != *claims.BranchId {
		return nil, errors.Wrapf(entity.ErrTenantMismatch, "token is scoped to branch %d", *claims.BranchId)
	}
	return claims.BranchId, nil
}

func (uc Controller) Resolve(c *web.Context) error {
	claims, err := claimsOf(c)
	if err != nil {
		return c.RespondError(err)
	}

	branchID, err := scope(c, claims)
	if err != nil {
		return c.RespondError(err)
	}
	from, to := c.GetDateQuery("from"), c.GetDateQuery("to")
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}
	if from == nil || to == nil {
		return c.RespondError(errors.Wrap(entity.ErrValidation, "from and to are required"))
	}

	matches, err := uc.resolver.IsHolidayRange(c.Ctx, claims.TenantId, branchID, from.ToTime(), to.ToTime())
	if err != nil {
		return c.RespondError(err)
	}

	list := make([]DayResponse, len(matches))
	for i, m := range matches {
		rule := m.Rule
		list[i] = dayResponse(m.Date, &rule)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   len(list),
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Check(c *web.Context) error {
	claims, err := claimsOf(c)
	if err != nil {
		return c.RespondError(err)
	}

	branchID, err := scope(c, claims)
	if err != nil {
		return c.RespondError(err)
	}
	day := c.GetDateQuery("date")
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}
	if day == nil {
		return c.RespondError(errors.Wrap(entity.ErrValidation, "date is required"))
	}

	_, rule, err := uc.resolver.IsHoliday(c.Ctx, claims.TenantId, branchID, day.ToTime())
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   dayResponse(day.ToTime(), rule),
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetList(c *web.Context) error {
	claims, err := claimsOf(c)
	if err != nil {
		return c.RespondError(err)
	}

	list, err := uc.rules.List(c.Ctx, claims.TenantId)
	if err != nil {
		return c.RespondError(err)
	}

	results := make([]RuleResponse, len(list))
	for i, r := range list {
		results[i] = toResponse(r)
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
	claims, err := claimsOf(c)
	if err != nil {
		return c.RespondError(err)
	}

	var request RuleRequest
	if err := c.BindFunc(&request, "Name", "Type"); err != nil {
		return c.RespondError(err)
	}
	if err := checkBranch(claims, request.BranchID); err != nil {
		return c.RespondError(err)
	}

	rule, err := uc.rules.Create(c.Ctx, request.toEntity(claims.TenantId))
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   toResponse(rule),
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Update(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	claims, err := claimsOf(c)
	if err != nil {
		return c.RespondError(err)
	}

	var request RuleRequest
	if err := c.BindFunc(&request, "Name", "Type"); err != nil {
		return c.RespondError(err)
	}
	if err := checkBranch(claims, request.BranchID); err != nil {
		return c.RespondError(err)
	}
	if claims.BranchId != nil {
		current, err := uc.rules.GetByID(c.Ctx, claims.TenantId, id)
		if err != nil {
			return c.RespondError(err)
		}
		if err := checkBranch(claims, current.BranchID); err != nil {
			return c.RespondError(err)
		}
	}

	rule := request.toEntity(claims.TenantId)
	rule.ID = id

	rule, err = uc.rules.Update(c.Ctx, rule)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   toResponse(rule),
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Delete(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	claims, err := claimsOf(c)
	if err != nil {
		return c.RespondError(err)
	}

	if claims.BranchId != nil {
		current, err := uc.rules.GetByID(c.Ctx, claims.TenantId, id)
		if err != nil {
			return c.RespondError(err)
		}
		if err := checkBranch(claims, current.BranchID); err != nil {
			return c.RespondError(err)
		}
	}

	if err := uc.rules.Delete(c.Ctx, claims.TenantId, id); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

// checkBranch keeps branch-scoped admins to rules of their own branch.
func checkBranch(claims auth.Claims, branchID *int) error {
	if claims.BranchId == nil {
		return nil
	}
	if branchID == nil || *branchID != *claims.BranchId {
		return errors.Wrapf(entity.ErrTenantMismatch, "token is scoped to branch %d", *claims.BranchId)
	}
	return nil
}
