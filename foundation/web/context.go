package web

import (
	"context"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Context is the per-request state handed to a Handler. Ctx is the request
// context; middleware may replace it with a derived one.
type Context struct {
	*gin.Context
	Ctx context.Context

	log  *zap.SugaredLogger
	errs []FieldError
}

// Log returns the application logger.
func (c *Context) Log() *zap.SugaredLogger {
	return c.log
}

// Respond writes data as JSON.
func (c *Context) Respond(data interface{}, status int) error {
	if status == http.StatusNoContent {
		c.Status(status)
		return nil
	}
	c.JSON(status, data)
	return nil
}

// RespondError answers the request with err's status and message. Server-side
// failures are logged with their full chain.
func (c *Context) RespondError(err error) error {
	status, fields := statusOf(err)

	if status >= http.StatusInternalServerError && c.log != nil {
		c.log.Errorw("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"error", err.Error(),
		)
	}

	body := map[string]interface{}{
		"status": false,
		"error":  err.Error(),
	}
	if kind := kindOf(err); kind != "" {
		body["kind"] = kind
	}
	if len(fields) > 0 {
		body["fields"] = fields
	}

	c.AbortWithStatusJSON(status, body)
	return nil
}

// BindFunc decodes the request body into dest and then checks that every
// named struct field is set. A name may list several fields separated by commas.
func (c *Context) BindFunc(dest interface{}, required ...string) error {
	if err := c.ShouldBind(dest); err != nil {
		return NewRequestError(errors.Wrap(err, "binding request"), http.StatusBadRequest)
	}

	v := reflect.Indirect(reflect.ValueOf(dest))
	if v.Kind() != reflect.Struct {
		return nil
	}

	var fields []FieldError
	for _, group := range required {
		for _, name := range strings.Split(group, ",") {
			name = strings.TrimSpace(name)
			f := v.FieldByName(name)
			if !f.IsValid() {
				continue
			}
			if f.IsZero() {
				fields = append(fields, FieldError{Field: name, Error: "required"})
			}
		}
	}
	if len(fields) > 0 {
		return &Error{Err: errors.New("missing required fields"), Status: http.StatusBadRequest, Fields: fields}
	}

	return nil
}

// GetParam parses a path parameter. On failure the problem is recorded for
// ValidParam and the zero value of kind is returned.
func (c *Context) GetParam(kind reflect.Kind, name string) interface{} {
	raw := c.Param(name)

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.errs = append(c.errs, FieldError{Field: name, Error: "must be an integer"})
			return 0
		}
		return v
	default:
		if raw == "" {
			c.errs = append(c.errs, FieldError{Field: name, Error: "required"})
		}
		return raw
	}
}

// GetQueryFunc parses an optional query parameter into a pointer of kind. It
// returns nil when the parameter is absent or invalid; invalid values are
// recorded for ValidQuery.
func (c *Context) GetQueryFunc(kind reflect.Kind, name string) interface{} {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil
	}

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.errs = append(c.errs, FieldError{Field: name, Error: "must be an integer"})
			return nil
		}
		return &v
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.errs = append(c.errs, FieldError{Field: name, Error: "must be a boolean"})
			return nil
		}
		return &v
	default:
		return &raw
	}
}

// GetDateQuery parses an optional YYYY-MM-DD query parameter.
func (c *Context) GetDateQuery(name string) *date.Date {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil
	}

	d, err := date.ParseDate(raw)
	if err != nil {
		c.errs = append(c.errs, FieldError{Field: name, Error: "must be a date (YYYY-MM-DD)"})
		return nil
	}
	return &d
}

// ValidParam reports path parameter problems collected so far.
func (c *Context) ValidParam() error {
	return c.collected("invalid path parameters")
}

// ValidQuery reports query parameter problems collected so far.
func (c *Context) ValidQuery() error {
	return c.collected("invalid query parameters")
}

func (c *Context) collected(msg string) error {
	if len(c.errs) == 0 {
		return nil
	}
	fields := c.errs
	c.errs = nil
	return &Error{Err: errors.New(msg), Status: http.StatusBadRequest, Fields: fields}
}
