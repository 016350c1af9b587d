package postgresql

import (
	"database/sql/driver"
	"io"
	"testing"

	"coaching/attendance/internal/entity"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapMarksTransient(t *testing.T) {
	t.Parallel()

	err := Wrap(driver.ErrBadConn, "upserting")
	require.ErrorIs(t, err, entity.ErrTransient)
	assert.Contains(t, err.Error(), "upserting")

	err = Wrap(io.ErrUnexpectedEOF, "reading")
	require.ErrorIs(t, err, entity.ErrTransient)

	err = Wrap(errors.New("syntax error"), "selecting")
	require.NotErrorIs(t, err, entity.ErrTransient)

	assert.NoError(t, Wrap(nil, "noop"))
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	type request struct {
		Name  string `validate:"required"`
		Grace int    `validate:"gte=0"`
	}

	var d Database
	require.NoError(t, d.ValidateStruct(&request{Name: "x"}))
	require.ErrorIs(t, d.ValidateStruct(&request{Grace: 1}), entity.ErrValidation)
	require.ErrorIs(t, d.ValidateStruct(&request{Name: "x", Grace: -1}), entity.ErrValidation)
	require.ErrorIs(t, d.ValidateStruct(&request{}, "Name"), entity.ErrValidation)
}
