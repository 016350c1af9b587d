package workflow

import (
	"strings"
	"unicode/utf8"

	"coaching/attendance/internal/entity"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

const maxRemarks = 500

// cleanRemarks trims remarks and folds them to NFC. Blank remarks become nil.
func cleanRemarks(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}

	v := norm.NFC.String(strings.TrimSpace(*s))
	if v == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(v) > maxRemarks {
		return nil, errors.Wrapf(entity.ErrValidation, "remarks longer than %d characters", maxRemarks)
	}
	return &v, nil
}
