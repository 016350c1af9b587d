package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemeIsOrdered(t *testing.T) {
	t.Parallel()

	for i, s := range scheme {
		assert.Equal(t, i+1, s.Index, "scheme %q", s.Description)
		assert.NotEmpty(t, strings.TrimSpace(s.Query))
	}
}

// The ledger upsert names this conflict target; the index has to match it.
func TestLedgerKeyIndex(t *testing.T) {
	t.Parallel()

	var found bool
	for _, s := range scheme {
		if strings.Contains(s.Query, "attendance_record_key_idx") {
			found = true
			assert.Contains(t, s.Query, "(tenant_id, subject_type, subject_id, (COALESCE(batch_id, 0)), date)")
			assert.Contains(t, s.Query, "UNIQUE")
		}
	}
	assert.True(t, found)
}
