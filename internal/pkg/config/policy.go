package config

import (
	"os"
	"time"
	_ "time/tzdata"

	"coaching/attendance/internal/entity"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TenantPolicy holds the per-tenant settings the attendance workflow consults.
type TenantPolicy struct {
	// TimeZone is the IANA zone check-ins are converted to before the
	// calendar day and lateness are computed.
	TimeZone string
	// DefaultSelfStatus is used for teachers without a shift. Empty means
	// such submissions are rejected.
	DefaultSelfStatus entity.AttendanceStatus
	// RejectOnHoliday refuses attendance on holidays instead of only
	// annotating the response.
	RejectOnHoliday bool

	location *time.Location
}

// Location is the parsed TimeZone, UTC when unset.
func (p TenantPolicy) Location() *time.Location {
	if p.location == nil {
		return time.UTC
	}
	return p.location
}

// policyEntry is one entry of the file. Unset fields of a tenant entry fall
// back to the default entry, so an explicit false has to be told apart from
// a missing key.
type policyEntry struct {
	TimeZone          string                  `yaml:"time_zone"`
	DefaultSelfStatus entity.AttendanceStatus `yaml:"default_self_status"`
	RejectOnHoliday   *bool                   `yaml:"reject_on_holiday"`
}

type policyFile struct {
	Default policyEntry         `yaml:"default"`
	Tenants map[int]policyEntry `yaml:"tenants"`
}

// Policies resolves the policy of a tenant: its own entry merged over the
// default entry.
type Policies struct {
	def     TenantPolicy
	tenants map[int]TenantPolicy
}

// DefaultPolicies is used when no policy file exists.
func DefaultPolicies() *Policies {
	return &Policies{def: TenantPolicy{TimeZone: "UTC", location: time.UTC}, tenants: map[int]TenantPolicy{}}
}

// LoadPolicies reads the YAML policy file at path. A missing file yields the
// defaults.
func LoadPolicies(path string) (*Policies, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultPolicies(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading policy file")
	}
	return ParsePolicies(data)
}

// ParsePolicies decodes and validates a policy document.
func ParsePolicies(data []byte) (*Policies, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decoding policy file")
	}

	base := TenantPolicy{
		TimeZone:          f.Default.TimeZone,
		DefaultSelfStatus: f.Default.DefaultSelfStatus,
	}
	if base.TimeZone == "" {
		base.TimeZone = "UTC"
	}
	if f.Default.RejectOnHoliday != nil {
		base.RejectOnHoliday = *f.Default.RejectOnHoliday
	}
	def, err := base.compile()
	if err != nil {
		return nil, errors.Wrap(err, "default policy")
	}

	p := &Policies{def: def, tenants: make(map[int]TenantPolicy, len(f.Tenants))}
	for id, entry := range f.Tenants {
		merged := def
		if entry.TimeZone != "" {
			merged.TimeZone = entry.TimeZone
		}
		if entry.DefaultSelfStatus != "" {
			merged.DefaultSelfStatus = entry.DefaultSelfStatus
		}
		if entry.RejectOnHoliday != nil {
			merged.RejectOnHoliday = *entry.RejectOnHoliday
		}

		if merged, err = merged.compile(); err != nil {
			return nil, errors.Wrapf(err, "tenant %d policy", id)
		}
		p.tenants[id] = merged
	}

	return p, nil
}

// For returns the policy of tenantID.
func (p *Policies) For(tenantID int) TenantPolicy {
	if tp, ok := p.tenants[tenantID]; ok {
		return tp
	}
	return p.def
}

func (p TenantPolicy) compile() (TenantPolicy, error) {
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return p, errors.Wrapf(err, "time zone %q", p.TimeZone)
	}
	p.location = loc

	switch p.DefaultSelfStatus {
	case "", entity.StatusPresent, entity.StatusLate:
	default:
		return p, errors.Errorf("default_self_status %q must be Present or Late", p.DefaultSelfStatus)
	}

	return p, nil
}
