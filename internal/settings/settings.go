// Package settings holds runtime-switchable configuration.
package settings

import (
	"errors"
	"sync/atomic"
	"time"
)

// Method selects how the insurance policy excerpt is obtained.
type Method string

const (
	MethodPDFExtract   Method = "pdf_extract"
	MethodVectorSearch Method = "vector_search"
)

// ErrInvalidMethod is returned for an unknown insurance context method.
var ErrInvalidMethod = errors.New("invalid method, must be 'pdf_extract' or 'vector_search'")

// ParseMethod validates s.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodPDFExtract, MethodVectorSearch:
		return m, nil
	default:
		return "", ErrInvalidMethod
	}
}

// Snapshot is an immutable view of the runtime settings.
type Snapshot struct {
	InsuranceMethod Method
	UpdatedAt       time.Time
}

// Runtime holds the current Snapshot. Readers take one Snapshot per request
// and pass its values down; writers replace it whole.
type Runtime struct {
	current atomic.Pointer[Snapshot]
}

// NewRuntime creates a Runtime with the initial method.
func NewRuntime(initial Method) (*Runtime, error) {
	if _, err := ParseMethod(string(initial)); err != nil {
		return nil, err
	}
	r := &Runtime{}
	r.current.Store(&Snapshot{InsuranceMethod: initial, UpdatedAt: time.Now().UTC()})
	return r, nil
}

// Snapshot returns the current settings.
func (r *Runtime) Snapshot() Snapshot {
	return *r.current.Load()
}

// SetInsuranceMethod validates and publishes a new method. Last write wins.
func (r *Runtime) SetInsuranceMethod(s string) (Snapshot, error) {
	m, err := ParseMethod(s)
	if err != nil {
		return r.Snapshot(), err
	}
	next := &Snapshot{InsuranceMethod: m, UpdatedAt: time.Now().UTC()}
	r.current.Store(next)
	return *next, nil
}
