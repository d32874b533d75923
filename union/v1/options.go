package v1

import (
	"fmt"
	goruntime "runtime"
	"strings"
)

// LookupMode selects the contract UnionRepository.GetPage follows.
type LookupMode int

const (
	// LookupModeDirectProbe calls GetPage on every backing repository in
	// order and returns the first page found. A page missing everywhere is
	// reported as not found without an error.
	LookupModeDirectProbe LookupMode = iota
	// LookupModeExistenceGated asks every backing repository for existence
	// first and fetches from the first one that reports the page. A page
	// missing everywhere is reported as a *pages.PageNotFoundError.
	LookupModeExistenceGated
)

const (
	lookupModeDirectProbe    = "direct-probe"
	lookupModeExistenceGated = "existence-gated"
)

func (m LookupMode) String() string {
	switch m {
	case LookupModeDirectProbe:
		return lookupModeDirectProbe
	case LookupModeExistenceGated:
		return lookupModeExistenceGated
	default:
		return fmt.Sprintf("LookupMode(%d)", int(m))
	}
}

// ParseLookupMode parses the textual form produced by LookupMode.String.
// The empty string selects LookupModeDirectProbe.
func ParseLookupMode(s string) (LookupMode, error) {
	switch strings.ToLower(s) {
	case "", lookupModeDirectProbe:
		return LookupModeDirectProbe, nil
	case lookupModeExistenceGated:
		return LookupModeExistenceGated, nil
	default:
		return 0, fmt.Errorf("invalid lookup mode %q, must be one of %s, %s", s, lookupModeDirectProbe, lookupModeExistenceGated)
	}
}

type Option func(*Options)

// WithLookupMode selects the GetPage contract.
func WithLookupMode(mode LookupMode) Option {
	return func(options *Options) {
		options.LookupMode = mode
	}
}

// WithGoRoutineLimit limits the number of active goroutines for concurrent
// operations such as health checks.
func WithGoRoutineLimit(numGoRoutines int) Option {
	return func(options *Options) {
		options.GoRoutineLimit = numGoRoutines
	}
}

type Options struct {
	LookupMode     LookupMode
	GoRoutineLimit int
}

func newOptions(opts []Option) Options {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.GoRoutineLimit <= 0 {
		options.GoRoutineLimit = goruntime.NumCPU()
	}
	return options
}
