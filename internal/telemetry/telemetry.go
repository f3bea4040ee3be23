package telemetry

import (
	"fmt"
)

// API is what every component reports through instead of logging directly,
// tests swap in a Recorder to assert on what was reported.
type API interface {
	// ReportBroken reports a component that failed in a way someone should fix.
	//
	// ids name the component (`scraper.location-page`), not the line that
	// failed. Details such as the offending selector or location id go into
	// params. ids are lowercase, underscores separate words of a component and
	// dashes separate a component from its operation.
	ReportBroken(id string, params ...any)
	// ReportWarning reports something unexpected that the component recovered
	// from, such as a single failed page fetch.
	ReportWarning(id string, params ...any)
	// ReportDebug is dropped outside of verbose runs.
	ReportDebug(msg string, params ...any)
	// ReportCount reports a gauge, the latest value wins.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with "<namespace>: " before passing it on.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s: %s", s.namespace, id), count)
}
