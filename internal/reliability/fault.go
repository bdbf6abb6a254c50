package reliability

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a request failure for surfacing and diagnostics.
type Kind string

const (
	// KindConfiguration: a required credential or setting is missing. Not retryable.
	KindConfiguration Kind = "configuration_error"
	// KindValidation: a mandatory input is missing or malformed. Not retryable.
	KindValidation Kind = "validation_error"
	// KindUpstream: a provider call returned non-success. Provider detail preserved.
	KindUpstream Kind = "upstream_error"
	// KindUnexpected: anything uncaught, converted at the orchestrator boundary.
	KindUnexpected Kind = "unexpected_error"
)

// Fault is a structured failure produced at an orchestrator boundary.
// Nothing past that boundary is allowed to fail a request any other way.
type Fault struct {
	Kind   Kind
	Detail string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

func Configuration(detail string) *Fault {
	return &Fault{Kind: KindConfiguration, Detail: detail}
}

func Validation(detail string) *Fault {
	return &Fault{Kind: KindValidation, Detail: detail}
}

func Upstream(detail string) *Fault {
	return &Fault{Kind: KindUpstream, Detail: detail}
}

func Unexpected(detail string) *Fault {
	return &Fault{Kind: KindUnexpected, Detail: detail}
}

// Upstreamf is Upstream with formatting.
func Upstreamf(format string, args ...any) *Fault {
	return Upstream(fmt.Sprintf(format, args...))
}

// HTTPStatus maps a fault kind to the status class it is surfaced as.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// KindOf extracts the fault kind from an arbitrary error, defaulting to unexpected.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnexpected
}

// DetailOf extracts the fault detail, falling back to the error text.
func DetailOf(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Detail
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// IsRetryableHTTPStatus classifies retryable HTTP status codes. The orchestrators
// never retry on their own; this feeds provider error metrics and diagnostics.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
