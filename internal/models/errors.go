package models

import "fmt"

// ValidationError indicates a caller-supplied argument failed its schema check.
// Always terminal: surfaced as a top-level ok=false result.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}

// UpstreamHTTPError is a non-retryable upstream status (4xx other than 429).
// BodyPrefix carries at most the first 180 bytes of the response body.
type UpstreamHTTPError struct {
	Status     int
	BodyPrefix string
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("%d upstream error: %s", e.Status, e.BodyPrefix)
}

// UpstreamTransientError is a retryable failure that exhausted the retry
// budget. Status is the last HTTP status observed, or 0 for transport-level
// failures.
type UpstreamTransientError struct {
	Status int
	Reason string
}

func (e *UpstreamTransientError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%d upstream transient: %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("upstream transient: %s", e.Reason)
}

// UpstreamDecodeError indicates the upstream returned a non-JSON or
// unexpectedly shaped body.
type UpstreamDecodeError struct {
	Reason string
}

func (e *UpstreamDecodeError) Error() string {
	return fmt.Sprintf("upstream decode failed: %s", e.Reason)
}

// NormalizationError indicates a required field could not be normalized.
type NormalizationError struct {
	Field string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("cannot normalize required field %q", e.Field)
}

// ConsensusError indicates every expert call failed and no distribution can
// be formed.
type ConsensusError struct {
	Reason string
}

func (e *ConsensusError) Error() string {
	return fmt.Sprintf("consensus failed: %s", e.Reason)
}

// InternalError is a programming bug. The wire message is a stable redacted
// string; the detail is only for out-of-band logging.
type InternalError struct {
	Detail string
}

func (e *InternalError) Error() string {
	return "internal server error"
}
