package model

import "fmt"

// AmbiguousTargetError is returned when a target string cannot be
// resolved to a project, group or namespace.
type AmbiguousTargetError struct {
	Target string
}

func (e *AmbiguousTargetError) Error() string {
	return fmt.Sprintf("cannot identify if the target %s is a group, project or namespace", e.Target)
}

// InvalidDateOrRefError is returned when a since/until value resolves
// as neither a git reference nor a parseable date.
type InvalidDateOrRefError struct {
	Value string
}

func (e *InvalidDateOrRefError) Error() string {
	return fmt.Sprintf("%s not found as a ref or valid date format", e.Value)
}

// QueryFailedError is returned when the GraphQL API reports a
// non-success status or an error list during an activity query.
// Query holds the offending query string.
type QueryFailedError struct {
	Query   string
	Message string
}

func (e *QueryFailedError) Error() string {
	return fmt.Sprintf("query failed: %s: %s", e.Message, e.Query)
}

// MalformedResponseError is returned by the normalizer when a required
// field is absent from a response node. No partial record is built.
type MalformedResponseError struct {
	Field string
	Kind  Kind
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s node: missing required field %q", e.Kind, e.Field)
}
