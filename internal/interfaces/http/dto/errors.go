package dto

import "net/http"

// Error codes returned in the response envelope
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeStillInUse      = "STILL_IN_USE"
	ErrCodeRefreshBusy     = "REFRESH_IN_PROGRESS"
	ErrCodeMutationBlocked = "MUTATION_BLOCKED"
	ErrCodePrecondition    = "PRECONDITION_FAILED"
	ErrCodeUpstreamAuth    = "UPSTREAM_AUTH_FAILED"
	ErrCodeUpstream        = "UPSTREAM_FAILED"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

var statusByCode = map[string]int{
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeStillInUse:      http.StatusConflict,
	ErrCodeRefreshBusy:     http.StatusConflict,
	ErrCodeMutationBlocked: http.StatusConflict,
	ErrCodePrecondition:    http.StatusPreconditionFailed,
	ErrCodeUpstreamAuth:    http.StatusBadGateway,
	ErrCodeUpstream:        http.StatusBadGateway,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus maps an error code to its HTTP status
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
