package order

import "errors"

// Error taxonomy for the sync pipeline. Auth failures get their own
// sentinel because they drive a specific remediation message ("check
// your API key") instead of the generic transport one.
var (
	// Precondition errors
	ErrAPIKeyMissing = errors.New("order: no API key configured")

	// Remote source errors
	ErrTransport         = errors.New("order: marketplace request failed")
	ErrAuthFailed        = errors.New("order: marketplace authentication failed")
	ErrMalformedResponse = errors.New("order: malformed marketplace response")

	// Concurrency-guard violations
	ErrRefreshInFlight  = errors.New("order: refresh already in progress")
	ErrMutationRejected = errors.New("order: mutation rejected while refresh is in progress")

	// Lookup errors
	ErrOrderNotFound     = errors.New("order: order not found")
	ErrPackagingNotFound = errors.New("order: packaging not found")
	ErrPackagingInUse    = errors.New("order: packaging is still assigned to orders")
)
