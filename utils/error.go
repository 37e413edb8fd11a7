package utils

import "errors"

// Sentinel errors shared across models and workflow. Handlers map these onto
// HTTP status codes; everything else surfaces as a 500.
var (
	ErrorRecordNotFound    = errors.New("record not found")
	ErrorForbidden         = errors.New("forbidden")
	ErrorConflict          = errors.New("conflict")
	ErrorExpired           = errors.New("approval request has expired")
	ErrorInsufficientFunds = errors.New("insufficient funds")
	ErrorBadRequest        = errors.New("bad request")
)

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
