package game

import "errors"

// Kind classifies a failure so callers can map it to a transport response
// without parsing messages.
type Kind string

const (
	KindInvalidInput          Kind = "invalid_input"
	KindTargetNotRegistered   Kind = "target_not_registered"
	KindTargetMissingDelivery Kind = "target_missing_delivery"
	KindDeliveryFailed        Kind = "delivery_failed"
	KindStoreUnavailable      Kind = "store_unavailable"
)

// Error carries a machine readable kind plus a human readable message.
// Delivery and store failures wrap the upstream error for diagnostics.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func storeError(err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: "store operation failed", Err: err}
}

// KindOf extracts the kind from err. ok is false for errors that did not
// originate in this package.
func KindOf(err error) (Kind, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return "", false
}
