package entity

import "errors"

// Adapters wrap these so the use cases can classify a failure without
// looking at transport details.
var (
	ErrProviderRejected = errors.New("provider rejected the request")
	ErrNetwork          = errors.New("request did not complete")
)
