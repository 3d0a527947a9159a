package types

import "errors"

// Validation and signing failures surfaced by the order pipeline. All are
// terminal for the call that raised them; the SDK never retries on its own.
// Wrapped causes (signing, encoding) stay reachable through errors.Is/As.
var (
	// ErrInvalidQuantity is returned when a quantity or currency value is
	// below the minimum tradable threshold.
	ErrInvalidQuantity = errors.New("invalid quantity: below minimum tradable amount")

	// ErrInvalidExpiration is returned when a limit order expiration is not
	// strictly in the future.
	ErrInvalidExpiration = errors.New("invalid expiration: must be in the future")

	// ErrMakerSignerMismatch is returned when an explicit maker conflicts
	// with the resolved signer identity.
	ErrMakerSignerMismatch = errors.New("maker does not match signer identity")

	// ErrMissingSigner is returned when an operation that needs a signing
	// identity runs without one configured.
	ErrMissingSigner = errors.New("no signing identity configured")

	// ErrInvalidSigner is returned when account-abstraction owner
	// verification fails at construction.
	ErrInvalidSigner = errors.New("signer is not the registered owner of the funding account")

	// ErrFailedOrderSign wraps a failure from the underlying signing call.
	ErrFailedOrderSign = errors.New("order signing failed")

	// ErrFailedTypedDataEncoder wraps a failure from typed-data hashing.
	ErrFailedTypedDataEncoder = errors.New("typed data encoding failed")

	// ErrInvalidMultiOutcomeConfig is returned when a token identifier is
	// not registered against the exchange variant implied by the call.
	ErrInvalidMultiOutcomeConfig = errors.New("token not registered for the implied exchange variant")
)
