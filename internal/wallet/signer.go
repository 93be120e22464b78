// Package wallet defines the signing boundary. The pipeline hands a signer
// an unsigned envelope string and expects back a signed envelope string; the
// signer never sees internal types. The browser extension wallet lives
// behind this same boundary and is external to this system.
package wallet

import (
	"context"
	"errors"
)

// ErrDeclined is returned by a signer when the user refuses to sign.
// Callers surface it as a SigningDeclined error and must not submit
// anything afterwards.
var ErrDeclined = errors.New("signing declined")

// Signer turns an unsigned envelope into a signed one for the given
// network. Implementations may block on user interaction.
type Signer interface {
	Sign(ctx context.Context, envelope string, networkPassphrase string) (string, error)
}
