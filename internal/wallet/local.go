package wallet

import (
	"context"
	"fmt"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// LocalSigner signs envelopes with an in-process ed25519 keypair. Used by
// the CLI and by tests; production fan-facing flows sign through the
// browser wallet instead.
type LocalSigner struct {
	kp *keypair.Full
}

// NewLocalSigner creates a signer from a strkey seed (S...).
func NewLocalSigner(seed string) (*LocalSigner, error) {
	kp, err := keypair.ParseFull(seed)
	if err != nil {
		return nil, fmt.Errorf("invalid signer seed: %w", err)
	}
	return &LocalSigner{kp: kp}, nil
}

// Address returns the signer's public account address.
func (s *LocalSigner) Address() string {
	return s.kp.Address()
}

// Sign parses the unsigned envelope, signs it for the given network and
// returns the serialized signed envelope.
func (s *LocalSigner) Sign(_ context.Context, envelope string, networkPassphrase string) (string, error) {
	generic, err := txnbuild.TransactionFromXDR(envelope)
	if err != nil {
		return "", fmt.Errorf("malformed unsigned envelope: %w", err)
	}
	tx, ok := generic.Transaction()
	if !ok {
		return "", fmt.Errorf("envelope is not a simple transaction")
	}

	signed, err := tx.Sign(networkPassphrase, s.kp)
	if err != nil {
		return "", fmt.Errorf("failed to sign envelope: %w", err)
	}
	return signed.Base64()
}
