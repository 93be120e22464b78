// Package profile describes a single deployment target: the RPC endpoint,
// the network passphrase and the two contract identifiers. A Profile is
// immutable; switching networks means swapping the whole value.
package profile

import (
	"fmt"

	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
)

// ContractIDs holds the strkey-encoded identifiers of the two deployed
// contracts the system talks to.
type ContractIDs struct {
	Token       string
	Marketplace string
}

// Profile is a static description of one deployment target.
type Profile struct {
	// RPCURL is the Soroban RPC endpoint.
	RPCURL string

	// NetworkPassphrase identifies the network for transaction signing.
	NetworkPassphrase string

	// Contracts holds the token and marketplace contract IDs.
	Contracts ContractIDs
}

// Testnet returns a profile for the public Stellar testnet with the given
// contract identifiers.
func Testnet(contracts ContractIDs) Profile {
	return Profile{
		RPCURL:            "https://soroban-testnet.stellar.org",
		NetworkPassphrase: network.TestNetworkPassphrase,
		Contracts:         contracts,
	}
}

// Mainnet returns a profile for the public Stellar network with the given
// contract identifiers.
func Mainnet(contracts ContractIDs) Profile {
	return Profile{
		RPCURL:            "https://mainnet.sorobanrpc.com",
		NetworkPassphrase: network.PublicNetworkPassphrase,
		Contracts:         contracts,
	}
}

// Validate checks that the profile is complete and the contract identifiers
// are well-formed strkey contract addresses.
func (p Profile) Validate() error {
	if p.RPCURL == "" {
		return fmt.Errorf("RPCURL is required")
	}
	if p.NetworkPassphrase == "" {
		return fmt.Errorf("NetworkPassphrase is required")
	}
	if !strkey.IsValidContractAddress(p.Contracts.Token) {
		return fmt.Errorf("invalid token contract ID: %q", p.Contracts.Token)
	}
	if !strkey.IsValidContractAddress(p.Contracts.Marketplace) {
		return fmt.Errorf("invalid marketplace contract ID: %q", p.Contracts.Marketplace)
	}
	return nil
}
