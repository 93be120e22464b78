package contract

import (
	"github.com/stellar/go/xdr"

	"creatorhub/internal/scval"
)

// Unsigned pairs a serialized unsigned envelope with the simulation it was
// built from. Domain operations return it for external signing; this layer
// never possesses signing capability.
type Unsigned struct {
	Envelope   string
	Simulation *SimulationResult
}

// Arg is one typed argument awaiting encoding. Argument order is fixed per
// contract method and must match the deployed ABI exactly.
type Arg struct {
	Value any
	Kind  scval.Kind
}

// EncodeArgs encodes an ordered argument list to wire values. The first
// incompatible pairing aborts with its Encoding error.
func EncodeArgs(args ...Arg) ([]xdr.ScVal, error) {
	encoded := make([]xdr.ScVal, len(args))
	for i, a := range args {
		v, err := scval.Encode(a.Value, a.Kind)
		if err != nil {
			return nil, err
		}
		encoded[i] = v
	}
	return encoded, nil
}
