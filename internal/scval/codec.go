// Package scval converts native Go values to and from Soroban's
// self-describing wire value format (xdr.ScVal). Conversion is lossless for
// every representable value: encoding and decoding round-trip exactly.
//
// Monetary amounts are carried as i128 integers scaled by 10^7 (stroops).
// The scale factor is a system-wide invariant, not a per-call choice.
package scval

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"

	"creatorhub/internal/errs"
)

// AmountScale is the number of decimal places carried by an i128 amount.
const AmountScale = 7

var (
	scaleFactor = big.NewInt(10_000_000)

	twoTo64  = new(big.Int).Lsh(big.NewInt(1), 64)
	twoTo127 = new(big.Int).Lsh(big.NewInt(1), 127)
	twoTo128 = new(big.Int).Lsh(big.NewInt(1), 128)
	maxU64   = new(big.Int).Sub(twoTo64, big.NewInt(1))
)

// Kind names the wire type a value must encode to. KindAuto infers the wire
// type from the Go type of the native value.
type Kind int

const (
	KindAuto Kind = iota
	KindBool
	KindU32
	KindI32
	KindU64
	KindI64
	KindI128
	KindAmount
	KindString
	KindSymbol
	KindAddress
	KindBytes
	KindVec
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindBool:
		return "bool"
	case KindU32:
		return "u32"
	case KindI32:
		return "i32"
	case KindU64:
		return "u64"
	case KindI64:
		return "i64"
	case KindI128:
		return "i128"
	case KindAmount:
		return "amount"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindAddress:
		return "address"
	case KindBytes:
		return "bytes"
	case KindVec:
		return "vec"
	case KindMap:
		return "map"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Encode converts a native value to its wire representation. If kind is not
// KindAuto the value must be compatible with it; an incompatible pairing
// (for example a negative number as u32) fails with an Encoding error.
func Encode(native any, kind Kind) (xdr.ScVal, error) {
	switch kind {
	case KindAuto:
		return encodeAuto(native)
	case KindBool:
		b, ok := native.(bool)
		if !ok {
			return xdr.ScVal{}, encodeErr(native, kind)
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvBool, B: &b}, nil
	case KindU32:
		n, err := asInt64(native)
		if err != nil || n < 0 || n > int64(^uint32(0)) {
			return xdr.ScVal{}, encodeErr(native, kind)
		}
		v := xdr.Uint32(n)
		return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &v}, nil
	case KindI32:
		n, err := asInt64(native)
		if err != nil || n < math.MinInt32 || n > math.MaxInt32 {
			return xdr.ScVal{}, encodeErr(native, kind)
		}
		v := xdr.Int32(n)
		return xdr.ScVal{Type: xdr.ScValTypeScvI32, I32: &v}, nil
	case KindU64:
		switch t := native.(type) {
		case uint64:
			v := xdr.Uint64(t)
			return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &v}, nil
		default:
			n, err := asInt64(native)
			if err != nil || n < 0 {
				return xdr.ScVal{}, encodeErr(native, kind)
			}
			v := xdr.Uint64(n)
			return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &v}, nil
		}
	case KindI64:
		n, err := asInt64(native)
		if err != nil {
			return xdr.ScVal{}, encodeErr(native, kind)
		}
		v := xdr.Int64(n)
		return xdr.ScVal{Type: xdr.ScValTypeScvI64, I64: &v}, nil
	case KindI128:
		v, err := asBigInt(native)
		if err != nil {
			return xdr.ScVal{}, encodeErr(native, kind)
		}
		return encodeI128(v)
	case KindAmount:
		raw, err := amountToRaw(native)
		if err != nil {
			return xdr.ScVal{}, err
		}
		return encodeI128(raw)
	case KindString:
		s, ok := native.(string)
		if !ok {
			return xdr.ScVal{}, encodeErr(native, kind)
		}
		v := xdr.ScString(s)
		return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &v}, nil
	case KindSymbol:
		s, ok := native.(string)
		if !ok {
			return xdr.ScVal{}, encodeErr(native, kind)
		}
		v := xdr.ScSymbol(s)
		return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &v}, nil
	case KindAddress:
		s, ok := native.(string)
		if !ok {
			return xdr.ScVal{}, encodeErr(native, kind)
		}
		return encodeAddress(s)
	case KindBytes:
		b, ok := native.([]byte)
		if !ok {
			return xdr.ScVal{}, encodeErr(native, kind)
		}
		v := xdr.ScBytes(b)
		return xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &v}, nil
	case KindVec:
		items, ok := native.([]any)
		if !ok {
			return xdr.ScVal{}, encodeErr(native, kind)
		}
		return encodeVec(items)
	case KindMap:
		m, ok := native.(map[string]any)
		if !ok {
			return xdr.ScVal{}, encodeErr(native, kind)
		}
		return encodeMap(m)
	}
	return xdr.ScVal{}, errs.New(errs.Encoding, "unknown target kind %s", kind)
}

func encodeErr(native any, kind Kind) error {
	return errs.New(errs.Encoding, "cannot encode %T(%v) as %s", native, native, kind)
}

// encodeAuto infers the wire type from the Go type.
func encodeAuto(native any) (xdr.ScVal, error) {
	switch t := native.(type) {
	case nil:
		return xdr.ScVal{Type: xdr.ScValTypeScvVoid}, nil
	case bool:
		return Encode(t, KindBool)
	case uint32:
		return Encode(t, KindU32)
	case int32:
		return Encode(t, KindI32)
	case uint64:
		return Encode(t, KindU64)
	case int, int64:
		return Encode(t, KindI64)
	case *big.Int:
		return Encode(t, KindI128)
	case string:
		// Strkey addresses are unambiguous; everything else is a string.
		if strkey.IsValidEd25519PublicKey(t) || strkey.IsValidContractAddress(t) {
			return Encode(t, KindAddress)
		}
		return Encode(t, KindString)
	case []byte:
		return Encode(t, KindBytes)
	case []any:
		return Encode(t, KindVec)
	case map[string]any:
		return Encode(t, KindMap)
	case xdr.ScVal:
		return t, nil
	}
	return xdr.ScVal{}, errs.New(errs.Encoding, "cannot infer wire type for %T", native)
}

func encodeVec(items []any) (xdr.ScVal, error) {
	vec := make(xdr.ScVec, len(items))
	for i, item := range items {
		v, err := Encode(item, KindAuto)
		if err != nil {
			return xdr.ScVal{}, err
		}
		vec[i] = v
	}
	p := &vec
	return xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &p}, nil
}

func encodeMap(m map[string]any) (xdr.ScVal, error) {
	sc := make(xdr.ScMap, 0, len(m))
	for key, value := range m {
		k, err := Encode(key, KindSymbol)
		if err != nil {
			return xdr.ScVal{}, err
		}
		v, err := Encode(value, KindAuto)
		if err != nil {
			return xdr.ScVal{}, err
		}
		sc = append(sc, xdr.ScMapEntry{Key: k, Val: v})
	}
	p := &sc
	return xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &p}, nil
}

// encodeAddress converts a strkey address (G... account or C... contract)
// into an ScAddress value.
func encodeAddress(address string) (xdr.ScVal, error) {
	switch {
	case strkey.IsValidEd25519PublicKey(address):
		accountID, err := xdr.AddressToAccountId(address)
		if err != nil {
			return xdr.ScVal{}, errs.Wrap(errs.Encoding, err, "invalid account address %q", address)
		}
		addr := xdr.ScAddress{
			Type:      xdr.ScAddressTypeScAddressTypeAccount,
			AccountId: &accountID,
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &addr}, nil
	case strkey.IsValidContractAddress(address):
		raw, err := strkey.Decode(strkey.VersionByteContract, address)
		if err != nil {
			return xdr.ScVal{}, errs.Wrap(errs.Encoding, err, "invalid contract address %q", address)
		}
		var contractID xdr.ContractId
		copy(contractID[:], raw)
		addr := xdr.ScAddress{
			Type:       xdr.ScAddressTypeScAddressTypeContract,
			ContractId: &contractID,
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &addr}, nil
	}
	return xdr.ScVal{}, errs.New(errs.Encoding, "not a strkey address: %q", address)
}

func encodeI128(v *big.Int) (xdr.ScVal, error) {
	parts, err := bigToI128(v)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}, nil
}

// Decode converts a wire value back to its native form. It is the exact
// inverse of Encode for every supported tag. An unrecognized tag fails with
// a Decoding error instead of silently coercing.
//
// Each tag decodes to one canonical Go type: bool, uint32, int32, uint64,
// int64, *big.Int (u128/i128), string (symbol, string and address alike),
// []byte, []any, map[string]any, or nil for void. Integers encoded from
// other native widths (for example a plain int) come back as the canonical
// type, not the original one.
func Decode(val xdr.ScVal) (any, error) {
	switch val.Type {
	case xdr.ScValTypeScvVoid:
		return nil, nil
	case xdr.ScValTypeScvBool:
		return val.MustB(), nil
	case xdr.ScValTypeScvU32:
		return uint32(val.MustU32()), nil
	case xdr.ScValTypeScvI32:
		return int32(val.MustI32()), nil
	case xdr.ScValTypeScvU64:
		return uint64(val.MustU64()), nil
	case xdr.ScValTypeScvI64:
		return int64(val.MustI64()), nil
	case xdr.ScValTypeScvU128:
		u128 := val.MustU128()
		v := new(big.Int).SetUint64(uint64(u128.Hi))
		v.Lsh(v, 64)
		return v.Add(v, new(big.Int).SetUint64(uint64(u128.Lo))), nil
	case xdr.ScValTypeScvI128:
		return i128ToBig(val.MustI128()), nil
	case xdr.ScValTypeScvSymbol:
		return string(val.MustSym()), nil
	case xdr.ScValTypeScvString:
		return string(val.MustStr()), nil
	case xdr.ScValTypeScvAddress:
		addr, err := val.MustAddress().String()
		if err != nil {
			return nil, errs.Wrap(errs.Decoding, err, "malformed address value")
		}
		return addr, nil
	case xdr.ScValTypeScvBytes:
		return []byte(val.MustBytes()), nil
	case xdr.ScValTypeScvVec:
		vec := *val.MustVec()
		result := make([]any, len(vec))
		for i, element := range vec {
			native, err := Decode(element)
			if err != nil {
				return nil, err
			}
			result[i] = native
		}
		return result, nil
	case xdr.ScValTypeScvMap:
		scMap := *val.MustMap()
		result := make(map[string]any, len(scMap))
		for _, entry := range scMap {
			key, err := decodeMapKey(entry.Key)
			if err != nil {
				return nil, err
			}
			native, err := Decode(entry.Val)
			if err != nil {
				return nil, err
			}
			result[key] = native
		}
		return result, nil
	}
	return nil, errs.New(errs.Decoding, "unrecognized wire value tag %s", val.Type.String())
}

// decodeMapKey converts a map entry key to a string. Contract struct keys
// are symbols; plain strings are accepted as well.
func decodeMapKey(key xdr.ScVal) (string, error) {
	switch key.Type {
	case xdr.ScValTypeScvSymbol:
		return string(key.MustSym()), nil
	case xdr.ScValTypeScvString:
		return string(key.MustStr()), nil
	}
	return "", errs.New(errs.Decoding, "unsupported map key tag %s", key.Type.String())
}

// ParseAmount converts a decimal string into a raw i128 integer scaled by
// 10^7. Digits below the precision floor truncate toward zero; they never
// round.
func ParseAmount(amount string) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return nil, errs.New(errs.Encoding, "empty amount")
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return nil, errs.New(errs.Encoding, "malformed amount %q", amount)
	}
	if intPart == "" {
		intPart = "0"
	}

	// Truncate (not round) anything beyond the 10^-7 precision floor.
	if len(fracPart) > AmountScale {
		fracPart = fracPart[:AmountScale]
	}
	fracPart += strings.Repeat("0", AmountScale-len(fracPart))

	whole, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return nil, errs.New(errs.Encoding, "malformed amount %q", amount)
	}
	frac, ok := new(big.Int).SetString(fracPart, 10)
	if !ok {
		return nil, errs.New(errs.Encoding, "malformed amount %q", amount)
	}

	raw := whole.Mul(whole, scaleFactor)
	raw.Add(raw, frac)
	if negative {
		raw.Neg(raw)
	}
	if err := checkI128Range(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// FormatAmount renders a raw scaled i128 integer as its canonical decimal
// string with exactly seven fractional digits.
func FormatAmount(raw *big.Int) string {
	sign := ""
	abs := new(big.Int).Abs(raw)
	if raw.Sign() < 0 {
		sign = "-"
	}
	quo, rem := new(big.Int).QuoRem(abs, scaleFactor, new(big.Int))
	return fmt.Sprintf("%s%s.%07d", sign, quo.String(), rem)
}

// amountToRaw accepts the native shapes an amount may arrive in.
func amountToRaw(native any) (*big.Int, error) {
	switch t := native.(type) {
	case string:
		return ParseAmount(t)
	case float64:
		// Multiply in big.Float and take the integer part, which truncates
		// toward zero. Formatting through a fixed-width %f would round the
		// 8th decimal instead of dropping it.
		f := new(big.Float).SetPrec(256).SetFloat64(t)
		f.Mul(f, new(big.Float).SetInt(scaleFactor))
		raw, _ := f.Int(nil)
		if err := checkI128Range(raw); err != nil {
			return nil, err
		}
		return raw, nil
	case int:
		return new(big.Int).Mul(big.NewInt(int64(t)), scaleFactor), nil
	case int64:
		return new(big.Int).Mul(big.NewInt(t), scaleFactor), nil
	case *big.Int:
		return new(big.Int).Mul(t, scaleFactor), nil
	}
	return nil, errs.New(errs.Encoding, "cannot treat %T as an amount", native)
}

func asInt64(native any) (int64, error) {
	switch t := native.(type) {
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint32:
		return int64(t), nil
	}
	return 0, fmt.Errorf("not an integer: %T", native)
}

func asBigInt(native any) (*big.Int, error) {
	switch t := native.(type) {
	case *big.Int:
		return t, nil
	case int:
		return big.NewInt(int64(t)), nil
	case int64:
		return big.NewInt(t), nil
	case uint64:
		return new(big.Int).SetUint64(t), nil
	case string:
		v, ok := new(big.Int).SetString(t, 10)
		if !ok {
			return nil, fmt.Errorf("not a decimal integer: %q", t)
		}
		return v, nil
	}
	return nil, fmt.Errorf("not an integer: %T", native)
}

// bigToI128 splits a signed 128-bit integer into the wire hi/lo pair using
// two's complement semantics.
func bigToI128(v *big.Int) (xdr.Int128Parts, error) {
	if err := checkI128Range(v); err != nil {
		return xdr.Int128Parts{}, err
	}
	t := new(big.Int).Set(v)
	if t.Sign() < 0 {
		t.Add(t, twoTo128)
	}
	lo := new(big.Int).And(t, maxU64).Uint64()
	hi := new(big.Int).Rsh(t, 64).Uint64()
	return xdr.Int128Parts{Hi: xdr.Int64(int64(hi)), Lo: xdr.Uint64(lo)}, nil
}

// i128ToBig is the exact inverse of bigToI128: value = hi*2^64 + lo with hi
// signed and lo unsigned.
func i128ToBig(parts xdr.Int128Parts) *big.Int {
	v := big.NewInt(int64(parts.Hi))
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(uint64(parts.Lo)))
}

func checkI128Range(v *big.Int) error {
	upper := new(big.Int).Sub(twoTo127, big.NewInt(1))
	lower := new(big.Int).Neg(twoTo127)
	if v.Cmp(lower) < 0 || v.Cmp(upper) > 0 {
		return errs.New(errs.Encoding, "value out of i128 range: %s", v.String())
	}
	return nil
}
