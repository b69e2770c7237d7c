package types

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// BigInt is a big.Int wrapper which marshals JSON to a string representation
// of the big number. A nil pointer value marshals as "0".
type BigInt big.Int

// MaxBigIntBits bounds the size of a decoded BigInt. Weights and weight
// sums of any real ledger fit well below it.
const MaxBigIntBits = 512

// maxBigIntText is the longest decimal text a MaxBigIntBits number needs,
// plus a sign.
const maxBigIntText = 156

// NewInt returns a BigInt holding x.
func NewInt(x int64) *BigInt {
	return (*BigInt)(big.NewInt(x))
}

// MarshalText returns the decimal string representation of the big number.
// If the receiver is nil, we return "0".
func (i *BigInt) MarshalText() ([]byte, error) {
	if i == nil {
		return []byte("0"), nil
	}
	return (*big.Int)(i).MarshalText()
}

// UnmarshalText parses the text representation into the big number. Numbers
// above MaxBigIntBits are rejected.
func (i *BigInt) UnmarshalText(data []byte) error {
	if i == nil {
		return fmt.Errorf("cannot unmarshal into nil BigInt")
	}
	if len(data) > maxBigIntText {
		return fmt.Errorf("big int too long: %d characters", len(data))
	}
	n := new(big.Int)
	if err := n.UnmarshalText(data); err != nil {
		return err
	}
	if n.BitLen() > MaxBigIntBits {
		return fmt.Errorf("big int exceeds %d bits", MaxBigIntBits)
	}
	(*big.Int)(i).Set(n)
	return nil
}

// MarshalJSON encodes the number as a quoted decimal string, so values
// above 2^53 survive JavaScript clients.
func (i *BigInt) MarshalJSON() ([]byte, error) {
	text, err := i.MarshalText()
	if err != nil {
		return nil, err
	}
	return append(append([]byte{'"'}, text...), '"'), nil
}

// UnmarshalJSON accepts both a quoted decimal string and a bare JSON number.
func (i *BigInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("empty big int")
	}
	return i.UnmarshalText(data)
}

// MarshalCBOR encodes the number as its decimal string.
func (i *BigInt) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(i.String())
}

// UnmarshalCBOR decodes a number encoded by MarshalCBOR.
func (i *BigInt) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	return i.UnmarshalText([]byte(s))
}

// String returns the decimal representation. A nil BigInt is "0".
func (i *BigInt) String() string {
	if i == nil {
		return "0"
	}
	return (*big.Int)(i).String()
}

// SetUint64 sets the value of x to the big number and returns it.
func (i *BigInt) SetUint64(x uint64) *BigInt {
	return (*BigInt)(i.MathBigInt().SetUint64(x))
}

// SetBytes interprets buf as big-endian unsigned bytes.
func (i *BigInt) SetBytes(buf []byte) *BigInt {
	return (*BigInt)(i.MathBigInt().SetBytes(buf))
}

// Bytes returns the big-endian absolute value.
func (i *BigInt) Bytes() []byte {
	if i == nil {
		return nil
	}
	return i.MathBigInt().Bytes()
}

// MathBigInt converts to *big.Int.
func (i *BigInt) MathBigInt() *big.Int {
	return (*big.Int)(i)
}

// Add sets i to the sum x+y and returns it.
func (i *BigInt) Add(x, y *BigInt) *BigInt {
	return (*BigInt)(i.MathBigInt().Add(x.MathBigInt(), y.MathBigInt()))
}

// Sign returns -1, 0 or +1. A nil value has sign 0.
func (i *BigInt) Sign() int {
	if i == nil {
		return 0
	}
	return i.MathBigInt().Sign()
}

// Cmp compares i and o, treating nil as zero.
func (i *BigInt) Cmp(o *BigInt) int {
	a, b := i, o
	if a == nil {
		a = NewInt(0)
	}
	if b == nil {
		b = NewInt(0)
	}
	return a.MathBigInt().Cmp(b.MathBigInt())
}

// Equal reports whether i and o hold the same value.
func (i *BigInt) Equal(o *BigInt) bool {
	return i.Cmp(o) == 0
}

// Clone returns an independent copy. A nil value clones to zero.
func (i *BigInt) Clone() *BigInt {
	if i == nil {
		return NewInt(0)
	}
	return (*BigInt)(new(big.Int).Set(i.MathBigInt()))
}
