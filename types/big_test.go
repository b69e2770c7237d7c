package types

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"
)

func TestBigMarshalUnmarshalJSON(t *testing.T) {
	c := qt.New(t)
	bi := (*BigInt)(big.NewInt(1234567890))
	jsonBigInt := map[string]*BigInt{
		"bi": bi,
	}
	bBigInt, err := json.Marshal(jsonBigInt)
	c.Assert(err, qt.IsNil)

	var unmarshaled map[string]*BigInt
	c.Assert(json.Unmarshal(bBigInt, &unmarshaled), qt.IsNil)
	c.Assert(unmarshaled["bi"], qt.DeepEquals, bi)
}

func TestBigMarshalUnmarshalCBOR(t *testing.T) {
	c := qt.New(t)
	bi := (*BigInt)(big.NewInt(1234567890))
	cborBigInt := map[string]*BigInt{
		"bi": bi,
	}
	bBigInt, err := cbor.Marshal(cborBigInt)
	c.Assert(err, qt.IsNil)

	var unmarshaled map[string]*BigInt
	c.Assert(cbor.Unmarshal(bBigInt, &unmarshaled), qt.IsNil)
	c.Assert(unmarshaled["bi"], qt.DeepEquals, bi)
}

func TestBigUnmarshalJSONNumber(t *testing.T) {
	c := qt.New(t)
	var v struct {
		Weight *BigInt `json:"weight"`
	}
	c.Assert(json.Unmarshal([]byte(`{"weight": 42}`), &v), qt.IsNil)
	c.Assert(v.Weight.String(), qt.Equals, "42")
	c.Assert(json.Unmarshal([]byte(`{"weight": "18446744073709551617"}`), &v), qt.IsNil)
	c.Assert(v.Weight.String(), qt.Equals, "18446744073709551617")
	c.Assert(json.Unmarshal([]byte(`{"weight": "abc"}`), &v), qt.IsNotNil)
}

func TestBigNil(t *testing.T) {
	c := qt.New(t)
	var bi *BigInt
	c.Assert(bi.String(), qt.Equals, "0")
	c.Assert(bi.Sign(), qt.Equals, 0)
	c.Assert(bi.Equal(NewInt(0)), qt.IsTrue)
	c.Assert(bi.Clone().Equal(NewInt(0)), qt.IsTrue)
	out, err := json.Marshal(map[string]*BigInt{"w": bi})
	c.Assert(err, qt.IsNil)
	c.Assert(string(out), qt.Equals, `{"w":"0"}`)
}

func TestBigUnmarshalBounded(t *testing.T) {
	c := qt.New(t)
	limit := new(big.Int).Lsh(big.NewInt(1), MaxBigIntBits)
	max := new(big.Int).Sub(limit, big.NewInt(1))

	var ok BigInt
	c.Assert(json.Unmarshal([]byte(`"`+max.String()+`"`), &ok), qt.IsNil)
	c.Assert(ok.MathBigInt().Cmp(max), qt.Equals, 0)

	var tooBig BigInt
	c.Assert(json.Unmarshal([]byte(`"`+limit.String()+`"`), &tooBig), qt.IsNotNil)
	long := `"` + strings.Repeat("9", 10000) + `"`
	c.Assert(json.Unmarshal([]byte(long), &tooBig), qt.IsNotNil)
}
