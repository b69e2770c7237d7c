package commitment

import (
	"bytes"
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/arbo"
	"github.com/vocdoni/proposal-ledger/types"
	"github.com/vocdoni/proposal-ledger/util"
)

func TestCommitDeterministic(t *testing.T) {
	c := qt.New(t)
	b := NewBuilder(nil)
	binding := util.RandomBytes(20)
	salt := util.RandomBytes(types.SaltSize)

	c1, err := b.Commit(1, binding, types.ChoiceYes, types.NewInt(1), salt)
	c.Assert(err, qt.IsNil)
	c2, err := b.Commit(1, binding, types.ChoiceYes, types.NewInt(1), salt)
	c.Assert(err, qt.IsNil)
	c.Assert(c1, qt.DeepEquals, c2)
	c.Assert(c1, qt.HasLen, arbo.HashFunctionSha256.Len())
	c.Assert(b.Open(c1, 1, binding, types.ChoiceYes, types.NewInt(1), salt), qt.IsTrue)

	// every input is bound
	for name, other := range map[string]func() (types.HexBytes, error){
		"proposal": func() (types.HexBytes, error) {
			return b.Commit(2, binding, types.ChoiceYes, types.NewInt(1), salt)
		},
		"binding": func() (types.HexBytes, error) {
			return b.Commit(1, util.RandomBytes(20), types.ChoiceYes, types.NewInt(1), salt)
		},
		"choice": func() (types.HexBytes, error) {
			return b.Commit(1, binding, types.ChoiceNo, types.NewInt(1), salt)
		},
		"weight": func() (types.HexBytes, error) {
			return b.Commit(1, binding, types.ChoiceYes, types.NewInt(2), salt)
		},
		"salt": func() (types.HexBytes, error) {
			return b.Commit(1, binding, types.ChoiceYes, types.NewInt(1), util.RandomBytes(types.SaltSize))
		},
	} {
		digest, err := other()
		c.Assert(err, qt.IsNil)
		c.Assert(digest, qt.Not(qt.DeepEquals), c1, qt.Commentf("changing %s must change the commitment", name))
	}
	c.Assert(b.Open(c1, 1, binding, types.ChoiceNo, types.NewInt(1), salt), qt.IsFalse)
}

func TestCommitFieldBoundaries(t *testing.T) {
	c := qt.New(t)
	b := NewBuilder(nil)
	// moving bytes between binding and salt must not collide
	c1, err := b.Commit(1, []byte{1, 2}, types.ChoiceYes, types.NewInt(1), []byte{3, 4})
	c.Assert(err, qt.IsNil)
	c2, err := b.Commit(1, []byte{1}, types.ChoiceYes, types.NewInt(1), []byte{2, 3, 4})
	c.Assert(err, qt.IsNil)
	c.Assert(c1, qt.Not(qt.DeepEquals), c2)

	enc, err := Encode(1, []byte{0xaa}, types.ChoiceAbstain, types.NewInt(258), []byte{0xbb})
	c.Assert(err, qt.IsNil)
	want := append([]byte(DomainTag),
		0, 0, 0, 8, 0, 0, 0, 0, 0, 0, 0, 1,
		0, 0, 0, 1, 0xaa,
		0, 0, 0, 1, 2,
		0, 0, 0, 2, 1, 2,
		0, 0, 0, 1, 0xbb,
	)
	c.Assert(enc, qt.DeepEquals, want)
}

func TestCommitPreconditions(t *testing.T) {
	c := qt.New(t)
	b := NewBuilder(arbo.HashFunctionBlake2b)
	salt := util.RandomBytes(types.SaltSize)

	_, err := b.Commit(1, []byte{1}, types.ChoiceYes, types.NewInt(1), nil)
	c.Assert(errors.Is(err, ErrEmptySalt), qt.IsTrue)
	_, err = b.Commit(1, nil, types.ChoiceYes, types.NewInt(1), salt)
	c.Assert(errors.Is(err, ErrEmptyBinding), qt.IsTrue)
	_, err = b.Commit(1, []byte{1}, types.ChoiceUnset, types.NewInt(1), salt)
	c.Assert(errors.Is(err, ErrInvalidChoice), qt.IsTrue)
	_, err = b.Commit(1, []byte{1}, types.VoteChoice(4), types.NewInt(1), salt)
	c.Assert(errors.Is(err, ErrInvalidChoice), qt.IsTrue)
	_, err = b.Commit(1, []byte{1}, types.ChoiceYes, types.NewInt(-1), salt)
	c.Assert(errors.Is(err, ErrNegativeWeight), qt.IsTrue)

	// zero and nil weights are the same value
	c1, err := b.Commit(1, []byte{1}, types.ChoiceYes, types.NewInt(0), salt)
	c.Assert(err, qt.IsNil)
	c2, err := b.Commit(1, []byte{1}, types.ChoiceYes, nil, salt)
	c.Assert(err, qt.IsNil)
	c.Assert(c1, qt.DeepEquals, c2)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestGenerateSalt(t *testing.T) {
	c := qt.New(t)
	s1, err := GenerateSalt()
	c.Assert(err, qt.IsNil)
	c.Assert(s1, qt.HasLen, types.SaltSize)
	s2, err := GenerateSalt()
	c.Assert(err, qt.IsNil)
	c.Assert(bytes.Equal(s1, s2), qt.IsFalse)

	_, err = generateSaltFrom(failingReader{})
	c.Assert(errors.Is(err, ErrEntropy), qt.IsTrue)
	_, err = generateSaltFrom(bytes.NewReader([]byte{1, 2, 3}))
	c.Assert(errors.Is(err, ErrEntropy), qt.IsTrue)
}
