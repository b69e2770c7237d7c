// Package commitment builds the binding and hiding digests that stand in
// for a vote inside a proposal's merkle tree.
//
// The digest is the hash of a fixed serialization of the five vote inputs:
//
//	tag || len(pid) || pid || len(binding) || binding || len(choice) ||
//	choice || len(weight) || weight || len(salt) || salt
//
// where every len is a 4 byte big-endian field, pid is the 8 byte
// big-endian proposal id, choice is one byte and weight is the big-endian
// magnitude of a non negative integer.
package commitment

import (
	"bytes"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/vocdoni/arbo"
	"github.com/vocdoni/proposal-ledger/types"
)

// DomainTag separates commitment preimages from any other hashed data.
const DomainTag = "proposal-ledger/commitment/v1"

var (
	// ErrEmptySalt is returned when the salt has no bytes.
	ErrEmptySalt = errors.New("empty salt")
	// ErrEmptyBinding is returned when the voter binding has no bytes.
	ErrEmptyBinding = errors.New("empty voter binding")
	// ErrInvalidChoice is returned for a choice outside Yes, No, Abstain.
	ErrInvalidChoice = errors.New("invalid vote choice")
	// ErrNegativeWeight is returned for weights below zero.
	ErrNegativeWeight = errors.New("negative vote weight")
	// ErrEntropy is returned when the random source fails.
	ErrEntropy = errors.New("entropy source failure")
)

// Builder derives commitments with a fixed hash function.
type Builder struct {
	hashFn arbo.HashFunction
}

// NewBuilder returns a Builder using hashFn. A nil hashFn defaults to sha256.
func NewBuilder(hashFn arbo.HashFunction) *Builder {
	if hashFn == nil {
		hashFn = arbo.HashFunctionSha256
	}
	return &Builder{hashFn: hashFn}
}

// HashFunction returns the hash function used by the builder.
func (b *Builder) HashFunction() arbo.HashFunction {
	return b.hashFn
}

// Commit returns the commitment of the given vote. It is deterministic: the
// same inputs always produce the same digest. A nil weight encodes as zero.
func (b *Builder) Commit(pid types.ProposalID, binding []byte, choice types.VoteChoice,
	weight *types.BigInt, salt []byte,
) (types.HexBytes, error) {
	preimage, err := Encode(pid, binding, choice, weight, salt)
	if err != nil {
		return nil, err
	}
	digest, err := b.hashFn.Hash(preimage)
	if err != nil {
		return nil, fmt.Errorf("could not hash commitment: %w", err)
	}
	return digest, nil
}

// Open recomputes the commitment from the revealed inputs and reports
// whether it matches c.
func (b *Builder) Open(c []byte, pid types.ProposalID, binding []byte, choice types.VoteChoice,
	weight *types.BigInt, salt []byte,
) bool {
	digest, err := b.Commit(pid, binding, choice, weight, salt)
	if err != nil {
		return false
	}
	return len(c) == len(digest) && subtle.ConstantTimeCompare(c, digest) == 1
}

// Encode returns the unambiguous serialization hashed by Commit.
func Encode(pid types.ProposalID, binding []byte, choice types.VoteChoice,
	weight *types.BigInt, salt []byte,
) ([]byte, error) {
	if len(salt) == 0 {
		return nil, ErrEmptySalt
	}
	if len(binding) == 0 {
		return nil, ErrEmptyBinding
	}
	if !choice.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChoice, uint8(choice))
	}
	if weight.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeWeight, weight)
	}

	buf := bytes.NewBufferString(DomainTag)
	for _, field := range [][]byte{
		pid.Marshal(),
		binding,
		{byte(choice)},
		weight.Bytes(),
		salt,
	} {
		writeField(buf, field)
	}
	return buf.Bytes(), nil
}

// writeField writes data into the buffer as length + bytes
func writeField(buf *bytes.Buffer, data []byte) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	buf.Write(length[:])
	buf.Write(data)
}
