package voting

import (
	"context"
	"errors"

	"github.com/vocdoni/proposal-ledger/commitment"
	"github.com/vocdoni/proposal-ledger/merkle"
	"github.com/vocdoni/proposal-ledger/storage"
	"github.com/vocdoni/proposal-ledger/storage/registry"
)

// ErrorKind classifies the errors of the voting core.
type ErrorKind string

const (
	// KindPreconditionViolation is a caller bug: empty salt, malformed
	// binding, invalid choice. Never retried.
	KindPreconditionViolation ErrorKind = "PreconditionViolation"
	// KindDuplicateVote means the voter already voted in the proposal.
	KindDuplicateVote ErrorKind = "DuplicateVote"
	// KindProposalClosed means the proposal deadline has passed.
	KindProposalClosed ErrorKind = "ProposalClosed"
	// KindProofMalformed means a proof is structurally invalid.
	KindProofMalformed ErrorKind = "ProofMalformed"
	// KindNotFound is an unknown proposal or leaf index.
	KindNotFound ErrorKind = "NotFound"
	// KindStorageFailure means the persistence layer failed.
	KindStorageFailure ErrorKind = "StorageFailure"
	// KindCanceled means the caller gave up before the vote was written.
	KindCanceled ErrorKind = "Canceled"
)

var (
	// ErrPrecondition is wrapped by every precondition violation.
	ErrPrecondition = errors.New("precondition violation")
	// ErrDuplicateVote is returned when the voter already voted.
	ErrDuplicateVote = errors.New("voter already voted in this proposal")
	// ErrProposalClosed is returned when voting after the deadline.
	ErrProposalClosed = errors.New("proposal is closed")
	// ErrNotFound is returned for unknown proposals, stores or leaves.
	ErrNotFound = errors.New("not found")
	// ErrStorage wraps failures of the persistence layer.
	ErrStorage = errors.New("storage failure")
	// ErrStoreExists is returned when creating a commitment store twice.
	ErrStoreExists = errors.New("commitment store already exists")
	// ErrUnauthorized is returned when the principal may not perform the
	// operation, such as creating a proposal without being an organization.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSaltReused is returned when a salt was already consumed in the
	// proposal.
	ErrSaltReused = errors.New("salt already used in this proposal")
	// ErrSaltNotIssued is returned when the salt was issued for another
	// proposal or voter.
	ErrSaltNotIssued = errors.New("salt was not issued for this voter and proposal")
	// ErrHashFunctionMismatch is returned when a stored tree was built with
	// another hash function than the configured one.
	ErrHashFunctionMismatch = errors.New("tree hash function mismatch")
)

// KindOf maps any error returned by the package onto its ErrorKind. It
// returns the empty kind for a nil error. Errors this package does not
// recognize come from the persistence layer.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrDuplicateVote), errors.Is(err, registry.ErrAlreadyRegistered):
		return KindDuplicateVote
	case errors.Is(err, ErrProposalClosed):
		return KindProposalClosed
	case errors.Is(err, merkle.ErrMalformedProof):
		return KindProofMalformed
	case errors.Is(err, ErrNotFound),
		errors.Is(err, merkle.ErrLeafNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, registry.ErrRegistryNotFound),
		errors.Is(err, registry.ErrKeyNotFound):
		return KindNotFound
	case errors.Is(err, ErrPrecondition),
		errors.Is(err, ErrStoreExists),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrSaltReused),
		errors.Is(err, ErrSaltNotIssued),
		errors.Is(err, storage.ErrAlreadyExists),
		errors.Is(err, merkle.ErrEmptyCommitment),
		errors.Is(err, commitment.ErrEmptySalt),
		errors.Is(err, commitment.ErrEmptyBinding),
		errors.Is(err, commitment.ErrInvalidChoice),
		errors.Is(err, commitment.ErrNegativeWeight):
		return KindPreconditionViolation
	default:
		return KindStorageFailure
	}
}
