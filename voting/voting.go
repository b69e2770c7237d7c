// Package voting is the anonymous voting core. It keeps one ballot box per
// proposal: the commitment tree, the registry of voters that already voted,
// and the reveals used for the tally. Votes of a proposal are accepted one
// at a time while every read works on a consistent snapshot.
package voting

import (
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vocdoni/arbo"
	"github.com/vocdoni/proposal-ledger/commitment"
	"github.com/vocdoni/proposal-ledger/log"
	"github.com/vocdoni/proposal-ledger/merkle"
	"github.com/vocdoni/proposal-ledger/storage"
	"github.com/vocdoni/proposal-ledger/storage/registry"
	"github.com/vocdoni/proposal-ledger/types"
)

// DefaultPendingSalts is the default number of issued salts waiting for a
// vote.
const DefaultPendingSalts = 10000

// Options tune the behaviour of the service.
type Options struct {
	// EnforceDeadline rejects votes submitted after the proposal deadline.
	EnforceDeadline bool
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
	// HashFunction is used by commitments and trees. Defaults to sha256.
	HashFunction arbo.HashFunction
	// PendingSalts bounds the issued salts kept in memory.
	PendingSalts int
}

// Service is the voting core shared by every proposal.
type Service struct {
	stg      *storage.Storage
	registry *registry.RegistryDB
	builder  *commitment.Builder
	opts     Options
	salts    *lru.Cache[string, saltSlot]

	mu    sync.RWMutex
	boxes map[types.ProposalID]*ballotBox
}

// ballotBox is the state of one proposal.
type ballotBox struct {
	pid types.ProposalID
	// proposal is nil for stores created without a proposal record, which
	// have no deadline.
	proposal *types.Proposal
	// mu serializes the vote submissions.
	mu sync.Mutex
	// stateMu makes a tree insert and its reveal one step for readers.
	stateMu sync.RWMutex
	tree    *merkle.Tree
	voters  *registry.Ref
	reveals []types.Reveal
}

// New creates the service and reopens the ballot box of every stored
// proposal.
func New(stg *storage.Storage, opts Options) (*Service, error) {
	if stg == nil {
		return nil, fmt.Errorf("storage cannot be nil")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.HashFunction == nil {
		opts.HashFunction = arbo.HashFunctionSha256
	}
	if opts.PendingSalts <= 0 {
		opts.PendingSalts = DefaultPendingSalts
	}
	salts, err := lru.New[string, saltSlot](opts.PendingSalts)
	if err != nil {
		return nil, fmt.Errorf("could not create salt cache: %w", err)
	}
	s := &Service{
		stg:      stg,
		registry: registry.NewRegistryDB(stg.DB()),
		builder:  commitment.NewBuilder(opts.HashFunction),
		opts:     opts,
		salts:    salts,
		boxes:    make(map[types.ProposalID]*ballotBox),
	}

	proposals, err := stg.Proposals()
	if err != nil {
		return nil, fmt.Errorf("could not list proposals: %w", err)
	}
	for _, p := range proposals {
		if !s.registry.Exists(p.ID) {
			if _, err := s.CreateStore(p.ID); err != nil {
				return nil, fmt.Errorf("could not create store of proposal %s: %w", p.ID, err)
			}
			continue
		}
		if _, err := s.box(p.ID); err != nil {
			return nil, fmt.Errorf("could not load proposal %s: %w", p.ID, err)
		}
	}
	log.Infow("voting service ready", "proposals", len(proposals))
	return s, nil
}

// Storage returns the storage of the service.
func (s *Service) Storage() *storage.Storage {
	return s.stg
}

// HashFunction returns the hash function of commitments and trees.
func (s *Service) HashFunction() arbo.HashFunction {
	return s.opts.HashFunction
}

// now returns the time of the configured clock.
func (s *Service) now() time.Time {
	return s.opts.Clock()
}

// CreateStore creates the empty commitment store of a proposal and returns
// its root. It returns ErrStoreExists if the proposal already has one.
func (s *Service) CreateStore(pid types.ProposalID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proposal, err := s.proposalRecord(pid)
	if err != nil {
		return nil, err
	}
	b, err := s.createStoreLocked(pid, proposal)
	if err != nil {
		return nil, err
	}
	return b.tree.Root(), nil
}

// createStoreLocked creates and registers the ballot box of pid. Callers
// must hold s.mu.
func (s *Service) createStoreLocked(pid types.ProposalID, proposal *types.Proposal) (*ballotBox, error) {
	if _, ok := s.boxes[pid]; ok || s.registry.Exists(pid) {
		return nil, fmt.Errorf("%w: %s", ErrStoreExists, pid)
	}
	tree, err := merkle.NewTree(s.opts.HashFunction)
	if err != nil {
		return nil, err
	}
	if err := s.stg.SetTreeHash(pid, hashType(s.opts.HashFunction)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	voters, err := s.registry.New(pid)
	if err != nil {
		if errors.Is(err, registry.ErrRegistryAlreadyExists) {
			return nil, fmt.Errorf("%w: %s", ErrStoreExists, pid)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	b := &ballotBox{
		pid:      pid,
		proposal: proposal,
		tree:     tree,
		voters:   voters,
	}
	s.boxes[pid] = b
	log.Debugw("commitment store created", "proposalId", pid.String())
	return b, nil
}

func hashType(hashFn arbo.HashFunction) string {
	return string(hashFn.Type())
}

// box returns the ballot box of the proposal, opening it from storage the
// first time. It returns ErrNotFound if the proposal has no store.
func (s *Service) box(pid types.ProposalID) (*ballotBox, error) {
	s.mu.RLock()
	b, ok := s.boxes[pid]
	s.mu.RUnlock()
	if ok {
		return b, nil
	}
	if !s.registry.Exists(pid) {
		return nil, fmt.Errorf("%w: proposal %s", ErrNotFound, pid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.boxes[pid]; ok {
		return b, nil
	}
	b, err := s.openBox(pid)
	if err != nil {
		return nil, err
	}
	s.boxes[pid] = b
	return b, nil
}

// openBox rebuilds the ballot box of a proposal from the stored leaves and
// reveals.
func (s *Service) openBox(pid types.ProposalID) (*ballotBox, error) {
	stored, err := s.stg.TreeHash(pid)
	if err != nil {
		return nil, fmt.Errorf("%w: tree hash of proposal %s: %v", ErrStorage, pid, err)
	}
	if stored != hashType(s.opts.HashFunction) {
		return nil, fmt.Errorf("%w: proposal %s uses %q, configured %q", ErrHashFunctionMismatch,
			pid, stored, hashType(s.opts.HashFunction))
	}
	proposal, err := s.proposalRecord(pid)
	if err != nil {
		return nil, err
	}
	voters, err := s.registry.Load(pid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	leaves, err := s.stg.Leaves(pid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	tree, err := merkle.Load(s.opts.HashFunction, leaves)
	if err != nil {
		return nil, err
	}
	reveals, err := s.stg.Reveals(pid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if len(reveals) != len(leaves) || voters.Size() != len(leaves) {
		return nil, fmt.Errorf("%w: proposal %s has %d leaves, %d reveals and %d voters",
			ErrStorage, pid, len(leaves), len(reveals), voters.Size())
	}
	log.Debugw("ballot box loaded", "proposalId", pid.String(), "leaves", len(leaves))
	return &ballotBox{
		pid:      pid,
		proposal: proposal,
		tree:     tree,
		voters:   voters,
		reveals:  reveals,
	}, nil
}

// proposalRecord returns the stored proposal, or nil if there is none.
func (s *Service) proposalRecord(pid types.ProposalID) (*types.Proposal, error) {
	p, err := s.stg.Proposal(pid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return p, nil
}

// closed reports whether the box stopped accepting votes at now.
func (b *ballotBox) closed(now time.Time) bool {
	return b.proposal != nil && !b.proposal.IsActive(now)
}

// snapshot returns the tree size and a copy of the reveals, taken together.
func (b *ballotBox) snapshot() (uint64, []types.Reveal) {
	b.stateMu.RLock()
	defer b.stateMu.RUnlock()
	return b.tree.Size(), append([]types.Reveal(nil), b.reveals...)
}
