package voting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/proposal-ledger/log"
	"github.com/vocdoni/proposal-ledger/storage"
	"github.com/vocdoni/proposal-ledger/types"
)

// ProposalInfo is a proposal with its live state.
type ProposalInfo struct {
	*types.Proposal
	Active     bool           `json:"isActive"`
	VoteCount  uint64         `json:"voteCount"`
	Root       types.HexBytes `json:"root"`
	VotersRoot types.HexBytes `json:"votersRoot"`
}

// RegisterOrganization registers the address as an organization allowed to
// create proposals.
func (s *Service) RegisterOrganization(address common.Address) (*types.Organization, error) {
	if address == (common.Address{}) {
		return nil, fmt.Errorf("%w: empty organization address", ErrPrecondition)
	}
	org := &types.Organization{
		Address:    address,
		Registered: types.TimestampOf(s.now()),
	}
	if err := s.stg.RegisterOrganization(org); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: organization %s already registered", ErrPrecondition, address.Hex())
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	log.Infow("organization registered", "address", address.Hex())
	return org, nil
}

// Organization returns the registered organization.
func (s *Service) Organization(address common.Address) (*types.Organization, error) {
	org, err := s.stg.Organization(address)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: organization %s", ErrNotFound, address.Hex())
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return org, nil
}

// CreateProposal stores a new proposal of the organization open for
// durationHours from now, and creates its commitment store.
func (s *Service) CreateProposal(org common.Address, title, description string, durationHours uint64) (*types.Proposal, error) {
	title, description = strings.TrimSpace(title), strings.TrimSpace(description)
	switch {
	case title == "":
		return nil, fmt.Errorf("%w: empty title", ErrPrecondition)
	case description == "":
		return nil, fmt.Errorf("%w: empty description", ErrPrecondition)
	case durationHours == 0:
		return nil, fmt.Errorf("%w: duration must be positive", ErrPrecondition)
	case durationHours > maxDurationHours:
		return nil, fmt.Errorf("%w: duration exceeds %d hours", ErrPrecondition, maxDurationHours)
	}
	if _, err := s.stg.Organization(org); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s is not an organization", ErrUnauthorized, org.Hex())
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	created := types.TimestampOf(s.now())
	p := &types.Proposal{
		Title:        title,
		Description:  description,
		Created:      created,
		Deadline:     created + types.Timestamp(int64(durationHours)*types.NanosPerHour),
		Organization: org,
		VotingMethod: types.VotingMethodMerkle,
	}
	// the record and its box appear together for readers of s.boxes
	s.mu.Lock()
	defer s.mu.Unlock()
	pid, err := s.stg.CreateProposal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if _, err := s.createStoreLocked(pid, p); err != nil {
		return nil, err
	}
	log.Infow("proposal created", "proposalId", pid.String(), "organization", org.Hex(),
		"deadline", p.Deadline.Time().String())
	return p, nil
}

// maxDurationHours keeps the deadline within an int64 of nanoseconds.
const maxDurationHours = 100 * 365 * 24

// Proposal returns the stored proposal with its live state.
func (s *Service) Proposal(pid types.ProposalID) (*ProposalInfo, error) {
	p, err := s.stg.Proposal(pid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: proposal %s", ErrNotFound, pid)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return s.info(p)
}

// Proposals returns every proposal ordered by id.
func (s *Service) Proposals() ([]*ProposalInfo, error) {
	list, err := s.stg.Proposals()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	infos := make([]*ProposalInfo, 0, len(list))
	for _, p := range list {
		info, err := s.info(p)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// VoterProposals returns the ids of the proposals the voter voted in.
func (s *Service) VoterProposals(voter []byte) ([]types.ProposalID, error) {
	pids, err := s.stg.VoterProposals(voter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return pids, nil
}

func (s *Service) info(p *types.Proposal) (*ProposalInfo, error) {
	b, err := s.box(p.ID)
	if err != nil {
		return nil, err
	}
	return &ProposalInfo{
		Proposal:   p,
		Active:     p.IsActive(s.now()),
		VoteCount:  b.tree.Size(),
		Root:       b.tree.Root(),
		VotersRoot: b.voters.Root(),
	}, nil
}
