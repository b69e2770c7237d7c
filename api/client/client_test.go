package client

import (
	"context"
	"errors"
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/proposal-ledger/api"
	"github.com/vocdoni/proposal-ledger/crypto/ethereum"
	"github.com/vocdoni/proposal-ledger/storage"
	"github.com/vocdoni/proposal-ledger/types"
	"github.com/vocdoni/proposal-ledger/voting"
	"go.vocdoni.io/dvote/db/metadb"
)

func testClient(t *testing.T) *HTTPclient {
	c := qt.New(t)
	svc, err := voting.New(storage.New(metadb.NewTest(t)), voting.Options{})
	c.Assert(err, qt.IsNil)
	a, err := api.New(&api.APIConfig{Host: "127.0.0.1", Port: 0, Voting: svc})
	c.Assert(err, qt.IsNil)
	t.Cleanup(func() { _ = a.Stop(context.Background()) })

	cli, err := New("http://" + a.Addr().String())
	c.Assert(err, qt.IsNil)
	return cli
}

func newKeys(c *qt.C) *ethereum.SignKeys {
	keys := ethereum.NewSignKeys()
	c.Assert(keys.Generate(), qt.IsNil)
	return keys
}

func TestClientVoting(t *testing.T) {
	c := qt.New(t)
	cli := testClient(t)

	org := newKeys(c)
	registered, err := cli.RegisterOrganization(org)
	c.Assert(err, qt.IsNil)
	c.Assert(registered.Address, qt.Equals, org.Address())

	info, err := cli.CreateProposal(org, "Open the park at night", "Lights and a guard until midnight", 24)
	c.Assert(err, qt.IsNil)
	c.Assert(info.Active, qt.IsTrue)
	pid := info.ID

	choices := []types.VoteChoice{types.ChoiceYes, types.ChoiceYes, types.ChoiceNo, types.ChoiceAbstain}
	voters := make([]*ethereum.SignKeys, len(choices))
	for i, choice := range choices {
		voters[i] = newKeys(c)
		salt, err := cli.Salt(voters[i], pid)
		c.Assert(err, qt.IsNil)
		resp, err := cli.Vote(voters[i], pid, choice, nil, salt)
		c.Assert(err, qt.IsNil)
		c.Assert(resp.Accepted, qt.IsTrue)
		c.Assert(resp.Proof.Index, qt.Equals, uint64(i))
	}

	// a second vote is rejected with the duplicate code
	salt, err := cli.Salt(newKeys(c), pid)
	c.Assert(err, qt.IsNil)
	_, err = cli.Vote(voters[0], pid, types.ChoiceNo, nil, salt)
	var apiErr *APIError
	c.Assert(errors.As(err, &apiErr), qt.IsTrue)
	c.Assert(apiErr.Status, qt.Equals, http.StatusConflict)
	c.Assert(apiErr.Code, qt.Equals, api.ErrDuplicateVote.Code)

	stats, err := cli.Stats(pid)
	c.Assert(err, qt.IsNil)
	c.Assert(stats.TotalVotes, qt.Equals, uint64(4))
	c.Assert(stats.YesVotes, qt.Equals, uint64(2))
	c.Assert(stats.NoVotes, qt.Equals, uint64(1))
	c.Assert(stats.AbstainVotes, qt.Equals, uint64(1))
	c.Assert(stats.TotalWeight.String(), qt.Equals, "4")

	root, err := cli.Root(pid)
	c.Assert(err, qt.IsNil)
	c.Assert(root.Size, qt.Equals, uint64(4))
	proof, err := cli.Proof(pid, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(proof.Root, qt.DeepEquals, root.Root)
	valid, err := cli.Verify(pid, proof)
	c.Assert(err, qt.IsNil)
	c.Assert(valid, qt.IsTrue)

	status, err := cli.DidVote(pid, voters[2].Address())
	c.Assert(err, qt.IsNil)
	c.Assert(status.Voted, qt.IsTrue)
	status, err = cli.DidVote(pid, org.Address())
	c.Assert(err, qt.IsNil)
	c.Assert(status.Voted, qt.IsFalse)

	pids, err := cli.VoterVotes(voters[3].Address())
	c.Assert(err, qt.IsNil)
	c.Assert(pids, qt.DeepEquals, []types.ProposalID{pid})

	list, err := cli.Proposals()
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, 1)
	got, err := cli.Proposal(pid)
	c.Assert(err, qt.IsNil)
	c.Assert(got.VoteCount, qt.Equals, uint64(4))

	_, err = cli.Proposal(pid + 1)
	c.Assert(errors.As(err, &apiErr), qt.IsTrue)
	c.Assert(apiErr.Code, qt.Equals, api.ErrProposalNotFound.Code)
}

func TestSign(t *testing.T) {
	c := qt.New(t)
	keys := newKeys(c)
	req, err := Sign(keys, &api.SaltRequest{ProposalID: 3})
	c.Assert(err, qt.IsNil)
	c.Assert(string(req.Payload), qt.Equals, `{"proposalId":3}`)
	addr, err := ethereum.AddrFromSignature(req.Payload, req.Signature)
	c.Assert(err, qt.IsNil)
	c.Assert(addr, qt.Equals, keys.Address())
}
