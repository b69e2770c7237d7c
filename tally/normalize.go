package tally

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/vocdoni/proposal-ledger/types"
)

// maxNormalizeDepth bounds how many containers Normalize unwraps.
const maxNormalizeDepth = 4

// Normalize turns any wire representation of the stats into the canonical
// record. It accepts a bare record, an array holding the record first, a
// result object {"Ok": record} and nested combinations of those. Counters may
// be JSON numbers or decimal strings; a missing or unreadable counter is
// zero. Any other shape, null or empty input yields zero stats. It never
// fails.
func Normalize(raw []byte) types.VotingStats {
	return normalize(bytes.TrimSpace(raw), 0)
}

func normalize(raw []byte, depth int) types.VotingStats {
	if len(raw) == 0 || depth > maxNormalizeDepth {
		return types.NewVotingStats()
	}
	switch raw[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
			return types.NewVotingStats()
		}
		return normalize(bytes.TrimSpace(list[0]), depth+1)
	case '{':
		var record map[string]json.RawMessage
		if err := json.Unmarshal(raw, &record); err != nil {
			return types.NewVotingStats()
		}
		if ok, found := record["Ok"]; found {
			return normalize(bytes.TrimSpace(ok), depth+1)
		}
		return fromRecord(record)
	default:
		return types.NewVotingStats()
	}
}

func fromRecord(record map[string]json.RawMessage) types.VotingStats {
	return types.VotingStats{
		TotalVotes:    counter(record["totalVotes"]),
		YesVotes:      counter(record["yesVotes"]),
		NoVotes:       counter(record["noVotes"]),
		AbstainVotes:  counter(record["abstainVotes"]),
		TotalWeight:   weight(record["totalWeight"]),
		YesWeight:     weight(record["yesWeight"]),
		NoWeight:      weight(record["noWeight"]),
		AbstainWeight: weight(record["abstainWeight"]),
	}
}

// maxNumberText bounds the length of a counter before it is parsed.
const maxNumberText = 256

// number reads a JSON number or a quoted decimal as a non negative integer
// of at most types.MaxBigIntBits. It returns nil for anything else.
func number(raw json.RawMessage) *big.Int {
	s := strings.Trim(string(bytes.TrimSpace(raw)), `"`)
	if s == "" || len(s) > maxNumberText {
		return nil
	}
	if n, ok := new(big.Int).SetString(s, 10); ok {
		if n.Sign() < 0 || n.BitLen() > types.MaxBigIntBits {
			return nil
		}
		return n
	}
	// exponent or fraction forms such as 4.0 or 1e3
	f, ok := new(big.Float).SetPrec(uint(types.MaxBigIntBits)).SetString(s)
	if !ok || f.IsInf() || !f.IsInt() || f.Sign() < 0 {
		return nil
	}
	if f.MantExp(nil) > types.MaxBigIntBits {
		return nil
	}
	n, _ := f.Int(nil)
	return n
}

func counter(raw json.RawMessage) uint64 {
	n := number(raw)
	if n == nil || !n.IsUint64() {
		return 0
	}
	return n.Uint64()
}

func weight(raw json.RawMessage) *types.BigInt {
	n := number(raw)
	if n == nil {
		return types.NewInt(0)
	}
	return (*types.BigInt)(n)
}
