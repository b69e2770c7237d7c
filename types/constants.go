package types

const (
	// SaltSize is the size in bytes of a generated vote salt.
	SaltSize = 32
	// RegistryTreeMaxLevels is the maximum number of levels in the voter
	// registry merkle tree.
	RegistryTreeMaxLevels = 160
	// RegistryKeyLen is the length in bytes of a voter registry key.
	RegistryKeyLen = RegistryTreeMaxLevels / 8
	// VotingMethodMerkle names the commitment scheme used by every proposal.
	VotingMethodMerkle = "merkle"
	// NanosPerHour is the proposal duration unit.
	NanosPerHour = int64(3600) * 1_000_000_000
)
