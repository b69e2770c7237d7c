package commitment

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/vocdoni/proposal-ledger/types"
)

// entropySource is the random reader used by GenerateSalt.
var entropySource io.Reader = rand.Reader

// GenerateSalt returns a fresh random salt of types.SaltSize bytes. A salt
// must be used for a single commitment.
func GenerateSalt() (types.HexBytes, error) {
	return generateSaltFrom(entropySource)
}

func generateSaltFrom(r io.Reader) (types.HexBytes, error) {
	salt := make([]byte, types.SaltSize)
	if _, err := io.ReadFull(r, salt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return salt, nil
}
