// Package ethereum provides the secp256k1 identities used to authenticate
// organizations and voters. The address recovered from a signature is the
// principal that owns a request.
package ethereum

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/vocdoni/proposal-ledger/util"
)

const (
	// SignatureLength is the size of an ECDSA signature in hexString format
	SignatureLength = ethcrypto.SignatureLength
	// PubKeyLengthBytes is the size of a Public Key
	PubKeyLengthBytes = 33
	// PubKeyLengthBytesUncompressed is the size of a uncompressed Public Key
	PubKeyLengthBytesUncompressed = 65
	// SigningPrefix is the prefix added when hashing
	SigningPrefix = "\u0019Ethereum Signed Message:\n"
)

// SignKeys represents an ECDSA pair of keys for signing.
type SignKeys struct {
	Public  ecdsa.PublicKey
	Private ecdsa.PrivateKey
}

// NewSignKeys creates an ECDSA pair of keys for signing
func NewSignKeys() *SignKeys {
	return &SignKeys{}
}

// Generate generates new keys
func (k *SignKeys) Generate() error {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// AddHexKey imports a private hex key
func (k *SignKeys) AddHexKey(privHex string) error {
	key, err := ethcrypto.HexToECDSA(util.TrimHex(privHex))
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// HexString returns the public compressed and private keys as hex strings
func (k *SignKeys) HexString() (string, string) {
	pubHexComp := fmt.Sprintf("%x", ethcrypto.CompressPubkey(&k.Public))
	privHex := fmt.Sprintf("%x", ethcrypto.FromECDSA(&k.Private))
	return pubHexComp, privHex
}

// PublicKey returns the compressed public key
func (k *SignKeys) PublicKey() []byte {
	return ethcrypto.CompressPubkey(&k.Public)
}

// Address returns the SignKeys ethereum address
func (k *SignKeys) Address() common.Address {
	return ethcrypto.PubkeyToAddress(k.Public)
}

// AddressString returns the ethereum Address as string
func (k *SignKeys) AddressString() string {
	return k.Address().String()
}

// SignEthereum signs a message. Message is a normal string (no HexString nor
// a Hash)
func (k *SignKeys) SignEthereum(message []byte) ([]byte, error) {
	if k.Private.D == nil {
		return nil, errors.New("no private key available")
	}
	signature, err := ethcrypto.Sign(Hash(message), &k.Private)
	if err != nil {
		return nil, err
	}
	return signature, nil
}

// AddrFromPublicKey standarizes a public key and returns the ethereum address
func AddrFromPublicKey(pub []byte) (common.Address, error) {
	var pubkey *ecdsa.PublicKey
	var err error
	switch len(pub) {
	case PubKeyLengthBytes:
		pubkey, err = ethcrypto.DecompressPubkey(pub)
	case PubKeyLengthBytesUncompressed:
		pubkey, err = ethcrypto.UnmarshalPubkey(pub)
	default:
		return common.Address{}, fmt.Errorf("invalid public key length %d", len(pub))
	}
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*pubkey), nil
}

// PubKeyFromSignature recovers the ECDSA public key that created the
// signature of a message.
func PubKeyFromSignature(message, signature []byte) ([]byte, error) {
	if len(signature) != SignatureLength {
		return nil, fmt.Errorf("signature length not correct (%d)", len(signature))
	}
	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	// wallets produce v as 27/28
	if sig[64] > 1 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return nil, errors.New("bad recover ID byte")
	}
	pubKey, err := ethcrypto.SigToPub(Hash(message), sig)
	if err != nil {
		return nil, err
	}
	return ethcrypto.CompressPubkey(pubKey), nil
}

// AddrFromSignature recovers the Ethereum address that created the
// signature of a message.
func AddrFromSignature(message, signature []byte) (common.Address, error) {
	pub, err := PubKeyFromSignature(message, signature)
	if err != nil {
		return common.Address{}, err
	}
	return AddrFromPublicKey(pub)
}

// AddrFromHexSignature is AddrFromSignature with a hex encoded signature.
func AddrFromHexSignature(message []byte, signature string) (common.Address, error) {
	sig, err := hex.DecodeString(util.TrimHex(signature))
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature encoding: %w", err)
	}
	return AddrFromSignature(message, sig)
}

// Hash data adding the Ethereum message prefix
func Hash(data []byte) []byte {
	payloadToSign := fmt.Sprintf("%s%d%s", SigningPrefix, len(data), data)
	return HashRaw([]byte(payloadToSign))
}

// HashRaw hashes data with no prefix
func HashRaw(data []byte) []byte {
	return ethcrypto.Keccak256(data)
}
