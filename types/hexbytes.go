package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HexBytes is a []byte which encodes as hexadecimal in json, as opposed to
// the base64 default.
type HexBytes []byte

// String returns the hex representation of the bytes (no 0x prefix).
func (b HexBytes) String() string {
	return hex.EncodeToString(b)
}

// MarshalText implements encoding.TextMarshaler.
func (b HexBytes) MarshalText() ([]byte, error) {
	enc := make([]byte, hex.EncodedLen(len(b)))
	hex.Encode(enc, b)
	return enc, nil
}

// UnmarshalText implements encoding.TextUnmarshaler. A leading 0x is
// accepted.
func (b *HexBytes) UnmarshalText(data []byte) error {
	s := strings.TrimPrefix(string(data), "0x")
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex bytes %q: %w", data, err)
	}
	*b = decoded
	return nil
}

// HexStringToHexBytes decodes a hex string, with or without 0x prefix.
func HexStringToHexBytes(s string) (HexBytes, error) {
	b := HexBytes{}
	if err := b.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	return b, nil
}

// Equal reports whether b and o hold the same bytes.
func (b HexBytes) Equal(o []byte) bool {
	return string(b) == string(o)
}
