package codec

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/ElrondNetwork/elrond-exec-adapter/data"
)

const commitmentTag = "exec-adapter/private-input/v1"

// EncodeInput returns the transport form of raw input bytes: standard alphabet, padded.
func EncodeInput(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeInput(s string) ([]byte, error) {
	b, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInputEncoding, err)
	}
	return b, nil
}

// Commit returns the binding commitment sent in place of a private input.
func Commit(value []byte) []byte {
	h := sha256.New()
	h.Write([]byte(commitmentTag))
	h.Write(value)
	return h.Sum(nil)
}

// PublicInput builds a revealed input ref.
func PublicInput(raw []byte) data.InputRef {
	return data.InputRef{Visibility: data.VisibilityPublic, Data: EncodeInput(raw)}
}

// PrivateInput builds an input ref that carries only the commitment of raw.
func PrivateInput(raw []byte) data.InputRef {
	return data.InputRef{Visibility: data.VisibilityPrivate, Data: EncodeInput(Commit(raw))}
}

// InputDigest hashes the ordered input refs as they cross the boundary. For private
// inputs this covers the commitment, never the raw value.
func InputDigest(refs []data.InputRef) ([]byte, error) {
	h := sha256.New()
	var lenBuf [8]byte
	for i, ref := range refs {
		tag, err := VisibilityTag(ref.Visibility)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		raw, err := DecodeInput(ref.Data)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		h.Write([]byte{tag})
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(raw)))
		h.Write(lenBuf[:])
		h.Write(raw)
	}
	return h.Sum(nil), nil
}

// VisibilityTag is the single byte used for a visibility on the wire.
func VisibilityTag(v data.Visibility) (byte, error) {
	switch v {
	case data.VisibilityPublic:
		return 0, nil
	case data.VisibilityPrivate:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVisibility, v)
	}
}
