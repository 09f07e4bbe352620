package callback

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ElrondNetwork/elrond-exec-adapter/data"
)

const attestationTag = "exec-adapter/attestation/v1"

// Verifier authenticates a raw callback payload against the computation it claims to come
// from and the request handle it must be bound to. Rejections should match ErrVerificationFailed.
type Verifier interface {
	Verify(ctx context.Context, imageID, handle string, accounts []string, payload []byte) (*data.AuthenticatedPayload, error)
}

// Attestation is the wire form of a callback payload signed by the execution service prover.
type Attestation struct {
	ImageID          string   `json:"image_id"`
	ExecutionID      string   `json:"execution_id"`
	Accounts         []string `json:"accounts"`
	InputDigest      []byte   `json:"input_digest"`
	CommittedOutputs []byte   `json:"committed_outputs"`
	Signature        []byte   `json:"signature"`
}

// Digest is the message the prover signs. It covers the authorizing accounts so the list
// delivered with a callback cannot be extended by whoever relays it.
func (a *Attestation) Digest() []byte {
	h := sha256.New()
	h.Write([]byte(attestationTag))
	writeField := func(field []byte) {
		var lenBuf [8]byte
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(field)))
		h.Write(lenBuf[:])
		h.Write(field)
	}

	writeField([]byte(a.ImageID))
	writeField([]byte(a.ExecutionID))
	var countBuf [8]byte
	binary.BigEndian.PutUint64(countBuf[:], uint64(len(a.Accounts)))
	h.Write(countBuf[:])
	for _, account := range a.Accounts {
		writeField([]byte(account))
	}
	writeField(a.InputDigest)
	writeField(a.CommittedOutputs)
	return h.Sum(nil)
}

// SignAttestation produces a callback payload for the given execution, authorized by accounts.
func SignAttestation(
	key ed25519.PrivateKey,
	imageID string,
	handle string,
	accounts []string,
	inputDigest []byte,
	committedOutputs []byte,
) ([]byte, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid prover key size %d", len(key))
	}
	att := &Attestation{
		ImageID:          imageID,
		ExecutionID:      handle,
		Accounts:         accounts,
		InputDigest:      inputDigest,
		CommittedOutputs: committedOutputs,
	}
	att.Signature = ed25519.Sign(key, att.Digest())
	return json.Marshal(att)
}

// ParseProverKey decodes a hex encoded ed25519 public key.
func ParseProverKey(hexKey string) (ed25519.PublicKey, error) {
	b, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode prover key: %w", err)
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid prover key size %d", len(b))
	}
	return ed25519.PublicKey(b), nil
}

type AttestationVerifier struct {
	proverKey      ed25519.PublicKey
	serviceAddress string
}

var _ Verifier = (*AttestationVerifier)(nil)

// NewAttestationVerifier builds a Verifier trusting proverKey. The delivered accounts must be
// the ones the prover signed; when serviceAddress is set, it must be among them.
func NewAttestationVerifier(proverKey ed25519.PublicKey, serviceAddress string) (*AttestationVerifier, error) {
	if len(proverKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid prover key size %d", len(proverKey))
	}
	return &AttestationVerifier{
		proverKey:      proverKey,
		serviceAddress: serviceAddress,
	}, nil
}

func (v *AttestationVerifier) Verify(
	_ context.Context,
	imageID string,
	handle string,
	accounts []string,
	payload []byte,
) (*data.AuthenticatedPayload, error) {
	var att Attestation
	if err := json.Unmarshal(payload, &att); err != nil {
		return nil, rejected(ErrMalformedPayload, err.Error())
	}
	if len(att.Signature) != ed25519.SignatureSize {
		return nil, rejected(ErrMalformedPayload, "missing signature")
	}
	if att.ImageID != imageID {
		return nil, rejected(ErrImageMismatch, fmt.Sprintf("want %s, got %s", imageID, att.ImageID))
	}
	if att.ExecutionID != handle {
		return nil, rejected(ErrHandleMismatch, fmt.Sprintf("want %s, got %s", handle, att.ExecutionID))
	}
	if !equalAccounts(accounts, att.Accounts) {
		return nil, rejected(ErrUnauthorizedCaller, "accounts differ from the attested ones")
	}
	if v.serviceAddress != "" && !contains(att.Accounts, v.serviceAddress) {
		return nil, rejected(ErrUnauthorizedCaller, v.serviceAddress)
	}
	if !ed25519.Verify(v.proverKey, att.Digest(), att.Signature) {
		return nil, rejected(ErrInvalidSignature, "")
	}

	return &data.AuthenticatedPayload{
		ImageID:          att.ImageID,
		Handle:           att.ExecutionID,
		InputDigest:      att.InputDigest,
		CommittedOutputs: att.CommittedOutputs,
	}, nil
}

func rejected(reason error, detail string) error {
	if detail == "" {
		return fmt.Errorf("%w: %w", ErrVerificationFailed, reason)
	}
	return fmt.Errorf("%w: %w: %s", ErrVerificationFailed, reason, detail)
}

func contains(accounts []string, address string) bool {
	for _, a := range accounts {
		if a == address {
			return true
		}
	}
	return false
}

func equalAccounts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
