package callback

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	helloImageID   = "dcf7509f3f8fc58f90a99dab085e3b60fcbdd7a169b2c5e3b73af2f35ad480a0"
	serviceAddress = "erd1qqqqqqqqqqqqqpgqexecservice"
	testHandle     = "01HZY3J6QK6W3C9B1XJ9V2M8QF"
)

var proverKey = ed25519.NewKeyFromSeed(bytes.Repeat([]byte{7}, ed25519.SeedSize))

func newTestVerifier(t *testing.T) *AttestationVerifier {
	t.Helper()
	v, err := NewAttestationVerifier(proverKey.Public().(ed25519.PublicKey), serviceAddress)
	require.Nil(t, err)
	return v
}

func signedPayload(t *testing.T, key ed25519.PrivateKey, imageID, handle string, outputs []byte) []byte {
	t.Helper()
	return signedFor(t, key, imageID, handle, []string{serviceAddress}, outputs)
}

func signedFor(t *testing.T, key ed25519.PrivateKey, imageID, handle string, accounts []string, outputs []byte) []byte {
	t.Helper()
	payload, err := SignAttestation(key, imageID, handle, accounts, []byte("digest"), outputs)
	require.Nil(t, err)
	return payload
}

func TestAttestationVerifier_VerifyShouldWork(t *testing.T) {
	t.Parallel()
	v := newTestVerifier(t)
	accounts := []string{"erd1other", serviceAddress}
	payload := signedFor(t, proverKey, helloImageID, testHandle, accounts, []byte("Hello, World!"))

	auth, err := v.Verify(context.Background(), helloImageID, testHandle, accounts, payload)
	require.Nil(t, err)
	require.Equal(t, helloImageID, auth.ImageID)
	require.Equal(t, testHandle, auth.Handle)
	require.Equal(t, []byte("digest"), auth.InputDigest)
	require.Equal(t, []byte("Hello, World!"), auth.CommittedOutputs)
}

func TestAttestationVerifier_NoServiceAddressSkipsAccountCheck(t *testing.T) {
	t.Parallel()
	v, err := NewAttestationVerifier(proverKey.Public().(ed25519.PublicKey), "")
	require.Nil(t, err)
	payload := signedFor(t, proverKey, helloImageID, testHandle, nil, []byte("ok"))

	_, err = v.Verify(context.Background(), helloImageID, testHandle, nil, payload)
	require.Nil(t, err)
}

func TestAttestationVerifier_VerifyShouldErr(t *testing.T) {
	t.Parallel()
	otherKey := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{9}, ed25519.SeedSize))
	valid := signedPayload(t, proverKey, helloImageID, testHandle, []byte("Hello, World!"))

	var tampered Attestation
	require.Nil(t, json.Unmarshal(valid, &tampered))
	tampered.CommittedOutputs = []byte("Hello, Mallory!")
	tamperedPayload, err := json.Marshal(&tampered)
	require.Nil(t, err)

	withoutService := signedFor(t, proverKey, helloImageID, testHandle, []string{"erd1other"}, []byte("Hello, World!"))
	var relabelled Attestation
	require.Nil(t, json.Unmarshal(withoutService, &relabelled))
	relabelled.Accounts = []string{"erd1other", serviceAddress}
	relabelledPayload, err := json.Marshal(&relabelled)
	require.Nil(t, err)

	accounts := []string{serviceAddress}
	cases := map[string]struct {
		imageID  string
		handle   string
		accounts []string
		payload  []byte
		reason   error
	}{
		"not json":         {helloImageID, testHandle, accounts, []byte("Hello, World!"), ErrMalformedPayload},
		"unsigned":         {helloImageID, testHandle, accounts, []byte(`{"image_id":"x"}`), ErrMalformedPayload},
		"other image":      {"00" + helloImageID[2:], testHandle, accounts, valid, ErrImageMismatch},
		"other handle":     {helloImageID, "01HZY3J6QK6W3C9B1XJ9V2M8QG", accounts, valid, ErrHandleMismatch},
		"missing service":  {helloImageID, testHandle, []string{"erd1other"}, withoutService, ErrUnauthorizedCaller},
		"added account":    {helloImageID, testHandle, []string{"erd1other", serviceAddress}, withoutService, ErrUnauthorizedCaller},
		"dropped account":  {helloImageID, testHandle, nil, valid, ErrUnauthorizedCaller},
		"relabelled":       {helloImageID, testHandle, []string{"erd1other", serviceAddress}, relabelledPayload, ErrInvalidSignature},
		"forged signer":    {helloImageID, testHandle, accounts, signedPayload(t, otherKey, helloImageID, testHandle, []byte("x")), ErrInvalidSignature},
		"tampered outputs": {helloImageID, testHandle, accounts, tamperedPayload, ErrInvalidSignature},
	}

	v := newTestVerifier(t)
	for name, tc := range cases {
		auth, err := v.Verify(context.Background(), tc.imageID, tc.handle, tc.accounts, tc.payload)
		require.Nil(t, auth, name)
		require.ErrorIs(t, err, ErrVerificationFailed, name)
		require.ErrorIs(t, err, tc.reason, name)
	}
}

func TestParseProverKey(t *testing.T) {
	t.Parallel()
	pub := proverKey.Public().(ed25519.PublicKey)
	parsed, err := ParseProverKey(hex.EncodeToString(pub))
	require.Nil(t, err)
	require.Equal(t, pub, parsed)

	_, err = ParseProverKey("zz")
	require.Error(t, err)
	_, err = ParseProverKey("abcd")
	require.Error(t, err)
}

func TestNewAttestationVerifier_BadKeyShouldErr(t *testing.T) {
	t.Parallel()
	_, err := NewAttestationVerifier(ed25519.PublicKey{1, 2}, "")
	require.Error(t, err)
	_, err = SignAttestation(ed25519.PrivateKey{1}, helloImageID, testHandle, nil, nil, nil)
	require.Error(t, err)
}
