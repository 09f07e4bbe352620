package interaction

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/ElrondNetwork/elrond-exec-adapter/codec"
	"github.com/ElrondNetwork/elrond-exec-adapter/config"
	models "github.com/ElrondNetwork/elrond-exec-adapter/data"
	"github.com/ElrondNetwork/elrond-sdk/erdgo/data"
	"github.com/stretchr/testify/require"
)

const (
	aliceAddress = "erd1qyu5wthldzr8wx5c9ucg8kjagg0jfs53s8nr3zpz3hypefsdd8ssycr6th"
	bobAddress   = "erd1spyavw0956vq68xj8y4tenjpq2wd5a9p2c6j8gsz7ztyrnpxrruqzu66jx"
	helloImageID = "dcf7509f3f8fc58f90a99dab085e3b60fcbdd7a169b2c5e3b73af2f35ad480a0"
)

type txSenderStub struct {
	err      error
	value    string
	data     []byte
	receiver string
	calls    int
}

func (s *txSenderStub) SignAndSend(value string, inputData []byte, receiver string) (string, error) {
	s.calls++
	s.value = value
	s.data = inputData
	s.receiver = receiver
	if s.err != nil {
		return "", s.err
	}
	return "f00d", nil
}

func (s *txSenderStub) Address() string {
	return aliceAddress
}

func helloRequest() *models.ExecutionRequest {
	return &models.ExecutionRequest{
		Handle:         "01HZY3J6QK6W3C9B1XJ9V2M8QF",
		ImageID:        helloImageID,
		Payer:          aliceAddress,
		Inputs:         []models.InputRef{codec.PublicInput([]byte("World"))},
		Tip:            1,
		ResourceBudget: 100,
		Config:         models.ExecutionConfig{ForwardOutput: true},
		Callback: &models.CallbackConfig{
			TargetProgramID:   aliceAddress,
			InstructionPrefix: []byte{0},
			ExtraAccounts:     []models.AccountRef{{Address: bobAddress, Writable: true}},
		},
	}
}

func addressHex(t *testing.T, bech32 string) string {
	t.Helper()
	addr, err := data.NewAddressFromBech32String(bech32)
	require.Nil(t, err)
	return hex.EncodeToString(addr.AddressBytes())
}

func TestNewLedgerService_InvalidContractShouldErr(t *testing.T) {
	t.Parallel()
	_, err := NewLedgerService(&txSenderStub{}, config.ContractInformation{Address: "not-an-address"})
	require.ErrorIs(t, err, ErrInvalidAddress)

	_, err = NewLedgerService(nil, config.ContractInformation{Address: bobAddress})
	require.Error(t, err)
}

func TestLedgerService_ExecuteShouldWork(t *testing.T) {
	t.Parallel()
	sender := &txSenderStub{}
	ls, err := NewLedgerService(sender, config.ContractInformation{Address: bobAddress})
	require.Nil(t, err)

	txHash, err := ls.Execute(context.Background(), helloRequest())
	require.Nil(t, err)
	require.Equal(t, "f00d", txHash)
	require.Equal(t, "1", sender.value)
	require.Equal(t, bobAddress, sender.receiver)

	parts := strings.Split(string(sender.data), argsSeparator)
	require.Equal(t, []string{
		defaultExecuteEndpoint,
		helloImageID,
		hex.EncodeToString([]byte("01HZY3J6QK6W3C9B1XJ9V2M8QF")),
		"64",
		"",
		"",
		"01",
		"01",
		"00" + hex.EncodeToString([]byte("V29ybGQ=")),
		addressHex(t, aliceAddress),
		"00",
		"01",
		"01" + addressHex(t, bobAddress),
	}, parts)
}

func TestLedgerService_ExecuteWithoutCallback(t *testing.T) {
	t.Parallel()
	sender := &txSenderStub{}
	ls, err := NewLedgerService(sender, config.ContractInformation{Address: bobAddress, Endpoint: "requestExecution"})
	require.Nil(t, err)

	req := helloRequest()
	req.Callback = nil
	req.Config.VerifyInputHash = true
	req.Config.InputHash = []byte{0xaa, 0xbb}
	req.Inputs = append(req.Inputs, codec.PrivateInput([]byte("secret")))

	_, err = ls.Execute(context.Background(), req)
	require.Nil(t, err)

	parts := strings.Split(string(sender.data), argsSeparator)
	require.Equal(t, "requestExecution", parts[0])
	require.Equal(t, "01", parts[4])
	require.Equal(t, "aabb", parts[5])
	require.Equal(t, "02", parts[7])
	require.True(t, strings.HasPrefix(parts[9], "01"))
	require.NotContains(t, string(sender.data), hex.EncodeToString([]byte("secret")))
	require.Equal(t, []string{"", "", ""}, parts[10:])
}

func TestLedgerService_PayerNotSignerShouldErr(t *testing.T) {
	t.Parallel()
	sender := &txSenderStub{}
	ls, err := NewLedgerService(sender, config.ContractInformation{Address: bobAddress})
	require.Nil(t, err)

	req := helloRequest()
	req.Payer = bobAddress
	_, err = ls.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrPayerNotSigner)
	require.Equal(t, 0, sender.calls)
}

func TestLedgerService_InvalidCallbackTargetShouldErr(t *testing.T) {
	t.Parallel()
	sender := &txSenderStub{}
	ls, err := NewLedgerService(sender, config.ContractInformation{Address: bobAddress})
	require.Nil(t, err)

	req := helloRequest()
	req.Callback.TargetProgramID = "B1AJLQqKJPdaFM45ZojBQYGfGQ8v6ysCBVtAUsgwVvkb"
	_, err = ls.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidAddress)
	require.Equal(t, 0, sender.calls)
}

func TestLedgerService_SendFailureShouldErr(t *testing.T) {
	t.Parallel()
	expected := errors.New("proxy unreachable")
	ls, err := NewLedgerService(&txSenderStub{err: expected}, config.ContractInformation{Address: bobAddress})
	require.Nil(t, err)

	_, err = ls.Execute(context.Background(), helloRequest())
	require.Equal(t, expected, err)
}

func TestLedgerService_CancelledContextShouldErr(t *testing.T) {
	t.Parallel()
	sender := &txSenderStub{}
	ls, err := NewLedgerService(sender, config.ContractInformation{Address: bobAddress})
	require.Nil(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ls.Execute(ctx, helloRequest())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, sender.calls)
}

func TestLoadSigningKey_MissingPathShouldErr(t *testing.T) {
	t.Parallel()
	_, _, err := LoadSigningKey("")
	require.ErrorIs(t, err, ErrMissingPemPath)
	_, _, err = LoadSigningKey("./missing.pem")
	require.Error(t, err)
}
