package interaction

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ElrondNetwork/elrond-exec-adapter/codec"
	models "github.com/ElrondNetwork/elrond-exec-adapter/data"
	"github.com/ElrondNetwork/elrond-sdk/erdgo/data"
)

const argsSeparator = "@"

// prepareExecuteCallData renders req as "endpoint@arg@arg...", every argument hex encoded.
// Layout: image id, handle, resource budget, verify input hash, input hash, forward output,
// input count, inputs, callback target, callback prefix, extra account count, extra accounts.
func prepareExecuteCallData(endpoint string, req *models.ExecutionRequest) (string, error) {
	args := []string{
		req.ImageID,
		hex.EncodeToString([]byte(req.Handle)),
		uintArg(req.ResourceBudget),
		boolArg(req.Config.VerifyInputHash),
		hex.EncodeToString(req.Config.InputHash),
		boolArg(req.Config.ForwardOutput),
		uintArg(uint64(len(req.Inputs))),
	}

	for i, in := range req.Inputs {
		tag, err := codec.VisibilityTag(in.Visibility)
		if err != nil {
			return "", fmt.Errorf("input %d: %w", i, err)
		}
		args = append(args, hex.EncodeToString(append([]byte{tag}, in.Data...)))
	}

	callbackArgs, err := prepareCallbackArgs(req.Callback)
	if err != nil {
		return "", err
	}
	args = append(args, callbackArgs...)

	return endpoint + argsSeparator + strings.Join(args, argsSeparator), nil
}

func prepareCallbackArgs(cb *models.CallbackConfig) ([]string, error) {
	if cb == nil {
		return []string{"", "", uintArg(0)}, nil
	}

	target, err := addressArg(cb.TargetProgramID)
	if err != nil {
		return nil, fmt.Errorf("callback target: %w", err)
	}
	args := []string{
		target,
		hex.EncodeToString(cb.InstructionPrefix),
		uintArg(uint64(len(cb.ExtraAccounts))),
	}
	for _, acc := range cb.ExtraAccounts {
		addr, err := addressArg(acc.Address)
		if err != nil {
			return nil, fmt.Errorf("extra account: %w", err)
		}
		flag := "00"
		if acc.Writable {
			flag = "01"
		}
		args = append(args, flag+addr)
	}
	return args, nil
}

func addressArg(bech32 string) (string, error) {
	addr, err := data.NewAddressFromBech32String(bech32)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, bech32)
	}
	return hex.EncodeToString(addr.AddressBytes()), nil
}

func uintArg(v uint64) string {
	return hex.EncodeToString(big.NewInt(0).SetUint64(v).Bytes())
}

func boolArg(v bool) string {
	if v {
		return "01"
	}
	return ""
}
