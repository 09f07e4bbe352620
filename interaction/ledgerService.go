package interaction

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ElrondNetwork/elrond-exec-adapter/config"
	models "github.com/ElrondNetwork/elrond-exec-adapter/data"
	"github.com/ElrondNetwork/elrond-sdk/erdgo/data"
)

const defaultExecuteEndpoint = "execute"

// TxSender signs and broadcasts transactions for one account.
type TxSender interface {
	SignAndSend(value string, inputData []byte, receiver string) (string, error)
	Address() string
}

// LedgerService submits execution requests to the execution service contract. The tip travels
// as the transaction value; the contract earmarks it and creates the request record.
type LedgerService struct {
	sender          TxSender
	contractAddress string
	endpoint        string
}

func NewLedgerService(sender TxSender, contract config.ContractInformation) (*LedgerService, error) {
	if sender == nil {
		return nil, fmt.Errorf("nil tx sender provided")
	}
	if _, err := data.NewAddressFromBech32String(contract.Address); err != nil {
		return nil, fmt.Errorf("execution service contract: %w: %s", ErrInvalidAddress, contract.Address)
	}
	endpoint := contract.Endpoint
	if endpoint == "" {
		endpoint = defaultExecuteEndpoint
	}
	return &LedgerService{
		sender:          sender,
		contractAddress: contract.Address,
		endpoint:        endpoint,
	}, nil
}

func (ls *LedgerService) Execute(ctx context.Context, req *models.ExecutionRequest) (string, error) {
	if req.Payer != ls.sender.Address() {
		return "", fmt.Errorf("%w: %s", ErrPayerNotSigner, req.Payer)
	}

	callData, err := prepareExecuteCallData(ls.endpoint, req)
	if err != nil {
		return "", err
	}
	if err = ctx.Err(); err != nil {
		return "", err
	}

	txHash, err := ls.sender.SignAndSend(strconv.FormatUint(req.Tip, 10), []byte(callData), ls.contractAddress)
	if err != nil {
		return "", err
	}

	log.Info("execution request sent to ledger",
		"handle", req.Handle,
		"contract", ls.contractAddress,
		"tip", req.Tip,
		"tx", txHash,
	)
	return txHash, nil
}
