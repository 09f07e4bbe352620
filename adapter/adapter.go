package adapter

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ElrondNetwork/elrond-exec-adapter/callback"
	"github.com/ElrondNetwork/elrond-exec-adapter/codec"
	"github.com/ElrondNetwork/elrond-exec-adapter/config"
	models "github.com/ElrondNetwork/elrond-exec-adapter/data"
	"github.com/ElrondNetwork/elrond-exec-adapter/execution"
	"github.com/ElrondNetwork/elrond-exec-adapter/interaction"
	"github.com/ElrondNetwork/elrond-exec-adapter/store"
	logger "github.com/ElrondNetwork/elrond-go-logger"
)

const (
	outcomeSubmitted          = "submitted"
	outcomeFailed             = "failed"
	outcomeFulfilled          = "fulfilled"
	outcomeVerificationFailed = "verification_failed"
	outcomeInvalidData        = "invalid_data"
	outcomeRejected           = "rejected"
)

var log = logger.GetOrCreate("adapter")

type adapter struct {
	requester  *execution.Requester
	dispatcher *callback.Dispatcher
	store      store.Store
	config     config.GeneralConfig
	callback   *models.CallbackConfig
}

// NewAdapter wires the ledger-backed execution service, the attestation verifier and the
// request store from config.
func NewAdapter(cfg config.GeneralConfig) (*adapter, error) {
	proverKey, err := callback.ParseProverKey(cfg.Execution.ProverPublicKey)
	if err != nil {
		return nil, err
	}
	verifier, err := callback.NewAttestationVerifier(proverKey, cfg.Contract.Address)
	if err != nil {
		return nil, err
	}

	interactor, err := interaction.NewBlockchainInteractor(cfg.Blockchain)
	if err != nil {
		return nil, err
	}
	service, err := interaction.NewLedgerService(interactor, cfg.Contract)
	if err != nil {
		return nil, err
	}

	requestStore, err := store.NewSQLiteStore(cfg.Store.DBPath)
	if err != nil {
		return nil, err
	}

	a, err := newAdapter(cfg, service, verifier, requestStore)
	if err != nil {
		_ = requestStore.Close()
		return nil, err
	}
	return a, nil
}

func newAdapter(
	cfg config.GeneralConfig,
	service execution.ExecutionService,
	verifier callback.Verifier,
	requestStore store.Store,
) (*adapter, error) {
	requester, err := execution.NewRequester(service, requestStore)
	if err != nil {
		return nil, err
	}
	dispatcher, err := callback.NewDispatcher(callback.DispatcherArgs{
		Verifier:         verifier,
		Store:            requestStore,
		RejectRedelivery: cfg.Execution.RejectRedelivery,
	})
	if err != nil {
		return nil, err
	}
	callbackConfig, err := callbackFromConfig(cfg.Callback)
	if err != nil {
		return nil, err
	}

	return &adapter{
		requester:  requester,
		dispatcher: dispatcher,
		store:      requestStore,
		config:     cfg,
		callback:   callbackConfig,
	}, nil
}

// HandleRequest submits one execution request, filling unset fields from the configured defaults.
func (a *adapter) HandleRequest(ctx context.Context, data models.RequestData) (string, error) {
	sub, err := a.submissionFromRequest(data)
	if err != nil {
		executionRequestsTotal.WithLabelValues(outcomeFailed).Inc()
		return "", execution.NewRequestError(err)
	}

	handle, err := a.requester.SubmitRequest(ctx, sub)
	if err != nil {
		executionRequestsTotal.WithLabelValues(outcomeFailed).Inc()
		return "", err
	}

	executionRequestsTotal.WithLabelValues(outcomeSubmitted).Inc()
	return handle, nil
}

// HandleCallback verifies and dispatches a callback delivered by the execution service.
func (a *adapter) HandleCallback(ctx context.Context, data models.CallbackData) (string, error) {
	payload, err := codec.DecodeInput(data.Payload)
	if err != nil {
		callbacksTotal.WithLabelValues(outcomeRejected).Inc()
		return "", fmt.Errorf("callback payload: %w", err)
	}
	imageID := data.ImageID
	if imageID == "" {
		imageID = a.config.Execution.ImageID
	}

	output, err := a.dispatcher.HandleCallback(ctx, imageID, data.Handle, data.Accounts, payload)
	callbacksTotal.WithLabelValues(callbackOutcome(err)).Inc()
	return output, err
}

func (a *adapter) RequestStatus(ctx context.Context, handle string) (*models.ExecutionRequest, error) {
	return a.store.GetRequest(ctx, handle)
}

func (a *adapter) Stats(ctx context.Context) (map[models.RequestStatus]int, error) {
	return a.store.CountByStatus(ctx)
}

func (a *adapter) Close() error {
	return a.store.Close()
}

func (a *adapter) submissionFromRequest(data models.RequestData) (execution.Submission, error) {
	inputs, err := inputsFromRequest(data)
	if err != nil {
		return execution.Submission{}, err
	}

	defaults := a.config.Execution
	sub := execution.Submission{
		Payer:          data.Payer,
		ImageID:        data.ImageID,
		Inputs:         inputs,
		Tip:            defaults.Tip,
		ResourceBudget: defaults.ResourceBudget,
		Config: models.ExecutionConfig{
			VerifyInputHash: defaults.VerifyInputHash,
			ForwardOutput:   defaults.ForwardOutput,
		},
		Callback: a.callback,
	}
	if sub.ImageID == "" {
		sub.ImageID = defaults.ImageID
	}
	if data.Tip != nil {
		sub.Tip = *data.Tip
	}
	if data.ResourceBudget != nil {
		sub.ResourceBudget = *data.ResourceBudget
	}
	if data.VerifyInputHash != nil {
		sub.Config.VerifyInputHash = *data.VerifyInputHash
	}
	if data.ForwardOutput != nil {
		sub.Config.ForwardOutput = *data.ForwardOutput
	}
	if data.InputHash != "" {
		inputHash, err := hex.DecodeString(data.InputHash)
		if err != nil {
			return execution.Submission{}, fmt.Errorf("input hash: %w", err)
		}
		sub.Config.InputHash = inputHash
	}
	return sub, nil
}

func inputsFromRequest(data models.RequestData) ([]execution.Input, error) {
	if len(data.Inputs) == 0 {
		return []execution.Input{{Data: []byte(data.Input), Private: data.Private}}, nil
	}
	if data.Input != "" {
		return nil, ErrAmbiguousInputs
	}

	inputs := make([]execution.Input, 0, len(data.Inputs))
	for i, in := range data.Inputs {
		raw, err := codec.DecodeInput(in.Data)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		inputs = append(inputs, execution.Input{Data: raw, Private: in.Private})
	}
	return inputs, nil
}

func callbackFromConfig(cfg config.CallbackInformation) (*models.CallbackConfig, error) {
	if cfg.TargetProgramID == "" {
		return nil, nil
	}
	prefix, err := hex.DecodeString(cfg.InstructionPrefix)
	if err != nil {
		return nil, fmt.Errorf("callback instruction prefix: %w", err)
	}
	accounts := make([]models.AccountRef, 0, len(cfg.ExtraAccounts))
	for _, address := range cfg.ExtraAccounts {
		accounts = append(accounts, models.AccountRef{Address: address})
	}
	return &models.CallbackConfig{
		TargetProgramID:   cfg.TargetProgramID,
		InstructionPrefix: prefix,
		ExtraAccounts:     accounts,
	}, nil
}

func callbackOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeFulfilled
	case errors.Is(err, callback.ErrVerificationFailed):
		return outcomeVerificationFailed
	case errors.Is(err, codec.ErrInvalidCallbackData):
		return outcomeInvalidData
	default:
		return outcomeRejected
	}
}
