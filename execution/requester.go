package execution

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ElrondNetwork/elrond-exec-adapter/codec"
	"github.com/ElrondNetwork/elrond-exec-adapter/data"
	"github.com/ElrondNetwork/elrond-exec-adapter/store"
	logger "github.com/ElrondNetwork/elrond-go-logger"
)

const (
	imageIDLen   = 32
	inputHashLen = 32
)

var log = logger.GetOrCreate("execution")

// ExecutionService is the entry point of the external execution service. It earmarks the
// tip and creates the ledger-held record; it returns a reference to the carrying transaction.
type ExecutionService interface {
	Execute(ctx context.Context, req *data.ExecutionRequest) (string, error)
}

// Input is one raw input of a submission. Private inputs never leave this process.
type Input struct {
	Data    []byte
	Private bool
}

type Submission struct {
	Payer          string
	ImageID        string
	Inputs         []Input
	Tip            uint64
	ResourceBudget uint64
	Config         data.ExecutionConfig
	Callback       *data.CallbackConfig
}

type Requester struct {
	service ExecutionService
	store   store.Store
}

func NewRequester(service ExecutionService, requestStore store.Store) (*Requester, error) {
	if service == nil {
		return nil, fmt.Errorf("nil execution service provided")
	}
	if requestStore == nil {
		return nil, fmt.Errorf("nil request store provided")
	}
	return &Requester{
		service: service,
		store:   requestStore,
	}, nil
}

// SubmitRequest builds an execution request, records it under a fresh handle and hands it to
// the execution service. The record exists before anything is sent, so a callback can always
// be correlated. Every failure is reported as ErrExecutionRequestFailed.
func (r *Requester) SubmitRequest(ctx context.Context, sub Submission) (string, error) {
	req, err := buildRequest(sub)
	if err != nil {
		log.Debug("rejected execution request", "image", sub.ImageID, "err", err.Error())
		return "", NewRequestError(err)
	}

	now := time.Now().UTC()
	req.Status = data.StatusRequested
	req.CreatedAt = now
	req.UpdatedAt = now
	if err = r.store.CreateRequest(ctx, req); err != nil {
		log.Error("failed recording execution request",
			"handle", req.Handle,
			"err", err.Error(),
		)
		return "", NewRequestError(err)
	}

	txHash, err := r.service.Execute(ctx, req)
	if err != nil {
		log.Error("execution service refused request",
			"handle", req.Handle,
			"image", req.ImageID,
			"err", err.Error(),
		)
		r.markRefused(req.Handle)
		return "", NewRequestError(err)
	}

	req.TxHash = txHash
	if err = r.store.SetTxHash(ctx, req.Handle, txHash); err != nil {
		log.Warn("failed recording request transaction",
			"handle", req.Handle,
			"tx", txHash,
			"err", err.Error(),
		)
	}

	log.Info("submitted execution request",
		"handle", req.Handle,
		"image", req.ImageID,
		"tip", req.Tip,
		"budget", req.ResourceBudget,
		"tx", txHash,
	)
	return req.Handle, nil
}

// markRefused fails a record the execution service never accepted. It does not use the
// caller's context, which may be the reason the submission failed.
func (r *Requester) markRefused(handle string) {
	err := r.store.UpdateStatus(context.Background(), handle, data.StatusFailed, "", ErrExecutionRequestFailed.Error())
	if err != nil {
		log.Error("failed recording refused request", "handle", handle, "err", err.Error())
	}
}

func buildRequest(sub Submission) (*data.ExecutionRequest, error) {
	if sub.Payer == "" {
		return nil, ErrMissingPayer
	}
	if err := ValidateImageID(sub.ImageID); err != nil {
		return nil, err
	}
	if len(sub.Inputs) == 0 {
		return nil, ErrNoInputs
	}
	if sub.ResourceBudget == 0 {
		return nil, ErrZeroResourceBudget
	}

	refs := make([]data.InputRef, 0, len(sub.Inputs))
	for _, in := range sub.Inputs {
		if in.Private {
			refs = append(refs, codec.PrivateInput(in.Data))
			continue
		}
		refs = append(refs, codec.PublicInput(in.Data))
	}

	cfg := sub.Config
	switch {
	case len(cfg.InputHash) > 0 && len(cfg.InputHash) != inputHashLen:
		return nil, ErrInvalidInputHash
	case cfg.VerifyInputHash && len(cfg.InputHash) == 0:
		digest, err := codec.InputDigest(refs)
		if err != nil {
			return nil, err
		}
		cfg.InputHash = digest
	}

	return &data.ExecutionRequest{
		Handle:         NewHandle(),
		ImageID:        sub.ImageID,
		Payer:          sub.Payer,
		Inputs:         refs,
		Tip:            sub.Tip,
		ResourceBudget: sub.ResourceBudget,
		Config:         cfg,
		Callback:       sub.Callback,
	}, nil
}

// ValidateImageID checks that id is a 32 byte identifier in lowercase hex.
func ValidateImageID(id string) error {
	if len(id) != 2*imageIDLen {
		return fmt.Errorf("%w: expected %d hex chars, got %d", ErrInvalidImageID, 2*imageIDLen, len(id))
	}
	if _, err := hex.DecodeString(id); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImageID, err)
	}
	for _, c := range id {
		if c >= 'A' && c <= 'F' {
			return fmt.Errorf("%w: must be lowercase", ErrInvalidImageID)
		}
	}
	return nil
}
