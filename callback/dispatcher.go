package callback

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ElrondNetwork/elrond-exec-adapter/codec"
	"github.com/ElrondNetwork/elrond-exec-adapter/data"
	"github.com/ElrondNetwork/elrond-exec-adapter/store"
	logger "github.com/ElrondNetwork/elrond-go-logger"
)

var log = logger.GetOrCreate("callback")

// OutputDecoder turns verified committed outputs into the caller-facing value.
type OutputDecoder func(committedOutputs []byte) (string, error)

type DispatcherArgs struct {
	Verifier Verifier
	Store    store.Store
	// Decoder defaults to codec.DecodeOutput.
	Decoder OutputDecoder
	// RejectRedelivery refuses callbacks for requests that were already fulfilled.
	RejectRedelivery bool
}

type Dispatcher struct {
	verifier         Verifier
	store            store.Store
	decode           OutputDecoder
	rejectRedelivery bool
}

func NewDispatcher(args DispatcherArgs) (*Dispatcher, error) {
	if args.Verifier == nil {
		return nil, errors.New("nil verifier provided")
	}
	if args.Store == nil {
		return nil, errors.New("nil request store provided")
	}
	decode := args.Decoder
	if decode == nil {
		decode = codec.DecodeOutput
	}
	return &Dispatcher{
		verifier:         args.Verifier,
		store:            args.Store,
		decode:           decode,
		rejectRedelivery: args.RejectRedelivery,
	}, nil
}

// HandleCallback authenticates raw against imageID and handle, then decodes the committed
// outputs. Verifier errors are returned unchanged. Decoding never runs on unauthenticated bytes.
// A rejected payload leaves the record untouched; only authenticated outputs that fail to
// decode move it to failed.
func (d *Dispatcher) HandleCallback(
	ctx context.Context,
	imageID string,
	handle string,
	accounts []string,
	raw []byte,
) (string, error) {
	req, err := d.store.GetRequest(ctx, handle)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}
	if err != nil {
		return "", err
	}

	if req.Status == data.StatusFulfilled && d.rejectRedelivery {
		log.Warn("rejected callback redelivery", "handle", handle)
		return "", fmt.Errorf("%w: %s is %s", ErrRequestNotPending, handle, req.Status)
	}

	auth, err := d.verifier.Verify(ctx, imageID, handle, accounts, raw)
	if err != nil {
		log.Warn("callback verification failed", "handle", handle, "image", imageID, "err", err.Error())
		return "", err
	}

	if err = checkBinding(req, imageID, auth); err != nil {
		log.Warn("callback bound to other request data", "handle", handle, "err", err.Error())
		return "", err
	}

	output, err := d.decode(auth.CommittedOutputs)
	if err != nil {
		log.Warn("invalid callback data", "handle", handle, "err", err.Error())
		d.markFailed(ctx, req, err)
		return "", err
	}

	if req.Status == data.StatusRequested {
		err = d.store.UpdateStatus(ctx, handle, data.StatusFulfilled, output, "")
		switch {
		case errors.Is(err, store.ErrInvalidTransition) && d.rejectRedelivery:
			// lost the race against a concurrent delivery for the same handle
			return "", fmt.Errorf("%w: %s", ErrRequestNotPending, handle)
		case errors.Is(err, store.ErrInvalidTransition):
		case err != nil:
			return "", err
		}
	}

	log.Info("execution request fulfilled", "handle", handle, "output", output)
	return output, nil
}

func checkBinding(req *data.ExecutionRequest, imageID string, auth *data.AuthenticatedPayload) error {
	if imageID != req.ImageID {
		return fmt.Errorf("%w: %w: request was for %s", ErrVerificationFailed, ErrImageMismatch, req.ImageID)
	}
	if req.Config.VerifyInputHash && !bytes.Equal(auth.InputDigest, req.Config.InputHash) {
		return fmt.Errorf("%w: %w", ErrVerificationFailed, ErrInputHashMismatch)
	}
	return nil
}

func (d *Dispatcher) markFailed(ctx context.Context, req *data.ExecutionRequest, cause error) {
	if req.Status != data.StatusRequested {
		return
	}
	err := d.store.UpdateStatus(ctx, req.Handle, data.StatusFailed, "", cause.Error())
	if err != nil {
		log.Error("failed recording callback failure", "handle", req.Handle, "err", err.Error())
	}
}
