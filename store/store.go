package store

import (
	"context"
	"errors"

	"github.com/ElrondNetwork/elrond-exec-adapter/data"
)

var ErrNotFound = errors.New("execution request not found")

var ErrInvalidTransition = errors.New("invalid status transition")

var ErrDuplicateHandle = errors.New("execution request handle already exists")

// Store persists execution requests keyed by handle.
type Store interface {
	CreateRequest(ctx context.Context, r *data.ExecutionRequest) error
	GetRequest(ctx context.Context, handle string) (*data.ExecutionRequest, error)
	UpdateStatus(ctx context.Context, handle string, status data.RequestStatus, output, reason string) error
	SetTxHash(ctx context.Context, handle, txHash string) error
	CountByStatus(ctx context.Context) (map[data.RequestStatus]int, error)
	Close() error
}
