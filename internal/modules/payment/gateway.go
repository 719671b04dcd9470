package payment

import (
	"context"

	"github.com/georgemunganga/hobex-pos/internal/modules/hobex"
)

// Gateway is the terminal API surface the synchronizer drives. *hobex.Client
// implements it.
type Gateway interface {
	SubmitPayment(ctx context.Context, ep hobex.Endpoint, req hobex.PaymentRequest) (*hobex.Response, error)
	FetchStatus(ctx context.Context, ep hobex.Endpoint, tid, transactionID string) (*hobex.Response, error)
	FetchReceipt(ctx context.Context, ep hobex.Endpoint, tid, transactionID string) (string, error)
	Reverse(ctx context.Context, ep hobex.Endpoint, tid, transactionID string) (*hobex.Response, error)
}

var _ Gateway = (*hobex.Client)(nil)
