package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/georgemunganga/hobex-pos/internal/modules/hobex"
	"github.com/georgemunganga/hobex-pos/internal/modules/terminal"
)

const (
	msgNotFoundLocally   = "transaction not found"
	msgNotFoundAtGateway = "transaction not found at gateway"
)

// Terminals resolves the terminal a request targets.
type Terminals interface {
	GetTerminal(ctx context.Context, id string) (*terminal.Terminal, error)
}

// Service is the checkout-facing side of terminal payments. Gateway problems
// come back inside the envelope; returned errors are about the request
// itself (unknown terminal, invalid data, duplicate transaction id).
type Service interface {
	PaymentRequest(ctx context.Context, terminalID string, data PaymentData) (*Envelope, error)
	StatusRequest(ctx context.Context, terminalID, transactionID string) (*Envelope, error)
	ReversalRequest(ctx context.Context, terminalID, transactionID string) (*Envelope, error)
	GetTransaction(ctx context.Context, terminalID, transactionID string) (*Transaction, error)
	ListTransactions(ctx context.Context, terminalID string) ([]*Transaction, error)
}

type service struct {
	terminals Terminals
	repo      Repository
	sync      *Synchronizer
}

func NewService(terminals Terminals, repo Repository, sync *Synchronizer) Service {
	return &service{terminals: terminals, repo: repo, sync: sync}
}

func (s *service) PaymentRequest(ctx context.Context, terminalID string, data PaymentData) (*Envelope, error) {
	term, err := s.hobexTerminal(ctx, terminalID)
	if err != nil {
		return nil, err
	}

	transactionID := strings.TrimSpace(string(data.TransactionID))
	if transactionID == "" {
		return nil, fmt.Errorf("%w: transactionId is required", ErrInvalidPayment)
	}
	// the gateway rejects dashes in references
	reference := strings.ReplaceAll(data.Reference, "-", "")
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidPayment)
	}
	if data.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", ErrInvalidPayment)
	}

	if _, err := s.sync.NewTransaction(ctx, term, data.Amount, data.Currency, reference, transactionID); err != nil {
		return nil, err
	}
	return envelope(s.sync.StartSyncTransaction(ctx, term, transactionID)), nil
}

func (s *service) StatusRequest(ctx context.Context, terminalID, transactionID string) (*Envelope, error) {
	term, err := s.hobexTerminal(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, term, transactionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Envelope{Error: true, Message: msgNotFoundLocally}, nil
		}
		return nil, err
	}
	return envelope(s.sync.UpdateState(ctx, term, transactionID, true)), nil
}

func (s *service) ReversalRequest(ctx context.Context, terminalID, transactionID string) (*Envelope, error) {
	term, err := s.hobexTerminal(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, term, transactionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Envelope{Error: true, Message: msgNotFoundLocally}, nil
		}
		return nil, err
	}
	return envelope(s.sync.Reverse(ctx, term, transactionID)), nil
}

func (s *service) GetTransaction(ctx context.Context, terminalID, transactionID string) (*Transaction, error) {
	term, err := s.hobexTerminal(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	return s.owned(ctx, term, transactionID)
}

func (s *service) ListTransactions(ctx context.Context, terminalID string) ([]*Transaction, error) {
	term, err := s.terminals.GetTerminal(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByTerminal(ctx, term.ID.String())
}

// owned loads a transaction recorded through term. Another terminal may share
// the tid; its records are reported as not found.
func (s *service) owned(ctx context.Context, term *terminal.Terminal, transactionID string) (*Transaction, error) {
	t, err := s.repo.Get(ctx, term.TID, transactionID)
	if err != nil {
		return nil, err
	}
	if t.TerminalID != term.ID {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *service) hobexTerminal(ctx context.Context, id string) (*terminal.Terminal, error) {
	term, err := s.terminals.GetTerminal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !term.IsHobex() {
		return nil, terminal.ErrNotHobex
	}
	return term, nil
}

func envelope(out *Outcome) *Envelope {
	if out.Result == nil {
		return &Envelope{Error: true, Message: msgNotFoundAtGateway}
	}
	return &Envelope{Message: hobex.DeclineMessage(out.Result), Res: out.Result}
}
