package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/georgemunganga/hobex-pos/internal/modules/hobex"
	"github.com/georgemunganga/hobex-pos/internal/modules/terminal"
	"github.com/georgemunganga/hobex-pos/pkg/logger"
	"github.com/google/uuid"
)

const (
	defaultPollAttempts = 12
	defaultPollInterval = 5 * time.Second
)

// Synchronizer owns the lifecycle of terminal transactions: it creates the
// pending record, submits it, polls for completion and reverses it. It is
// the only writer of transaction state.
type Synchronizer struct {
	repo         Repository
	gateway      Gateway
	log          *logger.Logger
	pollAttempts int
	pollInterval time.Duration
}

// Option customizes the synchronizer.
type Option func(*Synchronizer)

// WithPollAttempts bounds the synchronous status poll.
func WithPollAttempts(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.pollAttempts = n
		}
	}
}

// WithPollInterval sets the pause between two status polls.
func WithPollInterval(d time.Duration) Option {
	return func(s *Synchronizer) {
		s.pollInterval = d
	}
}

// WithLogger sets the logger used for transaction events.
func WithLogger(l *logger.Logger) Option {
	return func(s *Synchronizer) {
		s.log = l
	}
}

// NewSynchronizer returns a synchronizer polling up to 12 times, 5s apart,
// unless overridden by opts.
func NewSynchronizer(repo Repository, gateway Gateway, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		repo:         repo,
		gateway:      gateway,
		log:          logger.Discard(),
		pollAttempts: defaultPollAttempts,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTransaction commits a pending record before anything is sent to the
// terminal, so a crash mid-payment still leaves a trace.
func (s *Synchronizer) NewTransaction(ctx context.Context, term *terminal.Terminal, amount float64, currency, reference, transactionID string) (*Transaction, error) {
	if !term.IsHobex() {
		return nil, terminal.ErrNotHobex
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	t := &Transaction{
		ID:              uuid.New(),
		TerminalID:      term.ID,
		Reference:       reference,
		TransactionID:   transactionID,
		TransactionType: hobex.TransactionTypePayment,
		Amount:          amount,
		Currency:        currency,
		TID:             term.TID,
		URL:             strings.TrimRight(term.APIAddress, "/") + "/api/transaction/payment",
		State:           StatePending,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log.WithTransaction(t.TID, t.TransactionID).Debug("transaction created", "amount", amount, "currency", currency)
	return t, nil
}

// StartSyncTransaction submits a pending transaction and waits for the
// terminal's answer. Any failure marks the record failed and comes back as a
// synthetic result; it never returns an error.
func (s *Synchronizer) StartSyncTransaction(ctx context.Context, term *terminal.Terminal, transactionID string) *Outcome {
	log := s.log.WithTransaction(term.TID, transactionID)

	t, err := s.repo.Get(ctx, term.TID, transactionID)
	if err != nil {
		log.WithError(err).Warn("payment not started")
		return &Outcome{Result: hobex.LocalErrorResult(err)}
	}

	log.Debug("submitting payment")
	resp, err := s.gateway.SubmitPayment(ctx, term.Endpoint(), hobex.PaymentRequest{
		TransactionType: t.TransactionType,
		Amount:          t.Amount,
		Currency:        t.Currency,
		TID:             t.TID,
		Reference:       t.Reference,
		TransactionID:   t.TransactionID,
		Language:        "DE",
	})
	if err == nil {
		out, ierr := s.Interpret(ctx, term, transactionID, resp)
		if ierr == nil {
			return out
		}
		err = ierr
	}

	log.WithError(err).Info("payment attempt failed")
	stored := s.note(ctx, term.TID, transactionID, func(t *Transaction) {
		t.State = StateFailed
		t.Message = err.Error()
	})
	return &Outcome{Result: hobex.LocalErrorResult(err), Response: resp, Transaction: stored}
}

// UpdateState asks the gateway for the transaction's state and records it.
// With sync it keeps polling while the terminal reports the transaction in
// progress, up to the configured number of attempts.
func (s *Synchronizer) UpdateState(ctx context.Context, term *terminal.Terminal, transactionID string, sync bool) *Outcome {
	attempts := 1
	if sync {
		attempts = s.pollAttempts
	}

	var out *Outcome
	for attempt := 1; attempt <= attempts; attempt++ {
		out = s.poll(ctx, term, transactionID)
		if !out.Result.InProgress() || attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return out
		case <-time.After(s.pollInterval):
		}
	}
	return out
}

func (s *Synchronizer) poll(ctx context.Context, term *terminal.Terminal, transactionID string) *Outcome {
	resp, err := s.gateway.FetchStatus(ctx, term.Endpoint(), term.TID, transactionID)
	if err != nil {
		s.log.WithTransaction(term.TID, transactionID).WithError(err).Info("status poll failed")
		stored := s.note(ctx, term.TID, transactionID, func(t *Transaction) {
			t.Message = err.Error()
			if t.Pending() {
				t.State = StateFailed
			}
		})
		return &Outcome{Result: hobex.LocalErrorResult(err), Transaction: stored}
	}

	out, err := s.Interpret(ctx, term, transactionID, resp)
	if err != nil {
		s.log.WithTransaction(term.TID, transactionID).WithError(err).Warn("status answer rejected")
		stored := s.note(ctx, term.TID, transactionID, func(t *Transaction) {
			t.Message = err.Error()
		})
		return &Outcome{Result: hobex.LocalErrorResult(err), Response: resp, Transaction: stored}
	}
	return out
}

// Reverse voids a transaction on the gateway. A failed reversal leaves the
// record as it was and comes back as a synthetic result.
func (s *Synchronizer) Reverse(ctx context.Context, term *terminal.Terminal, transactionID string) *Outcome {
	resp, err := s.gateway.Reverse(ctx, term.Endpoint(), term.TID, transactionID)
	if err == nil {
		out, ierr := s.Interpret(ctx, term, transactionID, resp)
		if ierr == nil {
			return out
		}
		err = ierr
	}
	s.log.WithTransaction(term.TID, transactionID).WithError(err).Warn("reversal failed")
	return &Outcome{Result: hobex.LocalErrorResult(err), Response: resp}
}

// Interpret applies one gateway answer to the stored transaction in a single
// unit of work:
//
//	400                     BadRequestError, nothing written
//	404                     failed
//	200 code 0 OK           ok
//	200 code 0 VOID         refunded
//	200 code 0 INPROGRESS   pending
//	200 code 0 other text   state kept, response fields written
//	200 code != 0           failed
//	anything else           UnexpectedResponseError, nothing written
//
// For approved answers with cvm 1 the cardholder receipt is fetched first and
// attached to the returned result. Once the gateway has answered, the write
// is not tied to ctx's cancellation.
func (s *Synchronizer) Interpret(ctx context.Context, term *terminal.Terminal, transactionID string, resp *hobex.Response) (*Outcome, error) {
	store := context.WithoutCancel(ctx)
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return nil, &BadRequestError{Body: string(resp.Body)}
	case http.StatusNotFound:
		stored, err := s.repo.Apply(store, term.TID, transactionID, func(t *Transaction) error {
			t.State = StateFailed
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &Outcome{Response: resp, Transaction: stored}, nil
	default:
		return nil, &UnexpectedResponseError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var res hobex.Result
	if err := json.Unmarshal(resp.Body, &res); err != nil {
		return nil, &UnexpectedResponseError{StatusCode: resp.StatusCode, Body: string(resp.Body), cause: err}
	}

	if res.Approved() && res.CVM == 1 {
		receipt, err := s.gateway.FetchReceipt(ctx, term.Endpoint(), term.TID, transactionID)
		if err != nil {
			s.log.WithTransaction(term.TID, transactionID).WithError(err).Warn("cvm receipt unavailable")
		} else {
			res.CVMReceipt = receipt
		}
	}

	stored, err := s.repo.Apply(store, term.TID, transactionID, func(t *Transaction) error {
		t.ResponseCode = res.ResponseCode
		t.ResponseText = res.ResponseText
		t.Response = string(resp.Body)
		if next, ok := nextState(&res); ok {
			t.State = next
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Outcome{Result: &res, Response: resp, Transaction: stored}, nil
}

func nextState(res *hobex.Result) (State, bool) {
	if !res.Approved() {
		return StateFailed, true
	}
	switch {
	case res.ResponseText == hobex.ResponseTextOK:
		return StateOK, true
	case res.ResponseText == hobex.ResponseTextVoid:
		return StateRefunded, true
	case res.InProgress():
		return StatePending, true
	}
	return "", false
}

// note records a local failure on the transaction. The write outlives a
// cancelled request so the record reflects what happened.
func (s *Synchronizer) note(ctx context.Context, tid, transactionID string, fn func(t *Transaction)) *Transaction {
	stored, err := s.repo.Apply(context.WithoutCancel(ctx), tid, transactionID, func(t *Transaction) error {
		fn(t)
		return nil
	})
	if err != nil {
		s.log.WithTransaction(tid, transactionID).WithError(err).Error("record transaction failure")
		return nil
	}
	return stored
}
