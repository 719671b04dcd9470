package payment

import (
	"time"

	"github.com/georgemunganga/hobex-pos/internal/modules/hobex"
	"github.com/google/uuid"
)

// State is the local lifecycle of a terminal transaction. Pending is the only
// non-final state.
type State string

const (
	StatePending  State = "pending"
	StateOK       State = "ok"
	StateFailed   State = "failed"
	StateAbort    State = "abort"
	StateRefunded State = "refunded"
)

// DefaultCurrency applies when a payment request carries none.
const DefaultCurrency = "EUR"

// Transaction is the durable record of one payment attempt on a terminal.
// (TID, TransactionID) is unique.
type Transaction struct {
	ID              uuid.UUID `json:"id"`
	TerminalID      uuid.UUID `json:"terminal_id"`
	Reference       string    `json:"reference"`
	TransactionID   string    `json:"transaction_id"`
	TransactionDate time.Time `json:"transaction_date"`
	TransactionType int       `json:"transaction_type"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	TID             string    `json:"tid"`
	URL             string    `json:"url,omitempty"`
	Message         string    `json:"message,omitempty"`
	ResponseCode    string    `json:"response_code,omitempty"`
	ResponseText    string    `json:"response_text,omitempty"`
	Response        string    `json:"response,omitempty"`
	State           State     `json:"state"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Pending reports whether the transaction may still change on the gateway.
func (t *Transaction) Pending() bool {
	return t.State == StatePending
}

// Outcome is what a synchronizer entry point hands back: the interpreted
// result (synthetic when the gateway could not be used), the raw answer if
// one arrived, and the record as stored afterwards.
type Outcome struct {
	Result      *hobex.Result
	Response    *hobex.Response
	Transaction *Transaction
}

// ── Request/Response DTOs ─────────────────────────────────────────────────────

// PaymentData is what the checkout sends to start a payment.
type PaymentData struct {
	Amount        float64          `json:"amount"`
	Currency      string           `json:"currency,omitempty"` // defaults to EUR
	Reference     string           `json:"reference"`
	TransactionID hobex.FlexString `json:"transactionId"` // number or string
}

// Envelope is the caller-facing answer of the payment, status and reversal
// entry points.
type Envelope struct {
	Error   bool          `json:"error"`
	Message string        `json:"message,omitempty"`
	Res     *hobex.Result `json:"res,omitempty"`
}
