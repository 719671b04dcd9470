package hobex

import (
	"bytes"
	"encoding/json"
	"time"
)

// Response codes and texts the gateway uses on the 200 path.
const (
	ResponseCodeOK = "0"

	ResponseTextOK         = "OK"
	ResponseTextVoid       = "VOID"
	ResponseTextInProgress = "INPROGRESS"

	// ResponseCodeLocalError marks a synthetic result built locally when the
	// gateway could not be reached or answered outside its contract.
	ResponseCodeLocalError = "-1"

	responseCodeAborted     = "8004"
	responseCodeUnreachable = "8003"
)

// TransactionTypePayment is the default transaction type (sale).
const TransactionTypePayment = 1

// Timeouts bounds every gateway call. Payment submission waits on a human
// at the terminal, so it gets the longest timeout.
type Timeouts struct {
	Login    time.Duration
	Payment  time.Duration
	Status   time.Duration
	Reversal time.Duration
	Receipt  time.Duration
	Sample   time.Duration
}

// DefaultTimeouts returns the production call timeouts.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Login:    15 * time.Second,
		Payment:  80 * time.Second,
		Status:   30 * time.Second,
		Reversal: 30 * time.Second,
		Receipt:  10 * time.Second,
		Sample:   30 * time.Second,
	}
}

// Endpoint identifies where and as whom a request is sent.
type Endpoint struct {
	BaseURL string
	Token   string
}

// PaymentRequest is the transaction block posted to /api/transaction/payment.
type PaymentRequest struct {
	TransactionType int     `json:"transactionType"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	TID             string  `json:"tid"`
	Reference       string  `json:"reference"`
	TransactionID   string  `json:"transactionId,omitempty"`
	Language        string  `json:"language,omitempty"`
}

type paymentEnvelope struct {
	Transaction PaymentRequest `json:"transaction"`
}

type loginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Response is a raw gateway answer. The client never interprets it.
type Response struct {
	StatusCode int
	Body       []byte
}

// Result is the decoded body of a payment, status or reversal response.
type Result struct {
	ResponseCode    string     `json:"responseCode"`
	ResponseText    string     `json:"responseText"`
	CVM             int        `json:"cvm"`
	State           string     `json:"state,omitempty"`
	Receipt         string     `json:"receipt,omitempty"`
	ApprovalCode    string     `json:"approvalCode,omitempty"`
	ActionCode      string     `json:"actionCode,omitempty"`
	AID             string     `json:"aid,omitempty"`
	Reference       string     `json:"reference,omitempty"`
	TID             FlexString `json:"tid,omitempty"`
	TransactionID   FlexString `json:"transactionId,omitempty"`
	TransactionDate string     `json:"transactionDate,omitempty"`
	CardNumber      string     `json:"cardNumber,omitempty"`
	CardExpiry      string     `json:"cardExpiry,omitempty"`
	Brand           string     `json:"brand,omitempty"`
	CardIssuer      string     `json:"cardIssuer,omitempty"`
	TransactionType int        `json:"transactionType,omitempty"`
	CVMReceipt      string     `json:"cvm_receipt,omitempty"`
}

// Approved reports a responseCode of "0".
func (r *Result) Approved() bool {
	return r != nil && r.ResponseCode == ResponseCodeOK
}

// InProgress reports whether the terminal is still working on the transaction.
func (r *Result) InProgress() bool {
	if r == nil {
		return false
	}
	return r.ResponseText == ResponseTextInProgress || r.State == ResponseTextInProgress
}

// LocalErrorResult builds the synthetic result returned when a gateway call failed locally.
func LocalErrorResult(err error) *Result {
	return &Result{ResponseCode: ResponseCodeLocalError, ResponseText: err.Error()}
}

// DeclineMessage explains well-known decline codes to the cashier.
func DeclineMessage(r *Result) string {
	if r == nil || r.Approved() {
		return ""
	}
	switch r.ResponseCode {
	case responseCodeAborted:
		return "transaction aborted at the terminal"
	case responseCodeUnreachable:
		return "terminal unreachable, check its network connection and retry"
	case ResponseCodeLocalError:
		return "payment gateway unreachable: " + r.ResponseText
	default:
		return r.ResponseCode + ": " + r.ResponseText
	}
}

// FlexString decodes from either a JSON string or a JSON number. Terminal
// and transaction ids come back as both depending on the gateway version.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}
