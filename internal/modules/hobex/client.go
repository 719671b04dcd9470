package hobex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client talks to the Hobex terminal gateway. It is stateless: callers pass the
// endpoint (base address and token) on every call and interpret the answer.
type Client struct {
	httpClient *http.Client
	timeouts   Timeouts
}

// Option customizes the client.
type Option func(*Client)

// WithTimeouts overrides the per-call timeouts.
func WithTimeouts(t Timeouts) Option {
	return func(c *Client) {
		c.timeouts = t
	}
}

// NewClient builds a Client. Per-call deadlines come from Timeouts, so the
// http.Client should not carry its own shorter Timeout.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{httpClient: httpClient, timeouts: DefaultTimeouts()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, baseURL, user, password string) (string, error) {
	resp, err := c.do(ctx, c.timeouts.Login, http.MethodPost, joinURL(baseURL, "/api/account/login"), "",
		loginRequest{UserName: user, Password: password})
	if err != nil {
		return "", &AuthenticationError{Message: genericAuthMessage, cause: err}
	}

	var body loginResponse
	decodeErr := json.Unmarshal(resp.Body, &body)

	if resp.StatusCode == http.StatusUnauthorized {
		if decodeErr == nil && body.Message != "" {
			return "", &AuthenticationError{Message: body.Message}
		}
		return "", &AuthenticationError{Message: genericAuthMessage}
	}
	if resp.StatusCode != http.StatusOK || decodeErr != nil || body.Token == "" {
		return "", &AuthenticationError{
			Message: genericAuthMessage,
			cause:   fmt.Errorf("login status=%d body=%s", resp.StatusCode, truncate(resp.Body)),
		}
	}
	return body.Token, nil
}

// SubmitPayment starts a payment on the terminal and blocks until the
// terminal answers or the payment timeout expires.
func (c *Client) SubmitPayment(ctx context.Context, ep Endpoint, req PaymentRequest) (*Response, error) {
	if req.Language == "" {
		req.Language = "DE"
	}
	return c.do(ctx, c.timeouts.Payment, http.MethodPost, joinURL(ep.BaseURL, "/api/transaction/payment"), ep.Token,
		paymentEnvelope{Transaction: req})
}

// FetchStatus reads the gateway's current view of a transaction.
func (c *Client) FetchStatus(ctx context.Context, ep Endpoint, tid, transactionID string) (*Response, error) {
	path := fmt.Sprintf("/api/v2/transactions/%s/%s", url.PathEscape(tid), url.PathEscape(transactionID))
	return c.do(ctx, c.timeouts.Status, http.MethodGet, joinURL(ep.BaseURL, path), ep.Token, nil)
}

// FetchReceipt downloads the 32 column text receipt of a transaction.
func (c *Client) FetchReceipt(ctx context.Context, ep Endpoint, tid, transactionID string) (string, error) {
	q := url.Values{}
	q.Set("tid", tid)
	q.Set("transactionId", transactionID)
	q.Set("width", "32")
	q.Set("type", "txt")
	q.Set("raw", "true")

	resp, err := c.do(ctx, c.timeouts.Receipt, http.MethodGet,
		joinURL(ep.BaseURL, "/api/transaction/download")+"?"+q.Encode(), ep.Token, nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("receipt download status=%d body=%s", resp.StatusCode, truncate(resp.Body))
	}
	return string(resp.Body), nil
}

// Reverse voids a transaction on the gateway.
func (c *Client) Reverse(ctx context.Context, ep Endpoint, tid, transactionID string) (*Response, error) {
	path := fmt.Sprintf("/api/transaction/payment/%s/%s", url.PathEscape(tid), url.PathEscape(transactionID))
	return c.do(ctx, c.timeouts.Reversal, http.MethodDelete, joinURL(ep.BaseURL, path), ep.Token, nil)
}

// SampleTransaction posts a 1.00 EUR payment to check a terminal end to end.
// Errors are meant for the operator who triggered the check.
func (c *Client) SampleTransaction(ctx context.Context, ep Endpoint, tid string) (*Response, error) {
	req := PaymentRequest{
		TransactionType: TransactionTypePayment,
		TID:             tid,
		Currency:        "EUR",
		Reference:       uuid.NewString()[:20],
		Amount:          1.0,
	}
	resp, err := c.do(ctx, c.timeouts.Sample, http.MethodPost, joinURL(ep.BaseURL, "/api/transaction/payment"), ep.Token,
		paymentEnvelope{Transaction: req})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("timeout after %s", c.timeouts.Sample)
		}
		return nil, fmt.Errorf("there was an error: %w", err)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, timeout time.Duration, method, target, token string, payload any) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + path
}

func truncate(b []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
