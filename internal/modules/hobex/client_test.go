package hobex_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/georgemunganga/hobex-pos/internal/modules/hobex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/account/login", r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["userName"] == "pos" && body["password"] == "secret" {
			w.Write([]byte(`{"token":"tok-1"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid user or password"}`))
	}))
	defer srv.Close()

	client := hobex.NewClient(srv.Client())

	t.Run("success", func(t *testing.T) {
		token, err := client.Login(context.Background(), srv.URL, "pos", "secret")
		require.NoError(t, err)
		require.Equal(t, "tok-1", token)
	})

	t.Run("401 carries remote message", func(t *testing.T) {
		_, err := client.Login(context.Background(), srv.URL, "pos", "wrong")
		var authErr *hobex.AuthenticationError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, "Invalid user or password", authErr.Message)
	})
}

func TestLoginTransportErrorIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := hobex.NewClient(nil).Login(context.Background(), url, "pos", "secret")
	var authErr *hobex.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "hobex authentication failed, please check credentials", authErr.Error())
	require.NotNil(t, errors.Unwrap(err))
}

func TestSubmitPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/transaction/payment", r.URL.Path)
		assert.Equal(t, "tok-1", r.Header.Get("Token"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Transaction map[string]any `json:"transaction"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(1), body.Transaction["transactionType"])
		assert.Equal(t, 12.5, body.Transaction["amount"])
		assert.Equal(t, "EUR", body.Transaction["currency"])
		assert.Equal(t, "T100", body.Transaction["tid"])
		assert.Equal(t, "abc123", body.Transaction["reference"])
		assert.Equal(t, "t-1", body.Transaction["transactionId"])
		assert.Equal(t, "DE", body.Transaction["language"])

		w.Write([]byte(`{"responseCode":"0","responseText":"OK","cvm":0}`))
	}))
	defer srv.Close()

	resp, err := hobex.NewClient(srv.Client()).SubmitPayment(context.Background(),
		hobex.Endpoint{BaseURL: srv.URL + "/", Token: "tok-1"},
		hobex.PaymentRequest{
			TransactionType: hobex.TransactionTypePayment,
			Amount:          12.5,
			Currency:        "EUR",
			TID:             "T100",
			Reference:       "abc123",
			TransactionID:   "t-1",
		})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"responseCode":"0","responseText":"OK","cvm":0}`, string(resp.Body))
}

func TestStatusReceiptAndReversalPaths(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		assert.Equal(t, "tok-1", r.Header.Get("Token"))
		switch r.URL.Path {
		case "/api/transaction/download":
			q := r.URL.Query()
			assert.Equal(t, "T100", q.Get("tid"))
			assert.Equal(t, "t-1", q.Get("transactionId"))
			assert.Equal(t, "32", q.Get("width"))
			assert.Equal(t, "txt", q.Get("type"))
			assert.Equal(t, "true", q.Get("raw"))
			io.WriteString(w, "RECEIPT\r\nSIGNATURE")
		case "/api/transaction/payment/T100/t-1":
			w.Write([]byte(`{"responseCode":"0","responseText":"VOID"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := hobex.NewClient(srv.Client())
	ep := hobex.Endpoint{BaseURL: srv.URL, Token: "tok-1"}
	ctx := context.Background()

	resp, err := client.FetchStatus(ctx, ep, "T100", "t-1")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	receipt, err := client.FetchReceipt(ctx, ep, "T100", "t-1")
	require.NoError(t, err)
	require.Equal(t, "RECEIPT\r\nSIGNATURE", receipt)

	resp, err = client.Reverse(ctx, ep, "T100", "t-1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, []string{
		"GET /api/v2/transactions/T100/t-1",
		"GET /api/transaction/download",
		"DELETE /api/transaction/payment/T100/t-1",
	}, seen)
}

func TestPerCallTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	timeouts := hobex.DefaultTimeouts()
	timeouts.Status = 20 * time.Millisecond
	timeouts.Sample = 20 * time.Millisecond
	client := hobex.NewClient(srv.Client(), hobex.WithTimeouts(timeouts))
	ep := hobex.Endpoint{BaseURL: srv.URL, Token: "tok-1"}

	_, err := client.FetchStatus(context.Background(), ep, "T100", "t-1")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = client.SampleTransaction(context.Background(), ep, "T100")
	require.EqualError(t, err, "timeout after 20ms")
}

func TestDeclineMessage(t *testing.T) {
	require.Empty(t, hobex.DeclineMessage(&hobex.Result{ResponseCode: "0", ResponseText: "OK"}))
	require.Equal(t, "transaction aborted at the terminal",
		hobex.DeclineMessage(&hobex.Result{ResponseCode: "8004"}))
	require.Equal(t, "5: DECLINED",
		hobex.DeclineMessage(&hobex.Result{ResponseCode: "5", ResponseText: "DECLINED"}))
	require.Equal(t, "payment gateway unreachable: dial tcp",
		hobex.DeclineMessage(hobex.LocalErrorResult(errors.New("dial tcp"))))
}

func TestResultInProgress(t *testing.T) {
	require.True(t, (&hobex.Result{ResponseCode: "0", ResponseText: "INPROGRESS"}).InProgress())
	require.True(t, (&hobex.Result{ResponseCode: "0", State: "INPROGRESS"}).InProgress())
	require.False(t, (&hobex.Result{ResponseCode: "0", ResponseText: "OK"}).InProgress())
	var nilResult *hobex.Result
	require.False(t, nilResult.InProgress())
}

func TestResultAcceptsNumericIDs(t *testing.T) {
	var res hobex.Result
	require.NoError(t, json.Unmarshal([]byte(`{"responseCode":"0","tid":1234,"transactionId":"42"}`), &res))
	require.Equal(t, hobex.FlexString("1234"), res.TID)
	require.Equal(t, hobex.FlexString("42"), res.TransactionID)

	require.Error(t, json.Unmarshal([]byte(`{"transactionId":true}`), &res))
}
