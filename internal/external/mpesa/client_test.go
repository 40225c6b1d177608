package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticket-marketplace/payments/internal/domain/gateway"
	"github.com/ticket-marketplace/payments/pkg/logger"
)

type fakeDaraja struct {
	mu         *httptest.Server
	tokenHits  atomic.Int32
	pushHits   atomic.Int32
	lastPush   stkPushReq
	pushStatus int
	pushBody   any
}

func newFakeDaraja(t *testing.T) *fakeDaraja {
	t.Helper()

	f := &fakeDaraja{
		pushStatus: http.StatusOK,
		pushBody: stkPushResp{
			MerchantRequestID:   "merchant-1",
			CheckoutRequestID:   "ws_CO_123",
			ResponseCode:        "0",
			ResponseDescription: "Success. Request accepted for processing",
			CustomerMessage:     "Enter your PIN",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(pathToken, func(w http.ResponseWriter, r *http.Request) {
		f.tokenHits.Add(1)

		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))

		_ = json.NewEncoder(w).Encode(tokenResp{AccessToken: "token-abc", ExpiresIn: "3599"})
	})
	mux.HandleFunc(pathSTKPush, func(w http.ResponseWriter, r *http.Request) {
		f.pushHits.Add(1)

		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastPush))

		w.WriteHeader(f.pushStatus)
		_ = json.NewEncoder(w).Encode(f.pushBody)
	})

	f.mu = httptest.NewServer(mux)
	t.Cleanup(f.mu.Close)
	return f
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	c := New(Config{
		BaseURL:        baseURL,
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		ShortCode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://payments.example.com/payments/gateway/callback",
		Timeout:        2 * time.Second,
	}, logger.New("error"))
	c.now = func() time.Time { return time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC) }
	return c
}

func TestClient_Initiate(t *testing.T) {
	ctx := context.Background()

	req := gateway.InitiateRequest{
		Amount:      250_050,
		Phone:       "0712345678",
		Reference:   "tx-1",
		Description: "2x concert ticket",
	}

	t.Run("should push the prompt and return the correlation id", func(t *testing.T) {
		// given
		srv := newFakeDaraja(t)
		client := testClient(t, srv.mu.URL)

		// when
		res, err := client.Initiate(ctx, req)

		// then
		require.NoError(t, err)
		assert.Equal(t, "ws_CO_123", res.CorrelationID)
		assert.Equal(t, "Enter your PIN", res.CustomerMessage)

		push := srv.lastPush
		assert.Equal(t, "174379", push.BusinessShortCode)
		assert.Equal(t, "20240615103000", push.Timestamp)
		assert.Equal(t,
			base64.StdEncoding.EncodeToString([]byte("174379passkey20240615103000")),
			push.Password)
		assert.Equal(t, "CustomerBuyGoodsOnline", push.TransactionType)
		assert.Equal(t, int64(2_501), push.Amount, "minor units round up to whole units")
		assert.Equal(t, "254712345678", push.PhoneNumber)
		assert.Equal(t, "254712345678", push.PartyA)
		assert.Equal(t, "tx-1", push.AccountReference)
	})

	t.Run("should reuse the cached token across calls", func(t *testing.T) {
		srv := newFakeDaraja(t)
		client := testClient(t, srv.mu.URL)

		_, err := client.Initiate(ctx, req)
		require.NoError(t, err)
		_, err = client.Initiate(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, int32(1), srv.tokenHits.Load())
		assert.Equal(t, int32(2), srv.pushHits.Load())
	})

	t.Run("should reject an invalid phone without calling the provider", func(t *testing.T) {
		srv := newFakeDaraja(t)
		client := testClient(t, srv.mu.URL)

		bad := req
		bad.Phone = "12345"
		_, err := client.Initiate(ctx, bad)

		assert.ErrorIs(t, err, gateway.ErrRejected)
		assert.Zero(t, srv.pushHits.Load())
	})

	t.Run("should map a non-zero response code to a rejection", func(t *testing.T) {
		srv := newFakeDaraja(t)
		srv.pushBody = stkPushResp{ResponseCode: "1", ResponseDescription: "insufficient funds"}
		client := testClient(t, srv.mu.URL)

		_, err := client.Initiate(ctx, req)

		assert.ErrorIs(t, err, gateway.ErrRejected)
		assert.ErrorContains(t, err, "insufficient funds")
	})

	t.Run("should map a provider error body to a rejection", func(t *testing.T) {
		srv := newFakeDaraja(t)
		srv.pushStatus = http.StatusBadRequest
		srv.pushBody = apiError{RequestID: "r-1", ErrorCode: "400.002.02", ErrorMessage: "Bad Request"}
		client := testClient(t, srv.mu.URL)

		_, err := client.Initiate(ctx, req)

		assert.ErrorIs(t, err, gateway.ErrRejected)
		var apiErr *apiError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "400.002.02", apiErr.ErrorCode)
	})

	t.Run("should map a slow provider to a timeout", func(t *testing.T) {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		t.Cleanup(slow.Close)

		client := testClient(t, slow.URL)
		client.http.Timeout = 50 * time.Millisecond

		_, err := client.Initiate(ctx, req)

		assert.ErrorIs(t, err, gateway.ErrTimeout)
	})
}

func TestClient_QueryStatus(t *testing.T) {
	ctx := context.Background()

	query := func(t *testing.T, status int, body any) (gateway.StatusResult, error) {
		t.Helper()

		mux := http.NewServeMux()
		mux.HandleFunc(pathToken, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(tokenResp{AccessToken: "token-abc", ExpiresIn: "3599"})
		})
		mux.HandleFunc(pathSTKPushQuery, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(body)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		return testClient(t, srv.URL).QueryStatus(ctx, "ws_CO_123")
	}

	t.Run("should report success", func(t *testing.T) {
		res, err := query(t, http.StatusOK, stkQueryResp{
			ResponseCode:      "0",
			ResultCode:        "0",
			ResultDesc:        "The service request is processed successfully.",
			CheckoutRequestID: "ws_CO_123",
		})

		require.NoError(t, err)
		assert.Equal(t, gateway.StateSucceeded, res.State)
		assert.Equal(t, "ws_CO_123", res.CorrelationID)
	})

	t.Run("should report failure with the provider result code", func(t *testing.T) {
		res, err := query(t, http.StatusOK, stkQueryResp{
			ResponseCode: "0",
			ResultCode:   "1032",
			ResultDesc:   "Request cancelled by user",
		})

		require.NoError(t, err)
		assert.Equal(t, gateway.StateFailed, res.State)
		assert.Equal(t, 1032, res.ResultCode)
	})

	t.Run("should report a pending prompt as processing", func(t *testing.T) {
		res, err := query(t, http.StatusInternalServerError, apiError{
			RequestID:    "r-1",
			ErrorCode:    "500.001.1001",
			ErrorMessage: "The transaction is being processed",
		})

		require.NoError(t, err)
		assert.Equal(t, gateway.StateProcessing, res.State)
		assert.Equal(t, "ws_CO_123", res.CorrelationID)
	})
}

func TestClient_ValidateCallback(t *testing.T) {
	t.Parallel()

	client := testClient(t, "http://localhost")

	t.Run("should accept a callback with a correlation id", func(t *testing.T) {
		err := client.ValidateCallback(gateway.Callback{CorrelationID: "ws_CO_123", ResultCode: 0})

		assert.NoError(t, err)
	})

	t.Run("should reject a callback without one", func(t *testing.T) {
		err := client.ValidateCallback(gateway.Callback{ResultCode: 0})

		assert.ErrorIs(t, err, gateway.ErrMalformedCallback)
	})
}

func TestMinorToUnits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), minorToUnits(0))
	assert.Equal(t, int64(1), minorToUnits(1))
	assert.Equal(t, int64(1), minorToUnits(100))
	assert.Equal(t, int64(2), minorToUnits(101))
	assert.Equal(t, int64(25), minorToUnits(2_500))
}
