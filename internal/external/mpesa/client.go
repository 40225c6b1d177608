// Package mpesa implements the mobile-money gateway against the Daraja
// STK-push API.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ticket-marketplace/payments/internal/domain/gateway"
	"github.com/ticket-marketplace/payments/pkg/logger"
)

const (
	pathToken        = "/oauth/v1/generate"
	pathSTKPush      = "/mpesa/stkpush/v1/processrequest"
	pathSTKPushQuery = "/mpesa/stkpushquery/v1/query"

	timestampLayout = "20060102150405"

	// resultCodePending is returned by the query endpoint while the payer
	// has not acted on the prompt yet.
	resultCodePending = "500.001.1001"
)

type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	CallbackURL    string
	Timeout        time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	l    *logger.Logger

	token tokenCache
	sf    singleflight.Group
	now   func() time.Time
}

func New(cfg Config, l *logger.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		l:    l,
		now:  time.Now,
	}
}

type stkPushReq struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResp struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type apiError struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// Initiate pushes a payment prompt to the payer's handset. The returned
// CheckoutRequestID correlates the asynchronous callback with the
// transaction. The client never retries; retry policy belongs to the caller.
func (c *Client) Initiate(ctx context.Context, req gateway.InitiateRequest) (gateway.InitiateResult, error) {
	phone, err := NormalizePhone(req.Phone)
	if err != nil {
		return gateway.InitiateResult{}, fmt.Errorf("%w: %v", gateway.ErrRejected, err)
	}

	ts := c.now().UTC().Format(timestampLayout)
	body := stkPushReq{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          c.password(ts),
		Timestamp:         ts,
		TransactionType:   "CustomerBuyGoodsOnline",
		// The provider bills in whole currency units.
		Amount:           minorToUnits(req.Amount),
		PartyA:           phone,
		PartyB:           c.cfg.ShortCode,
		PhoneNumber:      phone,
		CallBackURL:      c.cfg.CallbackURL,
		AccountReference: req.Reference,
		TransactionDesc:  req.Description,
	}

	var out stkPushResp
	if err := c.postJSON(ctx, pathSTKPush, body, &out); err != nil {
		return gateway.InitiateResult{}, err
	}

	if out.ResponseCode != "0" {
		return gateway.InitiateResult{}, fmt.Errorf("%w: code=%s desc=%s",
			gateway.ErrRejected, out.ResponseCode, out.ResponseDescription)
	}

	return gateway.InitiateResult{
		CorrelationID:   out.CheckoutRequestID,
		CustomerMessage: out.CustomerMessage,
	}, nil
}

type stkQueryReq struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

type stkQueryResp struct {
	ResponseCode      string `json:"ResponseCode"`
	ResultCode        string `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

// QueryStatus asks the provider for the current state of a push request.
func (c *Client) QueryStatus(ctx context.Context, correlationID string) (gateway.StatusResult, error) {
	ts := c.now().UTC().Format(timestampLayout)
	body := stkQueryReq{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          c.password(ts),
		Timestamp:         ts,
		CheckoutRequestID: correlationID,
	}

	var out stkQueryResp
	if err := c.postJSON(ctx, pathSTKPushQuery, body, &out); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.ErrorCode == resultCodePending {
			return gateway.StatusResult{
				CorrelationID: correlationID,
				State:         gateway.StateProcessing,
			}, nil
		}
		return gateway.StatusResult{}, err
	}

	res := gateway.StatusResult{
		CorrelationID: out.CheckoutRequestID,
		Description:   out.ResultDesc,
	}
	if out.ResultCode == "0" {
		res.State = gateway.StateSucceeded
	} else {
		res.State = gateway.StateFailed
		fmt.Sscanf(out.ResultCode, "%d", &res.ResultCode)
	}
	return res, nil
}

// ValidateCallback checks that a callback payload identifies a push request.
func (c *Client) ValidateCallback(cb gateway.Callback) error {
	if cb.CorrelationID == "" {
		return fmt.Errorf("%w: missing correlation id", gateway.ErrMalformedCallback)
	}
	return nil
}

func (c *Client) password(timestamp string) string {
	raw := c.cfg.ShortCode + c.cfg.Passkey + timestamp
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return fmt.Errorf("access token: %w", err)
	}

	j, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(j))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %v", gateway.ErrTimeout, err)
		}
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode/100 != 2 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.ErrorCode != "" {
			return fmt.Errorf("provider rejected: %w", &apiErr)
		}
		return fmt.Errorf("%w: provider %s: %s", gateway.ErrRejected, resp.Status, string(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (e *apiError) Error() string {
	return fmt.Sprintf("code=%s message=%s request_id=%s", e.ErrorCode, e.ErrorMessage, e.RequestID)
}

func (e *apiError) Unwrap() error { return gateway.ErrRejected }

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func minorToUnits(amount int64) int64 {
	units := amount / 100
	if amount%100 != 0 {
		units++
	}
	return units
}
