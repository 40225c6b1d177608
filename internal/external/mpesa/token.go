package mpesa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/ticket-marketplace/payments/internal/domain/gateway"
)

// tokenExpiryMargin refreshes slightly before the provider-reported expiry
// so an in-flight request never carries a token that dies mid-call.
const tokenExpiryMargin = 30 * time.Second

type tokenCache struct {
	mu        sync.Mutex
	value     string
	expiresAt time.Time
}

type tokenQuery struct {
	GrantType string `url:"grant_type"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// accessToken returns a cached OAuth token, refreshing it through a
// singleflight group so concurrent payments trigger one refresh request.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.token.mu.Lock()
	if c.token.value != "" && c.now().Before(c.token.expiresAt.Add(-tokenExpiryMargin)) {
		token := c.token.value
		c.token.mu.Unlock()
		return token, nil
	}
	c.token.mu.Unlock()

	token, err, _ := c.sf.Do("token", func() (any, error) {
		return c.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	q, err := query.Values(tokenQuery{GrantType: "client_credentials"})
	if err != nil {
		return "", fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+pathToken+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", gateway.ErrTimeout, err)
		}
		return "", fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("%w: token endpoint %s: %s", gateway.ErrRejected, resp.Status, string(raw))
	}

	var out tokenResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", gateway.ErrRejected)
	}

	ttl, err := strconv.Atoi(out.ExpiresIn)
	if err != nil || ttl <= 0 {
		ttl = 3600
	}

	c.token.mu.Lock()
	c.token.value = out.AccessToken
	c.token.expiresAt = c.now().Add(time.Duration(ttl) * time.Second)
	c.token.mu.Unlock()

	c.l.Debug("gateway token refreshed: ttl=%ds", ttl)
	return out.AccessToken, nil
}
