// internal/common/auth/token.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"soknad-mottak/internal/common/errors"
)

// AccessTokenClient fetches client-credentials tokens and caches them per
// scope set until shortly before expiry. Safe for concurrent use; the cache
// is process-wide and shared across requests.
type AccessTokenClient struct {
	tokenEndpoint string
	clientID      string
	clientSecret  string
	httpClient    *http.Client

	mu     sync.Mutex
	tokens map[string]cachedToken
}

type cachedToken struct {
	accessToken string
	expiry      time.Time
}

// TokenResponse holds the response from the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// expiryLeeway refreshes tokens a bit before they actually expire so a
// downstream call never races the expiry.
const expiryLeeway = 10 * time.Second

func NewAccessTokenClient(tokenEndpoint, clientID, clientSecret string) *AccessTokenClient {
	return &AccessTokenClient{
		tokenEndpoint: strings.TrimSuffix(tokenEndpoint, "/"),
		clientID:      clientID,
		clientSecret:  clientSecret,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		tokens:        make(map[string]cachedToken),
	}
}

// AccessToken returns a valid bearer token for the given scopes, fetching a
// new one only when the cached token is missing or expired.
func (c *AccessTokenClient) AccessToken(ctx context.Context, scopes []string) (string, error) {
	key := scopeKey(scopes)

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.tokens[key]; ok && cached.expiry.After(time.Now().Add(expiryLeeway)) {
		return cached.accessToken, nil
	}

	token, err := c.fetchToken(ctx, scopes)
	if err != nil {
		return "", errors.NewAccessTokenError(err)
	}

	c.tokens[key] = cachedToken{
		accessToken: token.AccessToken,
		expiry:      time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}
	return token.AccessToken, nil
}

// AuthorizationHeader returns the token formatted as a Bearer header value.
func (c *AccessTokenClient) AuthorizationHeader(ctx context.Context, scopes []string) (string, error) {
	token, err := c.AccessToken(ctx, scopes)
	if err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}

func (c *AccessTokenClient) fetchToken(ctx context.Context, scopes []string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	if len(scopes) > 0 {
		data.Set("scope", strings.Join(scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &tokenResp, nil
}

func scopeKey(scopes []string) string {
	sorted := make([]string, len(scopes))
	copy(sorted, scopes)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}
