// Package aktoer resolves a national identity number to the internal
// aktoer id via the aktoerregister.
package aktoer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"soknad-mottak/internal/common/auth"
	"soknad-mottak/internal/common/errors"
	"soknad-mottak/internal/common/logger"
	"soknad-mottak/internal/common/observability"
	"soknad-mottak/internal/common/retry"
)

const henteAktoerIDOperation = "hente-aktoer-id"

// AktoerID is the opaque internal identifier for an applicant.
type AktoerID string

// Gateway looks up aktoer ids. Stateless across calls; the token cache
// lives in the access token client.
type Gateway struct {
	completeURL string
	consumerID  string
	tokens      *auth.AccessTokenClient
	httpClient  *http.Client
	policy      retry.Policy
	metrics     *observability.Metrics
	logger      logger.Logger
}

type identResponse struct {
	Feilmelding *string `json:"feilmelding"`
	Identer     []ident `json:"identer"`
}

type ident struct {
	Ident      string `json:"ident"`
	Identgruppe string `json:"identgruppe"`
}

func NewGateway(
	baseURL string,
	consumerID string,
	tokens *auth.AccessTokenClient,
	policy retry.Policy,
	metrics *observability.Metrics,
	log logger.Logger,
) *Gateway {
	completeURL := fmt.Sprintf(
		"%s/api/v1/identer?%s",
		strings.TrimSuffix(baseURL, "/"),
		url.Values{
			"gjeldende":   []string{"true"},
			"identgruppe": []string{"AktoerId"},
		}.Encode(),
	)
	return &Gateway{
		completeURL: completeURL,
		consumerID:  consumerID,
		tokens:      tokens,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		policy:      policy,
		metrics:     metrics,
		logger:      log.WithFields(map[string]interface{}{"operation": henteAktoerIDOperation}),
	}
}

// Resolve returns the aktoer id for ident. Zero or more than one returned
// identifier is a data ambiguity a retry cannot change, so only the network
// call itself retries.
func (g *Gateway) Resolve(ctx context.Context, identNr, correlationID string) (AktoerID, error) {
	var response map[string]identResponse

	started := time.Now()
	err := g.policy.Do(ctx, henteAktoerIDOperation, func(ctx context.Context) error {
		authorization, err := g.tokens.AuthorizationHeader(ctx, []string{"openid"})
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.completeURL, nil)
		if err != nil {
			return retry.Stop(err)
		}
		req.Header.Set("Authorization", authorization)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Nav-Consumer-Id", g.consumerID)
		req.Header.Set("Nav-Personidenter", identNr)
		req.Header.Set("Nav-Call-Id", correlationID)

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("aktoerregister request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read aktoerregister response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			g.logger.Error("error response from aktoerregister", map[string]interface{}{
				"statusCode": resp.StatusCode,
				"body":       string(body),
			})
			err := fmt.Errorf("HTTP %d from aktoerregister", resp.StatusCode)
			if !isTransientHTTPError(resp.StatusCode) {
				return retry.Stop(err)
			}
			return err
		}

		response = nil
		if err := json.Unmarshal(body, &response); err != nil {
			return retry.Stop(fmt.Errorf("failed to decode aktoerregister response: %w", err))
		}
		return nil
	})
	if err != nil {
		g.metrics.ObserveOperation(henteAktoerIDOperation, "failure", time.Since(started))
		return "", errors.NewResolutionError("identity lookup failed", err.Error())
	}
	g.metrics.ObserveOperation(henteAktoerIDOperation, "success", time.Since(started))

	record, ok := response[identNr]
	if !ok {
		return "", errors.NewResolutionError(
			"aktoerregister response did not contain the requested identity number", "",
		)
	}
	if record.Feilmelding != nil {
		g.logger.Warn("feilmelding from aktoerregister", map[string]interface{}{
			"feilmelding": *record.Feilmelding,
		})
	}
	if len(record.Identer) == 0 {
		return "", errors.NewResolutionError("got 0 aktoer ids for the requested identity number", "")
	}
	if len(record.Identer) != 1 {
		return "", errors.NewResolutionError(
			fmt.Sprintf("got %d aktoer ids for the requested identity number", len(record.Identer)), "",
		)
	}

	aktoerID := AktoerID(record.Identer[0].Ident)
	g.logger.Debug("resolved aktoer id", map[string]interface{}{"correlationId": correlationID})
	return aktoerID, nil
}

func isTransientHTTPError(statusCode int) bool {
	switch statusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
