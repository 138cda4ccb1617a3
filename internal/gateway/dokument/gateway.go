// Package dokument persists attachments in the k9-dokument store and hands
// back their stored URIs.
package dokument

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"soknad-mottak/internal/common/auth"
	"soknad-mottak/internal/common/errors"
	"soknad-mottak/internal/common/health"
	"soknad-mottak/internal/common/logger"
	"soknad-mottak/internal/common/observability"
	"soknad-mottak/internal/common/retry"
	"soknad-mottak/internal/gateway/aktoer"
)

const lagreDokumentOperation = "lagre-dokument"

// Dokument is one attachment to persist. Immutable once constructed.
type Dokument struct {
	Content     []byte `json:"content"`
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
}

// Gateway stores attachments concurrently. One failing upload fails the
// whole batch; callers never see partial results.
type Gateway struct {
	completeURL string
	scopes      []string
	tokens      *auth.AccessTokenClient
	httpClient  *http.Client
	policy      retry.Policy
	metrics     *observability.Metrics
	logger      logger.Logger
}

func NewGateway(
	baseURL string,
	scopes []string,
	tokens *auth.AccessTokenClient,
	policy retry.Policy,
	metrics *observability.Metrics,
	log logger.Logger,
) *Gateway {
	return &Gateway{
		completeURL: strings.TrimSuffix(baseURL, "/") + "/v1/dokument",
		scopes:      scopes,
		tokens:      tokens,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		policy:      policy,
		metrics:     metrics,
		logger:      log.WithFields(map[string]interface{}{"operation": lagreDokumentOperation}),
	}
}

// Store persists every dokument concurrently and returns the stored URIs in
// input order, so result correlation never depends on completion order.
func (g *Gateway) Store(
	ctx context.Context,
	dokumenter []Dokument,
	aktoerID aktoer.AktoerID,
	correlationID string,
) ([]string, error) {
	g.logger.Info("storing attachments", map[string]interface{}{
		"count":         len(dokumenter),
		"correlationId": correlationID,
	})

	authorization, err := g.tokens.AuthorizationHeader(ctx, g.scopes)
	if err != nil {
		return nil, errors.NewStorageError("failed to obtain access token for document store", err)
	}

	urls := make([]string, len(dokumenter))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, dok := range dokumenter {
		group.Go(func() error {
			stored, err := g.storeOne(groupCtx, dok, aktoerID, correlationID, authorization)
			if err != nil {
				return err
			}
			urls[i] = stored
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, errors.NewStorageError("failed to store attachments", err)
	}
	return urls, nil
}

func (g *Gateway) storeOne(
	ctx context.Context,
	dok Dokument,
	aktoerID aktoer.AktoerID,
	correlationID, authorization string,
) (string, error) {
	urlMedEier := fmt.Sprintf("%s?%s", g.completeURL, url.Values{"eier": []string{string(aktoerID)}}.Encode())

	body, err := json.Marshal(dok)
	if err != nil {
		return "", fmt.Errorf("failed to marshal dokument: %w", err)
	}

	var location string
	started := time.Now()
	err = g.policy.Do(ctx, lagreDokumentOperation, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlMedEier, bytes.NewReader(body))
		if err != nil {
			return retry.Stop(err)
		}
		req.Header.Set("Authorization", authorization)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Correlation-Id", correlationID)

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("dokument store request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			respBody, _ := io.ReadAll(resp.Body)
			g.logger.Error("error response from dokument store", map[string]interface{}{
				"statusCode": resp.StatusCode,
				"body":       string(respBody),
			})
			return fmt.Errorf("HTTP %d from dokument store", resp.StatusCode)
		}

		location = resp.Header.Get("Location")
		if location == "" {
			return fmt.Errorf("dokument store response missing Location header")
		}
		return nil
	})
	if err != nil {
		g.metrics.ObserveOperation(lagreDokumentOperation, "failure", time.Since(started))
		return "", err
	}
	g.metrics.ObserveOperation(lagreDokumentOperation, "success", time.Since(started))
	return location, nil
}

// Check probes the dependency by fetching an access token only. A real
// store round-trip is deliberately avoided.
func (g *Gateway) Check(ctx context.Context) health.Status {
	if _, err := g.tokens.AccessToken(ctx, g.scopes); err != nil {
		g.logger.Error("health probe token fetch failed", map[string]interface{}{"error": err.Error()})
		return health.UnHealthy("DokumentGateway", "failed to obtain access token for storing documents")
	}
	return health.Healthy("DokumentGateway", "access token for storing documents OK")
}
