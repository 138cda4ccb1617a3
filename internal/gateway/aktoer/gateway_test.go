package aktoer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soknad-mottak/internal/common/auth"
	"soknad-mottak/internal/common/errors"
	"soknad-mottak/internal/common/logger"
	"soknad-mottak/internal/common/retry"
)

const testIdentNr = "29099012345"

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, Factor: 2.0}
}

func stubTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(auth.TokenResponse{AccessToken: "t", ExpiresIn: 3600})
	}))
}

func newTestGateway(t *testing.T, registerURL string) *Gateway {
	t.Helper()
	tokenSrv := stubTokenServer(t)
	t.Cleanup(tokenSrv.Close)
	tokens := auth.NewAccessTokenClient(tokenSrv.URL, "client", "secret")
	return NewGateway(registerURL, "srvpps-mottak", tokens, fastPolicy(), nil, logger.NewTestLogger(t))
}

func identerBody(identer ...string) map[string]identResponse {
	list := make([]ident, 0, len(identer))
	for _, id := range identer {
		list = append(list, ident{Ident: id, Identgruppe: "AktoerId"})
	}
	return map[string]identResponse{testIdentNr: {Identer: list}}
}

func TestResolveReturnsSingleIdent(t *testing.T) {
	var sawHeaders http.Header
	registerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawHeaders = r.Header.Clone()
		assert.Equal(t, "true", r.URL.Query().Get("gjeldende"))
		assert.Equal(t, "AktoerId", r.URL.Query().Get("identgruppe"))
		_ = json.NewEncoder(w).Encode(identerBody("1234567890123"))
	}))
	defer registerSrv.Close()

	gateway := newTestGateway(t, registerSrv.URL)
	aktoerID, err := gateway.Resolve(context.Background(), testIdentNr, "corr-1")

	require.NoError(t, err)
	assert.Equal(t, AktoerID("1234567890123"), aktoerID)
	assert.Equal(t, testIdentNr, sawHeaders.Get("Nav-Personidenter"))
	assert.Equal(t, "corr-1", sawHeaders.Get("Nav-Call-Id"))
	assert.Equal(t, "srvpps-mottak", sawHeaders.Get("Nav-Consumer-Id"))
	assert.Equal(t, "Bearer t", sawHeaders.Get("Authorization"))
}

func TestResolveZeroIdenterIsResolutionError(t *testing.T) {
	registerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(identerBody())
	}))
	defer registerSrv.Close()

	gateway := newTestGateway(t, registerSrv.URL)
	_, err := gateway.Resolve(context.Background(), testIdentNr, "corr-1")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAktoerResolution))
}

func TestResolveAmbiguousIdenterIsResolutionError(t *testing.T) {
	registerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(identerBody("111", "222"))
	}))
	defer registerSrv.Close()

	gateway := newTestGateway(t, registerSrv.URL)
	_, err := gateway.Resolve(context.Background(), testIdentNr, "corr-1")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAktoerResolution))
}

func TestResolveMissingIdentKeyIsResolutionError(t *testing.T) {
	registerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]identResponse{})
	}))
	defer registerSrv.Close()

	gateway := newTestGateway(t, registerSrv.URL)
	_, err := gateway.Resolve(context.Background(), testIdentNr, "corr-1")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAktoerResolution))
}

func TestResolveRetriesTransientErrors(t *testing.T) {
	var calls int32
	registerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(identerBody("1234567890123"))
	}))
	defer registerSrv.Close()

	gateway := newTestGateway(t, registerSrv.URL)
	aktoerID, err := gateway.Resolve(context.Background(), testIdentNr, "corr-1")

	require.NoError(t, err)
	assert.Equal(t, AktoerID("1234567890123"), aktoerID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestResolveDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	registerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, fmt.Sprintf("no such ident %s", testIdentNr), http.StatusNotFound)
	}))
	defer registerSrv.Close()

	gateway := newTestGateway(t, registerSrv.URL)
	_, err := gateway.Resolve(context.Background(), testIdentNr, "corr-1")

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, errors.IsCode(err, errors.ErrCodeAktoerResolution))
}
