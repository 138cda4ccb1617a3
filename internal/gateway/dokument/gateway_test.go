package dokument

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
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

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 2, InitialDelay: time.Millisecond, Factor: 2.0}
}

func newTestGateway(t *testing.T, storeURL string) *Gateway {
	t.Helper()
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(auth.TokenResponse{AccessToken: "t", ExpiresIn: 3600})
	}))
	t.Cleanup(tokenSrv.Close)
	tokens := auth.NewAccessTokenClient(tokenSrv.URL, "client", "secret")
	return NewGateway(storeURL, []string{"dokument/.default"}, tokens, fastPolicy(), nil, logger.NewTestLogger(t))
}

func testDokumenter(n int) []Dokument {
	dokumenter := make([]Dokument, 0, n)
	for i := 0; i < n; i++ {
		dokumenter = append(dokumenter, Dokument{
			Content:     []byte(fmt.Sprintf("pdf-bytes-%d", i)),
			ContentType: "application/pdf",
			Title:       fmt.Sprintf("Vedlegg %d", i),
		})
	}
	return dokumenter
}

func TestStoreReturnsLocationsInInputOrder(t *testing.T) {
	var stored int32
	storeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1000012345", r.URL.Query().Get("eier"))
		assert.Equal(t, "corr-1", r.Header.Get("X-Correlation-Id"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var dok Dokument
		require.NoError(t, json.Unmarshal(body, &dok))
		atomic.AddInt32(&stored, 1)

		// Derive a stable id from the content so order can be asserted.
		id := strings.TrimPrefix(string(dok.Content), "pdf-bytes-")
		w.Header().Set("Location", "http://dokument/v1/dokument/"+id)
		w.WriteHeader(http.StatusCreated)
	}))
	defer storeSrv.Close()

	gateway := newTestGateway(t, storeSrv.URL)
	urls, err := gateway.Store(context.Background(), testDokumenter(5), "1000012345", "corr-1")

	require.NoError(t, err)
	require.Len(t, urls, 5)
	for i, url := range urls {
		assert.Equal(t, fmt.Sprintf("http://dokument/v1/dokument/%d", i), url)
	}
	assert.Equal(t, int32(5), atomic.LoadInt32(&stored))
}

func TestStoreIsAllOrNothing(t *testing.T) {
	storeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var dok Dokument
		_ = json.Unmarshal(body, &dok)
		if strings.HasSuffix(string(dok.Content), "-1") {
			http.Error(w, "disk full", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Location", "http://dokument/v1/dokument/ok")
		w.WriteHeader(http.StatusCreated)
	}))
	defer storeSrv.Close()

	gateway := newTestGateway(t, storeSrv.URL)
	urls, err := gateway.Store(context.Background(), testDokumenter(3), "1000012345", "corr-1")

	require.Error(t, err)
	assert.Nil(t, urls)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDokumentStorage))
}

func TestStoreFailsWithoutLocationHeader(t *testing.T) {
	storeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer storeSrv.Close()

	gateway := newTestGateway(t, storeSrv.URL)
	_, err := gateway.Store(context.Background(), testDokumenter(1), "1000012345", "corr-1")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDokumentStorage))
}

func TestCheckReportsHealthyWhenTokenFetchWorks(t *testing.T) {
	gateway := newTestGateway(t, "http://unused")
	status := gateway.Check(context.Background())

	assert.True(t, status.Healthy)
	assert.Equal(t, "DokumentGateway", status.Name)
}

func TestCheckReportsUnhealthyWhenTokenFetchFails(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer tokenSrv.Close()

	tokens := auth.NewAccessTokenClient(tokenSrv.URL, "client", "secret")
	gateway := NewGateway("http://unused", nil, tokens, fastPolicy(), nil, logger.NewTestLogger(t))

	status := gateway.Check(context.Background())
	assert.False(t, status.Healthy)
}
