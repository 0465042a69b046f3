package verification

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPVerifier_Success(t *testing.T) {
	commissionID := uuid.New()
	contractID := uuid.New()
	paymentID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, commissionID.String(), req["commission_id"])
		assert.Equal(t, contractID.String(), req["contract_id"])
		assert.Equal(t, paymentID.String(), req["payment_id"])

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	verifier := NewHTTPVerifier(server.URL, 5*time.Second)
	err := verifier.VerifyClientPayments(context.Background(), commissionID, contractID, paymentID)
	assert.NoError(t, err)
}

func TestHTTPVerifier_FailureIncludesResponseDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, "payment trail incomplete")
	}))
	defer server.Close()

	verifier := NewHTTPVerifier(server.URL, 5*time.Second)
	err := verifier.VerifyClientPayments(context.Background(), uuid.New(), uuid.New(), uuid.New())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "payment trail incomplete")
}

func TestHTTPVerifier_RespectsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	verifier := NewHTTPVerifier(server.URL, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := verifier.VerifyClientPayments(ctx, uuid.New(), uuid.New(), uuid.New())
	assert.Error(t, err)
}

func TestPassthroughVerifier_AlwaysAccepts(t *testing.T) {
	verifier := NewPassthroughVerifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := verifier.VerifyClientPayments(context.Background(), uuid.New(), uuid.New(), uuid.New())
	assert.NoError(t, err)
}
