// Package verification adapts the external client-payment verification
// service to the port the worker consumes. The verification algorithm itself
// lives outside this system; this package only carries the call.
package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dcastillo/commispipe/internal/application/ports"
)

// HTTPVerifier calls the external verification service over HTTP. A non-2xx
// response is a verification failure for that commission.
type HTTPVerifier struct {
	client  *http.Client
	baseURL string
}

var _ ports.VerificationService = (*HTTPVerifier)(nil)

// NewHTTPVerifier creates a verifier that POSTs to baseURL. The timeout
// bounds the whole HTTP exchange; the worker's per-attempt deadline still
// applies on top through ctx.
func NewHTTPVerifier(baseURL string, timeout time.Duration) *HTTPVerifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPVerifier{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type verifyRequest struct {
	CommissionID string `json:"commission_id"`
	ContractID   string `json:"contract_id"`
	PaymentID    string `json:"payment_id"`
}

// VerifyClientPayments implements ports.VerificationService.
func (v *HTTPVerifier) VerifyClientPayments(ctx context.Context, commissionID, contractID, paymentID uuid.UUID) error {
	body, err := json.Marshal(verifyRequest{
		CommissionID: commissionID.String(),
		ContractID:   contractID.String(),
		PaymentID:    paymentID.String(),
	})
	if err != nil {
		return fmt.Errorf("encoding verification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling verification service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("verification service returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}

// PassthroughVerifier accepts every verification unconditionally. It keeps
// the pipeline runnable in development when no verification service is
// deployed; never use it in production.
type PassthroughVerifier struct {
	logger *slog.Logger
}

var _ ports.VerificationService = (*PassthroughVerifier)(nil)

// NewPassthroughVerifier creates the development verifier.
func NewPassthroughVerifier(logger *slog.Logger) *PassthroughVerifier {
	return &PassthroughVerifier{logger: logger}
}

// VerifyClientPayments implements ports.VerificationService.
func (v *PassthroughVerifier) VerifyClientPayments(ctx context.Context, commissionID, contractID, paymentID uuid.UUID) error {
	v.logger.DebugContext(ctx, "pass-through verification accepted",
		slog.String("commission_id", commissionID.String()),
		slog.String("contract_id", contractID.String()),
		slog.String("payment_id", paymentID.String()))
	return nil
}
