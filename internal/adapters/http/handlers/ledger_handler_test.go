package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastillo/commispipe/internal/application/dtos"
	domainerrors "github.com/dcastillo/commispipe/internal/domain/errors"
)

type mockGetLedgerEntry struct {
	getFunc func(ctx context.Context, query dtos.GetLedgerEntryQuery) (*dtos.LedgerEntryDTO, error)
}

func (m *mockGetLedgerEntry) GetByEventID(ctx context.Context, query dtos.GetLedgerEntryQuery) (*dtos.LedgerEntryDTO, error) {
	return m.getFunc(ctx, query)
}

type mockListLedger struct {
	listFunc func(ctx context.Context, query dtos.ListLedgerQuery) (*dtos.LedgerListDTO, error)
}

func (m *mockListLedger) List(ctx context.Context, query dtos.ListLedgerQuery) (*dtos.LedgerListDTO, error) {
	return m.listFunc(ctx, query)
}

func setupLedgerRouter(h *LedgerHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetupValidator()
	router := gin.New()
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func sampleEntryDTO() dtos.LedgerEntryDTO {
	contractID := "7f8a4a31-21a8-4b2f-9be1-666666666666"
	return dtos.LedgerEntryDTO{
		EventID:     "7f8a4a31-21a8-4b2f-9be1-777777777777",
		EventType:   "payment.commission_affecting",
		PaymentID:   "7f8a4a31-21a8-4b2f-9be1-888888888888",
		ContractID:  &contractID,
		Installment: "FIRST",
		Processed:   true,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestGetLedgerEntry_Found(t *testing.T) {
	entry := sampleEntryDTO()
	handler := NewLedgerHandler(
		&mockGetLedgerEntry{
			getFunc: func(ctx context.Context, query dtos.GetLedgerEntryQuery) (*dtos.LedgerEntryDTO, error) {
				assert.Equal(t, entry.EventID, query.EventID)
				return &entry, nil
			},
		},
		nil,
	)
	router := setupLedgerRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger/"+entry.EventID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "payment.commission_affecting")
}

func TestGetLedgerEntry_NotFound(t *testing.T) {
	handler := NewLedgerHandler(
		&mockGetLedgerEntry{
			getFunc: func(ctx context.Context, query dtos.GetLedgerEntryQuery) (*dtos.LedgerEntryDTO, error) {
				return nil, domainerrors.ErrEntityNotFound
			},
		},
		nil,
	)
	router := setupLedgerRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger/7f8a4a31-21a8-4b2f-9be1-000000000000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListLedger_ForwardsFilters(t *testing.T) {
	var gotQuery dtos.ListLedgerQuery
	handler := NewLedgerHandler(nil,
		&mockListLedger{
			listFunc: func(ctx context.Context, query dtos.ListLedgerQuery) (*dtos.LedgerListDTO, error) {
				gotQuery = query
				return &dtos.LedgerListDTO{
					Entries: []dtos.LedgerEntryDTO{sampleEntryDTO()},
					Offset:  query.Offset,
					Limit:   query.Limit,
				}, nil
			},
		},
	)
	router := setupLedgerRouter(handler)

	contractID := "7f8a4a31-21a8-4b2f-9be1-666666666666"
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/ledger?contract_id="+contractID+"&failed=true&limit=20", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotQuery.ContractID)
	assert.Equal(t, contractID, *gotQuery.ContractID)
	require.NotNil(t, gotQuery.Failed)
	assert.True(t, *gotQuery.Failed)
	assert.Equal(t, 20, gotQuery.Limit)
}

func TestListLedger_BadContractID(t *testing.T) {
	handler := NewLedgerHandler(nil,
		&mockListLedger{
			listFunc: func(ctx context.Context, query dtos.ListLedgerQuery) (*dtos.LedgerListDTO, error) {
				t.Fatal("use case must not be called")
				return nil, nil
			},
		},
	)
	router := setupLedgerRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger?contract_id=nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
