package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumenbank/transfer-api/internal/apperr"
	"github.com/lumenbank/transfer-api/internal/cqrs"
	"github.com/lumenbank/transfer-api/internal/models"
)

// ---- mock implementations ----

type mockAccountQuerier struct {
	getFn  func(context.Context, cqrs.GetAccountQuery) (*models.AccountView, error)
	listFn func(context.Context, cqrs.ListAccountsQuery) ([]models.AccountView, error)
}

func (m *mockAccountQuerier) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	if m.getFn != nil {
		return m.getFn(ctx, q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockAccountQuerier) ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
	if m.listFn != nil {
		return m.listFn(ctx, q)
	}
	return nil, fmt.Errorf("not configured")
}

type mockAccountTransferQuerier struct {
	listFn func(context.Context, cqrs.ListAccountTransfersQuery) ([]models.TransferView, error)
}

func (m *mockAccountTransferQuerier) ListAccountTransfers(ctx context.Context, q cqrs.ListAccountTransfersQuery) ([]models.TransferView, error) {
	if m.listFn != nil {
		return m.listFn(ctx, q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func newAccountTestRouter(qrys AccountQuerier, transferQrys AccountTransferQuerier, authUserID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuth(authUserID))
	h := NewAccountHandler(qrys, transferQrys)
	v1 := r.Group("/v1/accounts")
	v1.GET("", h.ListAccounts)
	v1.GET("/:accountNumber", h.GetAccount)
	v1.GET("/:accountNumber/transfers", h.ListAccountTransfers)
	return r
}

// ---- test data ----

var testAccountView = &models.AccountView{
	AccountNumber: "ACC1111111111",
	UserID:        "usr-001",
	Balance:       100000,
	Currency:      "EUR",
	CreatedAt:     time.Now(),
}

// ---- tests ----

func TestListAccountsHandler(t *testing.T) {
	router := newAccountTestRouter(&mockAccountQuerier{
		listFn: func(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
			if q.UserID != "usr-001" {
				t.Errorf("unexpected user ID in query: %q", q.UserID)
			}
			return []models.AccountView{*testAccountView}, nil
		},
	}, &mockAccountTransferQuerier{}, "usr-001")

	w := doRequest(router, http.MethodGet, "/v1/accounts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d; body: %s", w.Code, w.Body.String())
	}
	var resp ListAccountsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Accounts) != 1 || resp.Accounts[0].AccountNumber != "ACC1111111111" {
		t.Errorf("unexpected accounts: %+v", resp.Accounts)
	}
}

func TestGetAccountHandler(t *testing.T) {
	tests := []struct {
		name           string
		accountNumber  string
		getFn          func(context.Context, cqrs.GetAccountQuery) (*models.AccountView, error)
		expectedStatus int
	}{
		{
			name:          "success - fetch own account",
			accountNumber: "ACC1111111111",
			getFn: func(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
				return testAccountView, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:          "forbidden - another user's account",
			accountNumber: "ACC9999999999",
			getFn: func(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
				return nil, apperr.ErrForbidden
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:          "not found - account does not exist",
			accountNumber: "ACC0000000000",
			getFn: func(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
				return nil, apperr.ErrAccountNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - malformed account number",
			accountNumber:  "bogus",
			getFn:          nil,
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockAccountQuerier{getFn: tt.getFn}, &mockAccountTransferQuerier{}, "usr-001")
			w := doRequest(router, http.MethodGet, "/v1/accounts/"+tt.accountNumber, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListAccountTransfersHandler(t *testing.T) {
	tests := []struct {
		name           string
		accountNumber  string
		listFn         func(context.Context, cqrs.ListAccountTransfersQuery) ([]models.TransferView, error)
		expectedStatus int
	}{
		{
			name:          "success - history of own account",
			accountNumber: "ACC1111111111",
			listFn: func(ctx context.Context, q cqrs.ListAccountTransfersQuery) ([]models.TransferView, error) {
				return []models.TransferView{*testTransferView}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:          "forbidden - another user's account",
			accountNumber: "ACC9999999999",
			listFn: func(ctx context.Context, q cqrs.ListAccountTransfersQuery) ([]models.TransferView, error) {
				return nil, apperr.ErrForbidden
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:          "not found - account does not exist",
			accountNumber: "ACC0000000000",
			listFn: func(ctx context.Context, q cqrs.ListAccountTransfersQuery) ([]models.TransferView, error) {
				return nil, apperr.ErrAccountNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockAccountQuerier{}, &mockAccountTransferQuerier{listFn: tt.listFn}, "usr-001")
			w := doRequest(router, http.MethodGet, "/v1/accounts/"+tt.accountNumber+"/transfers", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
