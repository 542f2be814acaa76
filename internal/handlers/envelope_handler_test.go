package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/models"
	"github.com/Willysmile/cash-stuffing/internal/pagination"
	"github.com/Willysmile/cash-stuffing/internal/services"
)

// --- mock envelope service ---

type mockEnvelopeService struct {
	createEnvelopeFn     func(userID string, input services.EnvelopeInput) (*models.Envelope, error)
	getUserEnvelopesFn   func(userID string, page pagination.PageRequest, filter services.EnvelopeFilter) (*pagination.PageResponse[models.Envelope], error)
	getEnvelopeByIDFn    func(userID, envelopeID string) (*models.Envelope, error)
	updateEnvelopeFn     func(userID, envelopeID string, fields services.EnvelopeUpdateFields) (*models.Envelope, error)
	deleteEnvelopeFn     func(userID, envelopeID string) error
	adjustEnvelopeFn     func(userID, envelopeID string, amount decimal.Decimal, direction int) (*models.Envelope, *models.EnvelopeHistory, error)
	getEnvelopeHistoryFn func(userID, envelopeID string, limit int) ([]models.EnvelopeHistory, error)
	reallocateFn         func(userID, fromID, toID string, amount decimal.Decimal) (*services.Reallocation, error)
}

func (m *mockEnvelopeService) CreateEnvelope(userID string, input services.EnvelopeInput) (*models.Envelope, error) {
	if m.createEnvelopeFn != nil {
		return m.createEnvelopeFn(userID, input)
	}
	return &models.Envelope{Name: input.Name}, nil
}

func (m *mockEnvelopeService) GetUserEnvelopes(userID string, page pagination.PageRequest, filter services.EnvelopeFilter) (*pagination.PageResponse[models.Envelope], error) {
	if m.getUserEnvelopesFn != nil {
		return m.getUserEnvelopesFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Envelope{}, page, 0)
	return &resp, nil
}

func (m *mockEnvelopeService) GetEnvelopeByID(userID, envelopeID string) (*models.Envelope, error) {
	if m.getEnvelopeByIDFn != nil {
		return m.getEnvelopeByIDFn(userID, envelopeID)
	}
	return &models.Envelope{Base: models.Base{ID: envelopeID}}, nil
}

func (m *mockEnvelopeService) UpdateEnvelope(userID, envelopeID string, fields services.EnvelopeUpdateFields) (*models.Envelope, error) {
	if m.updateEnvelopeFn != nil {
		return m.updateEnvelopeFn(userID, envelopeID, fields)
	}
	return &models.Envelope{Base: models.Base{ID: envelopeID}}, nil
}

func (m *mockEnvelopeService) DeleteEnvelope(userID, envelopeID string) error {
	if m.deleteEnvelopeFn != nil {
		return m.deleteEnvelopeFn(userID, envelopeID)
	}
	return nil
}

func (m *mockEnvelopeService) AdjustEnvelope(userID, envelopeID string, amount decimal.Decimal, direction int) (*models.Envelope, *models.EnvelopeHistory, error) {
	if m.adjustEnvelopeFn != nil {
		return m.adjustEnvelopeFn(userID, envelopeID, amount, direction)
	}
	return &models.Envelope{Base: models.Base{ID: envelopeID}}, &models.EnvelopeHistory{EnvelopeID: envelopeID}, nil
}

func (m *mockEnvelopeService) GetEnvelopeHistory(userID, envelopeID string, limit int) ([]models.EnvelopeHistory, error) {
	if m.getEnvelopeHistoryFn != nil {
		return m.getEnvelopeHistoryFn(userID, envelopeID, limit)
	}
	return []models.EnvelopeHistory{}, nil
}

func (m *mockEnvelopeService) Reallocate(userID, fromID, toID string, amount decimal.Decimal) (*services.Reallocation, error) {
	if m.reallocateFn != nil {
		return m.reallocateFn(userID, fromID, toID, amount)
	}
	return &services.Reallocation{Amount: amount}, nil
}

var _ services.EnvelopeServicer = (*mockEnvelopeService)(nil)

func setupEnvelopeRouter(handler *EnvelopeHandler) *gin.Engine {
	r := newRouter()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/envelopes", handler.CreateEnvelope)
	auth.GET("/envelopes", handler.GetEnvelopes)
	auth.POST("/envelopes/reallocate", handler.Reallocate)
	auth.GET("/envelopes/:id", handler.GetEnvelopeByID)
	auth.PUT("/envelopes/:id", handler.UpdateEnvelope)
	auth.DELETE("/envelopes/:id", handler.DeleteEnvelope)
	auth.POST("/envelopes/:id/adjust", handler.AdjustEnvelope)
	auth.GET("/envelopes/:id/history", handler.GetEnvelopeHistory)
	return r
}

func TestEnvelopeHandler_CreateEnvelope(t *testing.T) {
	t.Run("returns 201 for a cash envelope", func(t *testing.T) {
		var got services.EnvelopeInput
		svc := &mockEnvelopeService{
			createEnvelopeFn: func(_ string, input services.EnvelopeInput) (*models.Envelope, error) {
				got = input
				return &models.Envelope{Name: input.Name, TargetAmount: input.TargetAmount}, nil
			},
		}
		r := setupEnvelopeRouter(NewEnvelopeHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/envelopes", `{"name":"Groceries","target_amount":"400","bank_account_id":""}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.BankAccountID != nil {
			t.Errorf("expected cash envelope, got account %v", *got.BankAccountID)
		}
		envelope := parseJSON(t, rec)["envelope"].(map[string]interface{})
		if envelope["target_amount"] != "400" {
			t.Errorf("expected target 400, got %v", envelope["target_amount"])
		}
	})

	t.Run("returns 400 on negative target", func(t *testing.T) {
		r := setupEnvelopeRouter(NewEnvelopeHandler(&mockEnvelopeService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/envelopes", `{"name":"Groceries","target_amount":"-1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 on foreign account", func(t *testing.T) {
		svc := &mockEnvelopeService{
			createEnvelopeFn: func(_ string, input services.EnvelopeInput) (*models.Envelope, error) {
				return nil, apperrors.NotFound(apperrors.ErrBankAccountNotFound, "Bank account", *input.BankAccountID)
			},
		}
		r := setupEnvelopeRouter(NewEnvelopeHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/envelopes", `{"name":"Rent","bank_account_id":"`+testOtherID+`"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestEnvelopeHandler_GetEnvelopes(t *testing.T) {
	var got services.EnvelopeFilter
	svc := &mockEnvelopeService{
		getUserEnvelopesFn: func(_ string, page pagination.PageRequest, filter services.EnvelopeFilter) (*pagination.PageResponse[models.Envelope], error) {
			got = filter
			resp := pagination.NewPageResponse([]models.Envelope{}, page, 0)
			return &resp, nil
		},
	}
	r := setupEnvelopeRouter(NewEnvelopeHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/envelopes?cash_only=true&is_active=true&category_id="+testThirdID, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !got.CashOnly || got.IsActive == nil || !*got.IsActive {
		t.Errorf("unexpected filter %+v", got)
	}
	if got.CategoryID == nil || *got.CategoryID != testThirdID {
		t.Errorf("expected category filter, got %v", got.CategoryID)
	}
}

func TestEnvelopeHandler_UpdateEnvelope(t *testing.T) {
	t.Run("empty bank_account_id detaches to cash", func(t *testing.T) {
		var got services.EnvelopeUpdateFields
		svc := &mockEnvelopeService{
			updateEnvelopeFn: func(_, id string, fields services.EnvelopeUpdateFields) (*models.Envelope, error) {
				got = fields
				return &models.Envelope{Base: models.Base{ID: id}}, nil
			},
		}
		r := setupEnvelopeRouter(NewEnvelopeHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/envelopes/"+testOtherID, `{"bank_account_id":"","target_amount":"250.50"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.BankAccountID == nil || *got.BankAccountID != nil {
			t.Error("expected bank account to be cleared")
		}
		if got.CategoryID != nil {
			t.Error("expected category untouched")
		}
		if got.TargetAmount == nil || !got.TargetAmount.Equal(decimal.RequireFromString("250.50")) {
			t.Errorf("expected target 250.50, got %v", got.TargetAmount)
		}
	})
}

func TestEnvelopeHandler_DeleteEnvelope(t *testing.T) {
	t.Run("returns 400 when in use", func(t *testing.T) {
		svc := &mockEnvelopeService{
			deleteEnvelopeFn: func(_, _ string) error {
				return apperrors.ErrEnvelopeInUse
			},
		}
		audit := &mockAuditService{}
		r := setupEnvelopeRouter(NewEnvelopeHandler(svc, audit))

		rec := doRequest(r, "DELETE", "/envelopes/"+testOtherID, "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ENVELOPE_IN_USE")
		if len(audit.entries) != 0 {
			t.Error("expected no audit entry on failure")
		}
	})

	t.Run("returns 200 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupEnvelopeRouter(NewEnvelopeHandler(&mockEnvelopeService{}, audit))

		rec := doRequest(r, "DELETE", "/envelopes/"+testOtherID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != services.AuditDeleteEnvelope {
			t.Errorf("expected DELETE_ENVELOPE audit entry, got %+v", audit.entries)
		}
	})
}

func TestEnvelopeHandler_AdjustEnvelope(t *testing.T) {
	t.Run("returns envelope and history entry", func(t *testing.T) {
		var gotDirection int
		svc := &mockEnvelopeService{
			adjustEnvelopeFn: func(_, id string, amount decimal.Decimal, direction int) (*models.Envelope, *models.EnvelopeHistory, error) {
				gotDirection = direction
				balance := decimal.RequireFromString("50")
				return &models.Envelope{Base: models.Base{ID: id}, CurrentBalance: balance},
					&models.EnvelopeHistory{EnvelopeID: id, Amount: amount.Neg(), BalanceAfter: balance}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupEnvelopeRouter(NewEnvelopeHandler(svc, audit))

		rec := doRequest(r, "POST", "/envelopes/"+testOtherID+"/adjust", `{"amount":"30","direction":-1}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotDirection != -1 {
			t.Errorf("expected direction -1, got %d", gotDirection)
		}
		result := parseJSON(t, rec)
		history := result["history"].(map[string]interface{})
		if history["balance_after"] != "50" {
			t.Errorf("expected balance_after 50, got %v", history["balance_after"])
		}
		if len(audit.entries) != 1 || audit.entries[0].action != services.AuditAdjustEnvelope {
			t.Errorf("expected ADJUST_ENVELOPE audit entry, got %+v", audit.entries)
		}
	})

	t.Run("returns 400 on zero direction", func(t *testing.T) {
		r := setupEnvelopeRouter(NewEnvelopeHandler(&mockEnvelopeService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/envelopes/"+testOtherID+"/adjust", `{"amount":"30","direction":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on direction 2", func(t *testing.T) {
		r := setupEnvelopeRouter(NewEnvelopeHandler(&mockEnvelopeService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/envelopes/"+testOtherID+"/adjust", `{"amount":"30","direction":2}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on non-positive amount", func(t *testing.T) {
		r := setupEnvelopeRouter(NewEnvelopeHandler(&mockEnvelopeService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/envelopes/"+testOtherID+"/adjust", `{"amount":"0","direction":1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on insufficient funds", func(t *testing.T) {
		svc := &mockEnvelopeService{
			adjustEnvelopeFn: func(_, _ string, _ decimal.Decimal, _ int) (*models.Envelope, *models.EnvelopeHistory, error) {
				return nil, nil, apperrors.ErrInsufficientFunds
			},
		}
		r := setupEnvelopeRouter(NewEnvelopeHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/envelopes/"+testOtherID+"/adjust", `{"amount":"1000","direction":-1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INSUFFICIENT_FUNDS")
	})
}

func TestEnvelopeHandler_GetEnvelopeHistory(t *testing.T) {
	t.Run("passes limit", func(t *testing.T) {
		gotLimit := -1
		svc := &mockEnvelopeService{
			getEnvelopeHistoryFn: func(_, _ string, limit int) ([]models.EnvelopeHistory, error) {
				gotLimit = limit
				return []models.EnvelopeHistory{{}, {}, {}}, nil
			},
		}
		r := setupEnvelopeRouter(NewEnvelopeHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/envelopes/"+testOtherID+"/history?limit=3", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotLimit != 3 {
			t.Errorf("expected limit 3, got %d", gotLimit)
		}
		if len(parseJSON(t, rec)["history"].([]interface{})) != 3 {
			t.Error("expected 3 history entries")
		}
	})

	t.Run("defaults limit to zero for the service", func(t *testing.T) {
		gotLimit := -1
		svc := &mockEnvelopeService{
			getEnvelopeHistoryFn: func(_, _ string, limit int) ([]models.EnvelopeHistory, error) {
				gotLimit = limit
				return []models.EnvelopeHistory{}, nil
			},
		}
		r := setupEnvelopeRouter(NewEnvelopeHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/envelopes/"+testOtherID+"/history", "")

		if rec.Code != http.StatusOK || gotLimit != 0 {
			t.Fatalf("expected 200 with limit 0, got %d / %d", rec.Code, gotLimit)
		}
	})

	t.Run("returns 400 on invalid limit", func(t *testing.T) {
		r := setupEnvelopeRouter(NewEnvelopeHandler(&mockEnvelopeService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/envelopes/"+testOtherID+"/history?limit=abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestEnvelopeHandler_Reallocate(t *testing.T) {
	t.Run("returns both envelopes", func(t *testing.T) {
		var gotFrom, gotTo string
		svc := &mockEnvelopeService{
			reallocateFn: func(_, fromID, toID string, amount decimal.Decimal) (*services.Reallocation, error) {
				gotFrom, gotTo = fromID, toID
				return &services.Reallocation{
					From:   &models.Envelope{Base: models.Base{ID: fromID}, CurrentBalance: decimal.RequireFromString("100")},
					To:     &models.Envelope{Base: models.Base{ID: toID}, CurrentBalance: decimal.RequireFromString("150")},
					Amount: amount,
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupEnvelopeRouter(NewEnvelopeHandler(svc, audit))

		rec := doRequest(r, "POST", "/envelopes/reallocate",
			`{"from_envelope_id":"`+testOtherID+`","to_envelope_id":"`+testThirdID+`","amount":"100","description":"rebalance"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFrom != testOtherID || gotTo != testThirdID {
			t.Errorf("unexpected ids %s -> %s", gotFrom, gotTo)
		}
		result := parseJSON(t, rec)
		to := result["to_envelope"].(map[string]interface{})
		if to["current_balance"] != "150" {
			t.Errorf("expected destination balance 150, got %v", to["current_balance"])
		}
		if len(audit.entries) != 1 || audit.entries[0].changes["description"] != "rebalance" {
			t.Errorf("expected REALLOCATE_ENVELOPE audit entry, got %+v", audit.entries)
		}
	})

	t.Run("returns 400 on same envelope", func(t *testing.T) {
		svc := &mockEnvelopeService{
			reallocateFn: func(_, _, _ string, _ decimal.Decimal) (*services.Reallocation, error) {
				return nil, apperrors.ErrSameEnvelopeReallocation
			},
		}
		r := setupEnvelopeRouter(NewEnvelopeHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/envelopes/reallocate",
			`{"from_envelope_id":"`+testOtherID+`","to_envelope_id":"`+testOtherID+`","amount":"1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "SAME_ENVELOPE_REALLOCATION")
	})

	t.Run("returns 400 on missing amount", func(t *testing.T) {
		r := setupEnvelopeRouter(NewEnvelopeHandler(&mockEnvelopeService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/envelopes/reallocate",
			`{"from_envelope_id":"`+testOtherID+`","to_envelope_id":"`+testThirdID+`"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		r := setupEnvelopeRouter(NewEnvelopeHandler(&mockEnvelopeService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/envelopes/reallocate",
			`{"from_envelope_id":"one","to_envelope_id":"`+testThirdID+`","amount":"1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
