package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Willysmile/cash-stuffing/internal/errors"
	"github.com/Willysmile/cash-stuffing/internal/models"
	"github.com/Willysmile/cash-stuffing/internal/pagination"
	"github.com/Willysmile/cash-stuffing/internal/services"
)

type mockPayeeService struct {
	createPayeeFn   func(userID, name string) (*models.Payee, error)
	getUserPayeesFn func(userID string, page pagination.PageRequest, search string) (*pagination.PageResponse[models.Payee], error)
	getPayeeByIDFn  func(userID, payeeID string) (*models.Payee, error)
	updatePayeeFn   func(userID, payeeID, name string) (*models.Payee, error)
	deletePayeeFn   func(userID, payeeID string) error
}

func (m *mockPayeeService) CreatePayee(userID, name string) (*models.Payee, error) {
	if m.createPayeeFn != nil {
		return m.createPayeeFn(userID, name)
	}
	return &models.Payee{UserID: userID, Name: name}, nil
}

func (m *mockPayeeService) GetUserPayees(userID string, page pagination.PageRequest, search string) (*pagination.PageResponse[models.Payee], error) {
	if m.getUserPayeesFn != nil {
		return m.getUserPayeesFn(userID, page, search)
	}
	resp := pagination.NewPageResponse([]models.Payee{}, page, 0)
	return &resp, nil
}

func (m *mockPayeeService) GetPayeeByID(userID, payeeID string) (*models.Payee, error) {
	if m.getPayeeByIDFn != nil {
		return m.getPayeeByIDFn(userID, payeeID)
	}
	return &models.Payee{Base: models.Base{ID: payeeID}}, nil
}

func (m *mockPayeeService) UpdatePayee(userID, payeeID, name string) (*models.Payee, error) {
	if m.updatePayeeFn != nil {
		return m.updatePayeeFn(userID, payeeID, name)
	}
	return &models.Payee{Base: models.Base{ID: payeeID}, Name: name}, nil
}

func (m *mockPayeeService) DeletePayee(userID, payeeID string) error {
	if m.deletePayeeFn != nil {
		return m.deletePayeeFn(userID, payeeID)
	}
	return nil
}

var _ services.PayeeServicer = (*mockPayeeService)(nil)

func setupPayeeRouter(handler *PayeeHandler) *gin.Engine {
	r := newRouter()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/payees", handler.CreatePayee)
	auth.GET("/payees", handler.GetPayees)
	auth.GET("/payees/:id", handler.GetPayeeByID)
	auth.PUT("/payees/:id", handler.UpdatePayee)
	auth.DELETE("/payees/:id", handler.DeletePayee)
	return r
}

func TestPayeeHandler_CreatePayee(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		r := setupPayeeRouter(NewPayeeHandler(&mockPayeeService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/payees", `{"name":"Supermarket"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		payee := parseJSON(t, rec)["payee"].(map[string]interface{})
		if payee["name"] != "Supermarket" {
			t.Errorf("expected Supermarket, got %v", payee["name"])
		}
	})

	t.Run("returns 400 on duplicate", func(t *testing.T) {
		svc := &mockPayeeService{
			createPayeeFn: func(_, _ string) (*models.Payee, error) {
				return nil, apperrors.ErrDuplicatePayee
			},
		}
		r := setupPayeeRouter(NewPayeeHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/payees", `{"name":"supermarket"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_PAYEE")
	})

	t.Run("returns 400 on empty name", func(t *testing.T) {
		r := setupPayeeRouter(NewPayeeHandler(&mockPayeeService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/payees", `{"name":""}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestPayeeHandler_GetPayees(t *testing.T) {
	var gotSearch string
	var gotPage pagination.PageRequest
	svc := &mockPayeeService{
		getUserPayeesFn: func(_ string, page pagination.PageRequest, search string) (*pagination.PageResponse[models.Payee], error) {
			gotSearch, gotPage = search, page
			resp := pagination.NewPageResponse([]models.Payee{{Name: "Super A"}, {Name: "Super B"}}, page, 2)
			return &resp, nil
		},
	}
	r := setupPayeeRouter(NewPayeeHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/payees?search=super&limit=10", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotSearch != "super" || gotPage.Limit != 10 {
		t.Errorf("unexpected search %q / page %+v", gotSearch, gotPage)
	}
	if len(parseJSON(t, rec)["data"].([]interface{})) != 2 {
		t.Error("expected 2 payees")
	}
}

func TestPayeeHandler_UpdatePayee(t *testing.T) {
	t.Run("renames", func(t *testing.T) {
		r := setupPayeeRouter(NewPayeeHandler(&mockPayeeService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/payees/"+testOtherID, `{"name":"Bakery"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["payee"].(map[string]interface{})["name"] != "Bakery" {
			t.Error("expected renamed payee")
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockPayeeService{
			updatePayeeFn: func(_, id, _ string) (*models.Payee, error) {
				return nil, apperrors.NotFound(apperrors.ErrPayeeNotFound, "Payee", id)
			},
		}
		r := setupPayeeRouter(NewPayeeHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/payees/"+testOtherID, `{"name":"Bakery"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PAYEE_NOT_FOUND")
	})
}

func TestPayeeHandler_DeletePayee(t *testing.T) {
	audit := &mockAuditService{}
	var deleted string
	svc := &mockPayeeService{
		deletePayeeFn: func(_, id string) error {
			deleted = id
			return nil
		},
	}
	r := setupPayeeRouter(NewPayeeHandler(svc, audit))

	rec := doRequest(r, "DELETE", "/payees/"+testOtherID, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deleted != testOtherID {
		t.Errorf("expected %s deleted, got %s", testOtherID, deleted)
	}
	if len(audit.entries) != 1 || audit.entries[0].action != services.AuditDeletePayee {
		t.Errorf("expected DELETE_PAYEE audit entry, got %+v", audit.entries)
	}
}
