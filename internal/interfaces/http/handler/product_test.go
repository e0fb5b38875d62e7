package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductHandler_CreateProduct_InvalidBody(t *testing.T) {
	h := NewProductHandler(nil)
	orgID := uuid.New()

	tests := []struct {
		name string
		body CreateProductRequest
	}{
		{
			name: "missing code",
			body: CreateProductRequest{Name: "Bottle cap 28mm", Unit: "pcs"},
		},
		{
			name: "missing name",
			body: CreateProductRequest{Code: "CAP-28", Unit: "pcs"},
		},
		{
			name: "missing unit",
			body: CreateProductRequest{Code: "CAP-28", Name: "Bottle cap 28mm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.CreateProduct, orgID, tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func postBOM(t *testing.T, h *ProductHandler, orgID uuid.UUID, productCode string, body CreateBOMRequest) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/products/"+productCode+"/boms", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "code", Value: productCode}}
	if orgID != uuid.Nil {
		setOrgContext(c, orgID)
	}

	h.CreateBOM(c)
	return w
}

func TestProductHandler_CreateBOM_InvalidBody(t *testing.T) {
	h := NewProductHandler(nil)
	orgID := uuid.New()

	tests := []struct {
		name string
		body CreateBOMRequest
	}{
		{
			name: "no items",
			body: CreateBOMRequest{Version: 1},
		},
		{
			name: "zero version",
			body: CreateBOMRequest{Items: []BOMItemRequest{{ComponentCode: "RES-001", QuantityPerUnit: 2}}},
		},
		{
			name: "item with zero quantity",
			body: CreateBOMRequest{Version: 1, Items: []BOMItemRequest{{ComponentCode: "RES-001"}}},
		},
		{
			name: "item with waste over 100 percent",
			body: CreateBOMRequest{Version: 1, Items: []BOMItemRequest{{ComponentCode: "RES-001", QuantityPerUnit: 2, WastePercent: 150}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postBOM(t, h, orgID, "CAP-28", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestProductHandler_ActivateBOM_InvalidID(t *testing.T) {
	h := NewProductHandler(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/boms/nope/activate", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	setOrgContext(c, uuid.New())

	h.ActivateBOM(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_GetActiveBOM_MissingCode(t *testing.T) {
	h := NewProductHandler(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/products//boms/active", nil)
	setOrgContext(c, uuid.New())

	h.GetActiveBOM(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
