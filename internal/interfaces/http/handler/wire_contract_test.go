package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bindJSON runs gin's JSON binding against a raw request body, the same way
// the handlers do
func bindJSON(t *testing.T, body string, target interface{}) error {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c.ShouldBindJSON(target)
}

func TestSellPackageRequest_Binding(t *testing.T) {
	body := `{
		"clienteId": "550e8400-e29b-41d4-a716-446655440002",
		"pacoteId": "550e8400-e29b-41d4-a716-446655440003",
		"diasValidade": 60,
		"parcelado": true,
		"numeroParcelas": 3,
		"valorPago": 150.00,
		"formaPagamento": "MBWAY",
		"dadosPagamento": {"telemovel": "+351912345678"},
		"observacoes": "primeira compra"
	}`

	var req SellPackageRequest
	require.NoError(t, bindJSON(t, body, &req))

	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440002", req.ClientID)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440003", req.PackageID)
	require.NotNil(t, req.ValidityDays)
	assert.Equal(t, 60, *req.ValidityDays)
	assert.True(t, req.IsInstallment)
	assert.Equal(t, 3, req.InstallmentCount)
	require.NotNil(t, req.PaidAmount)
	assert.Equal(t, 150.00, *req.PaidAmount)
	assert.Equal(t, "MBWAY", req.Method)
	assert.Equal(t, "+351912345678", req.Details.MBWayPhone)
	assert.Equal(t, "primeira compra", req.Notes)
}

func TestSellPackageRequest_Binding_MinimalBody(t *testing.T) {
	body := `{"clienteId": "550e8400-e29b-41d4-a716-446655440002", "pacoteId": "550e8400-e29b-41d4-a716-446655440003"}`

	var req SellPackageRequest
	require.NoError(t, bindJSON(t, body, &req))
	assert.Nil(t, req.ValidityDays)
	assert.Nil(t, req.PaidAmount)
	assert.False(t, req.IsInstallment)
}

func TestSellPackageRequest_Binding_RequiresIDs(t *testing.T) {
	var req SellPackageRequest
	assert.Error(t, bindJSON(t, `{"pacoteId": "x"}`, &req))
}

func TestCreatePackageRequest_Binding(t *testing.T) {
	body := `{
		"nome": "Pacote 10 Massagens",
		"descricao": "10 sessões de massagem relaxante",
		"sessoes": 10,
		"valorTotal": 450.00,
		"diasValidade": 90
	}`

	var req CreatePackageRequest
	require.NoError(t, bindJSON(t, body, &req))
	assert.Equal(t, "Pacote 10 Massagens", req.Name)
	assert.Equal(t, 10, req.Sessions)
	assert.Equal(t, 450.00, req.TotalValue)
	assert.Equal(t, 90, req.ValidityDays)

	assert.Error(t, bindJSON(t, `{"nome": "x", "sessoes": 10}`, new(CreatePackageRequest)), "valorTotal is required")
}

func TestExtendExpiryRequest_Binding(t *testing.T) {
	var req ExtendExpiryRequest
	require.NoError(t, bindJSON(t, `{"dias": 30, "motivo": "Cliente em viagem"}`, &req))
	assert.Equal(t, 30, req.Days)
	assert.Equal(t, "Cliente em viagem", req.Reason)

	assert.Error(t, bindJSON(t, `{"dias": 30}`, new(ExtendExpiryRequest)), "motivo is required")
	assert.Error(t, bindJSON(t, `{"motivo": "x"}`, new(ExtendExpiryRequest)), "dias is required")
}

func TestCancelPurchaseRequest_Binding(t *testing.T) {
	var req CancelPurchaseRequest
	require.NoError(t, bindJSON(t, `{"motivo": "Cliente desistiu"}`, &req))
	assert.Equal(t, "Cliente desistiu", req.Reason)

	assert.Error(t, bindJSON(t, `{}`, new(CancelPurchaseRequest)))
}

func TestOpenDayRequest_Binding(t *testing.T) {
	var req OpenDayRequest
	require.NoError(t, bindJSON(t, `{"valorInicial": 50.00}`, &req))
	assert.Equal(t, 50.00, req.OpeningFloat)

	// Opening with an empty drawer is allowed
	require.NoError(t, bindJSON(t, `{}`, &req))
}

func TestCashAdjustmentRequest_Binding(t *testing.T) {
	var req CashAdjustmentRequest
	require.NoError(t, bindJSON(t, `{"valor": 20.00, "motivo": "Depósito bancário", "formaPagamento": "DINHEIRO"}`, &req))
	assert.Equal(t, 20.00, req.Amount)
	assert.Equal(t, "Depósito bancário", req.Reason)
	assert.Equal(t, "DINHEIRO", req.Method)

	assert.Error(t, bindJSON(t, `{"valor": 20.00}`, new(CashAdjustmentRequest)), "motivo is required")
	assert.Error(t, bindJSON(t, `{"valor": -5, "motivo": "x"}`, new(CashAdjustmentRequest)))
}

func TestCloseDayRequest_Binding(t *testing.T) {
	var req CloseDayRequest
	require.NoError(t, bindJSON(t, `{"saldoContado": 385.50, "observacoes": "tudo certo"}`, &req))
	assert.Equal(t, 385.50, req.CountedAmount)

	// A zero count still closes the day
	require.NoError(t, bindJSON(t, `{"saldoContado": 0}`, &req))
	assert.Zero(t, req.CountedAmount)
}

func TestRegisterPaymentRequest_Binding(t *testing.T) {
	body := `{
		"valor": 45.00,
		"formaPagamento": "MBWAY",
		"dados": {"telemovel": "+351912345678"}
	}`

	var req RegisterPaymentRequest
	require.NoError(t, bindJSON(t, body, &req))
	assert.Equal(t, 45.00, req.Amount)
	assert.Equal(t, "MBWAY", req.Method)
	assert.Equal(t, "+351912345678", req.Details.MBWayPhone)

	assert.Error(t, bindJSON(t, `{"valor": 45.00}`, new(RegisterPaymentRequest)), "formaPagamento is required")
}

func TestCloseDayResponse_Serialization(t *testing.T) {
	response := CloseDayResponse{
		Summary: ClosingSummaryResponse{Expected: 390.00, Counted: 385.50, Difference: -4.50},
	}

	raw, err := json.Marshal(response)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Contains(t, decoded, "fechamento")

	var summary map[string]float64
	require.NoError(t, json.Unmarshal(decoded["fechamento"], &summary))
	assert.Equal(t, 390.00, summary["saldoEsperado"])
	assert.Equal(t, 385.50, summary["saldoContado"])
	assert.Equal(t, -4.50, summary["diferenca"])
}

func TestDayStatusResponse_Serialization(t *testing.T) {
	response := DayStatusResponse{
		Day:    "2026-03-02",
		Status: "NAO_ABERTO",
		Movement: DayMovementResponse{
			Sangrias:        20.00,
			Suprimentos:     10.00,
			ExpectedBalance: -10.00,
		},
		ByMethod: []MethodMovementResponse{},
	}

	raw, err := json.Marshal(response)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "data")
	assert.Contains(t, decoded, "status")
	assert.Contains(t, decoded, "movimentacao")
	assert.Contains(t, decoded, "totaisPorForma")

	var movement map[string]float64
	require.NoError(t, json.Unmarshal(decoded["movimentacao"], &movement))
	assert.Equal(t, -10.00, movement["saldoEsperado"])
}
