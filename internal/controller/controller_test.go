package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"booking-order-be/internal/dto"
	"booking-order-be/internal/pkg/serverutils"
	"booking-order-be/internal/service"
	"booking-order-be/pkg/order/lifecycle"
	"booking-order-be/pkg/order/ordertest"
	"booking-order-be/pkg/order/policy"
	"booking-order-be/pkg/order/refund"
	"booking-order-be/pkg/outbox"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "controller-test"

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type api struct {
	t       *testing.T
	app     *fiber.App
	manager *lifecycle.Manager
}

func newAPI(t *testing.T) *api {
	env := ordertest.NewEnv(t)
	manager := lifecycle.NewManager(env.Runner, env.Factory, outbox.NewRecorder(), env.Logger, lifecycle.Config{})
	processor := refund.NewProcessor(env.Runner, env.Factory, outbox.NewRecorder(), policy.DefaultRegistry(), env.Logger)

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler})
	orders := app.Group("/api/orders", serverutils.JwtMiddleware(secret))
	NewOrderController(service.NewOrderService(manager)).RegisterRoutes(orders)
	NewRefundController(service.NewRefundService(processor)).RegisterRoutes(orders)

	return &api{t: t, app: app, manager: manager}
}

func token(t *testing.T, userId uuid.UUID, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId.String(),
		"role":    role,
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func (a *api) do(method, path, bearer string, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestOrderAndRefundEndpoints(t *testing.T) {
	a := newAPI(t)
	buyerId, sellerId := uuid.New(), uuid.New()
	buyer, seller := token(t, buyerId, "buyer"), token(t, sellerId, "seller")

	status, res := a.do(http.MethodPost, "/api/orders", buyer, map[string]interface{}{
		"seller_id":   sellerId,
		"seller_type": "VENUE",
		"venue_id":    uuid.New(),
		"items": []map[string]interface{}{
			{
				"resource_id":    uuid.New(),
				"slot_record_id": "slot-1",
				"booking_date":   "2026-11-02",
				"start_time":     "18:00",
				"end_time":       "19:00",
				"unit_price":     "100.00",
				"charges": []map[string]interface{}{
					{"charge_type_id": uuid.New(), "charge_mode": "FIXED", "charge_amount": "20.00"},
				},
			},
		},
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(res.Data, &order))
	assert.Equal(t, "PENDING", order.OrderStatus)
	assert.Equal(t, "120.00", order.PayAmount.StringFixed(2))
	require.Len(t, order.Items, 1)

	_, err := a.manager.PaySuccess(context.Background(), lifecycle.PaySuccessCommand{OrderNo: order.OrderNo, OutTradeNo: "T-9"})
	require.NoError(t, err)

	base := "/api/orders/" + order.OrderNo
	status, res = a.do(http.MethodPost, base+"/refunds", buyer, dto.ApplyRefundRequest{
		ItemIds:    []uuid.UUID{order.Items[0].Id},
		ReasonCode: "RAIN",
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	var apply dto.RefundApplyResponse
	require.NoError(t, json.Unmarshal(res.Data, &apply))
	assert.Equal(t, "PENDING", apply.ApplyStatus)

	status, _ = a.do(http.MethodPost, base+"/refunds/"+apply.Id.String()+"/approve", buyer, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, res = a.do(http.MethodPost, base+"/refunds/"+apply.Id.String()+"/approve", seller, nil)
	require.Equal(t, http.StatusOK, status, res.Message)
	var approved dto.ApproveRefundResponse
	require.NoError(t, json.Unmarshal(res.Data, &approved))
	assert.Equal(t, "120.00", approved.RefundAmount.StringFixed(2))
	assert.True(t, approved.FullRefund)

	status, res = a.do(http.MethodGet, base+"/refunds/progress", buyer, nil)
	require.Equal(t, http.StatusOK, status)
	var progress dto.RefundProgressResponse
	require.NoError(t, json.Unmarshal(res.Data, &progress))
	assert.Equal(t, "REFUNDING", progress.OrderStatus)
	require.NotNil(t, progress.Apply)
	assert.NotEmpty(t, progress.Apply.OutRequestNo)
	assert.Len(t, progress.Facts, 1)

	status, _ = a.do(http.MethodPost, base+"/cancel", buyer, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = a.do(http.MethodGet, base, token(t, uuid.New(), "buyer"), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.do(http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestEndpointValidation(t *testing.T) {
	a := newAPI(t)
	buyer := token(t, uuid.New(), "buyer")

	status, res := a.do(http.MethodPost, "/api/orders", buyer, map[string]interface{}{"seller_type": "SHOP"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, res.Success)

	status, _ = a.do(http.MethodPost, "/api/orders/BO1/refunds/not-a-uuid/approve", buyer, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = a.do(http.MethodPost, "/api/orders/BO1/refunds", buyer, dto.ApplyRefundRequest{ReasonCode: "RAIN"})
	assert.Equal(t, http.StatusBadRequest, status)
}
