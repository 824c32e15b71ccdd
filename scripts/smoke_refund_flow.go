//go:build ignore

// Drives one order through pay, refund apply, approve and the refund callback against a
// running server. Payment callbacks are published straight to JetStream.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const baseURL = "http://localhost:3000/api"

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func mint(secret, role string, id uuid.UUID) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": id.String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		color.Red("Failed to sign token: %v", err)
		os.Exit(1)
	}
	return signed
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (int, envelope) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp.StatusCode, env
}

func expect(step string, status, want int, env envelope) {
	if status != want {
		color.Red("%s: status %d, want %d (%s)", step, status, want, env.Message)
		os.Exit(1)
	}
	color.Green("%s: %d %s", step, status, env.Message)
}

func publish(js jetstream.JetStream, subject string, payload interface{}) {
	data, _ := json.Marshal(payload)
	if _, err := js.Publish(context.Background(), subject, data); err != nil {
		color.Red("Publish %s failed: %v", subject, err)
		os.Exit(1)
	}
	color.Green("Published %s", subject)
}

func waitFor(step, url, token string, check func(json.RawMessage) bool) {
	for i := 0; i < 20; i++ {
		status, env := sendRequest(http.MethodGet, url, token, nil)
		if status == http.StatusOK && check(env.Data) {
			color.Green("%s: done", step)
			return
		}
		time.Sleep(250 * time.Millisecond)
	}
	color.Red("%s: timed out", step)
	os.Exit(1)
}

func main() {
	secret := getenv("JWT_SECRET", "change-me")
	buyerId, sellerId := uuid.New(), uuid.New()
	buyer := mint(secret, "buyer", buyerId)
	seller := mint(secret, "seller", sellerId)

	nc, err := nats.Connect(getenv("NATS_URL", nats.DefaultURL))
	if err != nil {
		color.Red("NATS connect failed: %v", err)
		os.Exit(1)
	}
	defer nc.Close()
	js, err := jetstream.New(nc)
	if err != nil {
		color.Red("JetStream init failed: %v", err)
		os.Exit(1)
	}

	color.Cyan("🚀 Starting booking order refund smoke test\n")

	color.Yellow("\n[BUYER] 1. Create order")
	status, env := sendRequest(http.MethodPost, "/orders", buyer, map[string]interface{}{
		"seller_id":   sellerId,
		"seller_type": "VENUE",
		"items": []map[string]interface{}{
			{
				"resource_id":    uuid.New(),
				"resource_name":  "Court 1",
				"slot_record_id": uuid.NewString(),
				"booking_date":   time.Now().AddDate(0, 0, 3).Format("2006-01-02"),
				"start_time":     "08:00",
				"end_time":       "09:00",
				"unit_price":     "120.00",
			},
		},
	})
	expect("create", status, http.StatusCreated, env)

	var order struct {
		OrderNo string `json:"order_no"`
		Items   []struct {
			Id uuid.UUID `json:"id"`
		} `json:"items"`
	}
	_ = json.Unmarshal(env.Data, &order)
	fmt.Printf("orderNo=%s\n", order.OrderNo)

	color.Yellow("\n[PAYMENT] 2. Pay success callback")
	publish(js, "payment.order.paid", map[string]string{
		"orderNo":     order.OrderNo,
		"outTradeNo":  "T" + order.OrderNo,
		"paymentType": "WECHAT",
	})
	waitFor("paid", "/orders/"+order.OrderNo, buyer, func(data json.RawMessage) bool {
		var o struct {
			OrderStatus string `json:"order_status"`
		}
		_ = json.Unmarshal(data, &o)
		return o.OrderStatus == "PAID"
	})

	color.Yellow("\n[BUYER] 3. Apply refund")
	status, env = sendRequest(http.MethodPost, "/orders/"+order.OrderNo+"/refunds", buyer, map[string]interface{}{
		"item_ids":    []uuid.UUID{order.Items[0].Id},
		"reason_code": "SCHEDULE_CHANGE",
	})
	expect("apply", status, http.StatusCreated, env)
	var apply struct {
		Id uuid.UUID `json:"id"`
	}
	_ = json.Unmarshal(env.Data, &apply)

	color.Yellow("\n[SELLER] 4. Approve refund")
	status, env = sendRequest(http.MethodPost, fmt.Sprintf("/orders/%s/refunds/%s/approve", order.OrderNo, apply.Id), seller, nil)
	expect("approve", status, http.StatusOK, env)
	var approved struct {
		Apply struct {
			OutRequestNo string `json:"out_request_no"`
		} `json:"apply"`
	}
	_ = json.Unmarshal(env.Data, &approved)

	color.Yellow("\n[PAYMENT] 5. Refund success callback")
	publish(js, "payment.refund.succeeded", map[string]string{
		"orderNo":      order.OrderNo,
		"outRequestNo": approved.Apply.OutRequestNo,
	})
	waitFor("refunded", "/orders/"+order.OrderNo+"/refunds/progress", buyer, func(data json.RawMessage) bool {
		var p struct {
			OrderStatus string `json:"order_status"`
		}
		_ = json.Unmarshal(data, &p)
		return p.OrderStatus == "REFUNDED"
	})

	color.Cyan("\n✅ Smoke test passed")
}
