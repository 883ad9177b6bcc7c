package sslcommerz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func newTestConfig(baseURL string) *Config {
	return &Config{StoreID: "store", StorePassword: "secret", BaseURL: baseURL, Timeout: time.Second}
}

func testInitInput() InitInput {
	return InitInput{
		TransactionID: "TX2026010112000012345678",
		Amount:        "2000.00",
		CustomerName:  "Rahim",
		SuccessURL:    "http://localhost/api/v1/payment/success",
		FailURL:       "http://localhost/api/v1/payment/fail",
		CancelURL:     "http://localhost/api/v1/payment/cancel",
	}
}

func TestInitPaymentSuccess(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != initPath {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form failed: %v", err)
		}
		got = r.PostForm
		_, _ = w.Write([]byte(`{"status":"SUCCESS","sessionkey":"S1","GatewayPageURL":"https://pay.example/S1"}`))
	}))
	defer server.Close()

	result, err := InitPayment(context.Background(), newTestConfig(server.URL), testInitInput())
	if err != nil {
		t.Fatalf("init payment failed: %v", err)
	}
	if result.GatewayPageURL != "https://pay.example/S1" || result.SessionKey != "S1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got.Get("tran_id") != "TX2026010112000012345678" || got.Get("total_amount") != "2000.00" {
		t.Fatalf("unexpected form: %v", got)
	}
	if got.Get("currency") != "BDT" || got.Get("cus_email") != "N/A" || got.Get("product_profile") != "general" {
		t.Fatalf("missing default fields: %v", got)
	}
	if got.Get("store_passwd") != "secret" {
		t.Fatalf("store credentials not sent")
	}
}

func TestInitPaymentRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"FAILED","failedreason":"Store Credential Error"}`))
	}))
	defer server.Close()

	_, err := InitPayment(context.Background(), newTestConfig(server.URL), testInitInput())
	if !errors.Is(err, ErrInitRejected) {
		t.Fatalf("expected init rejected, got %v", err)
	}
}

func TestInitPaymentTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"status":"SUCCESS","GatewayPageURL":"https://pay.example"}`))
	}))
	defer server.Close()

	cfg := newTestConfig(server.URL)
	cfg.Timeout = 20 * time.Millisecond
	_, err := InitPayment(context.Background(), cfg, testInitInput())
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected request failed on timeout, got %v", err)
	}
}

func TestInitPaymentHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := InitPayment(context.Background(), newTestConfig(server.URL), testInitInput())
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected request failed, got %v", err)
	}
}

func TestValidateTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != validatePath {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		switch r.URL.Query().Get("val_id") {
		case "VAL-OK":
			_, _ = w.Write([]byte(`{"status":"VALID","tran_id":"TX1","val_id":"VAL-OK","amount":"2000.00"}`))
		default:
			_, _ = w.Write([]byte(`{"status":"INVALID_TRANSACTION"}`))
		}
	}))
	defer server.Close()

	cfg := newTestConfig(server.URL)
	result, err := ValidateTransaction(context.Background(), cfg, "VAL-OK")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.TranID != "TX1" || result.Amount != "2000.00" {
		t.Fatalf("unexpected validation result: %+v", result)
	}
	if _, err := ValidateTransaction(context.Background(), cfg, "VAL-BAD"); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if _, err := ValidateTransaction(context.Background(), cfg, " "); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation failure for empty val_id, got %v", err)
	}
}

func TestParseCallback(t *testing.T) {
	form := url.Values{}
	form.Set("tran_id", " TX1 ")
	form.Set("val_id", "VAL1")
	form.Set("amount", "2000.00")
	form.Set("card_brand", "VISA")

	cb := ParseCallback(form)
	if cb.TranID != "TX1" || cb.ValID != "VAL1" || cb.Amount != "2000.00" || cb.CardBrand != "VISA" {
		t.Fatalf("unexpected callback: %+v", cb)
	}
	if cb.ToMap()["tran_id"] != "TX1" {
		t.Fatalf("unexpected map: %v", cb.ToMap())
	}
}

func TestBaseURLBySandbox(t *testing.T) {
	if got := (&Config{Sandbox: true}).baseURL(); got != sandboxBaseURL {
		t.Fatalf("unexpected sandbox url: %s", got)
	}
	if got := (&Config{}).baseURL(); got != liveBaseURL {
		t.Fatalf("unexpected live url: %s", got)
	}
}
