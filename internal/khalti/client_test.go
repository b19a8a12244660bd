package khalti

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInitiate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/epayment/initiate/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Key test-secret" {
			t.Errorf("authorization header = %q", got)
		}

		var req InitiateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Amount != 50000 {
			t.Errorf("amount = %d, want 50000", req.Amount)
		}

		json.NewEncoder(w).Encode(InitiateResponse{
			Pidx:       "pidx-abc",
			PaymentURL: "https://pay.example/pidx-abc",
		})
	}))
	defer server.Close()

	client := NewClient("test-secret", server.URL)
	resp, err := client.Initiate(context.Background(), InitiateRequest{
		Amount:            50000,
		PurchaseOrderID:   "order-1",
		PurchaseOrderName: "Gym Session: Cardio",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Pidx != "pidx-abc" || resp.PaymentURL != "https://pay.example/pidx-abc" {
		t.Errorf("response = %+v", resp)
	}
}

func TestInitiateMissingPidx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient("test-secret", server.URL)
	if _, err := client.Initiate(context.Background(), InitiateRequest{}); err == nil {
		t.Error("expected error for response without pidx")
	}
}

func TestLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/epayment/lookup/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["pidx"] != "pidx-abc" {
			t.Errorf("pidx = %q", body["pidx"])
		}

		json.NewEncoder(w).Encode(LookupResponse{
			Pidx:          "pidx-abc",
			Status:        "Completed",
			TransactionID: "txn-42",
			TotalAmount:   50000,
		})
	}))
	defer server.Close()

	client := NewClient("test-secret", server.URL)
	resp, err := client.Lookup(context.Background(), "pidx-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "Completed" || resp.TransactionID != "txn-42" {
		t.Errorf("response = %+v", resp)
	}
}

func TestGatewayErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Not found."}`))
	}))
	defer server.Close()

	client := NewClient("test-secret", server.URL)
	_, err := client.Lookup(context.Background(), "pidx-missing")

	var gatewayErr *Error
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if gatewayErr.StatusCode != http.StatusBadRequest || gatewayErr.Detail != "Not found." {
		t.Errorf("gateway error = %+v", gatewayErr)
	}
}

func TestUnreachableGateway(t *testing.T) {
	client := NewClient("test-secret", "http://127.0.0.1:1")
	if _, err := client.Lookup(context.Background(), "pidx-abc"); err == nil {
		t.Error("expected error for unreachable gateway")
	}
}
