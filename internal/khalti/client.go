// Package khalti is a minimal client for the Khalti ePayment API. Only the
// initiate and lookup endpoints are used; webhook payloads are decoded by the
// payment handler. Amounts are always in paisa.
package khalti

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	ProductionBase = "https://khalti.com/api/v2"
	SandboxBase    = "https://dev.khalti.com/api/v2"

	// Gateway calls must never hang a booking flow; a timed-out call is a
	// failed initiation, not an implicit completion.
	defaultTimeout = 15 * time.Second
)

type Client struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

func NewClient(secretKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = SandboxBase
	}
	return &Client{
		secretKey: secretKey,
		baseURL:   baseURL,
		http:      &http.Client{Timeout: defaultTimeout},
	}
}

// Error carries the gateway's own response code and detail so handlers can
// decide how much of it is safe to surface.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("khalti: status %d: %s", e.StatusCode, e.Detail)
}

type ProductDetail struct {
	Identity   string `json:"identity"`
	Name       string `json:"name"`
	TotalPrice int64  `json:"total_price"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}

type AmountBreakdown struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type InitiateRequest struct {
	ReturnURL         string            `json:"return_url"`
	WebsiteURL        string            `json:"website_url"`
	Amount            int64             `json:"amount"`
	PurchaseOrderID   string            `json:"purchase_order_id"`
	PurchaseOrderName string            `json:"purchase_order_name"`
	CustomerInfo      CustomerInfo      `json:"customer_info"`
	ProductDetails    []ProductDetail   `json:"product_details,omitempty"`
	AmountBreakdown   []AmountBreakdown `json:"amount_breakdown,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

type InitiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at"`
}

type LookupResponse struct {
	Pidx          string `json:"pidx"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	TotalAmount   int64  `json:"total_amount"`
	Refunded      bool   `json:"refunded"`
}

// WebhookPayload is the body Khalti posts to the webhook endpoint.
type WebhookPayload struct {
	Pidx            string `json:"pidx"`
	Status          string `json:"status"`
	TransactionID   string `json:"transaction_id"`
	PurchaseOrderID string `json:"purchase_order_id"`
	TotalAmount     int64  `json:"total_amount"`
}

// Initiate registers a payment and returns the pidx correlation id plus the
// redirect URL for the customer.
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	var resp InitiateResponse
	if err := c.post(ctx, "/epayment/initiate/", req, &resp); err != nil {
		return nil, err
	}
	if resp.Pidx == "" {
		return nil, &Error{StatusCode: http.StatusBadGateway, Detail: "initiate response missing pidx"}
	}
	return &resp, nil
}

// Lookup fetches the current gateway status for a pidx.
func (c *Client) Lookup(ctx context.Context, pidx string) (*LookupResponse, error) {
	var resp LookupResponse
	body := map[string]string{"pidx": pidx}
	if err := c.post(ctx, "/epayment/lookup/", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Key "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("khalti: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("khalti: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := gatewayDetail(raw)
		return &Error{StatusCode: resp.StatusCode, Detail: detail}
	}

	return json.Unmarshal(raw, out)
}

func gatewayDetail(raw []byte) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return string(raw)
}
