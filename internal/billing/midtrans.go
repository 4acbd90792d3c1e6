package billing

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/firmanasgani/my-wallets-api/internal/apperr"
)

// Payment statuses stored on payment_transactions rows.
const (
	PaymentPending = "PENDING"
	PaymentSuccess = "SUCCESS"
	PaymentFailed  = "FAILED"
)

const defaultSnapBaseURL = "https://app.sandbox.midtrans.com/snap/v1"

// Client talks to the Midtrans Snap API.
type Client struct {
	ServerKey string
	BaseURL   string
	HTTP      *http.Client
}

func NewClient() *Client {
	base := os.Getenv("MIDTRANS_BASE_URL")
	if base == "" {
		base = defaultSnapBaseURL
	}
	return &Client{
		ServerKey: os.Getenv("MIDTRANS_SERVER_KEY"),
		BaseURL:   base,
		HTTP:      &http.Client{Timeout: 15 * time.Second},
	}
}

// SnapResult is the part of the Snap response checkout needs.
type SnapResult struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type snapRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	CustomerDetails struct {
		FirstName string `json:"first_name"`
		Email     string `json:"email"`
	} `json:"customer_details"`
	ItemDetails []snapItem `json:"item_details"`
}

type snapItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// CreateTransaction opens a Snap session for one subscription order.
// grossAmount is in whole currency units, the way Midtrans expects it.
func (c *Client) CreateTransaction(ctx context.Context, orderID string, grossAmount int64, planCode, planName, username, email string) (*SnapResult, error) {
	if c.ServerKey == "" {
		return nil, apperr.Validation("payment gateway is not configured")
	}

	var req snapRequest
	req.TransactionDetails.OrderID = orderID
	req.TransactionDetails.GrossAmount = grossAmount
	req.CustomerDetails.FirstName = username
	req.CustomerDetails.Email = email
	req.ItemDetails = []snapItem{{ID: planCode, Name: planName, Price: grossAmount, Quantity: 1}}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.ServerKey+":")))

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snap transaction failed: status %d: %s", resp.StatusCode, raw)
	}

	var out SnapResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("snap transaction failed: empty token")
	}
	return &out, nil
}

// VerifySignature checks a webhook notification's signature_key:
// SHA-512 over order_id + status_code + gross_amount + server key.
// An empty server key can never verify; without one the expected digest
// would be computable by anyone.
func VerifySignature(orderID, statusCode, grossAmount, serverKey, signature string) bool {
	if serverKey == "" || signature == "" {
		return false
	}
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	want := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(want), []byte(signature)) == 1
}

// MapStatus folds Midtrans transaction and fraud statuses into the local
// payment status. A capture under fraud challenge stays pending until
// Midtrans settles it one way or the other.
func MapStatus(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "challenge" {
			return PaymentPending
		}
		return PaymentSuccess
	case "settlement":
		return PaymentSuccess
	case "cancel", "deny", "expire", "failure":
		return PaymentFailed
	default:
		return PaymentPending
	}
}
