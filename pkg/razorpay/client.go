package razorpay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	rzpsdk "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	"github.com/pulppixels/pulppixels-backend/pkg/config"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
)

const currencyINR = "INR"

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
	errLoggerRequired    = errors.New("razorpay logger is required")
)

// Order is the subset of the gateway order payload the storefront consumes.
type Order struct {
	ID          string
	AmountPaise int64
	Currency    string
	Receipt     string
}

type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client exposes Razorpay primitives with centralized auth, logging, and error mapping.
type Client struct {
	orders    orderCreator
	keyID     string
	keySecret string
	logger    *logger.Logger
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	sdk := rzpsdk.NewClient(keyID, keySecret)

	c := &Client{
		orders:    sdk.Order,
		keyID:     keyID,
		keySecret: keySecret,
		logger:    logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// KeyID returns the configured public key identifier.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// CreateOrder registers an order with the gateway for the given rupee amount.
// The gateway bills in paise, so the amount is scaled by 100 before the call.
func (c *Client) CreateOrder(ctx context.Context, amountRupees int64, receipt string) (*Order, error) {
	if amountRupees <= 0 {
		return nil, fmt.Errorf("order amount must be positive, got %d", amountRupees)
	}
	receipt = strings.TrimSpace(receipt)
	if receipt == "" {
		receipt = NewReceipt()
	}

	paise := decimal.NewFromInt(amountRupees).Mul(decimal.NewFromInt(100))

	payload := map[string]interface{}{
		"amount":   paise.IntPart(),
		"currency": currencyINR,
		"receipt":  receipt,
	}

	resp, err := c.orders.Create(payload, nil)
	if err != nil {
		c.logger.Error(c.logger.WithField(ctx, "receipt", receipt), "razorpay order creation failed", err)
		return nil, fmt.Errorf("creating razorpay order: %w", err)
	}

	order, err := parseOrder(resp)
	if err != nil {
		return nil, err
	}
	order.Receipt = receipt

	c.logger.Info(c.logger.WithFields(ctx, map[string]any{
		"razorpay_order_id": order.ID,
		"amount_paise":      order.AmountPaise,
	}), "razorpay order created")

	return order, nil
}

// VerifySignature checks the checkout callback signature for this client's secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	if c == nil {
		return false
	}
	return VerifyPaymentSignature(orderID, paymentID, signature, c.keySecret)
}

// NewReceipt returns a unique receipt identifier for gateway orders.
func NewReceipt() string {
	return fmt.Sprintf("pp-%s", uuid.NewString())
}

func parseOrder(resp map[string]interface{}) (*Order, error) {
	id, ok := resp["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("razorpay order response missing id")
	}

	order := &Order{ID: id, Currency: currencyINR}

	switch amount := resp["amount"].(type) {
	case float64:
		order.AmountPaise = int64(amount)
	case int64:
		order.AmountPaise = amount
	case int:
		order.AmountPaise = int64(amount)
	}

	if currency, ok := resp["currency"].(string); ok && currency != "" {
		order.Currency = currency
	}

	return order, nil
}
