package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

var ErrMissingCredentials = errors.New("razorpay key id and secret are required")

// orderCreator is the slice of the Razorpay client the gateway uses
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayGateway creates gateway orders and checks payment callbacks
type RazorpayGateway struct {
	keyID  string
	secret string
	orders orderCreator
}

func NewRazorpayGateway(keyID, secret string) (*RazorpayGateway, error) {
	if keyID == "" || secret == "" {
		return nil, ErrMissingCredentials
	}
	client := razorpay.NewClient(keyID, secret)
	return &RazorpayGateway{keyID: keyID, secret: secret, orders: client.Order}, nil
}

// KeyID is the public key the browser checkout widget needs
func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

// CreateOrder registers an order for amount minor units and returns the gateway order id
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := g.orders.Create(map[string]interface{}{
		"amount":          amount,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay create order: %w", err)
	}
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", errors.New("razorpay create order: response has no id")
	}
	return id, nil
}

// VerifySignature checks the checkout callback signature against the key secret
func (g *RazorpayGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return VerifySignature(g.secret, gatewayOrderID, paymentID, signature)
}

func VerifySignature(secret, gatewayOrderID, paymentID, signature string) bool {
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return utils.VerifyPaymentSignature(map[string]interface{}{
		"razorpay_order_id":   gatewayOrderID,
		"razorpay_payment_id": paymentID,
	}, signature, secret)
}

// Sign produces the signature Razorpay sends with a successful checkout.
// It lets tests and local setups simulate gateway callbacks.
func Sign(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
