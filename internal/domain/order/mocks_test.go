package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/storefront/internal/model"
)

// fakeGateway mints sequential order ids and accepts "sig:<order>|<payment>"
type fakeGateway struct {
	mu      sync.Mutex
	created []int64
	err     error
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	g.created = append(g.created, amount)
	return fmt.Sprintf("order_%d", len(g.created)), nil
}

func (g *fakeGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return signature == sign(gatewayOrderID, paymentID)
}

func sign(gatewayOrderID, paymentID string) string {
	return "sig:" + gatewayOrderID + "|" + paymentID
}

type fakeNotifier struct {
	mu     sync.Mutex
	orders []string
	err    error
}

func (n *fakeNotifier) OrderConfirmed(ctx context.Context, o *model.Order, u *model.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, o.ID)
	return n.err
}

func (n *fakeNotifier) calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.orders)
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

var errGatewayDown = errors.New("gateway unavailable")
