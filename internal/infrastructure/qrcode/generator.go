package qrcode

import (
	"context"
	"fmt"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"

	"github.com/fastygo/marketplace/domain"
)

const defaultSize = 256

// Generator renders pickup codes as PNG QR images pointing at the order's
// pickup page.
type Generator struct {
	baseURL string
	size    int
}

func NewGenerator(baseURL string) *Generator {
	return &Generator{baseURL: strings.TrimRight(baseURL, "/"), size: defaultSize}
}

// PickupURL is the payload encoded into an order's code.
func (g *Generator) PickupURL(orderID string) string {
	return fmt.Sprintf("%s/orders/%s/pickup", g.baseURL, orderID)
}

func (g *Generator) Generate(_ context.Context, order *domain.Order) ([]byte, error) {
	if order == nil || order.ID == "" {
		return nil, domain.ErrInvalidPayload
	}
	return goqrcode.Encode(g.PickupURL(order.ID), goqrcode.Medium, g.size)
}
