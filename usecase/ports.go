package usecase

import (
	"context"
	"time"

	"github.com/fastygo/marketplace/domain"
)

// Clock abstracts the current time so expiry rules are testable.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClockOrSystem returns c, or the system clock when c is nil.
func ClockOrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock{}
	}
	return c
}

// PasswordHasher turns secrets into stored credentials and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// PickupCodeGenerator renders the code a customer shows when collecting an order.
type PickupCodeGenerator interface {
	Generate(ctx context.Context, order *domain.Order) ([]byte, error)
}

// ActivityPublisher ships activity entries to an external stream.
type ActivityPublisher interface {
	Publish(ctx context.Context, entries []domain.Activity) error
}
