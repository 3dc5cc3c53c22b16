package utils

import (
	"context"
	"time"
)

const (
	DBQueryTimeout = 5 * time.Second
	// checkout locks every product in the cart, give it more room
	DBTxTimeout = 10 * time.Second
)

func WithDBTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DBQueryTimeout)
}

func WithTxTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DBTxTimeout)
}
