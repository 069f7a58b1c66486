package session

import (
	"context"
	"errors"
)

// ErrNoSession is returned when no value is stored under a key.
var ErrNoSession = errors.New("no session value")

// Store holds per-session JSON values: the cart, the last order for the
// receipt page. Values expire with the session; nothing here is durable.
type Store interface {
	Get(ctx context.Context, key string, v interface{}) error
	Set(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, key string) error
}
