package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/abcretail/storefront/internal/session"
	"github.com/abcretail/storefront/pkg/models"
)

// Store reads and writes a session's cart through the session store. An
// absent cart reads as empty, never as an error.
type Store struct {
	sessions session.Store
}

func NewStore(sessions session.Store) *Store {
	return &Store{sessions: sessions}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func (s *Store) Get(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.sessions.Get(ctx, cartKey(sessionID), &items)
	if errors.Is(err, session.ErrNoSession) {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) Save(ctx context.Context, sessionID string, items []models.CartItem) error {
	return s.sessions.Set(ctx, cartKey(sessionID), items)
}

func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, cartKey(sessionID))
}
