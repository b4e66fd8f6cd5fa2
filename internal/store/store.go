// Package store keeps conversation state between chat turns.
package store

import (
	"context"
	"errors"

	"github.com/zhouzirui/hands-on/backend/internal/model/conversation"
)

// ErrNotFound signals that no conversation exists for a key.
var ErrNotFound = errors.New("conversation not found")

// Store persists conversations by (session, patient) key.
// Implementations must be safe for concurrent use and must not alias the
// turn slices they hand out.
type Store interface {
	Get(ctx context.Context, key conversation.Key) (*conversation.Conversation, error)
	Put(ctx context.Context, conv *conversation.Conversation) error
	Delete(ctx context.Context, key conversation.Key) error
}
