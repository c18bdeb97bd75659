// Package draft persists in-progress wizard documents so a crashed or
// closed session can resume where it left off. Durability here is best
// effort: the store never propagates its own failures into the
// workflow, it only logs them.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quotedesk/quotedesk/internal/wizard"
)

// schemaVersion guards against resurrecting drafts written by an older
// document shape. Bump it whenever wizard.Document changes
// incompatibly; stale drafts are then treated as absent.
const schemaVersion = 2

type envelope struct {
	Version  int              `json:"version"`
	Kind     wizard.Kind      `json:"kind"`
	SavedAt  time.Time        `json:"savedAt"`
	Document *wizard.Document `json:"document"`
}

// Store is a redis-backed wizard.DraftStore keyed by session and kind,
// so the quotation and invoice drafts of one session never collide.
type Store struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore constructs a Store. Drafts expire after ttl of inactivity.
func NewStore(redisClient *redis.Client, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{redis: redisClient, ttl: ttl, logger: logger}
}

// Load returns the stored draft, or nil when none survives. Corrupt
// payloads and version mismatches also yield nil: a lost draft is
// recoverable by the user, a poisoned one is not.
func (s *Store) Load(ctx context.Context, sessionID string, kind wizard.Kind) *wizard.Document {
	raw, err := s.redis.Get(ctx, draftKey(sessionID, kind)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("draft load failed", slog.Any("error", err))
		}
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.logger.Warn("draft payload corrupt, discarding", slog.Any("error", err))
		return nil
	}
	if env.Version != schemaVersion || env.Kind != kind || env.Document == nil {
		return nil
	}
	return env.Document
}

// Save mirrors the document to redis, refreshing the TTL.
func (s *Store) Save(ctx context.Context, sessionID string, doc *wizard.Document) {
	if doc == nil {
		return
	}
	raw, err := json.Marshal(envelope{
		Version:  schemaVersion,
		Kind:     doc.Kind,
		SavedAt:  time.Now().UTC(),
		Document: doc,
	})
	if err != nil {
		s.logger.Warn("draft encode failed", slog.Any("error", err))
		return
	}
	if err := s.redis.Set(ctx, draftKey(sessionID, doc.Kind), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("draft save failed", slog.Any("error", err))
	}
}

// Clear removes the stored draft for one kind.
func (s *Store) Clear(ctx context.Context, sessionID string, kind wizard.Kind) {
	if err := s.redis.Del(ctx, draftKey(sessionID, kind)).Err(); err != nil {
		s.logger.Warn("draft clear failed", slog.Any("error", err))
	}
}

func draftKey(sessionID string, kind wizard.Kind) string {
	return fmt.Sprintf("draft:%s:%s", sessionID, kind)
}
