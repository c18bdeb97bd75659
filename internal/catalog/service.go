package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/quotedesk/quotedesk/internal/backend"
)

// Lister fetches the raw catalog from the backend.
type Lister interface {
	List(ctx context.Context) ([]backend.InventoryItem, error)
}

// Service serves the inventory catalog with a per-session Redis cache.
// The catalog is fetched once per wizard session; concurrent fetches
// for the same session collapse into one backend call.
type Service struct {
	lister Lister
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewService constructs a catalog Service.
func NewService(lister Lister, redisClient *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Service{
		lister: lister,
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
	}
}

// Entries returns the catalog for the session, from cache when warm.
func (s *Service) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	if cached, ok := s.fromCache(ctx, sessionID); ok {
		return cached, nil
	}

	resultChan := s.group.DoChan(sessionID, func() (any, error) {
		return s.fetch(ctx, sessionID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Entry), nil
	}
}

// Invalidate drops the cached catalog for the session.
func (s *Service) Invalidate(ctx context.Context, sessionID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, s.cacheKey(sessionID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn("invalidate catalog cache", slog.Any("error", err))
	}
}

func (s *Service) fetch(ctx context.Context, sessionID string) ([]Entry, error) {
	items, err := s.lister.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, Entry{
			ID:            item.IntPkInventoryID,
			Code:          item.StrItemCode,
			Name:          item.StrItemName,
			Category:      item.StrCategory,
			UnitPrice:     item.DblUnitPrice,
			Unit:          item.StrUnit,
			StockQuantity: item.IntStockQuantity,
		})
	}

	s.toCache(ctx, sessionID, entries)
	return entries, nil
}

func (s *Service) fromCache(ctx context.Context, sessionID string) ([]Entry, bool) {
	if s.redis == nil {
		return nil, false
	}
	payload, err := s.redis.Get(ctx, s.cacheKey(sessionID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("read catalog cache", slog.Any("error", err))
		}
		return nil, false
	}
	var entries []Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		// Treat a corrupted cache as a miss.
		return nil, false
	}
	return entries, true
}

func (s *Service) toCache(ctx context.Context, sessionID string, entries []Entry) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.cacheKey(sessionID), data, s.ttl).Err(); err != nil {
		s.logger.Warn("write catalog cache", slog.Any("error", err))
	}
}

func (s *Service) cacheKey(sessionID string) string {
	return "catalog:" + sessionID
}
