// Package session caches per-session intake state that is computed once on
// demand: the zone check result for the current address and the latest slot
// offer. Both live for the remainder of the session only.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/homevet/intake-platform/internal/availability"
	"github.com/homevet/intake-platform/internal/intake"
	"github.com/homevet/intake-platform/internal/zones"
)

// Store holds session-scoped intake state in Redis with a TTL.
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewStore creates a session store. TTL bounds how long a session's cached
// results survive without activity.
func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{redis: redisClient, ttl: ttl}
}

func (s *Store) zoneKey(sessionID string, addr intake.Address) string {
	return fmt.Sprintf("intake:session:%s:zone:%s", sessionID, addressFingerprint(addr))
}

func (s *Store) offerKey(sessionID string) string {
	return fmt.Sprintf("intake:session:%s:offer", sessionID)
}

// addressFingerprint keys the zone cache by address content, so an edited
// address never reads the previous address's result.
func addressFingerprint(addr intake.Address) string {
	norm := strings.ToLower(strings.Join([]string{
		addr.Line1, addr.Line2, addr.City, addr.State, addr.PostalCode,
	}, "|"))
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:8])
}

// SaveZoneResult caches a resolved zone check for the given address.
func (s *Store) SaveZoneResult(ctx context.Context, sessionID string, addr intake.Address, res zones.Result) error {
	if err := s.redis.Set(ctx, s.zoneKey(sessionID, addr), string(res), s.ttl).Err(); err != nil {
		return fmt.Errorf("session: save zone result: %w", err)
	}
	return nil
}

// ZoneResult returns the cached result for this exact address, or
// ResultUnresolved when none is cached.
func (s *Store) ZoneResult(ctx context.Context, sessionID string, addr intake.Address) (zones.Result, error) {
	val, err := s.redis.Get(ctx, s.zoneKey(sessionID, addr)).Result()
	if err == redis.Nil {
		return zones.ResultUnresolved, nil
	}
	if err != nil {
		return zones.ResultUnresolved, fmt.Errorf("session: get zone result: %w", err)
	}
	return zones.Result(val), nil
}

// SaveSlotOffer caches the latest slot offer for the session.
func (s *Store) SaveSlotOffer(ctx context.Context, sessionID string, offer availability.SlotOffer) error {
	data, err := json.Marshal(offer)
	if err != nil {
		return fmt.Errorf("session: marshal slot offer: %w", err)
	}
	if err := s.redis.Set(ctx, s.offerKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: save slot offer: %w", err)
	}
	return nil
}

// SlotOffer returns the cached offer, or nil when none is cached.
func (s *Store) SlotOffer(ctx context.Context, sessionID string) (*availability.SlotOffer, error) {
	data, err := s.redis.Get(ctx, s.offerKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: get slot offer: %w", err)
	}
	var offer availability.SlotOffer
	if err := json.Unmarshal(data, &offer); err != nil {
		return nil, fmt.Errorf("session: unmarshal slot offer: %w", err)
	}
	return &offer, nil
}

// ClearSlotOffer drops the cached offer, used when an edit invalidates the
// search it came from.
func (s *Store) ClearSlotOffer(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, s.offerKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("session: clear slot offer: %w", err)
	}
	return nil
}
