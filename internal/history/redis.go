package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps per-conversation histories in Redis lists.
type Store struct {
	client  *redis.Client
	maxMsgs int
	ttl     time.Duration
}

// NewStore creates a chat history store. Each conversation list is trimmed
// to maxMsgs entries and expires ttl after its last write.
func NewStore(client *redis.Client, maxMsgs int, ttl time.Duration) *Store {
	if maxMsgs <= 0 {
		maxMsgs = 20
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{client: client, maxMsgs: maxMsgs, ttl: ttl}
}

func chatKey(chatID, userID string) string {
	return fmt.Sprintf("chat:%s:%s", chatID, userID)
}

// RecentMessages returns the last `limit` entries for the conversation.
// Malformed rows are skipped.
func (s *Store) RecentMessages(ctx context.Context, chatID, userID string, limit int) ([]Entry, error) {
	key := chatKey(chatID, userID)

	vals, err := s.client.LRange(ctx, key, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	entries := make([]Entry, 0, len(vals))
	for _, v := range vals {
		var e Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Append adds an entry to the conversation list, trims it to the configured
// size and refreshes the TTL.
func (s *Store) Append(ctx context.Context, chatID, userID string, e Entry) error {
	key := chatKey(chatID, userID)

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, string(data))
	pipe.LTrim(ctx, key, int64(-s.maxMsgs), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec for %s: %w", key, err)
	}
	return nil
}

// Clear deletes the conversation history.
func (s *Store) Clear(ctx context.Context, chatID, userID string) error {
	return s.client.Del(ctx, chatKey(chatID, userID)).Err()
}
