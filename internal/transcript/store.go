package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyPrefix = "chat_transcript:"

	// transcriptTTL keeps idle transcripts from accumulating forever.
	transcriptTTL = 30 * 24 * time.Hour
)

// Message is one chat transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "bot"
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists chat transcripts in Redis lists, capped per conversation.
// A nil store is a no-op, so callers can run without Redis configured.
type Store struct {
	redis       *redis.Client
	tracer      trace.Tracer
	maxMessages int64
}

// NewStore creates a transcript store. Returns nil when no Redis client is
// configured.
func NewStore(redisClient *redis.Client, maxMessages int) *Store {
	if redisClient == nil {
		return nil
	}
	if maxMessages <= 0 {
		maxMessages = 250
	}
	return &Store{
		redis:       redisClient,
		tracer:      otel.Tracer("carebot.internal.transcript"),
		maxMessages: int64(maxMessages),
	}
}

// Append stores a message at the tail of the user's transcript.
func (s *Store) Append(ctx context.Context, userID string, msg Message) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if userID == "" {
		return errors.New("transcript: userID required")
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("transcript: marshal message: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "transcript.append")
	defer span.End()

	key := transcriptKey(userID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, transcriptTTL)
	pipe.LTrim(ctx, key, -s.maxMessages, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("transcript: append message: %w", err)
	}
	return nil
}

// List returns up to limit most recent messages in chronological order. A
// non-positive limit returns the full transcript.
func (s *Store) List(ctx context.Context, userID string, limit int64) ([]Message, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if userID == "" {
		return nil, errors.New("transcript: userID required")
	}

	ctx, span := s.tracer.Start(ctx, "transcript.list")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}

	raw, err := s.redis.LRange(ctx, transcriptKey(userID), start, -1).Result()
	if err != nil {
		span.RecordError(err)
		if err == redis.Nil {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("transcript: list messages: %w", err)
	}

	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func transcriptKey(userID string) string {
	return keyPrefix + userID
}
