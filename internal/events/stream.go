package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rgehrsitz/dispo/internal/domain"
)

const (
	// DefaultMaxLen caps the stream length (approximately)
	DefaultMaxLen = 10000
	// publishedTTL is how long an event id is remembered to suppress republishing
	publishedTTL = 24 * time.Hour
)

// StreamPublisher appends change events to a Redis stream. It satisfies
// session.Persister but never has an authoritative asset to return.
type StreamPublisher struct {
	rdb    *redis.Client
	stream string
	MaxLen int64
}

func NewStreamPublisher(rdb *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{rdb: rdb, stream: stream, MaxLen: DefaultMaxLen}
}

// Persist publishes ev once. Publishing the same event id again is a no-op.
func (p *StreamPublisher) Persist(ctx context.Context, ev domain.ChangeEvent) (*domain.Asset, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event %s: %w", ev.ID, err)
	}

	key := p.publishedKey(ev.ID)
	first, err := p.rdb.SetNX(ctx, key, ev.Seq, publishedTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to publish %s: %w", ev, err)
	}
	if !first {
		return nil, nil
	}

	err = p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.MaxLen,
		Approx: true,
		Values: map[string]any{
			"asset": ev.AssetID,
			"type":  string(ev.Type),
			"seq":   ev.Seq,
			"event": payload,
		},
	}).Err()
	if err != nil {
		// let a retry publish it
		_ = p.rdb.Del(context.WithoutCancel(ctx), key).Err()
		return nil, fmt.Errorf("failed to publish %s: %w", ev, err)
	}
	return nil, nil
}

func (p *StreamPublisher) publishedKey(id string) string {
	return p.stream + ":published:" + id
}

// Message is one stream entry
type Message struct {
	ID    string
	Event domain.ChangeEvent
}

// StreamReader reads change events back from a stream
type StreamReader struct {
	rdb    *redis.Client
	stream string
	Batch  int64
}

func NewStreamReader(rdb *redis.Client, stream string) *StreamReader {
	return &StreamReader{rdb: rdb, stream: stream, Batch: 100}
}

// Read returns up to Batch messages after the entry id after ("0" reads from
// the start). It does not block; an empty slice means the stream is drained.
func (r *StreamReader) Read(ctx context.Context, after string) ([]Message, error) {
	if after == "" {
		after = "0"
	}
	streams, err := r.rdb.XRead(ctx, &redis.XReadArgs{
		Streams: []string{r.stream, after},
		Count:   r.Batch,
		Block:   -1,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %s: %w", r.stream, err)
	}

	var out []Message
	for _, s := range streams {
		for _, m := range s.Messages {
			raw, ok := m.Values["event"].(string)
			if !ok {
				return out, fmt.Errorf("stream entry %s has no event payload", m.ID)
			}
			var ev domain.ChangeEvent
			if err := json.Unmarshal([]byte(raw), &ev); err != nil {
				return out, fmt.Errorf("failed to decode stream entry %s: %w", m.ID, err)
			}
			out = append(out, Message{ID: m.ID, Event: ev})
		}
	}
	return out, nil
}

// Replay hands every event after the given entry id to apply, in stream
// order. It returns the id of the last entry applied and how many were
// applied; on error the returned id is where a later replay should resume.
func (r *StreamReader) Replay(ctx context.Context, after string, apply func(context.Context, domain.ChangeEvent) error) (string, int, error) {
	last := after
	n := 0
	for {
		msgs, err := r.Read(ctx, last)
		if err != nil {
			return last, n, err
		}
		if len(msgs) == 0 {
			return last, n, nil
		}
		for _, m := range msgs {
			if err := apply(ctx, m.Event); err != nil {
				return last, n, fmt.Errorf("failed to apply stream entry %s: %w", m.ID, err)
			}
			last = m.ID
			n++
		}
	}
}
