// Package ingest drains a bounded batch of JSON messages from a topic and
// writes them as CSV and Parquet tables.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
)

// ErrNotObject is returned by ParseRecord for valid JSON that is not an object.
var ErrNotObject = errors.New("message is not a JSON object")

// Record is one decoded message. Keys keeps the object's key order.
type Record struct {
	Keys   []string
	Values map[string]string
}

// Batch is the set of records collected in one run.
type Batch struct {
	Records []Record
	// Skipped counts empty, malformed and non-object messages.
	Skipped int
}

// Columns returns the union of record keys in first-seen order.
func (b *Batch) Columns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range b.Records {
		for _, k := range r.Keys {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return cols
}

// Collect subscribes to topic and acknowledges every message it receives
// until limit records were parsed. Empty and unparseable messages are logged,
// acknowledged and skipped. When ctx ends first, the partial batch is
// returned together with ctx's error.
func Collect(ctx context.Context, sub message.Subscriber, topic string, limit int) (*Batch, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgs, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}

	batch := &Batch{}
	for len(batch.Records) < limit {
		select {
		case <-ctx.Done():
			return batch, fmt.Errorf("collecting from %s: %w", topic, ctx.Err())
		case msg, ok := <-msgs:
			if !ok {
				if err := ctx.Err(); err != nil {
					return batch, fmt.Errorf("collecting from %s: %w", topic, err)
				}
				return batch, fmt.Errorf("collecting from %s: subscription closed", topic)
			}
			rec, err := ParseRecord(msg.Payload)
			msg.Ack()
			if err != nil {
				batch.Skipped++
				slog.Warn("skipping message", "topic", topic, "uuid", msg.UUID, "error", err)
				continue
			}
			batch.Records = append(batch.Records, rec)
			slog.Debug("received message", "topic", topic, "count", len(batch.Records))
		}
	}
	return batch, nil
}

// ParseRecord decodes a JSON object, keeping key order. Strings are stored
// unquoted, numbers in their literal form, nested values as compact JSON.
// Null values are left out but their keys still count. An object without keys
// is rejected as empty.
func ParseRecord(payload []byte) (Record, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return Record{}, errors.New("empty message")
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Record{}, fmt.Errorf("decoding message: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Record{}, ErrNotObject
	}

	rec := Record{Values: make(map[string]string)}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Record{}, fmt.Errorf("decoding key: %w", err)
		}
		key := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Record{}, fmt.Errorf("decoding value for %q: %w", key, err)
		}
		val, null, err := stringify(raw)
		if err != nil {
			return Record{}, fmt.Errorf("decoding value for %q: %w", key, err)
		}

		if !seen[key] {
			seen[key] = true
			rec.Keys = append(rec.Keys, key)
		}
		if null {
			delete(rec.Values, key)
			continue
		}
		rec.Values[key] = val
	}
	if _, err := dec.Token(); err != nil {
		return Record{}, fmt.Errorf("decoding message: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Record{}, errors.New("decoding message: trailing data")
	}
	if len(rec.Keys) == 0 {
		return Record{}, errors.New("empty message")
	}
	return rec, nil
}

func stringify(raw json.RawMessage) (string, bool, error) {
	switch raw[0] {
	case 'n':
		return "", true, nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false, err
		}
		return s, false, nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", false, err
		}
		return buf.String(), false, nil
	default:
		return string(raw), false, nil
	}
}
