package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/zphrs/ucsc-menu/internal/menu"

	"github.com/klauspost/compress/gzip"
)

// Snapshot is one complete scrape, it is never mutated after it has been
// published by a Cache.
type Snapshot struct {
	CachedAt  time.Time
	Locations menu.Locations
}

// Age returns how long ago the snapshot was taken relative to now.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.CachedAt)
}

// Record is the persisted form of a Snapshot, Data is the gzip of the json
// encoded locations.
type Record struct {
	CachedAt time.Time `json:"cached_at"`
	Data     []byte    `json:"data"`
}

// Encode compresses a snapshot into its record.
func Encode(snapshot *Snapshot) (Record, error) {
	raw, err := json.Marshal(snapshot.Locations)
	if err != nil {
		return Record{}, fmt.Errorf("marshal locations: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(raw) / 4)
	writer := gzip.NewWriter(&buf)
	_, err = writer.Write(raw)
	if err != nil {
		return Record{}, fmt.Errorf("compress locations: %w", err)
	}
	err = writer.Close()
	if err != nil {
		return Record{}, fmt.Errorf("compress locations: %w", err)
	}

	return Record{
		CachedAt: snapshot.CachedAt.UTC(),
		Data:     buf.Bytes(),
	}, nil
}

// Decode is the inverse of Encode, a record without data decodes to a
// snapshot with no locations.
func (r Record) Decode() (*Snapshot, error) {
	snapshot := &Snapshot{
		CachedAt:  r.CachedAt.UTC(),
		Locations: menu.Locations{},
	}
	if len(r.Data) == 0 {
		return snapshot, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(r.Data))
	if err != nil {
		return nil, fmt.Errorf("decompress locations: %w", err)
	}
	defer reader.Close()
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decompress locations: %w", err)
	}

	err = json.Unmarshal(raw, &snapshot.Locations)
	if err != nil {
		return nil, fmt.Errorf("unmarshal locations: %w", err)
	}
	return snapshot, nil
}
