package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Entry is one cached finding plus its usage metadata.
type Entry struct {
	ID            string
	Category      Category
	ContentHash   string
	AnchorPattern string
	Payload       Payload
	CreatedAt     time.Time
	LastUsedAt    time.Time
	UseCount      int64
	Tags          []string
}

type entryJSON struct {
	ID            string          `json:"id"`
	Category      Category        `json:"category"`
	ContentHash   string          `json:"content_hash"`
	AnchorPattern string          `json:"anchor_pattern,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
	LastUsedAt    time.Time       `json:"last_used_at"`
	UseCount      int64           `json:"use_count"`
	Tags          []string        `json:"tags,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, fmt.Errorf("entry %s: nil payload", e.ID)
	}
	raw, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("entry %s: encode payload: %w", e.ID, err)
	}
	return json.Marshal(entryJSON{
		ID:            e.ID,
		Category:      e.Category,
		ContentHash:   e.ContentHash,
		AnchorPattern: e.AnchorPattern,
		Payload:       raw,
		CreatedAt:     e.CreatedAt,
		LastUsedAt:    e.LastUsedAt,
		UseCount:      e.UseCount,
		Tags:          e.Tags,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The payload variant is chosen
// by the entry's category.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var aux entryJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.ID == "" {
		return fmt.Errorf("entry without id")
	}
	p, err := DecodePayload(aux.Category, aux.Payload)
	if err != nil {
		return fmt.Errorf("entry %s: %w", aux.ID, err)
	}
	*e = Entry{
		ID:            aux.ID,
		Category:      aux.Category,
		ContentHash:   aux.ContentHash,
		AnchorPattern: aux.AnchorPattern,
		Payload:       p,
		CreatedAt:     aux.CreatedAt,
		LastUsedAt:    aux.LastUsedAt,
		UseCount:      aux.UseCount,
		Tags:          aux.Tags,
	}
	return nil
}

// TagSet builds the sorted, de-duplicated tag list for a payload.
func TagSet(p Payload) []string {
	seen := map[string]bool{string(p.Category()): true}
	if l := p.Label(); l != "" {
		seen[l] = true
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// CacheStats reports cache usage since the last reset.
type CacheStats struct {
	Hits      int64                 `json:"hits" yaml:"hits"`
	Misses    int64                 `json:"misses" yaml:"misses"`
	Saves     int64                 `json:"saves" yaml:"saves"`
	HitRate   float64               `json:"hit_rate" yaml:"hit_rate"`
	CachedIDs map[Category][]string `json:"cached_ids,omitempty" yaml:"cached_ids,omitempty"`
	Entries   map[Category]int      `json:"entries" yaml:"entries"`
	Summary   string                `json:"summary" yaml:"summary"`
}

// Requests is the number of lookups counted so far.
func (s CacheStats) Requests() int64 {
	return s.Hits + s.Misses
}
