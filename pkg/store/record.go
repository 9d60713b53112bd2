package store

import (
	"encoding/json"
	"fmt"

	"github.com/pario-ai/findcache/pkg/models"
)

// SchemaVersion is the record format written by this build.
const SchemaVersion = 1

type record struct {
	SchemaVersion int             `json:"schema_version"`
	Category      models.Category `json:"category"`
	Entry         json.RawMessage `json:"entry"`
}

// EncodeRecord serializes an entry into a versioned record.
func EncodeRecord(e models.Entry) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(record{
		SchemaVersion: SchemaVersion,
		Category:      e.Category,
		Entry:         raw,
	})
}

// DecodeRecord parses a record and checks that it belongs to category c.
func DecodeRecord(c models.Category, data []byte) (models.Entry, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.Entry{}, fmt.Errorf("decode record: %w", err)
	}
	switch {
	case rec.SchemaVersion == 0:
		return models.Entry{}, fmt.Errorf("record has no schema version")
	case rec.SchemaVersion > SchemaVersion:
		return models.Entry{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, rec.SchemaVersion)
	}
	if rec.Category != c {
		return models.Entry{}, fmt.Errorf("record category %q, want %q", rec.Category, c)
	}
	var e models.Entry
	if err := json.Unmarshal(rec.Entry, &e); err != nil {
		return models.Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	if e.Category != c {
		return models.Entry{}, fmt.Errorf("entry category %q, want %q", e.Category, c)
	}
	return e, nil
}
