// Package merge reconciles the partial results produced when an oversized
// input is analysed in chunks.
//
// Each field is reduced with one of a closed set of strategies chosen by
// the field's declared kind: numbers are averaged, text is joined, lists
// are concatenated, records are merged recursively and everything else
// keeps the first value. Narrative fields take the last value with a note
// appended, since joining several independent summaries reads badly.
package merge

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pario-ai/findcache/pkg/models"
)

const (
	// DefaultNarrativeField is the narrative field merged by default.
	DefaultNarrativeField = "overall_assessment"

	// DefaultNarrativeNote is appended to the merged narrative.
	DefaultNarrativeNote = "\n\nNote: this assessment is based on an analysis of multiple parts."

	// DefaultEmptyNarrative replaces a narrative no partial filled in.
	DefaultEmptyNarrative = "Unable to produce an assessment."

	textSeparator = "\n\n"
)

// Kind selects the merge strategy for a field.
type Kind int

const (
	First Kind = iota
	Number
	Text
	List
	Record
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Text:
		return "text"
	case List:
		return "list"
	case Record:
		return "record"
	}
	return "first"
}

// Field declares how one field is merged.
type Field struct {
	Kind Kind
	// Integer rounds the mean of a Number field.
	Integer bool
	// Fields is the schema of a Record field. Sub-fields it does not name
	// are inferred.
	Fields Schema
}

// Schema maps field names to their merge declaration.
type Schema map[string]Field

// ShapeError reports a value that does not fit its field's strategy.
type ShapeError struct {
	Field string
	Kind  Kind
	Value any
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("merge field %s: %s strategy cannot take %T", e.Field, e.Kind, e.Value)
}

// Merger merges partial results.
type Merger struct {
	// Schema declares field kinds. Fields it does not name are inferred
	// from the first partial that defines them.
	Schema Schema

	// NarrativeFields are top-level fields merged as last value plus note.
	NarrativeFields []string

	// NarrativeNote is appended to a merged narrative.
	NarrativeNote string

	// EmptyNarrative is used when no partial has a non-empty narrative.
	EmptyNarrative string

	Logger *zap.Logger
}

// Option configures a Merger.
type Option func(*Merger)

// WithSchema sets the field declarations.
func WithSchema(s Schema) Option {
	return func(m *Merger) { m.Schema = s }
}

// WithNarrativeFields replaces the narrative field names.
func WithNarrativeFields(names ...string) Option {
	return func(m *Merger) { m.NarrativeFields = names }
}

// WithNarrativeNote replaces the note appended to narratives.
func WithNarrativeNote(note string) Option {
	return func(m *Merger) { m.NarrativeNote = note }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Merger) {
		if l != nil {
			m.Logger = l
		}
	}
}

// New returns a Merger with the default narrative handling.
func New(opts ...Option) *Merger {
	m := &Merger{
		NarrativeFields: []string{DefaultNarrativeField},
		NarrativeNote:   DefaultNarrativeNote,
		EmptyNarrative:  DefaultEmptyNarrative,
		Logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge reduces partials into one result. An empty input gives an empty
// result. Null values are ignored; a field that is null everywhere stays
// null. Fields that cannot be merged keep the first non-null value and
// are reported as *ShapeError values joined into the returned error; the
// result is complete either way. A nil result with a non-nil error means
// the merge failed outright.
func (m *Merger) Merge(partials []models.PartialResult) (out models.PartialResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("merge %d partials: %v", len(partials), r)
		}
	}()

	if len(partials) == 0 {
		return models.PartialResult{}, nil
	}
	recs := make([]map[string]any, 0, len(partials))
	for _, p := range partials {
		if p != nil {
			recs = append(recs, p)
		}
	}

	merged, errs := m.mergeRecords(m.Schema, recs, "", true)
	return models.PartialResult(merged), errors.Join(errs...)
}

// MergeOrFirst merges partials, logging any problem. If the merge fails
// outright it returns the first partial unchanged.
func (m *Merger) MergeOrFirst(partials []models.PartialResult) models.PartialResult {
	out, err := m.Merge(partials)
	if err == nil {
		return out
	}
	log := m.logger()
	if out != nil {
		log.Warn("merged partial results with fallbacks", zap.Error(err))
		return out
	}
	log.Error("merge failed, using first partial", zap.Int("partials", len(partials)), zap.Error(err))
	if len(partials) == 0 || partials[0] == nil {
		return models.PartialResult{}
	}
	return partials[0]
}

func (m *Merger) logger() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}

func (m *Merger) isNarrative(name string) bool {
	for _, n := range m.NarrativeFields {
		if n == name {
			return true
		}
	}
	return false
}

func (m *Merger) mergeRecords(schema Schema, recs []map[string]any, prefix string, top bool) (map[string]any, []error) {
	out := make(map[string]any)
	var errs []error

	for _, name := range fieldNames(recs) {
		var vals []any
		for _, r := range recs {
			if v, ok := r[name]; ok {
				vals = append(vals, v)
			}
		}
		path := prefix + name

		// Nulls do not count as defining the field unless every partial
		// has one.
		defined := nonNil(vals)
		if len(defined) == 0 {
			out[name] = vals[0]
			continue
		}

		if top && m.isNarrative(name) {
			v, err := m.narrative(path, defined)
			if err != nil {
				errs = append(errs, err)
				v = defined[0]
			}
			out[name] = v
			continue
		}
		if len(defined) == 1 {
			out[name] = defined[0]
			continue
		}

		f, ok := schema[name]
		if !ok {
			f = Field{Kind: infer(defined[0])}
		}
		v, sub, err := m.mergeField(f, defined, path)
		errs = append(errs, sub...)
		if err != nil {
			errs = append(errs, err)
			v = defined[0]
		}
		out[name] = v
	}
	return out, errs
}

func nonNil(vals []any) []any {
	out := make([]any, 0, len(vals))
	for _, v := range vals {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

func fieldNames(recs []map[string]any) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range recs {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}

// mergeField returns the merged value, errors from nested fields that
// already fell back, and an error if the field itself must fall back.
func (m *Merger) mergeField(f Field, vals []any, path string) (any, []error, error) {
	switch f.Kind {
	case Number:
		sum := 0.0
		for _, v := range vals {
			n, ok := toFloat(v)
			if !ok {
				return nil, nil, &ShapeError{Field: path, Kind: Number, Value: v}
			}
			sum += n
		}
		mean := sum / float64(len(vals))
		if f.Integer {
			mean = math.Round(mean)
		}
		return mean, nil, nil

	case Text:
		parts := make([]string, 0, len(vals))
		for _, v := range vals {
			s, ok := v.(string)
			if !ok {
				return nil, nil, &ShapeError{Field: path, Kind: Text, Value: v}
			}
			if s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, textSeparator), nil, nil

	case List:
		out := []any{}
		for _, v := range vals {
			if v == nil {
				continue
			}
			rv := reflect.ValueOf(v)
			if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
				return nil, nil, &ShapeError{Field: path, Kind: List, Value: v}
			}
			for i := 0; i < rv.Len(); i++ {
				out = append(out, rv.Index(i).Interface())
			}
		}
		return out, nil, nil

	case Record:
		recs := make([]map[string]any, 0, len(vals))
		for _, v := range vals {
			if v == nil {
				continue
			}
			r, ok := v.(map[string]any)
			if !ok {
				return nil, nil, &ShapeError{Field: path, Kind: Record, Value: v}
			}
			recs = append(recs, r)
		}
		merged, errs := m.mergeRecords(f.Fields, recs, path+".", false)
		return merged, errs, nil
	}
	return vals[0], nil, nil
}

func (m *Merger) narrative(path string, vals []any) (any, error) {
	last := ""
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			return nil, &ShapeError{Field: path, Kind: Text, Value: v}
		}
		if s != "" {
			last = s
		}
	}
	if last == "" {
		return m.EmptyNarrative, nil
	}
	return last + m.NarrativeNote, nil
}

func infer(v any) Kind {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return Number
	case string:
		return Text
	case map[string]any:
		return Record
	case nil, bool:
		return First
	}
	if k := reflect.ValueOf(v).Kind(); k == reflect.Slice || k == reflect.Array {
		return List
	}
	return First
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
