package merge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pario-ai/findcache/pkg/models"
)

// MergeInto merges typed partials through their JSON form. When m has no
// schema, SchemaOf[T] is used. The merged value is returned even when
// some fields fell back; the error then reports which.
func MergeInto[T any](m *Merger, partials []T) (T, error) {
	var zero T
	if m == nil {
		m = New()
	}
	mm := *m
	if mm.Schema == nil {
		mm.Schema = SchemaOf[T]()
	}

	prs := make([]models.PartialResult, 0, len(partials))
	for i, p := range partials {
		pr, err := toPartial(p)
		if err != nil {
			return zero, fmt.Errorf("encode partial %d: %w", i, err)
		}
		prs = append(prs, pr)
	}

	merged, mergeErr := mm.Merge(prs)
	if merged == nil {
		return zero, mergeErr
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return zero, errors.Join(mergeErr, fmt.Errorf("encode merged result: %w", err))
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, errors.Join(mergeErr, fmt.Errorf("decode merged result: %w", err))
	}
	return out, mergeErr
}

func toPartial(v any) (models.PartialResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var pr models.PartialResult
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil, err
	}
	return pr, nil
}
