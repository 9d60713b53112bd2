package models

import (
	"encoding/json"
	"fmt"
)

// Payload is a single finding stored in the cache.
type Payload interface {
	// Category reports which cache partition the payload belongs to.
	Category() Category
	// SemanticKey is the text an entry id is derived from.
	SemanticKey() string
	// Anchor is the code snippet used for substring reuse.
	Anchor() string
	// Label is the severity or status tag, empty when there is none.
	Label() string
	// Clone returns a value copy sharing no memory with the receiver.
	Clone() Payload
	// Cached returns a copy marked as served from the cache.
	Cached() Payload
}

// Defect is a bug found in the analysed code.
type Defect struct {
	Description string `json:"description" validate:"required"`
	CodeSnippet string `json:"code_snippet" validate:"required"`
	Severity    string `json:"severity" validate:"required"`
	Fix         string `json:"fix,omitempty"`
	FromCache   bool   `json:"from_cache,omitempty"`
}

func (d Defect) Category() Category  { return CategoryDefect }
func (d Defect) SemanticKey() string { return d.Description + d.CodeSnippet }
func (d Defect) Anchor() string      { return d.CodeSnippet }
func (d Defect) Label() string       { return d.Severity }
func (d Defect) Clone() Payload      { return d }
func (d Defect) Cached() Payload     { d.FromCache = true; return d }

// Vulnerability is a security weakness found in the analysed code.
type Vulnerability struct {
	Description     string   `json:"description" validate:"required"`
	CodeSnippet     string   `json:"code_snippet" validate:"required"`
	Severity        string   `json:"severity" validate:"required"`
	Mitigation      string   `json:"mitigation,omitempty"`
	AttackVectors   []string `json:"attack_vectors,omitempty"`
	PotentialImpact string   `json:"potential_impact,omitempty"`
	FromCache       bool     `json:"from_cache,omitempty"`
}

func (v Vulnerability) Category() Category  { return CategoryVulnerability }
func (v Vulnerability) SemanticKey() string { return v.Description + v.CodeSnippet }
func (v Vulnerability) Anchor() string      { return v.CodeSnippet }
func (v Vulnerability) Label() string       { return v.Severity }

func (v Vulnerability) Clone() Payload {
	if v.AttackVectors != nil {
		v.AttackVectors = append([]string(nil), v.AttackVectors...)
	}
	return v
}

func (v Vulnerability) Cached() Payload {
	c := v.Clone().(Vulnerability)
	c.FromCache = true
	return c
}

// Recommendation is a suggested improvement to the analysed code.
type Recommendation struct {
	Description  string `json:"description" validate:"required"`
	CodeSnippet  string `json:"code_snippet" validate:"required"`
	ImprovedCode string `json:"improved_code,omitempty"`
	Reason       string `json:"reason,omitempty"`
	FromCache    bool   `json:"from_cache,omitempty"`
}

func (r Recommendation) Category() Category  { return CategoryRecommendation }
func (r Recommendation) SemanticKey() string { return r.Description + r.CodeSnippet }
func (r Recommendation) Anchor() string      { return r.CodeSnippet }
func (r Recommendation) Label() string       { return "" }
func (r Recommendation) Clone() Payload      { return r }
func (r Recommendation) Cached() Payload     { r.FromCache = true; return r }

// RequirementJudgment records whether the code satisfies a requirement.
// CodeSnippet is optional; without it the judgment is only reusable by
// content hash.
type RequirementJudgment struct {
	Requirement string `json:"requirement" validate:"required"`
	Satisfied   bool   `json:"satisfied"`
	CodeSnippet string `json:"code_snippet,omitempty"`
	Description string `json:"description,omitempty"`
	FromCache   bool   `json:"from_cache,omitempty"`
}

func (r RequirementJudgment) Category() Category  { return CategoryRequirement }
func (r RequirementJudgment) SemanticKey() string { return r.Requirement + r.CodeSnippet }
func (r RequirementJudgment) Anchor() string      { return r.CodeSnippet }
func (r RequirementJudgment) Clone() Payload      { return r }
func (r RequirementJudgment) Cached() Payload     { r.FromCache = true; return r }

func (r RequirementJudgment) Label() string {
	if r.Satisfied {
		return "satisfied"
	}
	return "unsatisfied"
}

// DecodePayload decodes raw JSON into the payload variant of category c.
func DecodePayload(c Category, raw json.RawMessage) (Payload, error) {
	switch c {
	case CategoryDefect:
		return decode[Defect](raw)
	case CategoryVulnerability:
		return decode[Vulnerability](raw)
	case CategoryRecommendation:
		return decode[Recommendation](raw)
	case CategoryRequirement:
		return decode[RequirementJudgment](raw)
	}
	return nil, fmt.Errorf("unknown category %q", c)
}

func decode[T Payload](raw json.RawMessage) (Payload, error) {
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}
