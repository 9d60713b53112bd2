package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	if _, err := ParseCategory("bugs"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestIDPrefixes(t *testing.T) {
	want := map[Category]string{
		CategoryDefect:         "bug",
		CategoryVulnerability:  "vuln",
		CategoryRecommendation: "rec",
		CategoryRequirement:    "req",
	}
	for c, p := range want {
		if got := c.IDPrefix(); got != p {
			t.Errorf("%s.IDPrefix() = %q, want %q", c, got, p)
		}
	}
}

func TestEntryJSONRestoresVariant(t *testing.T) {
	in := Entry{
		ID:          "req_1",
		Category:    CategoryRequirement,
		ContentHash: "abc",
		Payload:     RequirementJudgment{Requirement: "must log in", Satisfied: true},
		CreatedAt:   time.Unix(1700000000, 0).UTC(),
		LastUsedAt:  time.Unix(1700000000, 0).UTC(),
		UseCount:    1,
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out Entry
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	rj, ok := out.Payload.(RequirementJudgment)
	if !ok {
		t.Fatalf("payload type %T", out.Payload)
	}
	if !rj.Satisfied || rj.Requirement != "must log in" {
		t.Errorf("payload = %+v", rj)
	}
}

func TestEntryJSONNilPayload(t *testing.T) {
	if _, err := json.Marshal(Entry{ID: "x", Category: CategoryDefect}); err == nil {
		t.Error("expected error for nil payload")
	}
}

func TestTagSet(t *testing.T) {
	got := TagSet(Defect{Severity: "high"})
	if len(got) != 2 || got[0] != "defect" || got[1] != "high" {
		t.Errorf("TagSet = %v", got)
	}
	if got := TagSet(Recommendation{}); len(got) != 1 || got[0] != "recommendation" {
		t.Errorf("TagSet(recommendation) = %v", got)
	}
}

func TestCachedMarksCopy(t *testing.T) {
	orig := Vulnerability{AttackVectors: []string{"a"}}
	c := orig.Cached().(Vulnerability)
	c.AttackVectors[0] = "b"
	if !c.FromCache || orig.FromCache {
		t.Error("Cached must mark only the copy")
	}
	if orig.AttackVectors[0] != "a" {
		t.Error("Cached must not share the attack vector slice")
	}
}
