package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pario-ai/findcache/pkg/models"
)

func TestSchemaOfRequirementsAssessment(t *testing.T) {
	s := SchemaOf[models.RequirementsAssessment]()

	assert.Equal(t, Number, s["total_score"].Kind)
	assert.Equal(t, List, s["problematic_requirements"].Kind)
	assert.Equal(t, List, s["missing_aspects"].Kind)
	assert.Equal(t, Text, s["overall_assessment"].Kind)
}

type inner struct {
	Count int `json:"count"`
}

type Embedded struct {
	Shared string `json:"shared"`
}

type sample struct {
	Embedded
	Name    string    `json:"name,omitempty"`
	Ratio   float64   `json:"ratio"`
	Inner   inner     `json:"inner"`
	When    time.Time `json:"when"`
	Ignored string    `json:"-"`
	Ptr     *int      `json:"ptr"`
	Plain   bool
	private int
}

func TestSchemaOf(t *testing.T) {
	s := SchemaOf[sample]()

	assert.Equal(t, Text, s["shared"].Kind, "embedded fields are promoted")
	assert.Equal(t, Text, s["name"].Kind)
	assert.Equal(t, Field{Kind: Number}, s["ratio"])
	assert.Equal(t, Record, s["inner"].Kind)
	assert.Equal(t, Field{Kind: Number, Integer: true}, s["inner"].Fields["count"])
	assert.Equal(t, First, s["when"].Kind, "types with their own encoding keep the first value")
	assert.Equal(t, Field{Kind: Number, Integer: true}, s["ptr"])
	assert.Equal(t, First, s["Plain"].Kind)
	assert.NotContains(t, s, "Ignored")
	assert.NotContains(t, s, "private")

	assert.Empty(t, SchemaOf[int]())
}

func TestMergeIntoRequirementsAssessment(t *testing.T) {
	parts := []models.RequirementsAssessment{
		{
			TotalScore:        80,
			ClarityScore:      7,
			MissingAspects:    []string{"error handling"},
			OverallAssessment: "part one looks solid",
			ProblematicRequirements: []models.ProblematicRequirement{
				{Requirement: "R1", Description: "ambiguous"},
			},
		},
		{
			TotalScore:             60,
			ClarityScore:           9,
			MissingAspects:         []string{"logging", "metrics"},
			ImprovementSuggestions: []string{"define SLAs"},
			OverallAssessment:      "part two needs work",
		},
	}

	got, err := MergeInto(New(), parts)
	require.NoError(t, err)

	assert.Equal(t, 70.0, got.TotalScore)
	assert.Equal(t, 8.0, got.ClarityScore)
	assert.Equal(t, []string{"error handling", "logging", "metrics"}, got.MissingAspects)
	assert.Equal(t, []string{"define SLAs"}, got.ImprovementSuggestions)
	require.Len(t, got.ProblematicRequirements, 1)
	assert.Equal(t, "R1", got.ProblematicRequirements[0].Requirement)
	assert.Equal(t, "part two needs work"+DefaultNarrativeNote, got.OverallAssessment)
}

func TestMergeIntoIntegerMean(t *testing.T) {
	type counts struct {
		N int `json:"n"`
	}
	got, err := MergeInto(nil, []counts{{N: 3}, {N: 4}})
	require.NoError(t, err)
	assert.Equal(t, 4, got.N)
}
