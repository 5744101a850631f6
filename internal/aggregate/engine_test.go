package aggregate_test

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshitk-cp/abstractor/internal/aggregate"
	"github.com/Harshitk-cp/abstractor/internal/domain"
)

func cand(field string, v domain.FieldValue, st domain.Status, nt domain.NoteType, section string, conf float64) domain.Candidate {
	return domain.Candidate{
		Field:      field,
		Value:      v,
		Status:     st,
		Evidence:   field + " evidence from " + section,
		Section:    section,
		NoteType:   nt,
		NoteID:     string(nt) + "-note",
		NoteDate:   "2022-01-01",
		Confidence: conf,
	}
}

var fvComparer = cmp.Comparer(func(a, b domain.FieldValue) bool { return a.Equal(b) })

// =============================================================================
// Rank / FilterPlanned
// =============================================================================

func TestRank(t *testing.T) {
	order := []string{"a", "b", "c"}
	assert.Equal(t, 0, aggregate.Rank("a", order))
	assert.Equal(t, 2, aggregate.Rank("c", order))
	assert.Equal(t, aggregate.Unranked, aggregate.Rank("z", order))
	assert.Equal(t, aggregate.Unranked, aggregate.Rank("a", nil))
}

func TestFilterPlanned(t *testing.T) {
	planned := cand(domain.FieldReconType, domain.Text("diep flap"), domain.StatusPlanned, domain.NoteTypeClinic, "HPI", 0.6)
	history := cand(domain.FieldReconType, domain.Text("tram flap"), domain.StatusHistory, domain.NoteTypeClinic, "HPI", 0.6)

	t.Run("drops planned when others exist", func(t *testing.T) {
		got := aggregate.FilterPlanned([]domain.Candidate{planned, history})
		require.Len(t, got, 1)
		assert.Equal(t, domain.StatusHistory, got[0].Status)
	})

	t.Run("falls back to input when all planned", func(t *testing.T) {
		in := []domain.Candidate{planned, planned}
		got := aggregate.FilterPlanned(in)
		assert.Len(t, got, 2)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, aggregate.FilterPlanned(nil))
	})
}

// =============================================================================
// AggregatePatient
// =============================================================================

func TestAggregate_NoteTypeBeatsConfidence(t *testing.T) {
	e := aggregate.NewEngine(aggregate.DefaultConfig())
	cands := []domain.Candidate{
		cand(domain.FieldBMI, domain.Number(24.0), domain.StatusMeasured, domain.NoteTypeClinic, "PHYSICAL EXAM", 0.80),
		cand(domain.FieldBMI, domain.Number(24.1), domain.StatusMeasured, domain.NoteTypeOperative, "PHYSICAL EXAM", 0.95),
	}

	got := e.AggregatePatient(cands)
	bmi, ok := got[domain.FieldBMI]
	require.True(t, ok)
	n, _ := bmi.Value.AsNumber()
	assert.Equal(t, 24.1, n)
	assert.Equal(t, domain.NoteTypeOperative, bmi.NoteType)
	assert.Equal(t, "status>measured; note_type>operative; section>PHYSICAL EXAM; conf>0.95", bmi.Rule)
}

func TestAggregate_StatusBeatsNoteType(t *testing.T) {
	e := aggregate.NewEngine(aggregate.DefaultConfig())
	got := e.AggregatePatient([]domain.Candidate{
		cand(domain.FieldDiabetes, domain.Bool(false), domain.StatusDenied, domain.NoteTypeOperative, "PROCEDURE", 0.9),
		cand(domain.FieldDiabetes, domain.Bool(true), domain.StatusHistory, domain.NoteTypeClinic, "HPI", 0.5),
	})
	dm := got[domain.FieldDiabetes]
	b, _ := dm.Value.AsBool()
	assert.True(t, b)
	assert.Equal(t, domain.StatusHistory, dm.Status)
}

func TestAggregate_SectionBreaksNoteTypeTie(t *testing.T) {
	e := aggregate.NewEngine(aggregate.DefaultConfig())
	got := e.AggregatePatient([]domain.Candidate{
		cand(domain.FieldMastectomyLaterality, domain.Text("left"), domain.StatusPerformed, domain.NoteTypeOperative, "HPI", 0.9),
		cand(domain.FieldMastectomyLaterality, domain.Text("right"), domain.StatusPerformed, domain.NoteTypeOperative, "PROCEDURE", 0.75),
	})
	v, _ := got[domain.FieldMastectomyLaterality].Value.AsText()
	assert.Equal(t, "right", v)
}

func TestAggregate_UnrankedValuesSortLast(t *testing.T) {
	e := aggregate.NewEngine(aggregate.DefaultConfig())
	got := e.AggregatePatient([]domain.Candidate{
		cand(domain.FieldRadiation, domain.Bool(true), domain.StatusHistory, "telephone", "ODDITIES", 1.0),
		cand(domain.FieldRadiation, domain.Bool(false), domain.StatusHistory, domain.NoteTypeUnknown, "HPI", 0.1),
	})
	assert.Equal(t, domain.NoteTypeUnknown, got[domain.FieldRadiation].NoteType)
}

func TestAggregate_SinglePlannedSurvives(t *testing.T) {
	e := aggregate.NewEngine(aggregate.DefaultConfig())
	got := e.AggregatePatient([]domain.Candidate{
		cand(domain.FieldReconType, domain.Text("diep flap"), domain.StatusPlanned, domain.NoteTypePlasticsConsult, "ASSESSMENT/PLAN", 0.6),
	})
	rt, ok := got[domain.FieldReconType]
	require.True(t, ok)
	assert.Equal(t, domain.StatusPlanned, rt.Status)
}

func TestAggregate_PerformedOnlyPrefersNonPlanned(t *testing.T) {
	cfg := aggregate.DefaultConfig()
	// Rank planned above history to show the filter, not the ranking, decides.
	cfg.Precedence.Status = []domain.Status{domain.StatusPlanned, domain.StatusPerformed, domain.StatusHistory}
	e := aggregate.NewEngine(cfg)

	got := e.AggregatePatient([]domain.Candidate{
		cand(domain.FieldReconType, domain.Text("diep flap"), domain.StatusPlanned, domain.NoteTypeOperative, "PROCEDURE", 0.9),
		cand(domain.FieldReconType, domain.Text("tram flap"), domain.StatusHistory, domain.NoteTypeClinic, "HPI", 0.6),
		cand(domain.FieldChemo, domain.Bool(true), domain.StatusPlanned, domain.NoteTypeClinic, "HPI", 0.7),
		cand(domain.FieldChemo, domain.Bool(true), domain.StatusHistory, domain.NoteTypeClinic, "HPI", 0.7),
	})

	assert.Equal(t, domain.StatusHistory, got[domain.FieldReconType].Status)
	assert.Equal(t, domain.StatusPlanned, got[domain.FieldChemo].Status, "chemo is not performed-only")
}

func TestAggregate_ReconPerformedDropsPlanned(t *testing.T) {
	e := aggregate.NewEngine(aggregate.DefaultConfig())
	got := e.AggregatePatient([]domain.Candidate{
		cand(domain.FieldReconPlanned, domain.Bool(true), domain.StatusPlanned, domain.NoteTypePlasticsConsult, "ASSESSMENT/PLAN", 0.55),
		cand(domain.FieldReconPerformed, domain.Bool(true), domain.StatusPerformed, domain.NoteTypeOperative, "PROCEDURE", 0.8),
	})
	_, performed := got[domain.FieldReconPerformed]
	_, planned := got[domain.FieldReconPlanned]
	assert.True(t, performed)
	assert.False(t, planned)

	onlyPlanned := e.AggregatePatient([]domain.Candidate{
		cand(domain.FieldReconPlanned, domain.Bool(true), domain.StatusPlanned, domain.NoteTypePlasticsConsult, "ASSESSMENT/PLAN", 0.55),
	})
	assert.Contains(t, onlyPlanned, domain.FieldReconPlanned)
}

func TestAggregate_UntrackedAndEmpty(t *testing.T) {
	e := aggregate.NewEngine(aggregate.DefaultConfig())
	assert.Empty(t, e.AggregatePatient(nil))
	assert.Empty(t, e.AggregatePatient([]domain.Candidate{
		cand("ShoeSize", domain.Number(9), domain.StatusMeasured, domain.NoteTypeClinic, "HPI", 1),
	}))
}

func TestAggregate_DeterministicUnderPermutation(t *testing.T) {
	e := aggregate.NewEngine(aggregate.DefaultConfig())
	base := []domain.Candidate{
		cand(domain.FieldSmokingStatus, domain.Text("never"), domain.StatusHistory, domain.NoteTypeClinic, "SOCIAL HISTORY", 0.8),
		cand(domain.FieldSmokingStatus, domain.Text("former"), domain.StatusHistory, domain.NoteTypeClinic, "SOCIAL HISTORY", 0.8),
		cand(domain.FieldSmokingStatus, domain.Text("current"), domain.StatusHistory, domain.NoteTypeClinic, "SOCIAL HISTORY", 0.8),
		cand(domain.FieldAge, domain.Number(50), domain.StatusMeasured, domain.NoteTypeClinic, "HPI", 0.8),
		cand(domain.FieldAge, domain.Number(51), domain.StatusMeasured, domain.NoteTypeFollowUp, "HPI", 0.8),
	}
	base[1].NoteID = "a-note"
	base[2].NoteID = "a-note"
	base[2].Evidence = "AAA"

	want := e.AggregatePatient(base)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 25; i++ {
		shuffled := append([]domain.Candidate(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := e.AggregatePatient(shuffled)
		if diff := cmp.Diff(want, got, fvComparer); diff != "" {
			t.Fatalf("permutation %d changed result (-want +got):\n%s", i, diff)
		}
	}

	v, _ := want[domain.FieldSmokingStatus].Value.AsText()
	assert.Equal(t, "current", v)
}

func TestEngine_Ordered(t *testing.T) {
	e := aggregate.NewEngine(aggregate.DefaultConfig())
	got := e.AggregatePatient([]domain.Candidate{
		cand(domain.FieldChemo, domain.Bool(true), domain.StatusHistory, domain.NoteTypeClinic, "HPI", 0.7),
		cand(domain.FieldAge, domain.Number(40), domain.StatusMeasured, domain.NoteTypeClinic, "HPI", 0.8),
	})
	ordered := e.Ordered(got)
	require.Len(t, ordered, 2)
	assert.Equal(t, domain.FieldAge, ordered[0].Field)
	assert.Equal(t, domain.FieldChemo, ordered[1].Field)
}

// =============================================================================
// Config
// =============================================================================

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, aggregate.DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*aggregate.Config)
		want   string
	}{
		{"empty status", func(c *aggregate.Config) { c.Precedence.Status = nil }, "status precedence is empty"},
		{"empty sections", func(c *aggregate.Config) { c.Precedence.Section = nil }, "section precedence is empty"},
		{"unknown status", func(c *aggregate.Config) {
			c.Precedence.Status = append(c.Precedence.Status, "maybe")
		}, `unknown status "maybe"`},
		{"duplicate note type", func(c *aggregate.Config) {
			c.Precedence.NoteType = append(c.Precedence.NoteType, domain.NoteTypeClinic)
		}, `duplicate note type "clinic"`},
		{"untracked performed-only", func(c *aggregate.Config) {
			c.PerformedOnly = append(c.PerformedOnly, "Nope")
		}, `performed-only field "Nope" is not tracked`},
		{"incomplete exclusion", func(c *aggregate.Config) {
			c.Exclusions = append(c.Exclusions, aggregate.Exclusion{When: domain.FieldReconPerformed})
		}, "is incomplete"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := aggregate.DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
