package status_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/status"
)

func classifyTerm(t *testing.T, text, term string) domain.Status {
	t.Helper()
	i := strings.Index(strings.ToLower(text), strings.ToLower(term))
	require.GreaterOrEqual(t, i, 0, "term %q not in text", term)
	return status.Classify(text, i, i+len(term), status.DefaultCues())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		term string
		want domain.Status
	}{
		{"templated none", "Diabetes: (None)", "Diabetes", domain.StatusDenied},
		{"bare denies", "Patient denies diabetes.", "diabetes", domain.StatusDenied},
		{"negative for", "Negative for DVT", "DVT", domain.StatusDenied},
		{"without", "Recovered without complications", "complications", domain.StatusDenied},
		{"planned", "She is scheduled for mastectomy", "mastectomy", domain.StatusPlanned},
		{"considering", "Considering DIEP flap reconstruction", "DIEP", domain.StatusPlanned},
		{"status post", "Status post lumpectomy in 2015", "lumpectomy", domain.StatusPerformed},
		{"history of", "History of hypertension.", "hypertension", domain.StatusPerformed},
		{"bare mention", "Hypertension", "Hypertension", domain.StatusHistory},
		{"negation beats plan", "No plans; not scheduled for surgery", "surgery", domain.StatusDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyTerm(t, tt.text, tt.term))
		})
	}
}

func TestClassify_SentenceLocal(t *testing.T) {
	text := "Patient denies diabetes. History of hypertension."

	assert.Equal(t, domain.StatusDenied, classifyTerm(t, text, "diabetes"))
	assert.Equal(t, domain.StatusPerformed, classifyTerm(t, text, "hypertension"))
}

func TestClassify_LineLocal(t *testing.T) {
	text := "Diabetes: (None)\nHypertension: yes"
	assert.Equal(t, domain.StatusHistory, classifyTerm(t, text, "Hypertension"))
}

func TestClassify_DecimalDoesNotSplitSentence(t *testing.T) {
	text := "No BMI 24.1 recorded"
	assert.Equal(t, domain.StatusDenied, classifyTerm(t, text, "recorded"))
}

func TestClassify_OutOfRangeSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		status.Classify("short", -5, 100, status.DefaultCues())
		status.Classify("", 3, 1, status.DefaultCues())
	})
}

func TestClassify_CustomCues(t *testing.T) {
	cues, err := status.NewCues(nil, []string{`\btbd\b`}, nil)
	require.NoError(t, err)

	text := "Reconstruction tbd"
	assert.Equal(t, domain.StatusPlanned, status.Classify(text, 0, 14, cues))
	assert.Equal(t, domain.StatusHistory, status.Classify(text, 0, 14, status.Cues{}))

	_, err = status.NewCues([]string{"("}, nil, nil)
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	text := "line one\nthe patient had a DIEP flap\nline three"
	i := strings.Index(text, "DIEP")

	assert.Equal(t, "line one the patient had a DIEP flap line three", status.Window(text, i, i+4, 80))
	assert.Equal(t, "a DIEP f", status.Window(text, i, i+4, 2))
}

func TestWindow_RuneSafe(t *testing.T) {
	text := "é" + strings.Repeat("x", 5) + "MATCH"
	i := strings.Index(text, "MATCH")
	w := status.Window(text, i, i+5, 6)
	assert.True(t, utf8.ValidString(w))
	assert.Equal(t, "xxxxxMATCH", w)
}
