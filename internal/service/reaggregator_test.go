package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/abstractor/internal/domain"
)

func TestReaggregator_RunOnce(t *testing.T) {
	f := newAbstractionFixture(t)
	ctx := context.Background()

	other := &domain.Patient{StudyID: f.studyID, ExternalID: "P2"}
	require.NoError(t, f.patients.Create(ctx, other))

	_, err := f.svc.IngestNote(ctx, f.patient.ID, f.studyID, domain.RawNote{ID: "n1", TypeHint: "op_note", Text: opText})
	require.NoError(t, err)

	r := NewReaggregatorService(f.patients, f.svc, zap.NewNop())
	assert.Equal(t, 1, r.RunOnce(ctx), "only the patient with new evidence is stale")
	assert.NotEmpty(t, f.resolutions.byPatient[f.patient.ID])

	assert.Equal(t, 0, r.RunOnce(ctx), "nothing left to resolve")

	_, err = f.svc.IngestNote(ctx, f.patient.ID, f.studyID, domain.RawNote{ID: "n2", Text: consultText})
	require.NoError(t, err)
	assert.Equal(t, 1, r.RunOnce(ctx))
}

func TestReaggregator_RunOnce_Failures(t *testing.T) {
	f := newAbstractionFixture(t)
	ctx := context.Background()

	_, err := f.svc.IngestNote(ctx, f.patient.ID, f.studyID, domain.RawNote{ID: "n1", TypeHint: "op_note", Text: opText})
	require.NoError(t, err)

	f.resolutions.failFor = f.patient.ID
	r := NewReaggregatorService(f.patients, f.svc, zap.NewNop())
	assert.Equal(t, 0, r.RunOnce(ctx))

	p, _ := f.patients.GetByID(ctx, f.patient.ID, f.studyID)
	assert.True(t, p.Stale(), "a failed write leaves the patient stale")

	f.patients.listErr = errors.New("db down")
	assert.Equal(t, 0, r.RunOnce(ctx))
}

func TestReaggregator_StartStop(t *testing.T) {
	f := newAbstractionFixture(t)
	_, err := f.svc.IngestNote(context.Background(), f.patient.ID, f.studyID, domain.RawNote{ID: "n1", TypeHint: "op_note", Text: opText})
	require.NoError(t, err)

	r := NewReaggregatorService(f.patients, f.svc, zap.NewNop())
	r.SetInterval(10 * time.Millisecond)
	r.Start()
	time.Sleep(50 * time.Millisecond)
	r.Stop()
}
