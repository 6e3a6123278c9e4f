package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jsphweid/retune31/model"
	"github.com/jsphweid/retune31/processor"
	"github.com/jsphweid/retune31/theory"
	"github.com/jsphweid/retune31/tonalspace"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManager(func() (*processor.Processor, error) {
		return processor.New(tonalspace.New(tonalspace.DefaultConfig()), processor.Options{
			Projection: tonalspace.Meantone17,
			Metric:     tonalspace.Pythagorean,
			Seed:       &processor.Seed{Pitch: theory.MustParsePitch("C4"), Key: 60},
		}), nil
	}, ttl)
}

func TestApplyAndSpace(t *testing.T) {
	m := newTestManager(0)
	defer m.Close()
	ctx := context.Background()

	s, err := m.Create()
	require.NoError(t, err)

	decisions, err := s.Apply(ctx, []model.Event{
		model.NewNoteOn(0, 64, 100),
		model.NewNoteOn(0, 67, 100),
	})
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, theory.MustParsePitch("E4"), decisions[0].Pitch)
	assert.Equal(t, theory.MustParsePitch("G4"), decisions[1].Pitch)

	pitches, err := s.Space(ctx)
	require.NoError(t, err)
	require.Len(t, pitches, 3)
	assert.Equal(t, theory.MustParsePitch("G4"), pitches[0].Pitch)
	assert.Equal(t, uint8(67), pitches[0].Key)
}

func TestSessionsAreIndependent(t *testing.T) {
	m := newTestManager(0)
	defer m.Close()
	ctx := context.Background()

	a, _ := m.Create()
	b, _ := m.Create()
	assert.NotEqual(t, a.Id, b.Id)
	assert.Equal(t, 2, m.Len())

	_, err := a.Apply(ctx, []model.Event{model.NewNoteOn(0, 64, 100)})
	require.NoError(t, err)

	pitches, err := b.Space(ctx)
	require.NoError(t, err)
	assert.Len(t, pitches, 1)
}

func TestGetAndDelete(t *testing.T) {
	m := newTestManager(0)
	s, _ := m.Create()

	got, err := m.Get(s.Id)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Delete(s.Id))
	_, err = m.Get(s.Id)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.True(t, errors.Is(m.Delete(s.Id), ErrSessionNotFound))

	_, err = s.Apply(context.Background(), []model.Event{model.NewNoteOn(0, 60, 100)})
	assert.True(t, errors.Is(err, ErrSessionClosed))
}

func TestStopEndsSession(t *testing.T) {
	m := newTestManager(0)
	s, _ := m.Create()

	decisions, err := s.Apply(context.Background(), []model.Event{
		model.NewNoteOn(0, 64, 100),
		model.NewStop(),
		model.NewNoteOn(0, 67, 100),
	})
	require.NoError(t, err)
	assert.Len(t, decisions, 1)

	<-s.Done()
	assert.Equal(t, 0, m.Len())
}

func TestIdleSessionExpires(t *testing.T) {
	m := newTestManager(20 * time.Millisecond)
	s, _ := m.Create()

	assert.Eventually(t, func() bool {
		return m.Len() == 0
	}, time.Second, 5*time.Millisecond)

	_, err := s.Space(context.Background())
	assert.True(t, errors.Is(err, ErrSessionClosed))
}

func TestConcurrentRequests(t *testing.T) {
	m := newTestManager(0)
	defer m.Close()
	s, _ := m.Create()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(key uint8) {
			defer wg.Done()
			_, err := s.Apply(ctx, []model.Event{
				model.NewNoteOn(0, key, 100),
				model.NewNoteOff(0, key, 0),
			})
			assert.NoError(t, err)
		}(uint8(60 + i))
	}
	wg.Wait()

	pitches, err := s.Space(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, pitches)
}
