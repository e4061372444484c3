package executor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReduce(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	resp := &Response{Status: 200}
	boom := errors.New("boom")

	tests := []struct {
		name  string
		state TabState
		event Event
		want  TabState
	}{
		{
			name:  "start from idle",
			state: TabState{},
			event: Event{Kind: EventStart, Generation: 1, At: at},
			want:  TabState{Phase: PhaseSending, Generation: 1, StartedAt: at},
		},
		{
			name:  "start clears previous result",
			state: TabState{Phase: PhaseFailed, Generation: 1, Response: resp, Err: boom},
			event: Event{Kind: EventStart, Generation: 2, At: at},
			want:  TabState{Phase: PhaseSending, Generation: 2, StartedAt: at},
		},
		{
			name:  "succeed current generation",
			state: TabState{Phase: PhaseSending, Generation: 3, StartedAt: at},
			event: Event{Kind: EventSucceed, Generation: 3, Response: resp},
			want:  TabState{Phase: PhaseSucceeded, Generation: 3, StartedAt: at, Response: resp},
		},
		{
			name:  "fail current generation",
			state: TabState{Phase: PhaseSending, Generation: 3, StartedAt: at},
			event: Event{Kind: EventFail, Generation: 3, Err: boom},
			want:  TabState{Phase: PhaseFailed, Generation: 3, StartedAt: at, Err: boom},
		},
		{
			name:  "stale generation ignored",
			state: TabState{Phase: PhaseSending, Generation: 4, StartedAt: at},
			event: Event{Kind: EventSucceed, Generation: 3, Response: resp},
			want:  TabState{Phase: PhaseSending, Generation: 4, StartedAt: at},
		},
		{
			name:  "settle after settle ignored",
			state: TabState{Phase: PhaseSucceeded, Generation: 4, Response: resp},
			event: Event{Kind: EventFail, Generation: 4, Err: boom},
			want:  TabState{Phase: PhaseSucceeded, Generation: 4, Response: resp},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reduce(tt.state, tt.event))
		})
	}
}

func TestStore_GenerationsAreUniqueAcrossTabs(t *testing.T) {
	s := NewStore()

	g1, _ := s.Begin("a", time.Now())
	g2, _ := s.Begin("b", time.Now())
	g3, state := s.Begin("a", time.Now())

	assert.Less(t, g1, g2)
	assert.Less(t, g2, g3)
	assert.Equal(t, g3, state.Generation)
	assert.Equal(t, []string{"a", "b"}, s.Tabs())
}

func TestStore_SettleClosedTab(t *testing.T) {
	s := NewStore()
	gen, _ := s.Begin("a", time.Now())
	s.Close("a")

	_, current := s.Settle("a", Event{Kind: EventSucceed, Generation: gen})
	assert.False(t, current)
	assert.Equal(t, TabState{}, s.Get("a"))
	assert.Empty(t, s.Tabs())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "sending", PhaseSending.String())
	assert.Equal(t, "succeeded", PhaseSucceeded.String())
	assert.Equal(t, "failed", PhaseFailed.String())
	assert.Equal(t, "unknown", Phase(42).String())
	assert.True(t, TabState{Phase: PhaseSending}.IsLoading())
}
