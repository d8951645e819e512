package service

import (
	"math/rand"
	"testing"
	"time"

	"luckydraw/events"
	"luckydraw/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBatch() []models.DrawnResult {
	return []models.DrawnResult{
		{Rank: 3, Name: "Sticker"},
		{Rank: 1, Name: "Grand Prize", RequiresShipping: true},
		{Rank: 4, Name: "Coupon"},
		{Rank: 2, Name: "Tablet", RequiresShipping: true},
	}
}

func newTestSequencer(results []models.DrawnResult) (*RevealSequencer, *RecordingPublisher, *ManualScheduler) {
	pub := &RecordingPublisher{}
	sched := &ManualScheduler{}
	seq := NewRevealSequencer("session-1", results, pub, RevealOptions{Scheduler: sched})
	return seq, pub, sched
}

func revealedIndexes(pub *RecordingPublisher) []int {
	var out []int
	for _, e := range pub.OfType(events.EventTypeItemRevealed) {
		out = append(out, e.(events.ItemRevealedEvent).Index)
	}
	return out
}

func TestRevealSequencer_StartRevealsNormalItemsInOrder(t *testing.T) {
	seq, pub, sched := newTestSequencer(testBatch())

	seq.Start()

	snap := seq.Snapshot()
	assert.Equal(t, RevealPhaseRevealing, snap.Phase)
	assert.Equal(t, ItemRevealed, snap.Items[0].State)
	assert.Equal(t, ItemPending, snap.Items[1].State)
	assert.Equal(t, ItemRevealed, snap.Items[2].State)
	assert.Equal(t, ItemPending, snap.Items[3].State)
	assert.Equal(t, []int{0, 2}, revealedIndexes(pub))
	assert.Equal(t, 0, sched.Pending(), "normal items are revealed without delay")
	assert.False(t, snap.Celebrating)

	// Starting twice does nothing
	seq.Start()
	assert.Equal(t, []int{0, 2}, revealedIndexes(pub))
}

func TestRevealSequencer_TriggerHighRank(t *testing.T) {
	seq, pub, sched := newTestSequencer(testBatch())
	seq.Start()

	require.NoError(t, seq.Trigger(1))

	// Signal is on immediately; the reveal waits for the suspense delay
	assert.True(t, seq.Celebrating())
	celebrations := pub.OfType(events.EventTypeCelebrationChanged)
	require.Len(t, celebrations, 1)
	assert.True(t, celebrations[0].(events.CelebrationChangedEvent).On)
	assert.Equal(t, ItemPending, seq.Snapshot().Items[1].State)
	assert.True(t, seq.Snapshot().Items[1].Triggered)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, sched.Delays())

	sched.FireAll()

	assert.Equal(t, ItemRevealed, seq.Snapshot().Items[1].State)
	assert.Equal(t, []int{0, 2, 1}, revealedIndexes(pub))
}

func TestRevealSequencer_TriggerIsIdempotent(t *testing.T) {
	seq, pub, sched := newTestSequencer(testBatch())
	seq.Start()

	require.NoError(t, seq.Trigger(1))
	require.NoError(t, seq.Trigger(1))
	assert.Equal(t, 1, sched.Pending())

	// A second high-rank item while the signal is already on does not re-signal
	require.NoError(t, seq.Trigger(3))
	assert.Equal(t, 2, sched.Pending())
	assert.Len(t, pub.OfType(events.EventTypeCelebrationChanged), 1)

	sched.FireAll()
	require.NoError(t, seq.Trigger(1))
	assert.Equal(t, 0, sched.Pending(), "revealed items ignore further taps")
}

func TestRevealSequencer_TriggerIgnoresNormalItems(t *testing.T) {
	seq, pub, sched := newTestSequencer(testBatch())
	seq.Start()

	require.NoError(t, seq.Trigger(0))

	assert.Equal(t, 0, sched.Pending())
	assert.False(t, seq.Celebrating())
	assert.Empty(t, pub.OfType(events.EventTypeCelebrationChanged))
}

func TestRevealSequencer_TriggerOutOfRange(t *testing.T) {
	seq, _, sched := newTestSequencer(testBatch())
	seq.Start()

	assert.ErrorIs(t, seq.Trigger(-1), ErrRevealIndex)
	assert.ErrorIs(t, seq.Trigger(4), ErrRevealIndex)
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, RevealPhaseRevealing, seq.Phase())
}

func TestRevealSequencer_Classification(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for trial := 0; trial < 50; trial++ {
		batch := make([]models.DrawnResult, 1+rng.Intn(20))
		for i := range batch {
			batch[i] = models.DrawnResult{Rank: 1 + rng.Intn(6)}
		}
		seq, _, sched := newTestSequencer(batch)

		seq.Start()
		sched.FireAll() // nothing was triggered, so nothing should change

		for i, item := range seq.Snapshot().Items {
			if models.IsHighRank(item.Result.Rank) {
				assert.Equal(t, ItemPending, item.State, "high-rank item %d revealed without a trigger", i)
				require.NoError(t, seq.Trigger(i))
			} else {
				assert.Equal(t, ItemRevealed, item.State, "normal item %d not auto-revealed", i)
			}
		}

		sched.FireAll()
		for i, item := range seq.Snapshot().Items {
			assert.Equal(t, ItemRevealed, item.State, "item %d", i)
		}
	}
}

func TestRevealSequencer_SummarizeWithPendingItems(t *testing.T) {
	seq, pub, _ := newTestSequencer(testBatch())
	seq.Start()

	summary, needsShipping, err := seq.Summarize()
	require.NoError(t, err)

	assert.Equal(t, RevealPhaseSummarizing, seq.Phase())
	assert.True(t, needsShipping)
	assert.Equal(t, []models.SummaryEntry{
		{Rank: 1, Name: "Grand Prize", RequiresShipping: true, Count: 1},
		{Rank: 2, Name: "Tablet", RequiresShipping: true, Count: 1},
		{Rank: 3, Name: "Sticker", Count: 1},
		{Rank: 4, Name: "Coupon", Count: 1},
	}, summary)

	snap := seq.Snapshot()
	assert.Equal(t, ItemPending, snap.Items[1].State, "summarizing does not reveal pending items")
	assert.Equal(t, ItemPending, snap.Items[3].State)

	phases := pub.OfType(events.EventTypeRevealPhaseChange)
	require.Len(t, phases, 1)
	assert.Equal(t, "revealing", phases[0].(events.RevealPhaseChangeEvent).OldPhase)
	assert.Equal(t, "summarizing", phases[0].(events.RevealPhaseChangeEvent).NewPhase)

	// Taps are no longer accepted, summarizing again is harmless
	assert.ErrorIs(t, seq.Trigger(1), ErrInvalidTransition)
	_, _, err = seq.Summarize()
	assert.NoError(t, err)
	assert.Len(t, pub.OfType(events.EventTypeRevealPhaseChange), 1)
}

func TestRevealSequencer_ShippingBranch(t *testing.T) {
	seq, _, _ := newTestSequencer(testBatch())
	seq.Start()

	_, err := seq.OpenShipping()
	assert.ErrorIs(t, err, ErrInvalidTransition, "shipping opens only from the summary")

	_, _, err = seq.Summarize()
	require.NoError(t, err)

	entries, err := seq.OpenShipping()
	require.NoError(t, err)
	assert.Len(t, entries, 4, "the full summary is handed over")
	assert.Equal(t, RevealPhaseShipping, seq.Phase())

	require.NoError(t, seq.CloseShipping())
	assert.Equal(t, RevealPhaseSummarizing, seq.Phase())
	assert.ErrorIs(t, seq.CloseShipping(), ErrInvalidTransition)

	require.NoError(t, seq.Finish())
	assert.Equal(t, RevealPhaseDone, seq.Phase())
}

func TestRevealSequencer_ShippingNotNeeded(t *testing.T) {
	seq, _, _ := newTestSequencer([]models.DrawnResult{{Rank: 3, Name: "Sticker"}})
	seq.Start()

	_, needsShipping, err := seq.Summarize()
	require.NoError(t, err)
	assert.False(t, needsShipping)

	_, err = seq.OpenShipping()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Declining is always valid
	assert.NoError(t, seq.Finish())
}

func TestRevealSequencer_FinishFromShipping(t *testing.T) {
	seq, _, _ := newTestSequencer(testBatch())
	seq.Start()
	_, _, _ = seq.Summarize()
	_, err := seq.OpenShipping()
	require.NoError(t, err)

	require.NoError(t, seq.Finish())
	assert.Equal(t, RevealPhaseDone, seq.Phase())
}

func TestRevealSequencer_FinishTurnsSignalOffFirst(t *testing.T) {
	seq, pub, sched := newTestSequencer(testBatch())
	seq.Start()
	require.NoError(t, seq.Trigger(1))
	_, _, err := seq.Summarize()
	require.NoError(t, err)

	select {
	case <-seq.Done():
		t.Fatal("Done channel closed before Finish")
	default:
	}

	require.NoError(t, seq.Finish())

	assert.False(t, seq.Celebrating())
	assert.Equal(t, 0, sched.Pending(), "pending reveals are cancelled")
	select {
	case <-seq.Done():
	default:
		t.Fatal("Done channel not closed after Finish")
	}

	all := pub.Events()
	var offAt, doneAt, completedAt = -1, -1, -1
	for i, e := range all {
		switch ev := e.(type) {
		case events.CelebrationChangedEvent:
			if !ev.On {
				offAt = i
			}
		case events.RevealPhaseChangeEvent:
			if ev.NewPhase == string(RevealPhaseDone) {
				doneAt = i
			}
		case events.RevealCompletedEvent:
			completedAt = i
			assert.Len(t, ev.Summary, 4)
		}
	}
	require.NotEqual(t, -1, offAt)
	assert.Less(t, offAt, doneAt)
	assert.Less(t, doneAt, completedAt)

	// Done is terminal
	assert.ErrorIs(t, seq.Finish(), ErrInvalidTransition)
	_, _, err = seq.Summarize()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRevealSequencer_FinishRequiresSummary(t *testing.T) {
	seq, _, _ := newTestSequencer(testBatch())
	seq.Start()

	assert.ErrorIs(t, seq.Finish(), ErrInvalidTransition)
	assert.Equal(t, RevealPhaseRevealing, seq.Phase())
}

func TestRevealSequencer_StaleTimerAfterFinish(t *testing.T) {
	seq, pub, sched := newTestSequencer(testBatch())
	seq.Start()
	require.NoError(t, seq.Trigger(1))
	_, _, _ = seq.Summarize()
	require.NoError(t, seq.Finish())
	count := len(pub.Events())

	sched.FireStale()

	assert.Equal(t, ItemPending, seq.Snapshot().Items[1].State)
	assert.Len(t, pub.Events(), count, "no events after done")
}

func TestRevealSequencer_CloseDuringSuspense(t *testing.T) {
	seq, pub, sched := newTestSequencer(testBatch())
	seq.Start()
	require.NoError(t, seq.Trigger(3))
	require.True(t, seq.Celebrating())

	seq.Close()

	assert.False(t, seq.Celebrating())
	assert.Equal(t, 0, sched.Pending())
	celebrations := pub.OfType(events.EventTypeCelebrationChanged)
	require.Len(t, celebrations, 2)
	assert.False(t, celebrations[1].(events.CelebrationChangedEvent).On)

	sched.FireStale()
	assert.Equal(t, ItemPending, seq.Snapshot().Items[3].State, "teardown prevents stale reveals")

	// Close is idempotent and later operations are rejected
	seq.Close()
	assert.Len(t, pub.OfType(events.EventTypeCelebrationChanged), 2)
	assert.ErrorIs(t, seq.Trigger(1), ErrInvalidTransition)
	assert.ErrorIs(t, seq.Finish(), ErrInvalidTransition)
}

func TestRevealSequencer_SignalSafety(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	for trial := 0; trial < 200; trial++ {
		seq, _, sched := newTestSequencer(testBatch())
		seq.Start()

		for step := 0; step < 8; step++ {
			switch rng.Intn(6) {
			case 0, 1:
				_ = seq.Trigger(rng.Intn(5))
			case 2:
				sched.FireAll()
			case 3:
				_, _, _ = seq.Summarize()
			case 4:
				_, _ = seq.OpenShipping()
			case 5:
				_ = seq.CloseShipping()
			}
		}

		if rng.Intn(2) == 0 {
			_, _, _ = seq.Summarize()
			require.NoError(t, seq.Finish())
		}
		seq.Close()
		sched.FireStale()

		assert.False(t, seq.Celebrating(), "trial %d", trial)
	}
}

func TestRevealSequencer_Defaults(t *testing.T) {
	sched := &ManualScheduler{}
	seq := NewRevealSequencer("s", testBatch(), nil, RevealOptions{Scheduler: sched})

	seq.Start()
	require.NoError(t, seq.Trigger(1))

	assert.Equal(t, []time.Duration{500 * time.Millisecond}, sched.Delays())
	assert.Equal(t, "s", seq.ID())
}

func TestRevealSequencer_CustomDelay(t *testing.T) {
	sched := &ManualScheduler{}
	seq := NewRevealSequencer("s", testBatch(), nil, RevealOptions{Scheduler: sched, SuspenseDelay: 2 * time.Second})

	seq.Start()
	require.NoError(t, seq.Trigger(3))

	assert.Equal(t, []time.Duration{2 * time.Second}, sched.Delays())
}

func TestRevealSequencer_InvalidRankTreatedAsNormal(t *testing.T) {
	seq, _, _ := newTestSequencer([]models.DrawnResult{{Rank: 0, Name: "?"}, {Rank: -2}})

	assert.NotPanics(t, seq.Start)
	for _, item := range seq.Snapshot().Items {
		assert.Equal(t, ItemRevealed, item.State)
	}
}

type callbackPublisher struct {
	seq       *RevealSequencer
	snapshots []RevealSnapshot
}

func (p *callbackPublisher) Publish(events.Event) {
	p.snapshots = append(p.snapshots, p.seq.Snapshot())
}

func TestRevealSequencer_PublisherMayReadState(t *testing.T) {
	pub := &callbackPublisher{}
	sched := &ManualScheduler{}
	seq := NewRevealSequencer("s", testBatch(), pub, RevealOptions{Scheduler: sched})
	pub.seq = seq

	done := make(chan struct{})
	go func() {
		defer close(done)
		seq.Start()
		_ = seq.Trigger(1)
		sched.FireAll()
		_, _, _ = seq.Summarize()
		_ = seq.Finish()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sequencer deadlocked while publishing")
	}
	require.NotEmpty(t, pub.snapshots)
	assert.Equal(t, RevealPhaseDone, pub.snapshots[len(pub.snapshots)-1].Phase)
}

// heldCelebrationPublisher delays delivery of celebration-on events until released
type heldCelebrationPublisher struct {
	RecordingPublisher
	release chan struct{}
}

func (p *heldCelebrationPublisher) Publish(e events.Event) {
	if c, ok := e.(events.CelebrationChangedEvent); ok && c.On {
		<-p.release
	}
	p.RecordingPublisher.Publish(e)
}

// latestCelebration folds celebration events by Seq, ignoring delivery order
func latestCelebration(recorded []events.Event) (on bool, seq uint64) {
	for _, e := range recorded {
		if c, ok := e.(events.CelebrationChangedEvent); ok && c.Seq > seq {
			on, seq = c.On, c.Seq
		}
	}
	return on, seq
}

func TestRevealSequencer_StateEventsCarryIncreasingSeq(t *testing.T) {
	seq, pub, sched := newTestSequencer(testBatch())
	seq.Start()
	require.NoError(t, seq.Trigger(1))
	sched.FireAll()
	_, _, err := seq.Summarize()
	require.NoError(t, err)
	require.NoError(t, seq.Finish())

	var last uint64
	for _, e := range pub.Events() {
		var current uint64
		switch ev := e.(type) {
		case events.CelebrationChangedEvent:
			current = ev.Seq
		case events.RevealPhaseChangeEvent:
			current = ev.Seq
		default:
			continue
		}
		assert.Greater(t, current, last)
		last = current
	}
	assert.NotZero(t, last)
}

func TestRevealSequencer_LateCelebrationOnLosesToFinish(t *testing.T) {
	pub := &heldCelebrationPublisher{release: make(chan struct{})}
	sched := &ManualScheduler{}
	seq := NewRevealSequencer("session-1", testBatch(), pub, RevealOptions{Scheduler: sched})
	seq.Start()

	triggered := make(chan error, 1)
	go func() {
		triggered <- seq.Trigger(1)
	}()
	require.Eventually(t, seq.Celebrating, time.Second, time.Millisecond)

	_, _, err := seq.Summarize()
	require.NoError(t, err)
	require.NoError(t, seq.Finish())

	close(pub.release)
	require.NoError(t, <-triggered)

	celebrations := pub.OfType(events.EventTypeCelebrationChanged)
	require.Len(t, celebrations, 2)
	assert.False(t, celebrations[0].(events.CelebrationChangedEvent).On, "off was delivered first")
	assert.True(t, celebrations[1].(events.CelebrationChangedEvent).On)

	on, _ := latestCelebration(celebrations)
	assert.False(t, on, "ordering by Seq leaves the signal off after Finish")
	assert.False(t, seq.Celebrating())
}
