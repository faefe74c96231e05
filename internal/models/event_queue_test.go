package models

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueueOrdersByTime(t *testing.T) {
	eq := NewEventQueue()
	base := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	eq.Enqueue(&Event{Time: base.Add(3 * time.Second), Type: EventFeedTick, Data: "c"})
	eq.Enqueue(&Event{Time: base.Add(1 * time.Second), Type: EventFeedTick, Data: "a"})
	eq.Enqueue(&Event{Time: base.Add(2 * time.Second), Type: EventFeedTick, Data: "b"})

	require.Equal(t, 3, eq.Len())
	assert.Equal(t, "a", eq.Peek().Data)
	assert.Equal(t, "a", eq.Dequeue().Data)
	assert.Equal(t, "b", eq.Dequeue().Data)
	assert.Equal(t, "c", eq.Dequeue().Data)
	assert.True(t, eq.IsEmpty())
	assert.Nil(t, eq.Dequeue())
	assert.Nil(t, eq.Peek())
}

func TestEventQueueKeepsInsertionOrderForTies(t *testing.T) {
	eq := NewEventQueue()
	at := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	for _, id := range []string{"first", "second", "third", "fourth"} {
		eq.Enqueue(&Event{Time: at, Type: EventJunctionUpdate, Data: id})
	}

	var got []interface{}
	for _, e := range eq.DequeueDue(at) {
		got = append(got, e.Data)
	}
	assert.Equal(t, []interface{}{"first", "second", "third", "fourth"}, got)
}

func TestEventQueueDequeueDue(t *testing.T) {
	eq := NewEventQueue()
	base := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	eq.Enqueue(&Event{Time: base, Type: EventKPISnapshot})
	eq.Enqueue(&Event{Time: base.Add(time.Second), Type: EventFeedTick})
	eq.Enqueue(&Event{Time: base.Add(5 * time.Second), Type: EventFeedTick})

	due := eq.DequeueDue(base.Add(time.Second))
	require.Len(t, due, 2)
	assert.Equal(t, EventKPISnapshot, due[0].Type)
	assert.Equal(t, 1, eq.Len())
	assert.Empty(t, eq.DequeueDue(base.Add(4*time.Second)))
}

func TestEventQueueConcurrentEnqueue(t *testing.T) {
	eq := NewEventQueue()
	base := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				eq.Enqueue(&Event{Time: base.Add(time.Duration(j) * time.Millisecond), Type: EventFeedTick})
			}
		}(i)
	}
	wg.Wait()

	due := eq.DequeueDue(base.Add(time.Second))
	require.Len(t, due, 800)
	for i := 1; i < len(due); i++ {
		assert.False(t, due[i].Time.Before(due[i-1].Time))
	}
}
