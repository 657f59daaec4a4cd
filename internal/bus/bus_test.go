package bus

import (
	"bytes"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSync_DeliversToSubscribers(t *testing.T) {
	b := NewEventBus()

	var mu sync.Mutex
	var got []Event
	b.Subscribe(EventTypeFaceLost, func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e)
	})
	b.Subscribe(EventTypeFaceFound, func(Event) { t.Error("wrong event type delivered") })

	b.PublishSync(Event{Type: EventTypeFaceLost, Session: "s1", Data: map[string]any{"after": "500ms"}})

	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].Session)
	assert.False(t, got[0].Time.IsZero())
	assert.Equal(t, "500ms", got[0].Data["after"])
}

func TestPublish_Async(t *testing.T) {
	b := NewEventBus()
	var n atomic.Int32
	b.SubscribeMultiple([]EventType{EventTypeDetectorConnected, EventTypeDetectorDisconnected}, func(Event) {
		n.Add(1)
	})

	b.Publish(Event{Type: EventTypeDetectorConnected})
	b.Publish(Event{Type: EventTypeDetectorDisconnected})

	require.Eventually(t, func() bool { return n.Load() == 2 }, time.Second, time.Millisecond)
}

func TestUnsubscribe(t *testing.T) {
	b := NewEventBus()
	var first, second atomic.Int32
	cancel := b.Subscribe(EventTypeRigLoaded, func(Event) { first.Add(1) })
	b.Subscribe(EventTypeRigLoaded, func(Event) { second.Add(1) })

	cancel()
	cancel()
	b.PublishSync(Event{Type: EventTypeRigLoaded})

	assert.Equal(t, int32(0), first.Load())
	assert.Equal(t, int32(1), second.Load())

	b.Clear()
	b.PublishSync(Event{Type: EventTypeRigLoaded})
	assert.Equal(t, int32(1), second.Load())
}

func TestSubscribeAll(t *testing.T) {
	b := NewEventBus()
	var n atomic.Int32
	cancel := b.SubscribeAll(func(Event) { n.Add(1) })

	for _, et := range AllEventTypes {
		b.PublishSync(Event{Type: et})
	}
	assert.Equal(t, int32(len(AllEventTypes)), n.Load())

	cancel()
	b.PublishSync(Event{Type: EventTypeFaceLost})
	assert.Equal(t, int32(len(AllEventTypes)), n.Load())
}

func TestLogEvents(t *testing.T) {
	b := NewEventBus()
	var buf bytes.Buffer
	stop := LogEvents(b, zerolog.New(&buf).Level(zerolog.DebugLevel))
	defer stop()

	b.PublishSync(Event{Type: EventTypeAttachment, Session: "s1", Data: map[string]any{"path": "hat.glb"}})

	out := buf.String()
	assert.Contains(t, out, `"event":"rig.attachment"`)
	assert.Contains(t, out, `"session":"s1"`)
	assert.Contains(t, out, `"path":"hat.glb"`)
	assert.Contains(t, out, `"component":"bus"`)
}
