package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolpay_backend/internal/store"
)

func event(collection string, kind store.ChangeKind) store.ChangeEvent {
	return store.ChangeEvent{Collection: collection, Kind: kind}
}

func TestFeed_DispatchInRegistrationOrder(t *testing.T) {
	f := New("", nil, time.Millisecond, time.Millisecond)

	var order []string
	f.Subscribe(nil, nil, func(store.ChangeEvent) { order = append(order, "first") })
	f.Subscribe(nil, nil, func(store.ChangeEvent) { order = append(order, "second") })
	f.Subscribe(nil, nil, func(store.ChangeEvent) { order = append(order, "third") })

	f.dispatch(event("device_alerts", store.ChangeInsert))

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestFeed_FiltersByCollectionAndKind(t *testing.T) {
	f := New("", nil, time.Millisecond, time.Millisecond)

	var got []store.ChangeEvent
	f.Subscribe([]string{"device_alerts"}, []store.ChangeKind{store.ChangeInsert}, func(e store.ChangeEvent) {
		got = append(got, e)
	})

	f.dispatch(event("device_alerts", store.ChangeInsert))
	f.dispatch(event("device_alerts", store.ChangeUpdate))
	f.dispatch(event("messages", store.ChangeInsert))

	require.Len(t, got, 1)
	assert.Equal(t, "device_alerts", got[0].Collection)
	assert.Equal(t, store.ChangeInsert, got[0].Kind)
}

func TestFeed_NilFiltersMatchEverything(t *testing.T) {
	f := New("", nil, time.Millisecond, time.Millisecond)

	var count int
	f.Subscribe(nil, nil, func(store.ChangeEvent) { count++ })

	f.dispatch(event("device_alerts", store.ChangeInsert))
	f.dispatch(event("messages", store.ChangeDelete))

	assert.Equal(t, 2, count)
}

func TestFeed_Unsubscribe(t *testing.T) {
	f := New("", nil, time.Millisecond, time.Millisecond)

	var count int
	unsubscribe := f.Subscribe(nil, nil, func(store.ChangeEvent) { count++ })

	f.dispatch(event("messages", store.ChangeInsert))
	unsubscribe()
	f.dispatch(event("messages", store.ChangeInsert))

	assert.Equal(t, 1, count)

	// Unsubscribing twice is harmless.
	unsubscribe()
}

func TestFeed_PanickingListenerIsIsolated(t *testing.T) {
	f := New("", nil, time.Millisecond, time.Millisecond)

	var after int
	f.Subscribe(nil, nil, func(store.ChangeEvent) { panic("listener bug") })
	f.Subscribe(nil, nil, func(store.ChangeEvent) { after++ })

	f.dispatch(event("device_alerts", store.ChangeInsert))
	f.dispatch(event("device_alerts", store.ChangeInsert))

	assert.Equal(t, 2, after)
}

func TestFeed_BackoffDoublesUpToCap(t *testing.T) {
	f := New("", nil, 100*time.Millisecond, 300*time.Millisecond)

	d := f.baseDelay
	d = f.nextDelay(d)
	assert.Equal(t, 200*time.Millisecond, d)
	d = f.nextDelay(d)
	assert.Equal(t, 300*time.Millisecond, d)
	d = f.nextDelay(d)
	assert.Equal(t, 300*time.Millisecond, d)
}

func TestFeed_StartStopWithUnreachableServer(t *testing.T) {
	f := New("nats://127.0.0.1:1", []string{"device_alerts"}, 10*time.Millisecond, 20*time.Millisecond)
	assert.Equal(t, StateDisconnected, f.State())

	f.Start()
	time.Sleep(50 * time.Millisecond)
	// Connect attempts keep failing; the feed never claims to be subscribed.
	assert.NotEqual(t, StateSubscribed, f.State())

	f.Stop()
	assert.Equal(t, StateDisconnected, f.State())
}

func TestFeed_StateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "subscribed", StateSubscribed.String())
}
