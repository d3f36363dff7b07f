package state

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalogLastWriteWins(t *testing.T) {
	store := NewStore()

	store.SetAnalog("D1", 10)
	store.SetAnalog("D1", 20)
	store.SetAnalog("D1", 42)

	value, ok := store.Analog("D1")
	require.True(t, ok)
	assert.Equal(t, 42.0, value)
}

func TestUnknownDeviceIsNotAvailable(t *testing.T) {
	store := NewStore()

	_, ok := store.Analog("D2")
	assert.False(t, ok, "a device that never reported must not read as zero")

	_, ok = store.Get("D2")
	assert.False(t, ok)
}

func TestZeroValueDistinctFromAbsent(t *testing.T) {
	store := NewStore()

	store.SetAnalog("D1", 0)

	value, ok := store.Analog("D1")
	require.True(t, ok)
	assert.Equal(t, 0.0, value)
}

func TestImageRefDoesNotTouchAnalog(t *testing.T) {
	store := NewStore()

	store.SetAnalog("D1", 7)
	store.SetImageRef("D1", "/api/v1/devices/D1/image/latest")

	value, ok := store.Analog("D1")
	require.True(t, ok)
	assert.Equal(t, 7.0, value)

	ref, ok := store.ImageRef("D1")
	require.True(t, ok)
	assert.Equal(t, "/api/v1/devices/D1/image/latest", ref)
}

func TestSnapshotIsACopy(t *testing.T) {
	store := NewStore()
	store.SetAnalog("D1", 1)

	snapshot, ok := store.Get("D1")
	require.True(t, ok)

	store.SetAnalog("D1", 2)
	assert.Equal(t, 1.0, *snapshot.AnalogValue, "returned snapshot must not alias live state")
}

func TestConcurrentUpdatesAcrossDevices(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			deviceID := fmt.Sprintf("D%d", n)
			for v := 0; v < 100; v++ {
				store.SetAnalog(deviceID, float64(v))
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 16; i++ {
		value, ok := store.Analog(fmt.Sprintf("D%d", i))
		require.True(t, ok)
		assert.Equal(t, 99.0, value)
	}
}
