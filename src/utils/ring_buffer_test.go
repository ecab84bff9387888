package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBufferWrapsAround(t *testing.T) {
	rb := NewRingBuffer[int](3)
	for i := 1; i <= 5; i++ {
		rb.Append(i)
	}

	assert.True(t, rb.IsFull())
	assert.Equal(t, 3, rb.Size())
	assert.Equal(t, []int{3, 4, 5}, rb.GetAll())
	assert.Equal(t, []int{4, 5}, rb.GetLatest(2))
	assert.Equal(t, []int{3, 4, 5}, rb.GetLatest(10))

	last, ok := rb.Last()
	assert.True(t, ok)
	assert.Equal(t, 5, last)
}

func TestRingBufferEmpty(t *testing.T) {
	rb := NewRingBuffer[string](0)
	assert.Equal(t, DefaultRecentRefreshes, rb.Capacity())
	assert.Empty(t, rb.GetAll())
	assert.Empty(t, rb.GetLatest(-1))

	_, ok := rb.Last()
	assert.False(t, ok)

	rb.Append("a")
	rb.Clear()
	assert.Zero(t, rb.Size())
}

func TestTimeframeDays(t *testing.T) {
	assert.Equal(t, 30, TimeframeDays(TimeframeDaily))
	assert.Equal(t, 90, TimeframeDays(TimeframeWeekly))
	assert.Equal(t, 365, TimeframeDays(TimeframeYearly))
	assert.Equal(t, 30, TimeframeDays("hourly"))
	assert.False(t, IsTimeframe("hourly"))
}
