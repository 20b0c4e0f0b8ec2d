package delta

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUint64(t *testing.T) {
	tests := []struct {
		name      string
		prev, cur uint64
		want      uint64
		wantReset bool
	}{
		{"increase", 100, 150, 50, false},
		{"unchanged", 100, 100, 0, false},
		{"reset", 150, 10, 0, true},
		{"from zero", 0, math.MaxUint64, math.MaxUint64, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reset := Uint64(tt.prev, tt.cur)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantReset, reset)
		})
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, float32(0), Percent(10, 0))
	assert.Equal(t, float32(50), Percent(50, 100))
	assert.Equal(t, float32(100), Percent(300, 100), "clamped to 100")
	assert.Equal(t, float32(0), Percent(0, 100))
}

func TestShare_ZeroWholeKeepsPrevious(t *testing.T) {
	assert.Equal(t, float32(42), Share(5, 0, 42))
	assert.Equal(t, float32(100), Share(5, 0, 420))
	assert.Equal(t, float32(25), Share(5, 20, 42))
}

func TestPerSecond(t *testing.T) {
	assert.Equal(t, 7.5, PerSecond(100, 0, 7.5))
	assert.InDelta(t, 50.0, PerSecond(100, 2*time.Second, 0), 1e-9)
}

func TestRatio_FirstSampleIsZero(t *testing.T) {
	var r Ratio
	got := r.Update(Sample{Busy: 500, Total: 1000})
	assert.Equal(t, float32(0), got)

	// the first sample becomes the baseline
	assert.InDelta(t, 50.0, r.Update(Sample{Busy: 600, Total: 1200}), 1e-4)
}

func TestRatio_Sequence(t *testing.T) {
	var r Ratio
	r.Update(Sample{Busy: 150, Total: 1000})

	// busy 150 -> 300, total 1000 -> 1200: 150/200
	assert.InDelta(t, 75.0, r.Update(Sample{Busy: 300, Total: 1200}), 1e-4)

	// no elapsed time: previous value retained
	assert.InDelta(t, 75.0, r.Update(Sample{Busy: 300, Total: 1200}), 1e-4)

	// counter reset
	assert.Equal(t, float32(0), r.Update(Sample{Busy: 1, Total: 5}))

	// continues from the reset baseline
	assert.InDelta(t, 10.0, r.Update(Sample{Busy: 11, Total: 105}), 1e-4)
}

func TestRatio_NeverNaNOrOutOfRange(t *testing.T) {
	var r Ratio
	samples := []Sample{
		{0, 0}, {0, 0}, {10, 0}, {20, 10}, {5, 3}, {math.MaxUint64, math.MaxUint64}, {0, 1},
	}
	for _, s := range samples {
		v := r.Update(s)
		assert.False(t, math.IsNaN(float64(v)), "NaN for %+v", s)
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(100))
	}
}

func TestCounter(t *testing.T) {
	var c Counter
	assert.Zero(t, c.Update(1000), "first sample")
	assert.Zero(t, c.Update(1000), "no traffic")
	assert.Equal(t, uint64(250), c.Update(1250))
	assert.Equal(t, uint64(1250), c.Total())
	assert.Equal(t, uint64(250), c.Delta())
	assert.Zero(t, c.Update(40), "reset floors at zero")
	assert.Equal(t, uint64(40), c.Total())
	assert.Equal(t, uint64(60), c.Update(100))
}
