package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJitter_StaysWithinBounds(t *testing.T) {
	j := NewJitter(60*time.Second, 10*time.Second)

	for range 1000 {
		d := j.Next()
		require.GreaterOrEqual(t, d, 50*time.Second)
		require.LessOrEqual(t, d, 70*time.Second)
	}
}

func TestJitter_Extremes(t *testing.T) {
	j := &Jitter{mean: 5 * time.Second, spread: 10 * time.Second}

	j.rand = func() float64 { return 0 }
	require.Equal(t, -5*time.Second, j.Next())

	j.rand = func() float64 { return 0.5 }
	require.Equal(t, 5*time.Second, j.Next())
}

func TestJitter_ZeroSpreadReturnsMean(t *testing.T) {
	j := NewJitter(time.Minute, 0)
	j.rand = func() float64 { panic("must not sample") }

	require.Equal(t, time.Minute, j.Next())
}
