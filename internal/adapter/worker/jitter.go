package worker

import (
	"math/rand/v2"
	"time"
)

// Jitter samples delays uniformly from [mean-spread, mean+spread].
// Samples may be negative when spread exceeds mean.
type Jitter struct {
	mean   time.Duration
	spread time.Duration
	rand   func() float64
}

func NewJitter(mean, spread time.Duration) *Jitter {
	return &Jitter{
		mean:   mean,
		spread: spread,
		rand:   rand.Float64,
	}
}

func (j *Jitter) Next() time.Duration {
	if j.spread <= 0 {
		return j.mean
	}

	offset := (2*j.rand() - 1) * float64(j.spread)

	return j.mean + time.Duration(offset)
}
