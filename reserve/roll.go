package reserve

import "golang.org/x/exp/rand"

// Roller draws uniform percentages in [0, 100).
type Roller interface {
	Roll() float64
}

type pcgRoller struct {
	r *rand.Rand
}

// NewRoller returns a deterministic Roller for seed.
func NewRoller(seed uint64) Roller {
	return &pcgRoller{r: rand.New(rand.NewSource(seed))}
}

func (p *pcgRoller) Roll() float64 {
	return p.r.Float64() * 100
}

// Fixed always rolls the same value.
type Fixed float64

func (f Fixed) Roll() float64 { return float64(f) }
