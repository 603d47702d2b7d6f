package analysis

import (
	"math"

	"lawkit/domain/law"
	"lawkit/internal/config"
)

// withLaw returns a resolved configuration whose law record is the defaults
// adjusted by mutate.
func withLaw(mutate func(*config.LawConfig)) *config.Resolved {
	cfg := config.Default()
	lc := config.DefaultLawConfig()
	if mutate != nil {
		mutate(&lc)
	}
	cfg.Law = &lc
	return cfg
}

func numbers(values ...float64) law.Dataset {
	return law.Dataset{Path: "test", Numbers: values}
}

// perfectBenford builds n values whose first digits match Benford's law up
// to rounding.
func perfectBenford(n int) []float64 {
	var out []float64
	for d := 1; d <= 9; d++ {
		count := int(math.Round(float64(n) * math.Log10(1+1/float64(d))))
		for i := 0; i < count; i++ {
			out = append(out, float64(d)*math.Pow(10, float64(i%4)))
		}
	}
	return out
}

// logUniformGrid spreads n values evenly over six decades on a log scale.
func logUniformGrid(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Pow(10, 6*(float64(i)+0.5)/float64(n))
	}
	return out
}
