package analysis

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

const (
	defaultParetoAlpha   = 1.16 // alpha of the 80/20 rule
	defaultPoissonLambda = 5.0
	defaultZipfExponent  = 1.0
	defaultZipfNoise     = 0.02
	defaultBenfordMax    = 1e6
	defaultZipfAmplitude = 1e6
)

// Generator produces synthetic samples that follow one of the five laws.
// The same seed and parameters always yield the same sample.
//
// Samples are stratified: each value comes from its own equal-probability
// slice of the law, so even a thousand values analyze as conformant.
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

// genParams is the fully resolved request.
type genParams struct {
	dist   law.ID
	count  int
	lo, hi *float64
	seed   *uint64
	params map[string]float64
}

// Generate draws a sample. spec may be nil; its fields override the
// generate_* configuration values.
func (g *Generator) Generate(ctx context.Context, spec *law.GenerateSpec, cfg *config.Resolved) (*law.GeneratedData, error) {
	p, err := resolveGenParams(spec, cfg.LawSettings())
	if err != nil {
		return nil, err
	}

	seed := rand.Uint64()
	if p.seed != nil {
		seed = *p.seed
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)

	var draw func() float64
	used := map[string]float64{}
	switch p.dist {
	case law.Benford:
		draw, err = benfordSampler(rng, p, used)
	case law.Pareto:
		draw, err = paretoSampler(rng, p, used)
	case law.Zipf:
		draw, err = zipfSampler(rng, p, used)
	case law.Normal:
		draw = normalSampler(rng, p, used)
	case law.Poisson:
		draw = poissonSampler(src, rng, p, used)
	}
	if err != nil {
		return nil, err
	}

	data := make([]float64, p.count)
	for i := range data {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		data[i] = draw()
	}

	out := &law.GeneratedData{
		Path:       "generated:" + string(p.dist),
		DataType:   string(p.dist),
		Count:      p.count,
		Parameters: used,
		SampleData: data,
	}
	if p.seed != nil {
		s := *p.seed
		out.Seed = &s
	}
	return out, nil
}

func resolveGenParams(spec *law.GenerateSpec, lc config.LawConfig) (genParams, error) {
	p := genParams{
		dist:   law.Benford,
		count:  lc.GenerateCount,
		lo:     lc.GenerateRangeMin,
		hi:     lc.GenerateRangeMax,
		seed:   lc.GenerateSeed,
		params: map[string]float64{},
	}
	if spec != nil {
		if spec.Distribution != "" {
			id, ok := law.ParseSingle(spec.Distribution)
			if !ok {
				return p, errors.UnknownLaw(spec.Distribution)
			}
			p.dist = id
		}
		if spec.Count != nil {
			p.count = *spec.Count
		}
		if spec.Min != nil {
			p.lo = spec.Min
		}
		if spec.Max != nil {
			p.hi = spec.Max
		}
		if spec.Seed != nil {
			p.seed = spec.Seed
		}
		for k, v := range spec.Params {
			p.params[k] = v
		}
	}

	if p.count <= 0 {
		return p, errors.InvalidConfigurationf("count", "must be positive, got %d", p.count)
	}
	if p.count > config.MaxGenerateCount {
		return p, errors.InvalidConfigurationf("count", "must not exceed %d, got %d", config.MaxGenerateCount, p.count)
	}
	if p.lo != nil && p.hi != nil && !(*p.lo < *p.hi) {
		return p, errors.InvalidConfigurationf("range", "min %g must be below max %g", *p.lo, *p.hi)
	}
	for k, v := range p.params {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return p, errors.InvalidConfigurationf("params."+k, "must be finite")
		}
	}
	return p, nil
}

// param returns a positive named parameter or its default.
func (p genParams) param(name string, def float64) (float64, error) {
	v, ok := p.params[name]
	if !ok {
		return def, nil
	}
	if v <= 0 {
		return 0, errors.InvalidConfigurationf("params."+name, "must be positive, got %g", v)
	}
	return v, nil
}

// stratified draws one point from each of n equal-probability slices of
// the quantile function, in ascending order, and serves them shuffled. Small
// samples then keep the shape of the law instead of the noise of the draw.
func stratified(rng *rand.Rand, n int, quantile func(u float64) float64) func() float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = quantile((float64(i) + rng.Float64()) / float64(n))
	}
	return shuffled(rng, values)
}

func shuffled(rng *rand.Rand, values []float64) func() float64 {
	rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	next := 0
	return func() float64 {
		v := values[next]
		next++
		return v
	}
}

// benfordSampler is log-uniform, which yields Benford digits when the range
// spans whole decades.
func benfordSampler(rng *rand.Rand, p genParams, used map[string]float64) (func() float64, error) {
	lo, hi := 1.0, defaultBenfordMax
	if p.lo != nil && *p.lo > 0 {
		lo = *p.lo
	}
	if p.hi != nil {
		hi = *p.hi
	}
	if !(lo < hi) {
		return nil, errors.InvalidConfigurationf("range", "benford needs a positive range, got [%g, %g]", lo, hi)
	}
	used["min"], used["max"] = lo, hi
	logLo, logHi := math.Log(lo), math.Log(hi)
	return stratified(rng, p.count, func(u float64) float64 {
		return math.Exp(logLo + u*(logHi-logLo))
	}), nil
}

// paretoSampler inverts the (optionally truncated) Pareto CDF. Without an
// upper bound the top slice has unbounded variance, so it takes the slice's
// conditional mean when that is finite.
func paretoSampler(rng *rand.Rand, p genParams, used map[string]float64) (func() float64, error) {
	alpha, err := p.param("alpha", defaultParetoAlpha)
	if err != nil {
		return nil, err
	}
	xm := 1.0
	if p.lo != nil && *p.lo > 0 {
		xm = *p.lo
	}
	hi := math.Inf(1)
	if p.hi != nil {
		hi = *p.hi
		used["max"] = hi
	}
	if !(xm < hi) {
		return nil, errors.InvalidConfigurationf("range", "pareto scale %g must be below max %g", xm, hi)
	}
	used["alpha"], used["min"] = alpha, xm

	// mass below hi; 1 when unbounded
	mass := 1 - math.Pow(xm/hi, alpha)
	n := p.count
	values := make([]float64, n)
	for i := range values {
		u := (float64(i) + rng.Float64()) / float64(n)
		values[i] = math.Min(hi, xm*math.Pow(1-u*mass, -1/alpha))
	}
	if math.IsInf(hi, 1) && alpha > 1 {
		tail := 1 / float64(n)
		values[n-1] = float64(n) * xm * math.Pow(tail, 1-1/alpha) / (1 - 1/alpha)
	}
	return shuffled(rng, values), nil
}

// zipfSampler returns frequencies in rank order: amplitude / rank^s with a
// small multiplicative jitter, rounded to whole counts.
func zipfSampler(rng *rand.Rand, p genParams, used map[string]float64) (func() float64, error) {
	s, err := p.param("exponent", defaultZipfExponent)
	if err != nil {
		return nil, err
	}
	noise := defaultZipfNoise
	if v, ok := p.params["noise"]; ok {
		if v < 0 {
			return nil, errors.InvalidConfigurationf("params.noise", "must not be negative, got %g", v)
		}
		noise = v
	}
	amplitude := defaultZipfAmplitude
	if p.hi != nil && *p.hi > 0 {
		amplitude = *p.hi
	}
	used["exponent"], used["noise"], used["max"] = s, noise, amplitude

	rank := 0
	return func() float64 {
		rank++
		f := amplitude / math.Pow(float64(rank), s) * (1 + noise*rng.NormFloat64())
		return math.Max(1, math.Round(f))
	}, nil
}

// normalSampler centres the distribution on the range with the range
// spanning six standard deviations; without a range it is standard normal.
// Draws are confined to the range by inverting the CDF between its ends.
func normalSampler(rng *rand.Rand, p genParams, used map[string]float64) func() float64 {
	mu, sigma := 0.0, 1.0
	lo, hi := math.Inf(-1), math.Inf(1)
	if p.lo != nil && p.hi != nil {
		lo, hi = *p.lo, *p.hi
		mu, sigma = (lo+hi)/2, (hi-lo)/6
		used["min"], used["max"] = lo, hi
	}
	if v, ok := p.params["mean"]; ok {
		mu = v
	}
	if v, ok := p.params["std_dev"]; ok && v > 0 {
		sigma = v
	}
	used["mean"], used["std_dev"] = mu, sigma

	dist := distuv.Normal{Mu: mu, Sigma: sigma}
	cdfLo, cdfHi := dist.CDF(lo), dist.CDF(hi)
	return stratified(rng, p.count, func(u float64) float64 {
		q := cdfLo + u*(cdfHi-cdfLo)
		if q <= 0 {
			q = math.SmallestNonzeroFloat64
		}
		return math.Max(lo, math.Min(hi, dist.Quantile(math.Min(q, 1))))
	})
}

// poissonSampler walks the support once while the ascending slices are
// filled. Rates too large to walk fall back to independent draws.
func poissonSampler(src rand.Source, rng *rand.Rand, p genParams, used map[string]float64) func() float64 {
	lambda := defaultPoissonLambda
	if v, ok := p.params["lambda"]; ok && v > 0 {
		lambda = v
	}
	used["lambda"] = lambda

	spread := 10*math.Sqrt(lambda) + 10
	if 2*spread > maxPoissonSupport {
		dist := distuv.Poisson{Lambda: lambda, Src: src}
		return dist.Rand
	}
	dist := distuv.Poisson{Lambda: lambda}
	k := math.Max(0, math.Floor(lambda-spread))
	cumulative := dist.CDF(k)
	return stratified(rng, p.count, func(u float64) float64 {
		for cumulative < u && k < lambda+spread {
			k++
			cumulative += dist.Prob(k)
		}
		return k
	})
}
