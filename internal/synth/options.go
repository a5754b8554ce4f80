package synth

// Option configures a Generator.
type Option func(*Generator)

// WithSeed fixes the random stream. Equal seeds give equal catalogues.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithCount sets the number of records generated.
func WithCount(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.count = n
		}
	}
}

// WithSpaceGroups sets how many distinct space groups records are spread over.
func WithSpaceGroups(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.groups = n
		}
	}
}

// WithDefectRate sets the fraction of records generated with a data problem
// (missing cell area, zero cell area or a malformed lattice).
func WithDefectRate(rate float64) Option {
	return func(g *Generator) {
		if rate >= 0 && rate <= 1 {
			g.defectRate = rate
		}
	}
}
