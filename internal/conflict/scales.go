package conflict

// Scale is an ordered sequence of claimable values. Position decides which
// claim is stricter: a higher rank always wins a mismatch.
type Scale struct {
	name   string
	values []string
	ranks  map[string]int
}

// NewScale builds a scale from values ordered least to most strict.
func NewScale(name string, values ...string) Scale {
	ranks := make(map[string]int, len(values))
	for i, v := range values {
		ranks[v] = i
	}
	return Scale{name: name, values: values, ranks: ranks}
}

// Name returns the scale name.
func (s Scale) Name() string { return s.name }

// Rank returns the position of a value on the scale. The second return is
// false for values outside the scale.
func (s Scale) Rank(value string) (int, bool) {
	r, ok := s.ranks[value]
	return r, ok
}

// ValueAt returns the value at the given rank. The second return is false
// when the rank is out of range.
func (s Scale) ValueAt(rank int) (string, bool) {
	if rank < 0 || rank >= len(s.values) {
		return "", false
	}
	return s.values[rank], true
}

// Stricter returns the higher-ranked of two values. The second return is
// false when either value is off the scale.
func (s Scale) Stricter(a, b string) (string, bool) {
	ra, okA := s.Rank(a)
	rb, okB := s.Rank(b)
	if !okA || !okB {
		return "", false
	}
	if ra >= rb {
		return a, true
	}
	return b, true
}

// ConcreteClasses is the ordered strength scale for concrete, per EN 206.
var ConcreteClasses = NewScale("concrete class",
	"C20/25", "C25/30", "C30/37", "C35/45", "C40/50", "C50/60",
)

// ExposureClasses is the ordered severity scale for environmental exposure,
// per EN 206.
var ExposureClasses = NewScale("exposure class",
	"X0",
	"XC1", "XC2", "XC3", "XC4",
	"XD1", "XD2", "XD3",
	"XS1", "XS2", "XS3",
	"XF1", "XF2", "XF3", "XF4",
	"XA1", "XA2", "XA3",
)
