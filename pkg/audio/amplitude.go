package audio

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/aretw0/beatbox/pkg/domain"
)

// Level is the amplitude produced for one terminal.
// When Min == Max the level is constant; otherwise every sample is drawn uniformly from [Min, Max].
type Level struct {
	Min, Max int
}

// Fixed returns a constant level.
func Fixed(v int) Level {
	return Level{Min: v, Max: v}
}

// Noise returns a uniformly random level in [lo, hi]. The span must fit in an int.
func Noise(lo, hi int) Level {
	return Level{Min: lo, Max: hi}
}

// Sample draws one sample value, clamped to the signed 8-bit range.
func (l Level) Sample(rng *rand.Rand) int8 {
	v := l.Min
	if l.Max > l.Min {
		v += rng.IntN(l.Max - l.Min + 1)
	}
	return clamp(v)
}

func (l Level) String() string {
	if l.Min == l.Max {
		return strconv.Itoa(l.Min)
	}
	return fmt.Sprintf("%d..%d", l.Min, l.Max)
}

// ParseLevel parses "16", "-16" or a noise range "-16..16". Values are clamped to
// the signed 8-bit range.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if a, b, ok := strings.Cut(s, ".."); ok {
		lo, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return Level{}, fmt.Errorf("invalid level %q: %w", s, err)
		}
		hi, err := strconv.Atoi(strings.TrimSpace(b))
		if err != nil {
			return Level{}, fmt.Errorf("invalid level %q: %w", s, err)
		}
		if lo > hi {
			return Level{}, fmt.Errorf("invalid level %q: empty range", s)
		}
		return Noise(int(clamp(lo)), int(clamp(hi))), nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return Level{}, fmt.Errorf("invalid level %q: %w", s, err)
	}
	return Fixed(int(clamp(v))), nil
}

// Amplitudes maps terminals to sample levels. Unmapped terminals are silent (0).
type Amplitudes map[domain.Symbol]Level

// DefaultAmplitudes is the mapping for the "_-0?" terminal set:
// low, high, silence and noise.
func DefaultAmplitudes() Amplitudes {
	return Amplitudes{
		'_': Fixed(-16),
		'-': Fixed(16),
		'0': Fixed(0),
		'?': Noise(-16, 16),
	}
}

// ParseAmplitudes builds a table from configuration, e.g. {"_": "-16", "?": "-16..16"}.
func ParseAmplitudes(raw map[string]string) (Amplitudes, error) {
	amps := make(Amplitudes, len(raw))
	for key, val := range raw {
		if len(key) != 1 {
			return nil, fmt.Errorf("amplitude key %q must be a single character", key)
		}
		level, err := ParseLevel(val)
		if err != nil {
			return nil, fmt.Errorf("amplitude for %q: %w", key, err)
		}
		amps[domain.Symbol(key[0])] = level
	}
	return amps, nil
}

// Level returns the level for sym, or silence when sym is unmapped.
func (a Amplitudes) Level(sym domain.Symbol) Level {
	return a[sym]
}

func clamp(v int) int8 {
	switch {
	case v > math.MaxInt8:
		return math.MaxInt8
	case v < math.MinInt8:
		return math.MinInt8
	}
	return int8(v)
}
