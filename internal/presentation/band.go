// Package presentation maps the smoothed loudness level onto the heartbeat
// visuals: color bands, status text, particle density and waveform bars.
package presentation

// BandName identifies one of the three loudness bands, ordered quiet to loud.
type BandName string

const (
	BandCalm     BandName = "calm"
	BandNormal   BandName = "normal"
	BandStressed BandName = "stressed"
)

func (n BandName) rank() int {
	switch n {
	case BandCalm:
		return 0
	case BandNormal:
		return 1
	default:
		return 2
	}
}

// Band is what a level renders as.
type Band struct {
	Name  BandName
	Label string
	Color Color
}

// BandConfig holds the breakpoints and appearance of the bands.
// Levels below CalmBelow are calm, levels at or above StressedFrom are
// stressed. Hysteresis of zero keeps the breakpoints exact.
type BandConfig struct {
	CalmBelow     float64 `yaml:"calm_below"`
	StressedFrom  float64 `yaml:"stressed_from"`
	Hysteresis    float64 `yaml:"hysteresis"`
	CalmLabel     string  `yaml:"calm_label"`
	NormalLabel   string  `yaml:"normal_label"`
	StressedLabel string  `yaml:"stressed_label"`
	CalmColor     Color   `yaml:"calm_color"`
	NormalColor   Color   `yaml:"normal_color"`
	StressedColor Color   `yaml:"stressed_color"`
}

func DefaultBandConfig() BandConfig {
	return BandConfig{
		CalmBelow:     0.1,
		StressedFrom:  0.9,
		CalmLabel:     "Calm",
		NormalLabel:   "Normal",
		StressedLabel: "Stressed",
		CalmColor:     Color{R: 0.3, G: 0.6, B: 1},
		NormalColor:   Color{R: 1, G: 0.5, B: 0.5},
		StressedColor: Color{R: 1, G: 0.1, B: 0.1},
	}
}

// Classify maps level to a band using the exact breakpoints.
func (c BandConfig) Classify(level float64) Band {
	switch {
	case level < c.CalmBelow:
		return c.band(BandCalm)
	case level < c.StressedFrom:
		return c.band(BandNormal)
	default:
		return c.band(BandStressed)
	}
}

func (c BandConfig) band(name BandName) Band {
	switch name {
	case BandCalm:
		return Band{Name: BandCalm, Label: c.CalmLabel, Color: c.CalmColor}
	case BandNormal:
		return Band{Name: BandNormal, Label: c.NormalLabel, Color: c.NormalColor}
	default:
		return Band{Name: BandStressed, Label: c.StressedLabel, Color: c.StressedColor}
	}
}

// Banding classifies a stream of levels, holding the current band until the
// level clears a breakpoint by the configured hysteresis.
type Banding struct {
	cfg     BandConfig
	current Band
	started bool
}

func NewBanding(cfg BandConfig) *Banding {
	return &Banding{cfg: cfg}
}

// Classify returns the band for level, taking the previous band into account.
func (b *Banding) Classify(level float64) Band {
	next := b.cfg.Classify(level)
	h := b.cfg.Hysteresis
	if b.started && h > 0 && next.Name != b.current.Name {
		if next.Name.rank() > b.current.Name.rank() {
			next = b.cfg.Classify(level - h)
			if next.Name.rank() <= b.current.Name.rank() {
				next = b.current
			}
		} else {
			next = b.cfg.Classify(level + h)
			if next.Name.rank() >= b.current.Name.rank() {
				next = b.current
			}
		}
	}
	b.current = next
	b.started = true
	return next
}

// Current returns the last band handed out, or calm before the first level.
func (b *Banding) Current() Band {
	if !b.started {
		return b.cfg.band(BandCalm)
	}
	return b.current
}

func (b *Banding) Reset() {
	b.started = false
	b.current = Band{}
}
