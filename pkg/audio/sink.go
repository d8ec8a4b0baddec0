package audio

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/aretw0/beatbox/pkg/domain"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Container format. These are fixed by the output contract.
const (
	SampleRate = 8000
	BitDepth   = 8
	Channels   = 1

	wavFormatPCM = 1
	// 8-bit PCM WAV stores unsigned samples centred on 128.
	unsignedOffset = 128
)

// Sink maps terminals to samples and encodes them as WAV.
// A Sink is not safe for concurrent use.
type Sink struct {
	amps Amplitudes
	rng  *rand.Rand
	buf  *Buffer
}

// SinkOption configures a Sink.
type SinkOption func(*sinkConfig)

type sinkConfig struct {
	amps    Amplitudes
	seed    uint64
	initial int
}

// WithAmplitudes replaces the default terminal → level table.
func WithAmplitudes(amps Amplitudes) SinkOption {
	return func(c *sinkConfig) {
		c.amps = amps
	}
}

// WithSeed seeds the noise generator. The same seed renders identical files.
func WithSeed(seed uint64) SinkOption {
	return func(c *sinkConfig) {
		c.seed = seed
	}
}

// WithInitialCapacity sets the initial sample allocation.
func WithInitialCapacity(n int) SinkOption {
	return func(c *sinkConfig) {
		c.initial = n
	}
}

// NewSink creates an empty sink.
func NewSink(opts ...SinkOption) *Sink {
	cfg := sinkConfig{
		amps:    DefaultAmplitudes(),
		seed:    1,
		initial: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Sink{
		amps: cfg.amps,
		rng:  rand.New(rand.NewPCG(cfg.seed, cfg.seed)),
		buf:  NewBuffer(cfg.initial),
	}
}

// Write appends the sample for one terminal.
func (s *Sink) Write(sym domain.Symbol) error {
	s.buf.Append(s.amps.Level(sym).Sample(s.rng))
	return nil
}

// Len returns the number of samples written.
func (s *Sink) Len() int {
	return s.buf.Len()
}

// Samples returns the written samples.
func (s *Sink) Samples() []int8 {
	return s.buf.Samples()
}

// Duration returns the playing time in seconds.
func (s *Sink) Duration() float64 {
	return float64(s.buf.Len()) / SampleRate
}

// Encode writes the samples as a mono, 8 kHz, 8-bit PCM WAV stream.
func (s *Sink) Encode(w io.WriteSeeker) error {
	samples := s.buf.Samples()
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(v) + unsignedOffset
	}

	enc := wav.NewEncoder(w, SampleRate, BitDepth, Channels, wavFormatPCM)
	err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: Channels, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: BitDepth,
	})
	if err != nil {
		return fmt.Errorf("failed to encode samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav: %w", err)
	}
	return nil
}

// WriteFile encodes the samples into a new file at path.
func (s *Sink) WriteFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return s.Encode(f)
}
