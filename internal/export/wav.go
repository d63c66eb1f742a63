package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/san-kum/springsim/internal/sim"
)

// WAVOptions controls sonification. The displacement x(t), normalised to
// its peak, modulates the amplitude of a sine carrier. Speed > 1 plays the
// trajectory faster than real time.
type WAVOptions struct {
	SampleRate int
	Carrier    float64
	Speed      float64
	Volume     float64
}

func DefaultWAVOptions() WAVOptions {
	return WAVOptions{SampleRate: 44100, Carrier: 440, Speed: 1, Volume: 0.8}
}

// WriteWAV encodes a mono 16-bit WAV of traj.
func WriteWAV(w io.WriteSeeker, traj *sim.Trajectory, opts WAVOptions) error {
	if opts.SampleRate <= 0 || !(opts.Carrier > 0) || !(opts.Speed > 0) {
		return fmt.Errorf("invalid wav options %+v", opts)
	}
	if opts.Volume <= 0 || opts.Volume > 1 {
		opts.Volume = DefaultWAVOptions().Volume
	}

	rate := beep.SampleRate(opts.SampleRate)
	s := newDisplacementStreamer(traj, rate, opts)
	format := beep.Format{SampleRate: rate, NumChannels: 1, Precision: 2}
	return wav.Encode(w, s, format)
}

// WAVDuration is the length of the audio produced for traj.
func WAVDuration(traj *sim.Trajectory, opts WAVOptions) time.Duration {
	return time.Duration(traj.Duration() / opts.Speed * float64(time.Second))
}

type displacementStreamer struct {
	t, x    []float64
	peak    float64
	rate    beep.SampleRate
	opts    WAVOptions
	pos     int
	samples int
	idx     int
}

func newDisplacementStreamer(traj *sim.Trajectory, rate beep.SampleRate, opts WAVOptions) *displacementStreamer {
	peak := 0.0
	for _, v := range traj.X {
		peak = math.Max(peak, math.Abs(v))
	}
	return &displacementStreamer{
		t:       traj.T,
		x:       traj.X,
		peak:    peak,
		rate:    rate,
		opts:    opts,
		samples: rate.N(WAVDuration(traj, opts)),
	}
}

func (s *displacementStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.pos >= s.samples {
			return i, i > 0
		}
		audioT := float64(s.pos) / float64(s.rate)
		env := 0.0
		if s.peak > 0 {
			env = s.displacementAt(s.t[0]+audioT*s.opts.Speed) / s.peak
		}
		val := s.opts.Volume * env * math.Sin(2*math.Pi*s.opts.Carrier*audioT)
		samples[i][0] = val
		samples[i][1] = val
		s.pos++
	}
	return len(samples), true
}

func (s *displacementStreamer) Err() error { return nil }

// displacementAt interpolates x linearly. Calls arrive with increasing t.
func (s *displacementStreamer) displacementAt(t float64) float64 {
	n := len(s.t)
	for s.idx+1 < n && s.t[s.idx+1] <= t {
		s.idx++
	}
	if s.idx+1 >= n {
		return s.x[n-1]
	}
	t0, t1 := s.t[s.idx], s.t[s.idx+1]
	frac := (t - t0) / (t1 - t0)
	return s.x[s.idx] + frac*(s.x[s.idx+1]-s.x[s.idx])
}
