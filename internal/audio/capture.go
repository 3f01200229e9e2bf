// Package audio records microphone input through PortAudio and serializes
// finished recordings as mono 16-bit PCM WAV files.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// ErrAlreadyRecording is returned when Start is called while a recording is active.
var ErrAlreadyRecording = errors.New("recording already in progress")

// ErrNotRecording is returned when Stop is called with no active recording.
var ErrNotRecording = errors.New("no recording in progress")

const framesPerBuffer = 512

// Config holds capture settings.
type Config struct {
	SampleRate  int           // default 44100 Hz
	MaxDuration time.Duration // recording length ceiling, default 60s
	Dir         string        // directory for finished WAV files, default os.TempDir()
}

// DefaultConfig returns the default capture configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:  44100,
		MaxDuration: 60 * time.Second,
	}
}

// Capture records mono audio from the default input device. A recording is
// bounded by MaxDuration; Stop writes whatever was captured up to that point.
type Capture struct {
	mu sync.Mutex

	sampleRate int
	maxSamples int
	dir        string

	stream    *portaudio.Stream
	frames    []int16
	samples   []int16
	recording bool
	startedAt time.Time
	done      chan struct{}

	initialized bool
}

// NewCapture initializes PortAudio and returns a Capture ready to record.
func NewCapture(cfg Config) (*Capture, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 44100
	}
	if cfg.MaxDuration == 0 {
		cfg.MaxDuration = 60 * time.Second
	}
	if cfg.Dir == "" {
		cfg.Dir = os.TempDir()
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	return &Capture{
		sampleRate:  cfg.SampleRate,
		maxSamples:  int(cfg.MaxDuration.Seconds() * float64(cfg.SampleRate)),
		dir:         cfg.Dir,
		initialized: true,
	}, nil
}

// Start opens the default input device and begins buffering samples. It
// returns immediately; capture runs until Stop or until the buffer is full.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.recording {
		return ErrAlreadyRecording
	}

	c.frames = make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(
		1, // input channels, mono
		0, // no output
		float64(c.sampleRate),
		framesPerBuffer,
		c.frames,
	)
	if err != nil {
		return fmt.Errorf("opening input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("starting input stream: %w", err)
	}

	c.stream = stream
	c.samples = make([]int16, 0, c.maxSamples)
	c.recording = true
	c.startedAt = time.Now()
	c.done = make(chan struct{})

	go c.captureLoop()

	return nil
}

// captureLoop reads from the stream into the sample buffer until the
// recording is stopped or the buffer reaches maxSamples.
func (c *Capture) captureLoop() {
	defer close(c.done)

	for {
		c.mu.Lock()
		if !c.recording || c.stream == nil || len(c.samples) >= c.maxSamples {
			c.mu.Unlock()
			return
		}
		stream := c.stream
		c.mu.Unlock()

		if err := stream.Read(); err != nil {
			// Stop closes the stream out from under us; check before retrying.
			c.mu.Lock()
			still := c.recording
			c.mu.Unlock()
			if !still {
				return
			}
			continue
		}

		c.mu.Lock()
		c.samples = appendBounded(c.samples, c.frames, c.maxSamples)
		c.mu.Unlock()
	}
}

// Stop halts capture and writes the buffered samples to a uniquely named
// WAV file, returning its path. The caller owns the file.
func (c *Capture) Stop() (string, error) {
	c.mu.Lock()
	if !c.recording {
		c.mu.Unlock()
		return "", ErrNotRecording
	}

	c.recording = false
	stream := c.stream
	c.stream = nil
	done := c.done
	c.mu.Unlock()

	if stream != nil {
		stream.Stop()
		stream.Close()
	}
	<-done

	c.mu.Lock()
	samples := c.samples
	c.samples = nil
	c.mu.Unlock()

	path := filepath.Join(c.dir, recordingName(time.Now()))
	if err := writeWAV(path, samples, c.sampleRate); err != nil {
		return "", fmt.Errorf("writing recording: %w", err)
	}

	return path, nil
}

// Recording reports whether a capture is active.
func (c *Capture) Recording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// Elapsed returns how long the current recording has been running.
func (c *Capture) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.recording {
		return 0
	}
	return time.Since(c.startedAt)
}

// Close stops any active recording and terminates PortAudio.
func (c *Capture) Close() error {
	if _, err := c.Stop(); err != nil && !errors.Is(err, ErrNotRecording) {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		c.initialized = false
		if err := portaudio.Terminate(); err != nil {
			return fmt.Errorf("terminating portaudio: %w", err)
		}
	}
	return nil
}

// appendBounded appends src to dst without exceeding limit samples.
func appendBounded(dst, src []int16, limit int) []int16 {
	room := limit - len(dst)
	if room <= 0 {
		return dst
	}
	if len(src) > room {
		src = src[:room]
	}
	return append(dst, src...)
}

// recordingName builds the capture filename embedding the stop timestamp.
func recordingName(t time.Time) string {
	return fmt.Sprintf("recording_%d.wav", t.Unix())
}
