// Package wavcapture records the emulator's audio stream to a WAV file.
package wavcapture

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ushitora-anqou/gbemu/util"
)

const bitDepth = 16

// Recorder streams interleaved float32 buffers to disk as 16-bit PCM.
type Recorder struct {
	path string
	f    *os.File
	enc  *wav.Encoder
	buf  *audio.IntBuffer
}

func Create(path string, sampleRate, channels int) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wavcapture: %w", err)
	}
	util.Logf("wavcapture", "writing audio to %s", path)
	return &Recorder{
		path: path,
		f:    f,
		enc:  wav.NewEncoder(f, sampleRate, bitDepth, channels, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write appends samples in the range [-1, 1]; values outside it are clipped.
func (r *Recorder) Write(samples []float32) error {
	if cap(r.buf.Data) < len(samples) {
		r.buf.Data = make([]int, len(samples))
	}
	r.buf.Data = r.buf.Data[:len(samples)]
	for i, v := range samples {
		switch {
		case v > 1:
			v = 1
		case v < -1:
			v = -1
		}
		r.buf.Data[i] = int(v * 0x7fff)
	}
	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("wavcapture: %s: %w", r.path, err)
	}
	return nil
}

// Close finalises the header and closes the file.
func (r *Recorder) Close() error {
	encErr := r.enc.Close()
	closeErr := r.f.Close()
	if encErr != nil {
		return fmt.Errorf("wavcapture: %s: %w", r.path, encErr)
	}
	if closeErr != nil {
		return fmt.Errorf("wavcapture: %s: %w", r.path, closeErr)
	}
	return nil
}
