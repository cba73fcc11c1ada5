// This file is part of cpvc.
//
// cpvc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cpvc is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with cpvc.  If not, see <https://www.gnu.org/licenses/>.


// Package wavwriter captures the audio output of an engine and writes it to
// disk as a WAV file. Note that audio data is buffered in memory in its
// entirety and written to disk when EndMixing() is called. It is therefore
// only suitable for short recordings and for testing purposes.
package wavwriter

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/alybaek2/cpvc-sub002/curated"
	"github.com/alybaek2/cpvc-sub002/emulation"
	"github.com/alybaek2/cpvc-sub002/logger"
)

// the number of samples read from the engine at a time.
const chunk = 4096

// WavWriter accumulates audio samples from an engine.
type WavWriter struct {
	filename   string
	sampleRate int
	buffer     []int
	scratch    []int16
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string, sampleRate int) (*WavWriter, error) {
	if sampleRate <= 0 {
		return nil, curated.Errorf("wavwriter: %v", "sample rate must be positive")
	}

	aw := &WavWriter{
		filename:   filename,
		sampleRate: sampleRate,
		buffer:     make([]int, 0),
		scratch:    make([]int16, chunk),
	}

	return aw, nil
}

// Capture reads all the audio samples waiting in the engine. It must be
// called with whatever lock protects the engine. Returns the number of
// samples read.
func (aw *WavWriter) Capture(e emulation.Engine) int {
	total := 0
	for {
		n := e.ReadAudioSamples(aw.scratch, 0, len(aw.scratch))
		for _, s := range aw.scratch[:n] {
			aw.buffer = append(aw.buffer, int(s))
		}
		total += n
		if n < len(aw.scratch) {
			break
		}
	}
	return total
}

// Len returns the number of samples captured so far.
func (aw *WavWriter) Len() int {
	return len(aw.buffer)
}

// EndMixing writes the captured samples to the WAV file.
func (aw *WavWriter) EndMixing() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	enc := wav.NewEncoder(f, aw.sampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  aw.sampleRate,
		},
		Data:           aw.buffer,
		SourceBitDepth: 16,
	}

	logger.Logf(logger.Allow, "wavwriter", "writing %d samples to %s", len(aw.buffer), aw.filename)

	if err := enc.Write(buf); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	if err := enc.Close(); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	return nil
}
