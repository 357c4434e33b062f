package synth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// ErrUnsupportedFormat is returned for ambience files that are not wav, mp3
// or flac.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// ambience is a decoded file looped forever under the effects.
type ambience struct {
	file     *os.File
	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	out      beep.Streamer
}

// openAmbience decodes path and prepares a loop resampled to rate.
func openAmbience(path string, rate beep.SampleRate, volume float64) (*ambience, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}

	var loop beep.Streamer = beep.Loop(-1, streamer)
	if format.SampleRate != rate {
		loop = beep.Resample(4, format.SampleRate, rate, loop)
	}
	ctrl := &beep.Ctrl{Streamer: loop}
	return &ambience{
		file:     f,
		streamer: streamer,
		ctrl:     ctrl,
		out:      newVolume(ctrl, volume),
	}, nil
}

func (a *ambience) close() {
	_ = a.streamer.Close()
	_ = a.file.Close()
}
