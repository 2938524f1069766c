// Package decode turns compressed audio streams into interleaved signed
// 16-bit little-endian PCM.
package decode

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnsupported is returned for file types no decoder handles.
var ErrUnsupported = errors.New("unsupported audio format")

// Decoder streams interleaved 16-bit little-endian PCM. Short reads are
// allowed; io.EOF marks the end of the stream. Close releases decoder
// state only: the underlying reader belongs to the caller, who may seek
// it back and construct a fresh decoder over it.
type Decoder interface {
	Read(p []byte) (int, error)
	// SampleRate reports the stream rate in frames per second.
	SampleRate() int
	// Channels reports the interleaved channel count, 1 or 2.
	Channels() int
	// Frames reports the total frame count when the container declares
	// it, zero otherwise.
	Frames() int64
	Close() error
}

// New constructs a decoder over r chosen by file extension, validating
// the content as it goes.
func New(r io.ReadSeeker, ext string) (Decoder, error) {
	switch strings.ToLower(ext) {
	case ".mp3":
		return NewMP3(r)
	case ".wav":
		return NewWAV(r)
	case ".flac":
		return NewFLAC(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}
