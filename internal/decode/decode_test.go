package decode

import (
	"bytes"
	"errors"
	"testing"
)

// TestNew_UnsupportedExtension verifies the dispatch rejects file types
// no decoder handles with the sentinel error.
func TestNew_UnsupportedExtension(t *testing.T) {
	for _, ext := range []string{".ogg", ".txt", ".aac", ""} {
		t.Run("ext "+ext, func(t *testing.T) {
			_, err := New(bytes.NewReader(nil), ext)
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("New(%q) error = %v, want ErrUnsupported", ext, err)
			}
		})
	}
}

// TestNew_ExtensionCase verifies dispatch is case-insensitive: garbage
// content behind an uppercase extension must reach the real decoder and
// fail there, not as unsupported.
func TestNew_ExtensionCase(t *testing.T) {
	garbage := bytes.NewReader([]byte("definitely not audio data"))
	_, err := New(garbage, ".MP3")
	if err == nil {
		t.Fatal("New(.MP3, garbage) should fail")
	}
	if errors.Is(err, ErrUnsupported) {
		t.Errorf("New(.MP3) error = %v, should have dispatched to the mp3 decoder", err)
	}
}

// TestNew_BadContent verifies each construction path validates stream
// content instead of deferring the failure to the first Read.
func TestNew_BadContent(t *testing.T) {
	garbage := []byte("RIFFnope this is not audio of any kind at all....")

	for _, ext := range []string{".mp3", ".wav", ".flac"} {
		t.Run("garbage"+ext, func(t *testing.T) {
			if _, err := New(bytes.NewReader(garbage), ext); err == nil {
				t.Errorf("New(%q) accepted garbage content", ext)
			}
		})
	}
}
