package pcm

import "testing"

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		want     Format
		wantErr  bool
	}{
		{name: "mono", channels: 1, want: Mono16},
		{name: "stereo", channels: 2, want: Stereo16},
		{name: "zero", channels: 0, wantErr: true},
		{name: "surround", channels: 6, wantErr: true},
		{name: "negative", channels: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFor(tt.channels)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("FormatFor(%d) expected error, got %v", tt.channels, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatFor(%d) unexpected error: %v", tt.channels, err)
			}
			if got != tt.want {
				t.Errorf("FormatFor(%d) = %v, want %v", tt.channels, got, tt.want)
			}
		})
	}
}

func TestFormatGeometry(t *testing.T) {
	if got := Mono16.FrameSize(); got != 2 {
		t.Errorf("Mono16.FrameSize() = %d, want 2", got)
	}
	if got := Stereo16.FrameSize(); got != 4 {
		t.Errorf("Stereo16.FrameSize() = %d, want 4", got)
	}
	if got := Mono16.Channels(); got != 1 {
		t.Errorf("Mono16.Channels() = %d, want 1", got)
	}
	if got := Stereo16.Channels(); got != 2 {
		t.Errorf("Stereo16.Channels() = %d, want 2", got)
	}
}

func TestSampleRoundTrip(t *testing.T) {
	values := []int16{0, 1, -1, 255, 256, -256, 12345, -12345, 32767, -32768}
	buf := make([]byte, len(values)*2)

	for i, v := range values {
		PutSample(buf, i, v)
	}
	for i, want := range values {
		if got := Sample(buf, i); got != want {
			t.Errorf("Sample(buf, %d) = %d, want %d", i, got, want)
		}
	}
}

func TestSampleByteOrder(t *testing.T) {
	// 0x0201 little-endian: low byte first.
	buf := []byte{0x01, 0x02}
	if got := Sample(buf, 0); got != 0x0201 {
		t.Errorf("Sample = %#04x, want 0x0201", got)
	}
}

func TestFloat(t *testing.T) {
	tests := []struct {
		in   int16
		want float64
	}{
		{0, 0},
		{16384, 0.5},
		{-16384, -0.5},
		{-32768, -1.0},
	}
	for _, tt := range tests {
		if got := Float(tt.in); got != tt.want {
			t.Errorf("Float(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := Float(32767); got >= 1.0 || got < 0.999 {
		t.Errorf("Float(32767) = %v, want just below 1.0", got)
	}
}
