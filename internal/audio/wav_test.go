package audio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteWAV(t *testing.T) {
	samples := []int16{0, 1000, -1000, 32767, -32768}
	path := filepath.Join(t.TempDir(), "out.wav")

	if err := writeWAV(path, samples, 44100); err != nil {
		t.Fatalf("writeWAV: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if len(raw) != 44+len(samples)*2 {
		t.Fatalf("file size = %d, want %d", len(raw), 44+len(samples)*2)
	}

	if string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if string(raw[12:16]) != "fmt " || string(raw[36:40]) != "data" {
		t.Error("missing fmt/data chunks")
	}

	if format := binary.LittleEndian.Uint16(raw[20:22]); format != 1 {
		t.Errorf("audio format = %d, want 1 (PCM)", format)
	}
	if channels := binary.LittleEndian.Uint16(raw[22:24]); channels != 1 {
		t.Errorf("channels = %d, want 1", channels)
	}
	if rate := binary.LittleEndian.Uint32(raw[24:28]); rate != 44100 {
		t.Errorf("sample rate = %d, want 44100", rate)
	}
	if bits := binary.LittleEndian.Uint16(raw[34:36]); bits != 16 {
		t.Errorf("bits per sample = %d, want 16", bits)
	}
	if dataSize := binary.LittleEndian.Uint32(raw[40:44]); int(dataSize) != len(samples)*2 {
		t.Errorf("data size = %d, want %d", dataSize, len(samples)*2)
	}

	for i, want := range samples {
		got := int16(binary.LittleEndian.Uint16(raw[44+i*2 : 46+i*2]))
		if got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
}

func TestWriteWAVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")

	if err := writeWAV(path, nil, 44100); err != nil {
		t.Fatalf("writeWAV: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 44 {
		t.Errorf("empty recording size = %d, want 44 (header only)", info.Size())
	}
}

func TestAppendBounded(t *testing.T) {
	tests := []struct {
		name    string
		dst     []int16
		src     []int16
		limit   int
		wantLen int
	}{
		{"fits", []int16{1, 2}, []int16{3, 4}, 10, 4},
		{"exact", []int16{1, 2}, []int16{3, 4}, 4, 4},
		{"truncated", []int16{1, 2}, []int16{3, 4, 5}, 4, 4},
		{"full", []int16{1, 2, 3, 4}, []int16{5}, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := appendBounded(tt.dst, tt.src, tt.limit)
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
			if len(got) > tt.limit {
				t.Errorf("len %d exceeds limit %d", len(got), tt.limit)
			}
		})
	}
}

func TestRecordingName(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	if got := recordingName(ts); got != "recording_1700000000.wav" {
		t.Errorf("recordingName = %q", got)
	}
}
