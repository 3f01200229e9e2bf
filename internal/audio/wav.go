package audio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

// writeWAV writes samples to path as a mono 16-bit PCM WAV file.
func writeWAV(path string, samples []int16, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	dataSize := len(samples) * 2

	// RIFF header
	w.WriteString("RIFF")
	binary.Write(w, binary.LittleEndian, uint32(36+dataSize))
	w.WriteString("WAVE")

	// fmt chunk
	w.WriteString("fmt ")
	binary.Write(w, binary.LittleEndian, uint32(16))           // chunk size
	binary.Write(w, binary.LittleEndian, uint16(1))            // PCM
	binary.Write(w, binary.LittleEndian, uint16(1))            // mono
	binary.Write(w, binary.LittleEndian, uint32(sampleRate))   // sample rate
	binary.Write(w, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	binary.Write(w, binary.LittleEndian, uint16(2))            // block align
	binary.Write(w, binary.LittleEndian, uint16(16))           // bits per sample

	// data chunk
	w.WriteString("data")
	binary.Write(w, binary.LittleEndian, uint32(dataSize))
	if err := binary.Write(w, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing file: %w", err)
	}
	return f.Sync()
}
