// Package transcribe converts recorded audio files to text.
package transcribe

import "context"

// Transcriber is the interface for speech-to-text backends.
type Transcriber interface {
	// TranscribeFile reads the audio file at path and returns the
	// recognized text.
	TranscribeFile(ctx context.Context, path string) (string, error)
}
