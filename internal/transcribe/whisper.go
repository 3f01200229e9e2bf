package transcribe

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultModel = "whisper-1"

// Whisper transcribes audio through the OpenAI audio transcription API.
type Whisper struct {
	client openai.Client
	model  string
}

// WhisperOptions configures a Whisper transcriber.
type WhisperOptions struct {
	APIKey  string
	Model   string // defaults to whisper-1
	BaseURL string // optional API base override
}

// NewWhisper creates a Whisper transcriber.
func NewWhisper(opts WhisperOptions) *Whisper {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	return &Whisper{
		client: openai.NewClient(reqOpts...),
		model:  model,
	}
}

// TranscribeFile uploads the audio file at path and returns the recognized
// text. A single failed attempt is returned as-is; there is no retry.
func (w *Whisper) TranscribeFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	resp, err := w.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(w.model),
		File:  f,
	})
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}

	return resp.Text, nil
}
