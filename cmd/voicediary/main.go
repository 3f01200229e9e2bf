package main

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/voicediary/voicediary/internal/app"
	"github.com/voicediary/voicediary/internal/audio"
	"github.com/voicediary/voicediary/internal/config"
	"github.com/voicediary/voicediary/internal/store"
	"github.com/voicediary/voicediary/internal/transcribe"

	tea "github.com/charmbracelet/bubbletea"
)

var CommitHash = ""

const logLevelEnvKey = config.EnvPrefix + "LOG_LEVEL"

func createLog() *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()

	logLevelValue := os.Getenv(logLevelEnvKey)
	logLevel, logLevelErr := zapcore.ParseLevel(logLevelValue)

	if logLevelErr != nil {
		logLevel = zapcore.InfoLevel
	}

	// stdout belongs to the TUI; diagnostics go to stderr.
	rawLog := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		logLevel,
	)).Named("voicediary")

	if CommitHash != "" {
		rawLog = rawLog.With(zap.String("commit", CommitHash))
	}

	if logLevelErr != nil && logLevelValue != "" {
		rawLog.With(zap.String(logLevelEnvKey, logLevelValue)).Warn("unable to parse log level, using INFO")
	}

	return rawLog
}

func main() {
	parentLogger := createLog()
	defer parentLogger.Sync()

	log := parentLogger.Named("main")

	cfg, err := config.Parse()
	if err != nil {
		log.Fatal("failed to parse config", zap.Error(err))
	}

	ctx := context.Background()

	s, err := store.Open(ctx, store.Options{
		ProjectID:       cfg.FirestoreProjectID,
		CredentialsFile: cfg.CredentialsFile,
		Collection:      cfg.Collection,
	}, parentLogger)
	if err != nil {
		log.Fatal("failed to open entry store", zap.Error(err))
	}
	defer s.Close()

	transcriber := transcribe.NewWhisper(transcribe.WhisperOptions{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.WhisperModel,
	})

	capture, err := audio.NewCapture(audio.Config{
		SampleRate:  cfg.SampleRate,
		MaxDuration: cfg.RecordMaxDuration,
	})
	if err != nil {
		log.Fatal("failed to initialize audio capture", zap.Error(err))
	}
	defer capture.Close()

	model := app.New(app.Options{
		Store:       s,
		Recorder:    capture,
		Transcriber: transcriber,
		Logger:      parentLogger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal("program failed", zap.Error(err))
	}
}
