package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voice-shop/config"
	"voice-shop/internal/application"
	"voice-shop/internal/infra/openai"
	"voice-shop/internal/infra/speech"
	"voice-shop/internal/infra/terminal"
	"voice-shop/internal/infra/voiceapi"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	source := flag.String("source", "", "speech source: text, file or microphone")
	endpoint := flag.String("endpoint", "", "resolver endpoint URL")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if *source != "" {
		cfg.Capture.Source = *source
	}
	if *endpoint != "" {
		cfg.Capture.Endpoint = *endpoint
	}

	// stdout belongs to the view.
	logger := cfg.Log.NewLogger(os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	var stt application.SpeechToText
	if cfg.OpenAI.APIKey != "" {
		stt = openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language)
	}

	recognizer, err := createRecognizer(cfg.Capture, stt, logger)
	if err != nil && !errors.Is(err, application.ErrUnsupported) {
		logger.Error("creating recognizer", "error", err, "source", cfg.Capture.Source)
		os.Exit(1)
	}
	if err != nil {
		logger.Warn("speech capture unavailable", "error", err, "source", cfg.Capture.Source)
	}
	if closer, ok := recognizer.(io.Closer); ok {
		defer closer.Close()
	}

	client := voiceapi.NewClient(cfg.Capture.Endpoint, cfg.Capture.Timeout)
	view := terminal.NewView(os.Stdout)
	capture := application.NewCapture(recognizer, client, view, logger)

	if capture.State() == application.StateDisabled {
		os.Exit(1)
	}

	logger.Info("starting voice client",
		"source", recognizer.Name(),
		"endpoint", cfg.Capture.Endpoint,
		"locale", cfg.Capture.Locale,
		"language", cfg.OpenAI.Language,
	)
	if recognizer.Name() == "text" {
		fmt.Fprintln(os.Stdout, "พิมพ์คำถามแล้วกด Enter (Ctrl-D เพื่อออก)")
	}

	if err := run(ctx, capture); err != nil {
		logger.Error("voice client error", "error", err)
		os.Exit(1)
	}
}

// run repeats capture sessions until input is exhausted or ctx ends.
func run(ctx context.Context, capture *application.Capture) error {
	for {
		err := capture.RunOnce(ctx)
		switch {
		case ctx.Err() != nil:
			capture.Wait()
			return nil
		case errors.Is(err, io.EOF):
			return nil
		case err == nil, errors.Is(err, speech.ErrNoSpeech):
			continue
		}

		// The view already shows the failure; back off before listening again.
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
		}
	}
}

// createRecognizer returns a nil Recognizer with an error wrapping
// application.ErrUnsupported when the source cannot run on this build.
func createRecognizer(cfg config.CaptureConfig, stt application.SpeechToText, logger *slog.Logger) (application.Recognizer, error) {
	switch cfg.Source {
	case "text":
		return speech.NewLineRecognizer(os.Stdin), nil
	case "file":
		rec, err := speech.NewFileRecognizer(cfg.FileDir, stt)
		if err != nil {
			return nil, err
		}
		return rec, nil
	case "microphone":
		rec, err := speech.NewMicrophoneRecognizer(cfg.SampleRate, stt, logger)
		if err != nil {
			return nil, err
		}
		return rec, nil
	default:
		logger.Warn("unknown speech source, using text", "source", cfg.Source)
		return speech.NewLineRecognizer(os.Stdin), nil
	}
}
