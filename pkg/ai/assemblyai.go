package ai

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/labops-team/standup-assistant/pkg/config"
)

// TranscribeOptions carries optional hints for a transcription call
type TranscribeOptions struct {
	Language string
	Prompt   string
}

// TranscriptionResult is the outcome of a transcription call
type TranscriptionResult struct {
	Transcript string
	Duration   *int // seconds, when the provider reports it
	Language   string
}

// TranscriptionClient wraps the AssemblyAI SDK behind the single call the
// pipeline needs: audio bytes in, plain text out. The client is stateless;
// each call uploads and waits for the transcript to complete. It never
// retries internally.
type TranscriptionClient struct {
	client *aai.Client
	logger *zap.Logger
}

// NewTranscriptionClient creates an AssemblyAI-backed transcription client
func NewTranscriptionClient(cfg *config.AssemblyAIConfig, logger *zap.Logger) *TranscriptionClient {
	return &TranscriptionClient{
		client: aai.NewClient(cfg.APIKey),
		logger: logger,
	}
}

// Transcribe converts an audio buffer into transcript text. The filename is
// synthetic, carrying the extension for provider-side format detection and
// for log correlation. Any provider failure, error status, or empty result
// is returned as an error; the caller owns retry policy.
func (c *TranscriptionClient) Transcribe(ctx context.Context, audio []byte, filename string, opts TranscribeOptions) (*TranscriptionResult, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("audio buffer is empty")
	}

	params := &aai.TranscriptOptionalParams{}
	if opts.Language != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(opts.Language)
	}
	if opts.Prompt != "" {
		// Domain vocabulary from the prompt hint improves recognition of
		// lab-specific terms.
		params.WordBoost = strings.Fields(opts.Prompt)
	}

	if c.logger != nil {
		c.logger.Info("submitting audio for transcription",
			zap.String("filename", filename),
			zap.Int("size_bytes", len(audio)),
			zap.String("language", opts.Language),
		)
	}

	transcript, err := c.client.Transcripts.TranscribeFromReader(ctx, bytes.NewReader(audio), params)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}

	if transcript.Status == aai.TranscriptStatusError {
		msg := "transcription failed"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, fmt.Errorf("transcription provider error: %s", msg)
	}

	if transcript.Text == nil || strings.TrimSpace(*transcript.Text) == "" {
		return nil, fmt.Errorf("transcription returned no text")
	}

	result := &TranscriptionResult{
		Transcript: *transcript.Text,
		Language:   string(transcript.LanguageCode),
	}
	if transcript.AudioDuration != nil {
		duration := int(*transcript.AudioDuration)
		result.Duration = &duration
	}

	if c.logger != nil {
		c.logger.Info("transcription completed",
			zap.String("filename", filename),
			zap.Int("text_length", len(result.Transcript)),
		)
	}

	return result, nil
}
