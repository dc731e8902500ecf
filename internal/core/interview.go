package core

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/F0nkell/AI-careerist/internal/speech"
)

// MinAudioBytes is the smallest upload treated as an actual recording.
// Anything below it is almost certainly a tap or silence.
const MinAudioBytes = 1024

const systemInstruction = "Ты строгий HR, проводящий собеседование. Говори кратко, только на русском языке. Задавай по одному вопросу за раз."

// Canned user-facing responses for soft failures. These are answers, not
// errors: the HTTP status stays 200.
const (
	ReplyTooQuiet         = "Говорите громче, пожалуйста! Я вас не расслышал. Запишите сообщение ещё раз."
	ReplyProcessingFailed = "Извините, я не смог разобрать вашу запись. Попробуйте отправить её ещё раз."
)

// ContextProvider supplies the retrieval hint block for a category.
type ContextProvider interface {
	Context(ctx context.Context, category string) (string, error)
}

// TurnInput is one voice turn as received from the front end.
type TurnInput struct {
	Audio     []byte
	Filename  string // original upload name, used only for its extension
	Image     []byte
	ImageMIME string
	History   []ChatMessage
}

// TurnResult is the orchestrator's answer for one turn.
type TurnResult struct {
	UserText    string `json:"user_text"`
	AIText      string `json:"ai_text"`
	AudioBase64 string `json:"audio_base64"`
}

// InterviewService runs the voice turn pipeline: validate, transcribe,
// contextualize, generate, synthesize. Stage implementations are injected.
type InterviewService struct {
	retriever   ContextProvider
	converter   speech.Converter
	transcriber speech.Transcriber
	responder   Responder
	synthesizer speech.Synthesizer
	tempDir     string
	language    string
	logger      *slog.Logger
}

type InterviewDeps struct {
	Retriever   ContextProvider
	Converter   speech.Converter
	Transcriber speech.Transcriber
	Responder   Responder
	Synthesizer speech.Synthesizer
	TempDir     string
	Language    string
	Logger      *slog.Logger
}

func NewInterviewService(deps InterviewDeps) *InterviewService {
	return &InterviewService{
		retriever:   deps.Retriever,
		converter:   deps.Converter,
		transcriber: deps.Transcriber,
		responder:   deps.Responder,
		synthesizer: deps.Synthesizer,
		tempDir:     deps.TempDir,
		language:    deps.Language,
		logger:      deps.Logger,
	}
}

// ProcessVoiceTurn handles one recorded answer end to end.
//
// Soft failures (audio too short, unreadable recording) come back as canned
// replies with a nil error. Upstream model or synthesis failures are returned
// as errors for the handler to map to a 500. Every temp file created for the
// turn is removed before returning, on every path.
func (s *InterviewService) ProcessVoiceTurn(ctx context.Context, in TurnInput) (*TurnResult, error) {
	if len(in.Audio) < MinAudioBytes {
		s.logger.Debug("audio below minimum size, returning loudness prompt", "bytes", len(in.Audio))
		return &TurnResult{AIText: ReplyTooQuiet}, nil
	}

	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	turnID := uuid.NewString()
	rawPath := filepath.Join(s.tempDir, turnID+"_input"+uploadExt(in.Filename))
	wavPath := filepath.Join(s.tempDir, turnID+"_input.wav")
	ttsPath := filepath.Join(s.tempDir, turnID+"_output.mp3")

	defer func() {
		for _, p := range []string{rawPath, wavPath, ttsPath} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				s.logger.Warn("failed to remove temp file", "path", p, "error", err)
			}
		}
	}()

	if err := os.WriteFile(rawPath, in.Audio, 0o644); err != nil {
		s.logger.Error("failed to persist upload", "turn", turnID, "error", err)
		return &TurnResult{AIText: ReplyProcessingFailed}, nil
	}

	if err := s.converter.ToWAV(ctx, rawPath, wavPath); err != nil {
		s.logger.Error("audio conversion failed", "turn", turnID, "error", err)
		return &TurnResult{AIText: ReplyProcessingFailed}, nil
	}

	userText, err := s.transcriber.Transcribe(ctx, wavPath, s.language)
	if err != nil {
		s.logger.Error("transcription failed", "turn", turnID, "error", err)
		return &TurnResult{AIText: ReplyProcessingFailed}, nil
	}
	userText = strings.TrimSpace(userText)

	systemPrompt := systemInstruction
	if userText != "" {
		category := ClassifyTopic(userText)
		hint, err := s.retriever.Context(ctx, category)
		if err != nil {
			// Hints improve the interview but are not required for it.
			s.logger.Warn("context retrieval failed, proceeding without hints", "turn", turnID, "category", category, "error", err)
		} else if hint != "" {
			systemPrompt = systemPrompt + "\n\n" + hint
		}
	}

	prompt := TurnPrompt{
		System:   systemPrompt,
		History:  in.History,
		UserText: userText,
	}
	if len(in.Image) > 0 {
		prompt.Image = &ImageAttachment{Data: in.Image, MIME: in.ImageMIME}
	}

	aiText, err := s.responder.Respond(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	audioBase64 := ""
	if speakable := CleanForSpeech(aiText); speakable != "" {
		written, err := s.synthesizer.Synthesize(ctx, speakable, s.tempDir, turnID+"_output")
		if err != nil {
			return nil, fmt.Errorf("speech synthesis failed: %w", err)
		}
		if written != "" {
			ttsPath = written
		}
		data, err := os.ReadFile(ttsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read synthesized audio: %w", err)
		}
		audioBase64 = base64.StdEncoding.EncodeToString(data)
	}

	return &TurnResult{
		UserText:    userText,
		AIText:      aiText,
		AudioBase64: audioBase64,
	}, nil
}

func uploadExt(filename string) string {
	if ext := filepath.Ext(filename); ext != "" && len(ext) <= 8 {
		return ext
	}
	return ".bin"
}
