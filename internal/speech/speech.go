// Package speech holds the audio stages of the interview pipeline: format
// normalization, transcription and synthesis. Each stage is an interface so
// providers can be swapped without touching the orchestrator.
package speech

import "context"

// Converter normalizes an uploaded audio container/codec into the waveform
// format the transcriber expects.
type Converter interface {
	ToWAV(ctx context.Context, src, dst string) error
}

// Transcriber extracts speech from an audio file, pinned to a language.
type Transcriber interface {
	Transcribe(ctx context.Context, path, language string) (string, error)
}

// Synthesizer renders text to an audio file under dir, named after name.
// It returns the path of the written file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, dir, name string) (string, error)
}
