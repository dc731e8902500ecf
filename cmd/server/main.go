package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/F0nkell/AI-careerist/internal/api"
	"github.com/F0nkell/AI-careerist/internal/bot"
	"github.com/F0nkell/AI-careerist/internal/config"
	"github.com/F0nkell/AI-careerist/internal/core"
	"github.com/F0nkell/AI-careerist/internal/speech"
	"github.com/F0nkell/AI-careerist/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()

	// Command line flag for dataset import
	importDir := flag.String("import", "", "Import question datasets from a directory of <category>.json files and exit")
	flag.Parse()

	dbStore, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbStore.Close()

	if *importDir != "" {
		logger.Info("starting question import", "dir", *importDir)
		total, err := dbStore.ImportQuestionsDir(context.Background(), *importDir, core.KnownCategory, logger)
		if err != nil {
			logger.Error("question import failed", "error", err)
			os.Exit(1)
		}
		logger.Info("question import complete, exiting", "total", total)
		return
	}

	// Stage clients for the voice turn pipeline. Groq backs transcription
	// always; the chat responder is selected by LLM_PROVIDER.
	groqClient := speech.NewGroqClient(cfg.GroqAPIKey)

	var responder core.Responder
	if cfg.LLMProvider == config.ProviderGemini {
		gemini, err := core.NewGeminiResponder(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			logger.Error("failed to initialize Gemini responder", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		responder = gemini
	} else {
		responder = core.NewGroqResponder(groqClient)
	}

	interviewService := core.NewInterviewService(core.InterviewDeps{
		Retriever:   core.NewRetriever(dbStore, logger),
		Converter:   &speech.FFmpegConverter{},
		Transcriber: speech.NewGroqTranscriber(groqClient),
		Responder:   responder,
		Synthesizer: speech.NewGTTSSynthesizer(cfg.Language),
		TempDir:     cfg.TempDir,
		Language:    cfg.Language,
		Logger:      logger,
	})

	tgBot, err := bot.New(cfg.BotToken, dbStore, logger)
	if err != nil {
		logger.Error("failed to initialize bot", "error", err)
		os.Exit(1)
	}

	// Polling runs alongside the web server; it is cancelled and awaited
	// before the process exits.
	botCtx, cancelBot := context.WithCancel(context.Background())
	botDone := make(chan struct{})
	go func() {
		defer close(botDone)
		tgBot.Run(botCtx)
	}()

	apiHandler := api.NewAPIHandler(interviewService, dbStore, cfg.BotToken, logger)
	router := api.NewRouter(apiHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // a turn waits on STT, LLM and TTS
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", srv.Addr, "provider", cfg.LLMProvider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	cancelBot()
	<-botDone

	logger.Info("server exiting gracefully")
}
