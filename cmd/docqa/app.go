package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docqa/internal/answer/huggingface"
	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/logger"
	"docqa/internal/ranker"
	"docqa/internal/service"
)

type mode int

const (
	modeOneShot mode = iota
	modeTUI
	modeInfo
)

// app holds the assembled components for one command invocation.
type app struct {
	cfg     *config.AppConfig
	svc     *service.QAService
	log     logger.Logger
	closers []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

func setup(cmd *cobra.Command, m mode) (*app, error) {
	_ = godotenv.Load()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}

	a := &app{cfg: cfg}
	out, err := a.logOutput(cmd, m)
	if err != nil {
		return nil, err
	}
	logger.Init(&logger.Config{Level: cfg.Log.Level, Output: out, JSON: cfg.Log.JSON, TimeFormat: "15:04:05"})
	a.log = logger.Default()

	// Assemble components
	ch, err := chunker.NewCharChunker(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap)
	if err != nil {
		a.Close()
		return nil, err
	}
	rk := ranker.NewKeywordRanker(cfg.Ranker.MaxChunks)

	var ans domain.Answerer
	if m != modeInfo {
		client, err := huggingface.NewClient(huggingface.Config{
			Endpoint:    cfg.AnswerService.Endpoint,
			APITokenEnv: cfg.AnswerService.APITokenEnv,
			Timeout:     time.Duration(cfg.AnswerService.TimeoutSecs) * time.Second,
			Logger:      a.log,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("answer service init failed: %w", err)
		}
		ans = client
	}

	a.svc = service.NewQAService(ch, rk, ans,
		service.WithOverviewSentences(cfg.Summary.MaxSentences),
		service.WithLogger(a.log),
	)
	a.log.Debug("config loaded",
		"chunk_size", cfg.Chunker.ChunkSize,
		"overlap", cfg.Chunker.Overlap,
		"max_chunks", cfg.Ranker.MaxChunks,
		"endpoint", cfg.AnswerService.Endpoint,
	)
	return a, nil
}

func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}

// logOutput keeps logs off the terminal while the TUI owns it.
func (a *app) logOutput(cmd *cobra.Command, m mode) (io.Writer, error) {
	if a.cfg.Log.File != "" {
		f, err := os.OpenFile(a.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f)
		return f, nil
	}
	if m == modeTUI {
		return io.Discard, nil
	}
	return cmd.ErrOrStderr(), nil
}
