// Package main is the entry point for the code explainer server.
//
// main stays minimal: read configuration from the environment, build the
// logger, hand both to the server package. All actual logic lives in
// internal/.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gamnamu1/python-code-explainer/internal/auth"
	"github.com/gamnamu1/python-code-explainer/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	templateDir := os.Getenv("TEMPLATE_DIR")
	if templateDir == "" {
		templateDir = "web/templates"
	}
	templateDir, err := filepath.Abs(templateDir)
	if err != nil {
		logger.Error("failed to resolve template directory",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	// DB_PATH may legitimately be unset: the server then runs with a
	// degraded store — sign-in still works, history reads as empty,
	// analysis writes fail with 503 — instead of crashing at startup.
	dbPath := os.Getenv("DB_PATH")
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", filepath.Dir(dbPath)),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// JWT_SECRET must be a long random string: JWT_SECRET=$(openssl rand -hex 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	callbackURL := os.Getenv("AUTH_CALLBACK_URL")
	if callbackURL == "" {
		callbackURL = fmt.Sprintf("http://localhost:%d/auth/callback", port)
	}

	providerName := os.Getenv("AUTH_PROVIDER_NAME")
	if providerName == "" {
		providerName = "oauth"
	}

	llmBaseURL := os.Getenv("LLM_BASE_URL")
	if llmBaseURL == "" {
		llmBaseURL = "https://api.openai.com/v1"
	}
	llmModel := os.Getenv("LLM_MODEL")
	if llmModel == "" {
		llmModel = "gpt-4o-mini"
	}

	cfg := server.Config{
		Port:        port,
		TemplateDir: templateDir,
		DBPath:      dbPath,
		OwnerOpenID: os.Getenv("OWNER_OPEN_ID"),
		JWTSecret:   jwtSecret,
		Auth: auth.ProviderConfig{
			Name:         providerName,
			ClientID:     os.Getenv("AUTH_CLIENT_ID"),
			ClientSecret: os.Getenv("AUTH_CLIENT_SECRET"),
			AuthURL:      os.Getenv("AUTH_AUTHORIZE_URL"),
			TokenURL:     os.Getenv("AUTH_TOKEN_URL"),
			UserInfoURL:  os.Getenv("AUTH_USERINFO_URL"),
			CallbackURL:  callbackURL,
		},
		LLMBaseURL: llmBaseURL,
		LLMAPIKey:  os.Getenv("LLM_API_KEY"),
		LLMModel:   llmModel,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
