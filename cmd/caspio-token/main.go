package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/nwca/sanmar-adapters/internal/caspio"
	"github.com/nwca/sanmar-adapters/pkg/config"
	"github.com/nwca/sanmar-adapters/pkg/logger"
	"github.com/nwca/sanmar-adapters/pkg/utils"
)

func main() {
	cfg := config.Load()

	envFile := flag.String("env-file", cfg.Caspio.EnvFile, "dotenv file to rewrite with the new tokens")
	dryRun := flag.Bool("dry-run", false, "refresh but do not rewrite the env file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Init("caspio-token", cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()

	if cfg.Caspio.BaseURL == "" || cfg.Caspio.RefreshToken == "" {
		logg.Fatal("CASPIO_BASE_URL and CASPIO_REFRESH_TOKEN are required")
	}

	tokens := caspio.NewTokenManager(logg.Desugar())
	token, err := tokens.Refresh(ctx, &caspio.Config{
		BaseURL:      cfg.Caspio.BaseURL,
		RefreshToken: cfg.Caspio.RefreshToken,
	})
	if err != nil {
		logg.Fatalw("caspio token refresh failed", "error", err)
	}
	logg.Infow("caspio token refreshed",
		"access_token", utils.MaskSecret(token.AccessToken),
		"refresh_rotated", token.RefreshToken != "" && token.RefreshToken != cfg.Caspio.RefreshToken,
		"expires_in", token.ExpiresIn)

	if *dryRun {
		return
	}
	if err := caspio.SaveTokens(*envFile, token); err != nil {
		logg.Fatalw("failed to save tokens", "error", err, "file", *envFile)
	}
	logg.Infow("[caspio-token] env file updated", "file", *envFile)
}
