package main

import (
	"context"
	"os"
	"time"

	"ai-appbuilder-be/internal/config"
	"ai-appbuilder-be/internal/dto"
	"ai-appbuilder-be/internal/service"
	"ai-appbuilder-be/pkg/retry"
	v0 "ai-appbuilder-be/pkg/v0"

	"github.com/fatih/color"
)

// validate checks the configured v0 API key against the remote account.
func main() {
	cfg := config.Load()

	color.Cyan("🔑 Validating v0 API key (%s)\n", cfg.V0.BaseURL)

	api := v0.NewClientWithConfig(cfg.V0.APIKey, cfg.V0.BaseURL, time.Duration(cfg.V0.TimeoutMs)*time.Millisecond)
	account := service.NewAccountService(api, retry.DefaultPolicy(), cfg.V0.APIKey != "")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := account.ValidateAPIKey(ctx)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(2)
	}

	switch {
	case res.Valid:
		color.Green("Valid: authenticated as %s <%s>", res.User.Name, res.User.Email)
	case res.Error == dto.APIKeyMissing:
		color.Yellow("Missing: set V0_API_KEY in the environment or .env")
		os.Exit(1)
	default:
		color.Red("Invalid: the API key was rejected (%s)", res.Error)
		os.Exit(1)
	}
}
