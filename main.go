package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/pmik-id/pmikbot/internal/ai"
	"github.com/pmik-id/pmikbot/internal/bot"
	"github.com/pmik-id/pmikbot/internal/config"
	"github.com/pmik-id/pmikbot/internal/discord"
	"github.com/pmik-id/pmikbot/internal/logging"
	"github.com/pmik-id/pmikbot/internal/metrics"
	"github.com/pmik-id/pmikbot/internal/telegram"
)

// platform is a connected chat platform adapter.
type platform interface {
	bot.Messenger
	Connect() error
	Handle() string
	Run(ctx context.Context, d bot.Dispatcher) error
}

func main() {
	root := &cobra.Command{
		Use:          "pmikbot",
		Short:        "pmikBot: medical coding assistant for Telegram and Discord",
		Long:         "pmikBot answers ICD-10, ICD-9, INA-CBGs and IDRG questions by forwarding them to an LLM.",
		SilenceUsage: true,
		RunE:         runBot,
	}

	root.AddCommand(probeModelsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return withEnvHint(err)
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel)

	persona, err := loadPersona(cfg)
	if err != nil {
		return err
	}

	provider, err := ai.NewProvider(cfg.Provider, cfg.APIKey(), cfg.BaseURL, cfg.Timeout, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	gen := generationConfig(cfg)
	service := ai.NewPersonaService(provider, persona, gen, logger, m)

	chat := newPlatform(cfg, logger)
	if err := chat.Connect(); err != nil {
		return err
	}

	router := bot.NewRouter(chat, service, bot.Options{
		Handle: chat.Handle(),
		Format: cfg.ReplyFormat,
	}, logger, m)

	// Graceful shutdown on signals
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg, logger); err != nil {
				logger.ErrorContext(ctx, "metrics server failed", "error", err)
			}
		}()
	}

	logger.InfoContext(ctx, "bot started",
		"platform", cfg.Platform,
		"handle", chat.Handle(),
		"provider", provider.Name(),
		"model", gen.Model)

	err = chat.Run(ctx, router)
	logger.Info("bot stopped")
	return err
}

func probeModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "probe-models [model...]",
		Short:        "Find the first model of the configured provider that answers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateProvider(); err != nil {
				return withEnvHint(err)
			}

			persona, err := loadPersona(cfg)
			if err != nil {
				return err
			}

			provider, err := ai.NewProvider(cfg.Provider, cfg.APIKey(), cfg.BaseURL, cfg.Timeout, logging.Discard())
			if err != nil {
				return err
			}

			models := args
			if len(models) == 0 {
				models = ai.DefaultProbeModels(cfg.Provider)
			}

			out := cmd.OutOrStdout()
			model, err := ai.ProbeModels(cmd.Context(), provider, persona, generationConfig(cfg), models, out)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\n🎯 Use model: %s\n", model)
			fmt.Fprintf(out, "Set LLM_MODEL=%s\n", model)
			return nil
		},
	}
}

func newPlatform(cfg *config.Config, logger *slog.Logger) platform {
	if cfg.Platform == config.PlatformDiscord {
		return discord.NewAdapter(cfg.PlatformToken(), logger)
	}
	return telegram.NewAdapter(cfg.PlatformToken(), logger)
}

// withEnvHint points a configuration error at the variable to fix.
func withEnvHint(err error) error {
	if cfgErr, ok := config.AsConfigError(err); ok {
		return fmt.Errorf("%w (set %s in the environment or .env)", err, cfgErr.Field)
	}
	return err
}

func loadPersona(cfg *config.Config) (ai.Persona, error) {
	if cfg.PersonaFile == "" {
		return ai.DefaultPersona(), nil
	}
	return ai.LoadPersona(cfg.PersonaFile)
}

func generationConfig(cfg *config.Config) ai.GenerationConfig {
	model := cfg.Model
	if model == "" {
		model = ai.DefaultModel(cfg.Provider)
	}
	return ai.GenerationConfig{
		Model:       model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		TopP:        cfg.TopP,
		TopK:        cfg.TopK,
	}
}
