package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	codehelp "github.com/TejasriPacharu/code-help"
	"github.com/TejasriPacharu/code-help/internal/config"
	"github.com/TejasriPacharu/code-help/logging"
	"github.com/TejasriPacharu/code-help/model"
	anthropicmodel "github.com/TejasriPacharu/code-help/model/anthropic"
	openaimodel "github.com/TejasriPacharu/code-help/model/openai"
	"github.com/TejasriPacharu/code-help/server"
	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the code-help HTTP server",
	Long: `Start the session engine and serve it over HTTP.

Sessions are held in memory. Connected clients receive an initial full
state snapshot followed by incremental deltas over the SSE stream at
/api/state/stream.

Examples:
  # Serve with the scripted demo provider on the default address
  code-help serve

  # Serve with Anthropic (reads ANTHROPIC_API_KEY from the environment)
  code-help serve --provider anthropic

  # Serve with a specific OpenAI model on another port
  code-help serve --provider openai --model gpt-4o --addr :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().String("provider", "", "model provider: anthropic, openai or demo")
	serveCmd.Flags().String("model", "", "model identifier override for the provider")
	serveCmd.Flags().String("log-level", "", "log level: debug, info, warn, error")
	serveCmd.Flags().String("log-format", "", "log format: text or json")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("provider.name", serveCmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("provider.model", serveCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("logging.level", serveCmd.Flags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", serveCmd.Flags().Lookup("log-format"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)

	invoker, err := buildInvoker(cfg)
	if err != nil {
		return err
	}

	ch, err := codehelp.New(
		codehelp.WithInvoker(invoker),
		codehelp.WithLogger(logger),
		func(o *codehelp.Options) {
			o.MaxToolRounds = cfg.Session.MaxToolRounds
			o.MaxHandoffs = cfg.Session.MaxHandoffs
			o.RejectWhenBusy = cfg.Session.RejectWhenBusy
		},
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(ch.Engine(), func(o *server.Options) { o.Logger = logger }).Handler(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr, "provider", cfg.Provider.Name)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildInvoker(cfg *config.Config) (model.Invoker, error) {
	switch cfg.Provider.Name {
	case "anthropic":
		return anthropicmodel.NewInvoker(func(o *anthropicmodel.Options) {
			if cfg.Provider.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Provider.Model)
			}
			o.Temperature = cfg.Provider.Temperature
		}), nil
	case "openai":
		return openaimodel.NewInvoker(func(o *openaimodel.Options) {
			if cfg.Provider.Model != "" {
				o.Model = cfg.Provider.Model
			}
			o.Temperature = cfg.Provider.Temperature
		}), nil
	case "demo":
		return model.NewScriptedInvoker(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}
