package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/recipeform/config"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/form"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/logger"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/server"
	"github.com/pageza/alchemorsel-v2/recipeform/internal/service"
)

var (
	ingredients string
	preferences string
	apiURL      string
)

var errNoRecipe = errors.New("no recipe returned")

var rootCmd = &cobra.Command{
	Use:           "recipeform",
	Short:         "Recipe query form backed by the recipe API",
	Long:          `recipeform serves the recipe form and forwards each submission to the recipe API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recipe form over HTTP",
	RunE:  runServe,
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Submit one query and print what the form would show",
	RunE:  runQuery,
}

func execute() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		if !errors.Is(err, errNoRecipe) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, queryCmd)

	queryCmd.Flags().StringVarP(&ingredients, "ingredients", "i", "", "Comma-separated ingredients")
	queryCmd.Flags().StringVarP(&preferences, "preferences", "p", "", "Comma-separated preferences")
	queryCmd.Flags().StringVar(&apiURL, "api-url", "", "Recipe API query endpoint (overrides RECIPE_API_URL)")
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, nil, fmt.Errorf("failed to initialise logger: %w", err)
	}
	return cfg, logger.Get(), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(ctx, cfg, log)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.RecipeAPIURL = apiURL
	}

	svc := service.NewSubmissionService(service.NewHTTPRecipeClient(cfg.RecipeAPIURL, cfg.RecipeAPITimeout), log)
	res := svc.Submit(cmd.Context(), form.Submission{Ingredients: ingredients, Preferences: preferences})

	fmt.Fprintln(cmd.OutOrStdout(), res.Output)
	if res.Outcome != service.OutcomeRecipe {
		return errNoRecipe
	}
	return nil
}
