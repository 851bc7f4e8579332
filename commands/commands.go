package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"larre/config"
	"larre/connection"
	"larre/dto"
	"larre/logger"
	"larre/services"
)

// NewRootCommand builds the larre CLI.
func NewRootCommand() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "larre",
		Short:         "L.A.R.R.E. API server",
		Long:          "Largely Automated Record Repository, Eventually: tasks, notes, files and Quick Share between your devices.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file")

	load := func() (*config.Config, error) {
		return config.Load(configFile)
	}

	rootCmd.AddCommand(NewServeCommand(load))
	rootCmd.AddCommand(NewTokenCommand(load))
	rootCmd.AddCommand(NewPrefsCommand(load))
	return rootCmd
}

type loader func() (*config.Config, error)

// NewServeCommand creates the serve command
func NewServeCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			if cfg.App.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}

			appLogger, err := logger.New(cfg.Logger)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer appLogger.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := connection.StartServer(ctx, cfg, appLogger); err != nil {
				appLogger.WithError(err).Errorw("Server stopped with error")
				return err
			}
			return nil
		},
	}
}

// NewTokenCommand mints an HMAC access token for local development.
func NewTokenCommand(load loader) *cobra.Command {
	var userID, email string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development access token (auth.mode=hmac)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cfg.Auth.Secret == "" {
				return fmt.Errorf("auth.secret (JWT_SECRET_KEY) is not set")
			}

			tokens := services.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpiresIn)
			token, err := tokens.CreateAccessToken(userID, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "local", "user id to put in the token")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	return cmd
}

// NewPrefsCommand reads and flips the persisted UI preferences.
func NewPrefsCommand(load loader) *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change persisted UI preferences",
	}

	withSettings := func(fn func(ctx context.Context, s *services.Settings) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			db, err := connection.OpenPreferences(cfg.Preferences.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			settings, err := services.LoadSettings(ctx, db)
			if err != nil {
				return err
			}
			if err := fn(ctx, settings); err != nil {
				return err
			}

			out := dto.SettingsResponse{Preferences: settings.Current(), RootClasses: settings.RootClasses()}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}
	}

	prefsCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current preferences",
		RunE: withSettings(func(context.Context, *services.Settings) error {
			return nil
		}),
	})
	prefsCmd.AddCommand(&cobra.Command{
		Use:   "toggle-theme",
		Short: "Switch between light and dark theme",
		RunE: withSettings(func(ctx context.Context, s *services.Settings) error {
			_, err := s.ToggleTheme(ctx)
			return err
		}),
	})
	prefsCmd.AddCommand(&cobra.Command{
		Use:   "toggle-sidebar",
		Short: "Collapse or expand the sidebar",
		RunE: withSettings(func(ctx context.Context, s *services.Settings) error {
			_, err := s.ToggleSidebar(ctx)
			return err
		}),
	})
	return prefsCmd
}
