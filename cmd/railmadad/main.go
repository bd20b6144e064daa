package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/config"
	"github.com/railmadad/portal/internal/gateway"
	"github.com/railmadad/portal/internal/session"
)

var (
	version = "dev"
	commit  = "none"
)

// app is what every command shares: the persisted session and the API client.
type app struct {
	cfg   *config.Client
	store *session.Store
	api   *gateway.Client
}

var (
	current    *app
	apiURLFlag string
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "railmadad",
	Short: "RailMadad complaint portal client",
	Long: `RailMadad command line client.

Passengers file complaints; station staff, station masters and RPF admins
work them from their role's dashboard. The session is kept between runs.`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.WarnLevel
		if debugFlag {
			level = zerolog.DebugLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(level)

		a, err := newApp()
		if err != nil {
			return err
		}
		current = a
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api", "", "API base URL (default $RAILMADAD_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "verbose logging")
}

func newApp() (*app, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if apiURLFlag != "" {
		cfg.APIURL = apiURLFlag
	}

	path := cfg.SessionFile
	if path == "" {
		if path, err = session.DefaultPath(); err != nil {
			return nil, fmt.Errorf("session path: %w", err)
		}
	}
	storage, err := session.OpenFileStorage(path)
	if err != nil {
		return nil, err
	}
	store := session.NewStore(storage)

	api, err := gateway.New(cfg.APIURL, store,
		gateway.WithTimeout(cfg.Timeout),
		gateway.OnUnauthorized(func() {
			if err := store.Logout(); err != nil {
				log.Warn().Err(err).Msg("clear session")
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, store: store, api: api}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", apperr.Message(err))
		if errors.Is(err, apperr.ErrAuth) {
			fmt.Fprintln(os.Stderr, "run `railmadad login` to sign in again")
		}
		os.Exit(1)
	}
}
