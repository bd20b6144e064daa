package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/railmadad/portal/internal/account"
	"github.com/railmadad/portal/internal/auth"
	"github.com/railmadad/portal/internal/db"
	"github.com/railmadad/portal/internal/role"
	"github.com/railmadad/portal/internal/util"
)

// accounts manages accounts straight in Postgres. Its main use is creating
// the first super admin, which signup refuses to do.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("set DB_DSN or DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to the database")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	repo := account.NewRepository(pool)

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "create":
		if err := runCreate(ctx, repo, args); err != nil {
			log.Fatal().Err(err).Msg("create account failed")
		}
	case "list":
		if err := runList(ctx, repo); err != nil {
			log.Fatal().Err(err).Msg("list accounts failed")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "accounts CLI")
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  accounts create --email root@railmadad.in --password secret --name \"Control Room\" [--role SUPER_ADMIN] [--station Pune]")
	fmt.Fprintln(os.Stderr, "  accounts list")
}

func runCreate(ctx context.Context, repo *account.Repository, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		email    = fs.String("email", "", "login email")
		password = fs.String("password", "", "initial password")
		name     = fs.String("name", "", "full name")
		roleName = fs.String("role", string(role.SuperAdmin), "account role")
		station  = fs.String("station", "", "station, required for station roles")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	addr := strings.ToLower(strings.TrimSpace(*email))
	if err := util.ValidateEmail(addr); err != nil {
		return err
	}
	if err := util.ValidatePassword(*password); err != nil {
		return err
	}
	r, err := role.Parse(*roleName)
	if err != nil {
		return fmt.Errorf("role %q: %w", *roleName, err)
	}
	var stationPtr *string
	if r.RequiresStation() {
		s := util.NormalizeName(*station)
		if s == "" {
			return errors.New("station is required for " + r.Label())
		}
		stationPtr = &s
	}

	hash, err := auth.Hash(*password)
	if err != nil {
		return err
	}
	created, err := repo.Create(ctx, account.CreateInput{
		Username:     addr,
		Email:        addr,
		FullName:     util.DisplayName(*name, addr),
		PasswordHash: hash,
		Role:         r.String(),
		Station:      stationPtr,
	})
	if err != nil {
		return err
	}

	output, _ := json.MarshalIndent(created, "", "  ")
	fmt.Println(string(output))
	return nil
}

func runList(ctx context.Context, repo *account.Repository) error {
	users, err := repo.List(ctx)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Println("no accounts yet")
		return nil
	}

	encoded, _ := json.MarshalIndent(users, "", "  ")
	fmt.Println(string(encoded))
	return nil
}
