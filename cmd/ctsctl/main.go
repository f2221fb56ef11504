package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jeraldtan21/cts/internal/auth"
	"github.com/jeraldtan21/cts/internal/clock"
	"github.com/jeraldtan21/cts/internal/config"
	"github.com/jeraldtan21/cts/internal/database"
	"github.com/jeraldtan21/cts/internal/database/migrations"
	"github.com/jeraldtan21/cts/internal/repository"
	"github.com/jeraldtan21/cts/internal/service"
)

const commandTimeout = 30 * time.Second

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openDB loads the configuration and connects. The caller must close db.
func openDB() (*config.Config, *sql.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

var rootCmd = &cobra.Command{
	Use:          "ctsctl",
	Short:        "Administer the cts asset tracker",
	SilenceUsage: true,
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrations.MigrateUp(db); err != nil {
			return err
		}

		status, err := migrations.CheckStatus(db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema %s\n", status)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		status, err := migrations.CheckStatus(db)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Schema %s\n", status)
		if !status.UpToDate() {
			return errors.New("schema is not up to date; run 'ctsctl migrate up'")
		}
		return nil
	},
}

// admin command
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("password")

		if password == "" {
			var err error
			password, err = promptPassword(os.Stdin, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
		}

		cfg, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
		authService := service.NewAuthService(
			repository.NewIdentityRepository(db),
			repository.NewEmployeeRepository(db),
			auth.NewPasswordHasher(cfg.Auth.BcryptCost),
			auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, clock.Real{}),
			cfg.Auth.MinPasswordLength,
			logger,
		)

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		identity, err := authService.CreateAdmin(ctx, email, name, password)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Admin created: %s <%s> (%s)\n", identity.Name, identity.Email, identity.ID)
		return nil
	},
}

// promptPassword reads a password twice without echo. When in is not a
// terminal a single line is read instead, so the password can be piped.
func promptPassword(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return readLine(in)
	}

	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	fmt.Fprint(out, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password given")
	}
	return line, nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminCreateCmd)
	adminCreateCmd.Flags().String("email", "", "admin email address")
	adminCreateCmd.Flags().String("name", "", "display name")
	adminCreateCmd.Flags().String("password", "", "password (prompted when omitted)")
	adminCreateCmd.MarkFlagRequired("email")
	adminCreateCmd.MarkFlagRequired("name")
}
