package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"medportal/internal/app"
	"medportal/internal/model"
)

const accountCommandTimeout = 30 * time.Second

// readPassword is swapped out in tests.
var readPassword = term.ReadPassword

type accountSaver interface {
	SaveAdmin(ctx context.Context, doctorID string, name string, password string) (model.Doctor, error)
	Create(ctx context.Context, req model.CreateDoctorRequest) (model.Doctor, error)
}

// openAccounts connects to the database and returns the account service
// plus a function releasing the connection pool.
var openAccounts = func(ctx context.Context) (accountSaver, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := app.OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return app.NewDoctorService(cfg, db.Pool), db.Close, nil
}

type adminFlags struct {
	id       string
	name     string
	password string
}

// NewCreateAdminCmd creates or overwrites an Admin account.
func NewCreateAdminCmd() *cobra.Command {
	flags := &adminFlags{}

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create or reset an Admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateAdmin(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.id, "id", "111111", "six digit doctor id")
	cmd.Flags().StringVar(&flags.name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&flags.password, "password", "", "password (prompted when omitted)")

	return cmd
}

func runCreateAdmin(cmd *cobra.Command, flags *adminFlags) error {
	if !model.ValidDoctorID(flags.id) {
		return fmt.Errorf("--id must be exactly 6 digits, got %q", flags.id)
	}

	password, err := passwordFromFlagOrPrompt(cmd.ErrOrStderr(), flags.password)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), accountCommandTimeout)
	defer cancel()

	accounts, closeFn, err := openAccounts(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	doctor, err := accounts.SaveAdmin(ctx, flags.id, flags.name, password)
	if err != nil {
		return fmt.Errorf("save admin: %w", err)
	}

	cmd.Printf("Admin %s (%s) saved\n", doctor.DoctorID, doctor.Name)
	return nil
}

type doctorFlags struct {
	id       string
	name     string
	role     string
	region   string
	hospital string
	password string
}

// NewCreateDoctorCmd registers a new account. A random id is assigned when
// --id is omitted.
func NewCreateDoctorCmd() *cobra.Command {
	flags := &doctorFlags{}

	cmd := &cobra.Command{
		Use:   "create-doctor",
		Short: "Register a doctor account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateDoctor(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.id, "id", "", "six digit doctor id (random when omitted)")
	cmd.Flags().StringVar(&flags.name, "name", "", "display name")
	cmd.Flags().StringVar(&flags.role, "role", model.RoleDoctor, "Doctor or Admin")
	cmd.Flags().StringVar(&flags.region, "region", "", "region")
	cmd.Flags().StringVar(&flags.hospital, "hospital", "", "hospital name")
	cmd.Flags().StringVar(&flags.password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runCreateDoctor(cmd *cobra.Command, flags *doctorFlags) error {
	password, err := passwordFromFlagOrPrompt(cmd.ErrOrStderr(), flags.password)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), accountCommandTimeout)
	defer cancel()

	accounts, closeFn, err := openAccounts(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	doctor, err := accounts.Create(ctx, model.CreateDoctorRequest{
		DoctorID: flags.id,
		Name:     flags.name,
		Role:     flags.role,
		Region:   flags.region,
		Hospital: flags.hospital,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("create doctor: %w", err)
	}

	cmd.Printf("Doctor %s (%s, %s) created\n", doctor.DoctorID, doctor.Name, doctor.Role)
	return nil
}

func passwordFromFlagOrPrompt(w io.Writer, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	fmt.Fprint(w, "Password: ")
	raw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	password := strings.TrimSpace(string(raw))
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	return password, nil
}
