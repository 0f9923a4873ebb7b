package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/lunchly/internal/config"
	"github.com/iliyamo/lunchly/internal/database"
	"github.com/iliyamo/lunchly/internal/model"
	"github.com/iliyamo/lunchly/internal/repository"
)

// SeedFile is the YAML document accepted by `lunchlyctl seed`.
type SeedFile struct {
	Customers []SeedCustomer `yaml:"customers"`
}

type SeedCustomer struct {
	FirstName    string            `yaml:"first_name"`
	LastName     string            `yaml:"last_name"`
	Phone        *string           `yaml:"phone"`
	Notes        *string           `yaml:"notes"`
	Reservations []SeedReservation `yaml:"reservations"`
}

type SeedReservation struct {
	StartAt   time.Time `yaml:"start_at"`
	NumGuests uint32    `yaml:"num_guests"`
	Notes     *string   `yaml:"notes"`
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load customers and reservations from a YAML file",
	Long: `Insert the customers (and their reservations) listed in a YAML file.

All rows are written in one transaction; if any row fails nothing is kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := LoadSeedFile(seedFile)
		if err != nil {
			return err
		}

		db, err := database.Open(config.LoadDB())
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		defer db.Close()

		customers, reservations, err := Seed(cmd.Context(), db, file)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d customers and %d reservations.\n", customers, reservations)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "customers.yaml", "seed file path")
}

// LoadSeedFile reads and validates a seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, c := range file.Customers {
		if c.FirstName == "" || c.LastName == "" {
			return nil, fmt.Errorf("customer %d: first_name and last_name are required", i+1)
		}
		for j, r := range c.Reservations {
			if r.StartAt.IsZero() {
				return nil, fmt.Errorf("customer %d reservation %d: start_at is required", i+1, j+1)
			}
			if r.NumGuests < 1 {
				return nil, fmt.Errorf("customer %d reservation %d: num_guests must be at least 1", i+1, j+1)
			}
		}
	}
	return &file, nil
}

// Seed saves every customer and reservation in file inside one transaction
// and returns how many of each were written.
func Seed(ctx context.Context, db *sql.DB, file *SeedFile) (int, int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	reservations := repository.NewReservationRepo(db).WithTx(tx)
	customers := repository.NewCustomerRepo(db, reservations).WithTx(tx)

	var nc, nr int
	for _, sc := range file.Customers {
		c := &model.Customer{FirstName: sc.FirstName, LastName: sc.LastName, Phone: sc.Phone, Notes: sc.Notes}
		if err := customers.Save(ctx, c); err != nil {
			return 0, 0, rollback(tx, fmt.Errorf("failed to save %s: %w", c.FullName(), err))
		}
		nc++
		for _, sr := range sc.Reservations {
			r := &model.Reservation{CustomerID: c.ID, StartAt: sr.StartAt.UTC(), NumGuests: sr.NumGuests, Notes: sr.Notes}
			if err := reservations.Save(ctx, r); err != nil {
				return 0, 0, rollback(tx, fmt.Errorf("failed to save reservation for %s: %w", c.FullName(), err))
			}
			nr++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit: %w", err)
	}
	return nc, nr, nil
}

func rollback(tx *sql.Tx, err error) error {
	if rbErr := tx.Rollback(); rbErr != nil {
		return errors.Join(err, rbErr)
	}
	return err
}
