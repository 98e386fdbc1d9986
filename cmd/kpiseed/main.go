// Command kpiseed fills an OxiDB instance with demo departments, pillars and
// KPI forms for trying out the server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parisxmas/oxikpi/internal/db"
	"github.com/parisxmas/oxikpi/internal/repository"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "kpiseed",
		Short:        "Seed an OxiDB instance for the KPI server",
		SilenceUsage: true,
	}
	root.AddCommand(newDemoCmd(), newIndexesCmd())
	return root
}

type connFlags struct {
	host    string
	port    int
	timeout time.Duration
}

func (c *connFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.host, "host", "127.0.0.1", "OxiDB host")
	cmd.Flags().IntVar(&c.port, "port", 4444, "OxiDB port")
	cmd.Flags().DurationVar(&c.timeout, "timeout", 2*time.Minute, "give up after this long")
}

func (c *connFlags) open(ctx context.Context) (*repository.OxiDB, func(), error) {
	pool, err := db.NewPool(ctx, fmt.Sprintf("%s:%d", c.host, c.port), db.Options{Size: 1}, zap.NewNop())
	if err != nil {
		return nil, nil, err
	}
	repo := repository.New(pool)
	if err := repo.EnsureIndexes(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repo, pool.Close, nil
}

func newDemoCmd() *cobra.Command {
	var conn connFlags
	var opts demoOptions

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Insert demo departments, pillars and KPI forms",
		Long: `Insert demo data through the repository layer.

Each department gets the standard pillars, and every form is assigned to one
pillar of every department so the review board has something to show.

Examples:
  kpiseed demo
  kpiseed demo --host 10.0.0.5 --departments 5 --forms 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), conn.timeout)
			defer cancel()

			repo, closeFn, err := conn.open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			start := time.Now()
			sum, err := seedDemo(ctx, repo.Stores(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d departments, %d pillars, %d forms, %d assignments in %s\n",
				sum.Departments, sum.Pillars, sum.Forms, sum.Assigned, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	conn.register(cmd)
	cmd.Flags().IntVar(&opts.Departments, "departments", 3, "number of departments")
	cmd.Flags().IntVar(&opts.Forms, "forms", 6, "number of KPI forms")
	cmd.Flags().StringVar(&opts.By, "by", "kpiseed", "user id recorded as creator")
	return cmd
}

func newIndexesCmd() *cobra.Command {
	var conn connFlags
	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Create the collections, indexes and blob bucket only",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), conn.timeout)
			defer cancel()
			_, closeFn, err := conn.open(ctx)
			if err != nil {
				return err
			}
			closeFn()
			fmt.Fprintln(cmd.OutOrStdout(), "indexes ready")
			return nil
		},
	}
	conn.register(cmd)
	return cmd
}
