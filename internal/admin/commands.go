package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"legisbase/internal/backend"
	"legisbase/internal/core"
	"legisbase/internal/source/memory"
	"legisbase/internal/storage"
)

func newImportCommand(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import --file bills.yaml",
		Short: "Replace the bills in the sqlite database with a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return commandError("--file is required")
			}
			cfg, err := a.config()
			if err != nil {
				return err
			}

			f, err := os.Open(file)
			if err != nil {
				return commandError("open %s: %w", file, err)
			}
			defer f.Close()
			bills, err := memory.DecodeYAML(f)
			if err != nil {
				return commandError("%w", err)
			}

			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
			if err != nil {
				return commandError("open database: %w", err)
			}
			defer repo.Close()

			n, err := repo.ImportBills(cmd.Context(), bills)
			if err != nil {
				return commandError("import: %w", err)
			}
			a.deps.Logger.Info("Imported bills", "count", n, "db_path", cfg.SQLiteDBPath, "file", file)
			return a.print(cmd.OutOrStdout(), map[string]any{"imported": n, "db": cfg.SQLiteDBPath},
				func(w io.Writer) { fmt.Fprintf(w, "Imported %d bills into %s\n", n, cfg.SQLiteDBPath) })
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with a top-level bills list")
	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the configured bill source as YAML to stdout",
		Long: `Write the configured bill source as YAML to stdout.

Bills are written as the source stores them, before tag normalization, so
an export can be edited and imported again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bc, err := a.backendConfig()
			if err != nil {
				return err
			}
			res, err := a.deps.Factory.CreateBackend(cmd.Context(), bc)
			if err != nil {
				return commandError("%w", err)
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}
			bills, err := res.Loader.Load(cmd.Context())
			if err != nil {
				return commandError("load bills: %w", err)
			}
			return memory.EncodeYAML(cmd.OutOrStdout(), bills)
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	var search, tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bills matching --search and --tag, as the API would",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.openCatalog(cmd)
			if err != nil {
				return err
			}
			defer cat.Close()

			bills, err := cat.Service.ListBills(cmd.Context(), core.NewBillFilter(search, tag))
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), bills, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNUMBER\tSTATUS\tTITLE")
				for _, b := range bills {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.ID, b.BillNumber, b.Status, b.Title)
				}
				_ = tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "text matched against title, summary and interpretation")
	cmd.Flags().StringVar(&tag, "tag", "", "exact tag")
	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one bill as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return commandError("invalid bill id %q", args[0])
			}
			cat, err := a.openCatalog(cmd)
			if err != nil {
				return err
			}
			defer cat.Close()

			bill, err := cat.Service.GetBill(cmd.Context(), id)
			if errors.Is(err, core.ErrNotFound) {
				return &ExitError{Code: ExitFailure, Err: fmt.Errorf("Bill not found: %d", id)}
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), bill)
		},
	}
}

type statsReport struct {
	Totals storage.LookupTotals     `json:"totals"`
	Bills  []storage.BillLookupStat `json:"bills"`
}

func newStatsCommand(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show bill lookup counts recorded by the worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
			if err != nil {
				return commandError("open database: %w", err)
			}
			defer repo.Close()

			totals, err := repo.Totals(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := repo.LookupStats(cmd.Context(), limit)
			if err != nil {
				return err
			}

			report := statsReport{Totals: totals, Bills: stats}
			return a.print(cmd.OutOrStdout(), report, func(w io.Writer) {
				fmt.Fprintf(w, "Lookups: %d (list %d, get %d, empty %d)\n",
					totals.Total, totals.Lists, totals.Gets, totals.Empty)
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tLISTED\tFETCHED\tMISSES\tLAST SEEN\tTITLE")
				for _, s := range stats {
					fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\t%s\n",
						s.BillID, s.Listed, s.Fetched, s.Misses, s.LastSeen.Format(time.RFC3339), s.Title)
				}
				_ = tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum bills to show, 0 for all")
	return cmd
}

func (a *app) openCatalog(cmd *cobra.Command) (*backend.Catalog, error) {
	bc, err := a.backendConfig()
	if err != nil {
		return nil, err
	}
	cat, err := backend.OpenCatalog(cmd.Context(), a.deps.Factory, bc, false)
	if err != nil {
		return nil, commandError("%w", err)
	}
	return cat, nil
}

// print writes v as JSON with --format json, otherwise runs text.
func (a *app) print(w io.Writer, v any, text func(io.Writer)) error {
	if a.opts.Format == "json" {
		return writeJSON(w, v)
	}
	text(w)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
