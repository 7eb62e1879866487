package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pricehistory_backend/internal/app/di"
	coverageadapters "pricehistory_backend/internal/feature/coverage/adapters"
	coverageusecase "pricehistory_backend/internal/feature/coverage/usecase"
	symbolsadapters "pricehistory_backend/internal/feature/symbols/adapters"
)

var exportFlags struct {
	search       string
	sortBy       string
	order        string
	hasData      string
	updatedAfter string
	maxRows      int
	out          string
}

var exportCMD = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered coverage table as CSV",
	Long: `Aggregate coverage over the configured lookback window and write it as CSV.
Filters and sorting behave like GET /coverage/export.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := exportQuery()
		if err != nil {
			return err
		}

		uc := di.NewCoverageUsecase(
			cfg.Coverage,
			symbolsadapters.NewSymbolRepository(db),
			coverageadapters.NewPriceStatsRepository(db),
			coverageusecase.NopRecorder{},
		)

		var n int
		err = writeOutput(cmd.OutOrStdout(), exportFlags.out, func(w io.Writer) error {
			var err error
			n, err = uc.Export(cmd.Context(), w, q, exportFlags.maxRows)
			return err
		})
		if err != nil {
			return err
		}
		slog.Info("coverage exported", "rows", n, "out", exportFlags.out)
		return nil
	},
}

// writeOutput は path が空か "-" なら stdout に、それ以外はファイルに書き出します。
// Close の失敗も返します。
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) (err error) {
	if path == "" || path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}

func exportQuery() (coverageusecase.QueryParams, error) {
	q := coverageusecase.QueryParams{
		Search: exportFlags.search,
		SortBy: exportFlags.sortBy,
		Order:  exportFlags.order,
	}
	switch exportFlags.hasData {
	case "":
	case "true":
		v := true
		q.HasData = &v
	case "false":
		v := false
		q.HasData = &v
	default:
		return q, fmt.Errorf("--has-data must be true or false, got %q", exportFlags.hasData)
	}
	if exportFlags.updatedAfter != "" {
		t, err := time.Parse(time.DateOnly, exportFlags.updatedAfter)
		if err != nil {
			return q, fmt.Errorf("--updated-after: %w", err)
		}
		q.UpdatedAfter = &t
	}
	return q, nil
}

func init() {
	f := exportCMD.Flags()
	f.StringVar(&exportFlags.search, "q", "", "case-insensitive match on symbol or name")
	f.StringVar(&exportFlags.sortBy, "sort-by", coverageusecase.SortSymbol, "sort field")
	f.StringVar(&exportFlags.order, "order", coverageusecase.OrderAsc, "asc or desc")
	f.StringVar(&exportFlags.hasData, "has-data", "", "true or false")
	f.StringVar(&exportFlags.updatedAfter, "updated-after", "", "only rows updated on or after YYYY-MM-DD")
	f.IntVar(&exportFlags.maxRows, "max-rows", 0, "row cap (0 means 10000); always clamped to coverage.export_max_rows")
	f.StringVarP(&exportFlags.out, "out", "o", "-", "output file, - for stdout")
}
