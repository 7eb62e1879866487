package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	pricesadapters "pricehistory_backend/internal/feature/prices/adapters"
	pricesusecase "pricehistory_backend/internal/feature/prices/usecase"
	symbolsadapters "pricehistory_backend/internal/feature/symbols/adapters"
)

var resolveCMD = &cobra.Command{
	Use:   "resolve SYMBOL START END",
	Short: "Show which stored tickers cover a date range",
	Long: `Resolve a current ticker into the ordered list of stored tickers that
cover [START, END], following recorded symbol changes. Dates are YYYY-MM-DD.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.Parse(time.DateOnly, args[1])
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		end, err := time.Parse(time.DateOnly, args[2])
		if err != nil {
			return fmt.Errorf("end: %w", err)
		}

		uc := pricesusecase.NewPricesUsecase(
			pricesadapters.NewPriceRepository(db),
			symbolsadapters.NewSymbolRepository(db),
		)
		segments, err := uc.Resolve(cmd.Context(), args[0], start, end)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, s := range segments {
			fmt.Fprintf(out, "%s\t%s\t%s\n", s.Symbol, s.Start.Format(time.DateOnly), s.End.Format(time.DateOnly))
		}
		return nil
	},
}
