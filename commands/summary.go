package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"naver-map-scraper/services"
)

var summaryTop int

func init() {
	summaryCmd.Flags().IntVarP(&summaryTop, "top", "t", 0, "Number of keywords to show (default SUMMARY_KEYWORDS).")
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary [--top N]",
	Short: "Re-ranks review keywords over every place stored in PostgreSQL.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if !a.cfg.PostgresEnabled {
			return errors.New("summary reads from PostgreSQL; set POSTGRES_ENABLED=true")
		}

		ctx := cmd.Context()
		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		places, err := store.FetchAll(ctx)
		if err != nil {
			return err
		}

		results := services.NewResultSet()
		for _, p := range places {
			results.Add(p)
		}

		top := summaryTop
		if top <= 0 {
			top = a.cfg.SummaryKeywords
		}
		svc := services.NewSummaryService(a.ranker, a.logger)
		svc.Print(cmd.OutOrStdout(), fmt.Sprintf("Stored places (top %d keywords)", top), svc.Generate(results, top))
		return nil
	},
}
