package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"naver-map-scraper/models"
	"naver-map-scraper/scraper/naver"
	"naver-map-scraper/services"
	"naver-map-scraper/storage"
)

var (
	reviewsOut    string
	reviewsFormat string
)

func init() {
	reviewsCmd.Flags().StringVarP(&reviewsOut, "out", "o", "", "Output path; a .xlsx extension writes a workbook (default output/naver_review_<timestamp>.<format>).")
	reviewsCmd.Flags().StringVarP(&reviewsFormat, "format", "f", "", "Export format when --out is not set: csv or xlsx (default REVIEW_FORMAT).")
	rootCmd.AddCommand(reviewsCmd)
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews [place name] [--out path] [--format csv|xlsx]",
	Short: "Resolves a place by name and exports its visitor reviews to CSV or XLSX.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		formatName := reviewsFormat
		if formatName == "" {
			formatName = a.cfg.ReviewFormat
		}
		format, err := storage.ParseReviewFormat(formatName)
		if err != nil {
			return err
		}

		name := strings.TrimSpace(strings.Join(args, " "))
		if name == "" {
			if name, err = promptText("Place name"); err != nil {
				return err
			}
		}
		return a.runReviews(cmd, name, reviewsOut, format)
	},
}

func (a *app) runReviews(cmd *cobra.Command, name, out, format string) error {
	ctx := cmd.Context()
	started := time.Now()
	a.logger.Info("=== Naver review export starting ===")
	a.logger.Info("Place: %q", name)

	session, err := naver.NewSession(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer session.Close()

	var cache naver.IdentifierCache
	if c, err := a.openCache(ctx); err != nil {
		a.logger.Warn("Redis unavailable, resolving without cache: %v", err)
	} else if c != nil {
		defer c.Close()
		cache = c
	}

	rows, flowErr := a.collectRows(ctx, session, cache, name)
	if flowErr != nil {
		a.logger.Error("Review export failed: %v", flowErr)
	}

	if out == "" {
		out = storage.ReviewPath(a.cfg.OutputDir, started, flowErr != nil, format)
	}
	if err := exportRows(out, rows); err != nil {
		a.logger.Error("Saving reviews failed: %v", err)
	} else {
		a.logger.Info("Saved %d review rows to %s", len(rows), out)
	}

	keywords := a.ranker.Rank(services.DistinctContents(rows), a.cfg.ReviewFlowKeywords)
	fmt.Fprintf(cmd.OutOrStdout(), "\nKeywords for %q (reviews: %d)\n", name, len(rows))
	services.PrintKeywords(cmd.OutOrStdout(), keywords)

	if flowErr != nil {
		return fmt.Errorf("reviews for %q: %w", name, flowErr)
	}
	return nil
}

func (a *app) collectRows(ctx context.Context, d naver.Driver, cache naver.IdentifierCache, name string) ([]models.ReviewRow, error) {
	locators := naver.DefaultLocators()

	id, err := naver.NewResolver(d, locators, a.cfg, cache, a.logger).Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	return naver.NewReviewCollector(d, locators, a.cfg, a.logger).Collect(ctx, id)
}

func exportRows(path string, rows []models.ReviewRow) error {
	w, err := storage.NewReviewRowWriter(path)
	if err != nil {
		return err
	}
	return writeRows(w, rows)
}

func writeRows(w storage.ReviewRowWriter, rows []models.ReviewRow) error {
	if err := w.WriteRows(rows); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
