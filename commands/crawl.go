package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"naver-map-scraper/scraper/naver"
	"naver-map-scraper/services"
	"naver-map-scraper/storage"
)

var crawlOpts struct {
	max int
	out string
}

func init() {
	crawlCmd.Flags().IntVarP(&crawlOpts.max, "max", "n", 0, "Maximum number of places to extract (default MAX_PLACES).")
	crawlCmd.Flags().StringVarP(&crawlOpts.out, "out", "o", "", "JSON output path (default output/naver_map_<keyword>_results.json).")
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [keyword] [--max N] [--out path]",
	Short: "Searches Naver Map for a keyword and extracts place info, reviews and keywords.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		keyword := strings.TrimSpace(strings.Join(args, " "))
		maxPlaces := crawlOpts.max
		if keyword == "" {
			if keyword, err = promptText("Search keyword"); err != nil {
				return err
			}
			if !cmd.Flags().Changed("max") {
				if maxPlaces, err = promptCount("Places to collect", a.cfg.MaxPlaces); err != nil {
					return err
				}
			}
		}
		if maxPlaces <= 0 {
			maxPlaces = a.cfg.MaxPlaces
		}

		out := crawlOpts.out
		if out == "" {
			out = storage.ResultsPath(a.cfg.OutputDir, keyword)
		}
		return a.runCrawl(cmd, keyword, maxPlaces, out)
	},
}

func (a *app) runCrawl(cmd *cobra.Command, keyword string, maxPlaces int, out string) error {
	ctx := cmd.Context()
	a.logger.Info("=== Naver Map crawl starting ===")
	a.logger.Info("Keyword: %q | max places: %d | headless: %v", keyword, maxPlaces, a.cfg.Headless)

	session, err := naver.NewSession(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer session.Close()

	crawler := naver.New(session, a.cfg, a.ranker, a.logger)
	results, crawlErr := crawler.Crawl(ctx, keyword, maxPlaces)
	if crawlErr != nil {
		a.logger.Error("Crawl stopped early: %v", crawlErr)
	}

	a.persistResults(ctx, results, out)

	summarySvc := services.NewSummaryService(a.ranker, a.logger)
	summary := summarySvc.Generate(results, a.cfg.SummaryKeywords)
	summarySvc.Print(cmd.OutOrStdout(), fmt.Sprintf("Keywords for %q", keyword), summary)

	if crawlErr != nil {
		return fmt.Errorf("crawl %q: %w", keyword, crawlErr)
	}
	if results.Len() == 0 {
		return errors.New("no places were extracted")
	}
	a.logger.Info("Done. %d places → %s", results.Len(), out)
	return nil
}

// persistResults writes results to every configured backend. Failures are
// logged so one broken backend does not cost the others their copy.
func (a *app) persistResults(ctx context.Context, results *services.ResultSet, out string) {
	type target struct {
		name string
		w    storage.ResultWriter
	}
	targets := []target{{name: out, w: storage.NewJSONWriter(out)}}

	store, err := a.openStore(ctx)
	if err != nil {
		a.logger.Error("PostgreSQL unavailable, skipping: %v", err)
	} else if store != nil {
		targets = append(targets, target{name: "PostgreSQL (table: places)", w: store})
	}

	for _, t := range targets {
		if err := t.w.Write(results); err != nil {
			a.logger.Error("Saving results to %s failed: %v", t.name, err)
		} else {
			a.logger.Info("Saved %d places to %s", results.Len(), t.name)
		}
		if err := t.w.Close(); err != nil {
			a.logger.Warn("Closing %s failed: %v", t.name, err)
		}
	}
}
