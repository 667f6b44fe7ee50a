package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"naver-map-scraper/config"
	"naver-map-scraper/services"
	"naver-map-scraper/storage"
	"naver-map-scraper/utils"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:          "naver-map-scraper",
	Short:        "naver-map-scraper crawls Naver Map places and reviews and ranks review keywords.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the configuration and collaborators every command needs.
type app struct {
	cfg    *config.Config
	logger *utils.Logger
	ranker *services.KeywordRanker
}

func newApp() (*app, error) {
	cfg := config.Load()
	logger := utils.NewLogger()
	logger.SetVerbose(verbose)

	ranker, err := newRanker(cfg)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, ranker: ranker}, nil
}

// newRanker builds the keyword ranker for the configured language and
// stopword file.
func newRanker(cfg *config.Config) (*services.KeywordRanker, error) {
	analyzer, err := services.NewAnalyzer(cfg.Language)
	if err != nil {
		return nil, err
	}

	var stopwords []string
	if cfg.StopwordsFile != "" {
		stopwords, err = services.LoadStopwords(cfg.StopwordsFile)
		if err != nil {
			return nil, err
		}
	}
	return services.NewKeywordRanker(services.KeywordConfig{Analyzer: analyzer, Stopwords: stopwords}), nil
}

func (a *app) retry() *utils.RetryConfig {
	return &utils.RetryConfig{MaxAttempts: a.cfg.MaxRetries, BaseDelay: time.Second, Logger: a.logger}
}

// openStore connects to PostgreSQL when it is enabled. It returns nil
// without error when it is not.
func (a *app) openStore(ctx context.Context) (*storage.PostgresStore, error) {
	if !a.cfg.PostgresEnabled {
		return nil, nil
	}
	store, err := storage.NewPostgresStore(ctx, a.cfg.DSN(), a.retry())
	if err != nil {
		return nil, err
	}
	a.logger.Info("Connected to PostgreSQL (%s:%s/%s)", a.cfg.PostgresHost, a.cfg.PostgresPort, a.cfg.PostgresDB)
	return store, nil
}

// openCache connects to Redis when an address is configured. It returns nil
// without error when it is not.
func (a *app) openCache(ctx context.Context) (*storage.RedisIDCache, error) {
	if a.cfg.RedisAddr == "" {
		return nil, nil
	}
	cache, err := storage.NewRedisIDCache(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB, a.cfg.RedisTTL, a.retry())
	if err != nil {
		return nil, err
	}
	a.logger.Info("Using Redis identifier cache at %s", a.cfg.RedisAddr)
	return cache, nil
}
