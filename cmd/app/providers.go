package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/mood-journal/internal/domain/auth"
	"github.com/yanqian/mood-journal/internal/domain/journal"
	"github.com/yanqian/mood-journal/internal/infra/archive"
	"github.com/yanqian/mood-journal/internal/infra/config"
	"github.com/yanqian/mood-journal/internal/infra/dashcache"
	"github.com/yanqian/mood-journal/internal/infra/database"
	"github.com/yanqian/mood-journal/internal/infra/journalrepo"
	"github.com/yanqian/mood-journal/internal/infra/llm/chatgpt"
	"github.com/yanqian/mood-journal/internal/infra/quota"
	"github.com/yanqian/mood-journal/internal/infra/sentiment"
	sentimentgpt "github.com/yanqian/mood-journal/internal/infra/sentiment/chatgpt"
	"github.com/yanqian/mood-journal/internal/infra/sentiment/huggingface"
	"github.com/yanqian/mood-journal/internal/infra/tokenstore"
	"github.com/yanqian/mood-journal/internal/infra/userrepo"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}
}

func provideJournalConfig(cfg *config.Config) (journal.Config, error) {
	loc, err := cfg.Journal.Location()
	if err != nil {
		return journal.Config{}, fmt.Errorf("load journal timezone: %w", err)
	}
	return journal.Config{
		Location:          loc,
		SeriesWindowDays:  cfg.Journal.SeriesWindowDays,
		DashboardCacheTTL: cfg.Journal.DashboardCacheTTL,
		MaxContentLength:  cfg.Journal.MaxContentLength,
		MaxTags:           cfg.Journal.MaxTags,
		RecentEntries:     cfg.Journal.RecentEntries,
	}, nil
}

// providePool returns a nil pool when no DSN is set or Postgres is unreachable,
// in which case the repositories fall back to memory. Migration failures are fatal.
func providePool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func(), error) {
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil, noop, nil
	}
	ctx := context.Background()
	pool, err := database.Open(ctx, database.Config{
		DSN:      dsn,
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
	})
	if err != nil {
		logger.Error("postgres unavailable, using memory repositories", "error", err)
		return nil, noop, nil
	}
	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := database.Migrate(migrateCtx, pool, logger); err != nil {
		pool.Close()
		return nil, noop, fmt.Errorf("migrate postgres: %w", err)
	}
	logger.Info("postgres repositories enabled")
	return pool, pool.Close, nil
}

// provideValkeyClient returns a nil client when valkey is disabled or unreachable.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) (valkey.Client, func()) {
	noop := func() {}
	if !cfg.Valkey.Enabled {
		return nil, noop
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory stores", "error", err)
		return nil, noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory stores", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory stores", "error", err)
		client.Close()
		return nil, noop
	}
	logger.Info("valkey enabled", "addr", cfg.Valkey.Addr)
	return client, client.Close
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideUserRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideJournalRepository(pool *pgxpool.Pool) journal.Repository {
	if pool == nil {
		return journalrepo.NewMemoryRepository()
	}
	return journalrepo.NewPostgresRepository(pool)
}

func provideRevocationStore(cfg *config.Config, client valkey.Client) auth.RevocationStore {
	if client == nil {
		return tokenstore.NewMemoryStore()
	}
	return tokenstore.NewValkeyStore(client, cfg.Valkey.Prefix)
}

func provideDashboardCache(cfg *config.Config, client valkey.Client) journal.DashboardCache {
	if client == nil {
		return dashcache.NewMemoryCache()
	}
	return dashcache.NewValkeyCache(client, cfg.Valkey.Prefix)
}

func provideQuota(cfg *config.Config, client valkey.Client) journal.Quota {
	qcfg := quota.Config{Limit: cfg.Sentiment.Quota.Limit, Window: cfg.Sentiment.Quota.Window}
	switch {
	case qcfg.Limit <= 0:
		return quota.Unlimited{}
	case client == nil:
		return quota.NewMemory(qcfg)
	default:
		return quota.NewValkey(qcfg, client, cfg.Valkey.Prefix)
	}
}

// provideClassifier falls back to sentiment.Disabled when the selected provider has
// no credentials, so entries are still saved without analysis.
func provideClassifier(cfg *config.Config, logger *slog.Logger) (journal.Classifier, error) {
	switch cfg.Sentiment.Provider {
	case config.ProviderHuggingFace:
		if strings.TrimSpace(cfg.Sentiment.APIKey) == "" {
			logger.Warn("hugging face api key not set, emotion analysis disabled")
			return sentiment.Disabled{}, nil
		}
		client, err := huggingface.NewClient(huggingface.Config{
			APIKey:        cfg.Sentiment.APIKey,
			BaseURL:       cfg.Sentiment.BaseURL,
			Model:         cfg.Sentiment.Model,
			Timeout:       cfg.Sentiment.Timeout,
			MaxInputChars: cfg.Sentiment.MaxInputChars,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("emotion analysis via hugging face", "model", cfg.Sentiment.Model)
		return client, nil
	case config.ProviderChatGPT:
		if strings.TrimSpace(cfg.LLM.APIKey) == "" {
			logger.Warn("openai api key not set, emotion analysis disabled")
			return sentiment.Disabled{}, nil
		}
		client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
		if err != nil {
			return nil, err
		}
		logger.Info("emotion analysis via chat completions", "model", cfg.LLM.Model)
		return sentimentgpt.NewClassifier(sentimentgpt.Config{
			Model:         cfg.LLM.Model,
			Temperature:   cfg.LLM.Temperature,
			MaxInputChars: cfg.Sentiment.MaxInputChars,
		}, client), nil
	default:
		logger.Info("emotion analysis disabled")
		return sentiment.Disabled{}, nil
	}
}

func provideArchive(cfg *config.Config, logger *slog.Logger) (journal.ObjectStorage, error) {
	if cfg.Archive.Provider != config.ArchiveR2 {
		return archive.NewMemoryStorage(), nil
	}
	storage, err := archive.NewR2Storage(archive.R2Config{
		Endpoint:  cfg.Archive.Endpoint,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		Bucket:    cfg.Archive.Bucket,
		Region:    cfg.Archive.Region,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("journal exports stored in r2", "bucket", cfg.Archive.Bucket)
	return storage, nil
}
