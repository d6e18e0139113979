//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/mood-journal/internal/bootstrap"
	"github.com/yanqian/mood-journal/internal/domain/auth"
	"github.com/yanqian/mood-journal/internal/domain/journal"
	"github.com/yanqian/mood-journal/internal/infra/config"
	httpiface "github.com/yanqian/mood-journal/internal/interface/http"
	"github.com/yanqian/mood-journal/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideJournalConfig,
		providePool,
		provideValkeyClient,
		provideUserRepository,
		provideJournalRepository,
		provideRevocationStore,
		provideDashboardCache,
		provideQuota,
		provideClassifier,
		provideArchive,
		auth.NewService,
		journal.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
