//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/haircarepro/server/internal/bootstrap"
	"github.com/haircarepro/server/internal/domain/auth"
	"github.com/haircarepro/server/internal/domain/careplan"
	"github.com/haircarepro/server/internal/domain/reminder"
	"github.com/haircarepro/server/internal/infra/config"
	httpiface "github.com/haircarepro/server/internal/interface/http"
	"github.com/haircarepro/server/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideCarePlanConfig,
		provideReminderConfig,
		provideCronToken,
		provideGenerator,
		provideRenderer,
		providePgxPool,
		providePlanRepository,
		provideUserRepository,
		providePlanSource,
		provideUserDirectory,
		provideReminderUserDirectory,
		provideCache,
		provideArtifactStore,
		provideMailer,
		provideReminderMailer,
		auth.NewService,
		careplan.NewService,
		reminder.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
