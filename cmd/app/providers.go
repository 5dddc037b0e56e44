package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/haircarepro/server/internal/domain/auth"
	"github.com/haircarepro/server/internal/domain/careplan"
	"github.com/haircarepro/server/internal/domain/reminder"
	"github.com/haircarepro/server/internal/infra/artifact"
	"github.com/haircarepro/server/internal/infra/config"
	"github.com/haircarepro/server/internal/infra/gen/gemini"
	"github.com/haircarepro/server/internal/infra/gencache"
	"github.com/haircarepro/server/internal/infra/mail"
	"github.com/haircarepro/server/internal/infra/planrepo"
	"github.com/haircarepro/server/internal/infra/userrepo"
	"github.com/haircarepro/server/internal/render"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}
}

func provideCarePlanConfig(cfg *config.Config) careplan.Config {
	return careplan.Config{
		CacheTTL: cfg.Cache.TTL,
	}
}

func provideReminderConfig(cfg *config.Config) reminder.Config {
	return reminder.Config{
		Window: cfg.Reminder.Window,
	}
}

func provideCronToken(cfg *config.Config) string {
	return cfg.Reminder.CronToken
}

func provideGenerator(cfg *config.Config, logger *slog.Logger) (careplan.Generator, error) {
	client, err := gemini.NewClient(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
	if err != nil {
		return nil, err
	}
	logger.Info("generation client initialized", "model", cfg.Gemini.Model)
	return client, nil
}

func provideRenderer() careplan.Renderer {
	return render.NewPDFRenderer()
}

// providePgxPool opens a shared connection pool. A missing or unreachable
// database is tolerated; repositories fall back to memory.
func providePgxPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres pool initialized")
	return pool
}

func providePlanRepository(pool *pgxpool.Pool) careplan.Repository {
	if pool == nil {
		return planrepo.NewMemoryRepository()
	}
	return planrepo.NewPostgresRepository(pool)
}

func provideUserRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func providePlanSource(repo careplan.Repository) reminder.PlanSource {
	return repo
}

func provideUserDirectory(repo auth.Repository) careplan.UserDirectory {
	return repo
}

func provideReminderUserDirectory(repo auth.Repository) reminder.UserDirectory {
	return repo
}

func provideCache(cfg *config.Config, logger *slog.Logger) careplan.Cache {
	if cfg.Cache.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return gencache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return gencache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("generation valkey cache enabled", "addr", cfg.Cache.Addr)
			return gencache.NewValkeyStore(client, "genplan")
		}
	}
	return gencache.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideArtifactStore(cfg *config.Config, logger *slog.Logger) careplan.ArtifactStore {
	if strings.TrimSpace(cfg.Storage.Endpoint) == "" {
		logger.Info("storage endpoint not set, using memory artifact store")
		return artifact.NewMemoryStore()
	}
	store, err := artifact.NewMinioStore(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.Region, logger)
	if err != nil {
		logger.Error("failed to initialize artifact store, using memory artifact store", "error", err)
		return artifact.NewMemoryStore()
	}
	logger.Info("artifact store initialized", "bucket", cfg.Storage.Bucket)
	return store
}

func provideMailer(cfg *config.Config, logger *slog.Logger) careplan.Mailer {
	if strings.TrimSpace(cfg.Mail.Host) == "" {
		logger.Info("smtp host not set, outbound mail will be logged only")
		return mail.NewLogMailer(logger)
	}
	mailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		FromName: cfg.Mail.FromName,
	})
	if err != nil {
		logger.Error("failed to initialize smtp mailer, outbound mail will be logged only", "error", err)
		return mail.NewLogMailer(logger)
	}
	logger.Info("smtp mailer initialized", "host", cfg.Mail.Host)
	return mailer
}

func provideReminderMailer(mailer careplan.Mailer) reminder.Mailer {
	return mailer
}
