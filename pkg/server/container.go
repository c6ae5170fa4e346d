package server

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"demographics-api/internal/adapters/mailer"
	"demographics-api/internal/adapters/storage"
	"demographics-api/internal/config"
	"demographics-api/internal/repositories"
	"demographics-api/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *logrus.Logger
	Repository repositories.DemographicsRepository
	Notifier   services.ChangeNotifier

	// Internal dependencies
	table storage.Table
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	logger := config.NewLogger(cfg)

	factory := storage.NewFactory(logger)
	storageConfig := cfg.StorageConfig()
	table, err := factory.Create(ctx, storageConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create table engine: %w", err)
	}

	m, err := mailer.New(ctx, cfg.MailerConfig(), logger)
	if err != nil {
		table.Close()
		return nil, fmt.Errorf("failed to create mailer: %w", err)
	}

	container := &Container{
		Config:     cfg,
		Logger:     logger,
		Repository: repositories.NewDemographicsRepository(table, factory.Schema(storageConfig), logger),
		Notifier: services.NewChangeNotifier(m, &services.NotifierConfig{
			To:        cfg.Notify.To,
			From:      cfg.Notify.From,
			Subject:   cfg.Notify.Subject,
			TableName: cfg.Table.Name,
		}, logger),
		table: table,
	}

	logger.WithFields(logrus.Fields{
		"mode":      config.GetDeploymentMode(),
		"backend":   storageConfig.Type,
		"table":     storageConfig.TableName,
		"transport": cfg.Notify.Transport,
	}).Debug("Container initialized")

	return container, nil
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.table != nil {
		if err := c.table.Close(); err != nil {
			return fmt.Errorf("failed to close table: %w", err)
		}
	}

	return nil
}
