// Command createtable creates the demographics table with its key schema and
// provisioned throughput.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"demographics-api/internal/config"
	"demographics-api/pkg/server"
)

func main() {
	var (
		tableName = flag.String("table", "", "Table name (defaults to TABLE_NAME)")
		backend   = flag.String("backend", "", "Table backend: dynamodb, sqlite, memory (defaults to TABLE_BACKEND)")
		timeout   = flag.Duration("timeout", 3*time.Minute, "Time to wait for the table to become active")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if *tableName != "" {
		cfg.Table.Name = *tableName
	}
	if *backend != "" {
		cfg.Table.Backend = *backend
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	container, err := server.NewContainer(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize container")
	}
	defer container.Close()

	logger := container.Logger
	logger.WithFields(logrus.Fields{
		"table":          cfg.Table.Name,
		"backend":        cfg.Table.Backend,
		"region":         cfg.AWS.Region,
		"read_capacity":  cfg.Table.ReadCapacity,
		"write_capacity": cfg.Table.WriteCapacity,
	}).Info("Creating table")

	if err := container.Repository.EnsureTable(ctx); err != nil {
		container.Close()
		logger.WithError(err).Fatal("Table creation failed")
	}

	logger.Info("Table creation completed successfully")
}
