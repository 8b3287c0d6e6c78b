package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"

	"github.com/alorle/epg-manager/config"
	"github.com/alorle/epg-manager/internal/adapter/driven"
	port "github.com/alorle/epg-manager/internal/port/driven"
)

// storage bundles the gateways and locker selected by storage.driver.
type storage struct {
	channels port.ChannelRepository
	programs port.ProgramRepository
	locker   port.ScheduleLocker
	close    func() error
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		return &storage{
			channels: driven.NewChannelMemoryRepository(),
			programs: driven.NewProgramMemoryRepository(),
			locker:   driven.NewMemoryLocker(),
			close:    func() error { return nil },
		}, nil

	case config.DriverBolt:
		db, err := bbolt.Open(cfg.Storage.BoltPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		channels, err := driven.NewChannelBoltDBRepository(db)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create channel repository: %w", err)
		}
		programs, err := driven.NewProgramBoltDBRepository(db)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create program repository: %w", err)
		}
		return &storage{
			channels: channels,
			programs: programs,
			locker:   driven.NewMemoryLocker(),
			close:    db.Close,
		}, nil

	case config.DriverPostgres:
		if err := driven.RunMigrations(cfg.Storage.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := driven.NewPostgresPool(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, err
		}
		channels, err := driven.NewChannelPostgresRepository(pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create channel repository: %w", err)
		}
		programs, err := driven.NewProgramPostgresRepository(pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create program repository: %w", err)
		}
		locker, err := driven.NewPostgresLocker(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create schedule locker: %w", err)
		}
		return &storage{
			channels: channels,
			programs: programs,
			locker:   locker,
			close: func() error {
				locker.Close()
				pool.Close()
				return nil
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
