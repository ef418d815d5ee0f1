package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-money-keeper/internal/config"
	"github.com/MKhiriev/go-money-keeper/internal/logger"
	"github.com/MKhiriev/go-money-keeper/models"
)

type appInfoService struct {
	version       string
	storageDriver string
	startedAt     time.Time

	now    func() time.Time
	logger *logger.Logger
}

// NewAppInfoService captures the build version and the process start time.
// An empty version is a configuration error.
func NewAppInfoService(cfg config.App, storageDriver string, logger *logger.Logger) (AppInfoService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	now := utcNow()
	return &appInfoService{
		version:       cfg.Version,
		storageDriver: storageDriver,
		startedAt:     now,
		now:           utcNow,
		logger:        logger,
	}, nil
}

func (s *appInfoService) GetAppInfo(ctx context.Context) models.AppInfo {
	return models.AppInfo{
		Version:       s.version,
		StorageDriver: s.storageDriver,
		StartedAt:     s.startedAt,
		UptimeSeconds: int64(s.now().Sub(s.startedAt).Seconds()),
	}
}
