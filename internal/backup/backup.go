package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"skyhub/internal/config"

	"github.com/rs/zerolog"
)

// Service periodically copies the snapshot files (file or sqlite backend)
// into timestamped backup directories and prunes old ones. Backends without
// local files have nothing to back up.
type Service struct {
	sourceDir string
	config    config.BackupConfig
	logger    *zerolog.Logger
}

func NewService(sourceDir string, cfg config.BackupConfig, logger *zerolog.Logger) *Service {
	return &Service{
		sourceDir: sourceDir,
		config:    cfg,
		logger:    logger,
	}
}

func (s *Service) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}
	if s.sourceDir == "" {
		s.logger.Info().Msg("Storage backend has no local files, backup service idle")
		return
	}

	interval := 24 * time.Hour
	if s.config.Schedule != "" {
		if d, err := time.ParseDuration(s.config.Schedule); err == nil {
			interval = d
		} else {
			s.logger.Warn().Err(err).Str("schedule", s.config.Schedule).Msg("Failed to parse backup schedule, using default 24h")
		}
	}

	s.logger.Info().Dur("interval", interval).Msg("Backup service started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first backup immediately
	if err := s.PerformBackup(); err != nil {
		s.logger.Error().Err(err).Msg("Initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.PerformBackup(); err != nil {
				s.logger.Error().Err(err).Msg("Scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup copies every snapshot artifact into a fresh timestamped
// directory under the configured storage path.
func (s *Service) PerformBackup() error {
	entries, err := os.ReadDir(s.sourceDir)
	if err != nil {
		return fmt.Errorf("read snapshot directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	backupDir := filepath.Join(s.config.StoragePath, "backup_"+timestamp)
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	copied := 0
	for _, entry := range entries {
		if entry.IsDir() || !isSnapshotArtifact(entry.Name()) {
			continue
		}
		src := filepath.Join(s.sourceDir, entry.Name())
		dst := filepath.Join(backupDir, entry.Name())
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("copy %s: %w", entry.Name(), err)
		}
		copied++
	}

	s.logger.Info().Str("path", backupDir).Int("files", copied).Msg("Backup completed")
	return nil
}

// CleanupOldBackups removes backup directories older than the retention
// window.
func (s *Service) CleanupOldBackups() {
	if s.config.RetentionDays <= 0 {
		return
	}

	entries, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Warn().Err(err).Msg("read backup directory failed")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "backup_") {
			continue
		}

		stamp := strings.TrimPrefix(entry.Name(), "backup_")
		created, err := time.ParseInLocation("20060102_150405", stamp, time.Local)
		if err != nil {
			continue
		}
		if created.Before(cutoff) {
			path := filepath.Join(s.config.StoragePath, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				s.logger.Warn().Err(err).Str("path", path).Msg("remove old backup failed")
			} else {
				s.logger.Info().Str("path", path).Msg("Old backup removed")
			}
		}
	}
}

func isSnapshotArtifact(name string) bool {
	return strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".db")
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destination.Close()

	_, err = io.Copy(destination, source)
	return err
}
