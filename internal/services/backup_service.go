package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"toolkeeper/internal/models"
	"toolkeeper/internal/repositories"
)

// snapshotBatchSize bounds how many rows each registry page pulls while
// building a snapshot.
const snapshotBatchSize = 500

// snapshotPrefix namespaces every snapshot object inside the bucket.
const snapshotPrefix = "snapshots/"

// snapshotURLTTL caps how long a handed-out download link stays valid.
const snapshotURLTTL = 15 * time.Minute

// BackupService serializes the full inventory state to JSON and ships it to
// object storage. Snapshots are point-in-time reads, not a replacement for
// database backups.
type BackupService interface {
	SnapshotInventory(ctx context.Context) (string, error)
	ListSnapshots(ctx context.Context) ([]string, error)
	SnapshotDownloadURL(ctx context.Context, objectName string) (string, error)
	DeleteSnapshot(ctx context.Context, objectName string) error
}

type backupService struct {
	toolRepo       repositories.ToolRepository
	consumableRepo repositories.ConsumableRepository
	workerRepo     repositories.WorkerRepository
	minioSvc       MinioService
	bucket         string
}

type inventorySnapshot struct {
	TakenAt     time.Time            `json:"taken_at"`
	Tools       []*models.Tool       `json:"tools"`
	Consumables []*models.Consumable `json:"consumables"`
	Workers     []*models.Worker     `json:"workers"`
}

func NewBackupService(toolRepo repositories.ToolRepository, consumableRepo repositories.ConsumableRepository,
	workerRepo repositories.WorkerRepository, minioSvc MinioService, bucket string) BackupService {
	return &backupService{
		toolRepo:       toolRepo,
		consumableRepo: consumableRepo,
		workerRepo:     workerRepo,
		minioSvc:       minioSvc,
		bucket:         bucket,
	}
}

// SnapshotInventory writes one JSON object per run, named by timestamp, and
// returns the object name. Trashed records are included so a snapshot can
// answer questions about them too.
func (s *backupService) SnapshotInventory(ctx context.Context) (string, error) {
	snapshot := inventorySnapshot{TakenAt: time.Now().UTC()}

	for offset := 0; ; offset += snapshotBatchSize {
		page, err := s.toolRepo.List(ctx, true, snapshotBatchSize, offset)
		if err != nil {
			return "", fmt.Errorf("snapshot tools: %w", err)
		}
		snapshot.Tools = append(snapshot.Tools, page...)
		if len(page) < snapshotBatchSize {
			break
		}
	}
	for offset := 0; ; offset += snapshotBatchSize {
		page, err := s.consumableRepo.List(ctx, true, snapshotBatchSize, offset)
		if err != nil {
			return "", fmt.Errorf("snapshot consumables: %w", err)
		}
		snapshot.Consumables = append(snapshot.Consumables, page...)
		if len(page) < snapshotBatchSize {
			break
		}
	}
	for offset := 0; ; offset += snapshotBatchSize {
		page, err := s.workerRepo.List(ctx, true, snapshotBatchSize, offset)
		if err != nil {
			return "", fmt.Errorf("snapshot workers: %w", err)
		}
		snapshot.Workers = append(snapshot.Workers, page...)
		if len(page) < snapshotBatchSize {
			break
		}
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := s.minioSvc.EnsureBucketExists(ctx, s.bucket); err != nil {
		return "", fmt.Errorf("ensure bucket %s: %w", s.bucket, err)
	}

	objectName := fmt.Sprintf("%sinventory-%s.json", snapshotPrefix, snapshot.TakenAt.Format("20060102-150405"))
	if err := s.minioSvc.UploadSnapshot(ctx, s.bucket, objectName, bytes.NewReader(payload), int64(len(payload))); err != nil {
		return "", fmt.Errorf("upload snapshot %s: %w", objectName, err)
	}
	return objectName, nil
}

func (s *backupService) ListSnapshots(ctx context.Context) ([]string, error) {
	return s.minioSvc.ListSnapshots(ctx, s.bucket, snapshotPrefix)
}

// SnapshotDownloadURL hands out a short-lived link instead of proxying the
// object through the API.
func (s *backupService) SnapshotDownloadURL(ctx context.Context, objectName string) (string, error) {
	if !strings.HasPrefix(objectName, snapshotPrefix) {
		return "", models.ErrSnapshotNotFound
	}
	return s.minioSvc.GetPresignedURL(ctx, s.bucket, objectName, snapshotURLTTL)
}

func (s *backupService) DeleteSnapshot(ctx context.Context, objectName string) error {
	if !strings.HasPrefix(objectName, snapshotPrefix) {
		return models.ErrSnapshotNotFound
	}
	return s.minioSvc.DeleteSnapshot(ctx, s.bucket, objectName)
}
