package background

import (
	"context"
	"log"
	"sync"
	"time"

	"toolkeeper/internal/jobs"
	"toolkeeper/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler owns the recurring background work: low-stock scans and
// nightly inventory snapshots.
type JobScheduler struct {
	scheduler gocron.Scheduler
	alertSvc  *jobs.StockAlertService
	backupSvc services.BackupService

	lowStockEvery time.Duration
	snapshotEvery time.Duration

	registered map[string]gocron.Job
	mu         sync.RWMutex
}

func NewJobScheduler(alertSvc *jobs.StockAlertService, backupSvc services.BackupService,
	lowStockEvery, snapshotEvery time.Duration) (*JobScheduler, error) {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		alertSvc:      alertSvc,
		backupSvc:     backupSvc,
		lowStockEvery: lowStockEvery,
		snapshotEvery: snapshotEvery,
		registered:    make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	js.mu.Lock()
	defer js.mu.Unlock()

	lowStockJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.lowStockEvery),
		gocron.NewTask(js.alertSvc.ScheduledLowStockCheck, context.Background()),
		gocron.WithName("low-stock-check"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create low stock job: %v", err)
	} else {
		js.registered["low-stock-check"] = lowStockJob
	}

	snapshotJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.snapshotEvery),
		gocron.NewTask(js.runSnapshot),
		gocron.WithName("inventory-snapshot"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create snapshot job: %v", err)
	} else {
		js.registered["inventory-snapshot"] = snapshotJob
	}

	log.Printf("Registered %d background jobs", len(js.registered))
}

func (js *JobScheduler) runSnapshot() error {
	log.Printf("Starting inventory snapshot")

	objectName, err := js.backupSvc.SnapshotInventory(context.Background())
	if err != nil {
		log.Printf("Inventory snapshot failed: %v", err)
		return err
	}

	log.Printf("Inventory snapshot uploaded as %s", objectName)
	return nil
}
