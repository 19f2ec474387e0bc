package jobs

import (
	"context"
	"log"
	"time"

	"toolkeeper/internal/models"
	"toolkeeper/internal/repositories"
)

// StockAlertService scans consumable stock levels and reports everything at
// or below its minimum threshold.
type StockAlertService struct {
	consumableRepo repositories.ConsumableRepository
	usageRepo      repositories.UsageRepository
}

type StockAlert struct {
	Barcode      string
	Name         string
	CurrentStock int
	MinQuantity  int
	Status       models.StockStatus
	UsedLastWeek int
}

func NewStockAlertService(consumableRepo repositories.ConsumableRepository, usageRepo repositories.UsageRepository) *StockAlertService {
	return &StockAlertService{
		consumableRepo: consumableRepo,
		usageRepo:      usageRepo,
	}
}

// CheckLowStock returns an alert for every active consumable at or below its
// minimum, annotated with the past week's consumption so whoever reorders can
// judge urgency.
func (a *StockAlertService) CheckLowStock(ctx context.Context) ([]StockAlert, error) {
	consumables, err := a.consumableRepo.ListBelowMinimum(ctx)
	if err != nil {
		log.Printf("Failed to list low-stock consumables: %v", err)
		return nil, err
	}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	var alerts []StockAlert
	for _, c := range consumables {
		usedLastWeek := 0
		usages, err := a.usageRepo.GetUsageInWindow(ctx, c.Barcode, weekAgo)
		if err != nil {
			log.Printf("Failed to get recent usage for %s: %v", c.Barcode, err)
		} else {
			for _, u := range usages {
				usedLastWeek += u.Quantity
			}
		}

		alerts = append(alerts, StockAlert{
			Barcode:      c.Barcode,
			Name:         c.Name,
			CurrentStock: c.Quantity,
			MinQuantity:  c.MinQuantity,
			Status:       c.StockStatus(),
			UsedLastWeek: usedLastWeek,
		})
	}
	return alerts, nil
}

func (a *StockAlertService) LogLowStockAlerts(alerts []StockAlert) {
	if len(alerts) == 0 {
		log.Println("No low stock alerts to log")
		return
	}

	log.Printf("Low stock alerts (%d consumables):", len(alerts))
	for _, alert := range alerts {
		log.Printf("- '%s' (%s) has %d units (minimum: %d, used last week: %d)",
			alert.Name,
			alert.Barcode,
			alert.CurrentStock,
			alert.MinQuantity,
			alert.UsedLastWeek)
	}
}

// ScheduledLowStockCheck is the entry point the scheduler calls.
func (a *StockAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	log.Println("Starting scheduled low stock check")

	alerts, err := a.CheckLowStock(ctx)
	if err != nil {
		log.Printf("Scheduled low stock check failed: %v", err)
		return err
	}
	a.LogLowStockAlerts(alerts)

	log.Println("Scheduled low stock check completed successfully")
	return nil
}
