package helper

import (
	"log"
	"time"

	"lab_storage/database"
	"lab_storage/model"

	"github.com/go-co-op/gocron/v2"
)

var auditScheduler gocron.Scheduler

// AuditOccupancyInvariant scans for positions whose occupancy exceeds
// capacity. The write path cannot produce such rows; legacy imports and
// manual database edits can, and they must not go unnoticed.
func AuditOccupancyInvariant() {
	db := database.DB

	var violations []model.Position
	if err := db.Where("occupancy > capacity").Find(&violations).Error; err != nil {
		log.Printf("occupancy audit query failed: %v", err)
		return
	}

	for _, p := range violations {
		log.Printf("AUDIT: position %s (id=%d) over capacity: occupancy=%d capacity=%d",
			p.Code, p.ID, p.Occupancy, p.Capacity)
	}
	if len(violations) == 0 {
		return
	}
	log.Printf("AUDIT: %d position(s) violate the occupancy invariant", len(violations))
}

func StartOccupancyAuditScheduler() {
	s, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal(err)
	}

	auditScheduler = s

	_, err = s.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(AuditOccupancyInvariant),
	)
	if err != nil {
		log.Printf("cannot schedule occupancy audit: %v", err)
		return
	}

	s.Start()
	log.Println("occupancy audit scheduler started (hourly)")
}

func StopOccupancyAuditScheduler() {
	if auditScheduler != nil {
		_ = auditScheduler.Shutdown()
	}
}
