package services

import (
	"time"

	"pennypilot/internal/logger"
)

// StartGenerationScheduler runs an immediate generation sweep and then keeps
// sweeping once a day just after midnight, so recurring transactions appear
// even when nobody hits the API. It never returns; run it in a goroutine.
func StartGenerationScheduler(svc RecurringServicer) {
	log := logger.Named("recurring")

	sweep := func() {
		today := time.Now().Format(dateLayout)
		count, err := svc.GenerateDueTransactions(today)
		if err != nil {
			log.Errorw("generation sweep failed", "as_of", today, "error", err)
			return
		}
		if count > 0 {
			log.Infow("generation sweep complete", "as_of", today, "generated", count)
		}
	}

	sweep()

	for {
		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
		time.Sleep(midnight.Sub(now))

		sweep()

		// Guard against re-running within the same second after a fast sweep.
		time.Sleep(time.Second)
	}
}
