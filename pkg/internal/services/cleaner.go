package services

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/warblr-net/warbler/pkg/internal/database"
	"github.com/warblr-net/warbler/pkg/internal/models"
)

// Models carrying a soft-delete column. Follow and Like edges are removed
// for real straight away, so they have nothing to purge.
var cleanupRange = []any{
	&models.Account{},
	&models.Message{},
}

// DoAutoDatabaseCleanup hard-deletes rows that were soft-deleted more than a
// month ago. Wired to an hourly cron job in main.
func DoAutoDatabaseCleanup() {
	deadline := time.Now().Add(-30 * 24 * time.Hour)

	log.Debug().Msg("Now doing database cleanup...")

	var count int64
	for _, model := range cleanupRange {
		tx := database.C.Unscoped().
			Where("deleted_at IS NOT NULL").
			Where("deleted_at < ?", deadline).
			Delete(model)
		if tx.Error != nil {
			log.Error().Err(tx.Error).Msg("An error occurred when running database cleanup...")
		}
		count += tx.RowsAffected
	}

	log.Debug().Int64("affected", count).Msg("Cleaned up entirely deleted records.")
}
