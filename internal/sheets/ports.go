package sheets

import (
	"context"

	"github.com/DanyWerfy/CloudBedReports/internal/stats"
)

// StatsPublisher pushes a finished monthly statistics mapping to an
// external surface shared with co-owners.
type StatsPublisher interface {
	PublishMonthlyStats(ctx context.Context, months map[string]*stats.MonthBucket) error
}
