package stats

// Prune removes every month whose occupancy percent is exactly zero.
// This is how the padding months around the tracked range, and months
// whose derivation was skipped for lack of activity, are discarded.
// Occupancy is the only field consulted; a month with cancellations but
// no occupancy is still removed. Pruning twice yields the same result
// as pruning once.
func Prune(months map[string]*MonthBucket) map[string]*MonthBucket {
	for key, bucket := range months {
		if bucket.OccupancyPercent == 0 {
			delete(months, key)
		}
	}
	return months
}
