package stats

// MonthBucket accumulates one tracked calendar month while the walker
// runs and carries the derived metrics afterwards.
//
// NightsRented, NumReservations, CancelledReservations, TotalRevenue and
// TotalBookingLeadTime are accumulators. Everything else is derived and
// stays zero until DeriveMetrics has run for the bucket.
type MonthBucket struct {
	OccupancyPercent      float64 `json:"occupancyPercent"`
	NightsRented          int     `json:"nightsRented"`
	NumReservations       int     `json:"numReservations"`
	CancelledReservations int     `json:"cancelledReservations"`
	CancelationRate       float64 `json:"cancelationRate"`
	PossibleNights        int     `json:"possibleNights"`
	AvgLengthOfStay       float64 `json:"avgLengthOfStay"`
	TotalRevenue          float64 `json:"totalRevenue"`
	PossibleRevenue       float64 `json:"possibleRevenue"`
	AvgRevenue            float64 `json:"avgRevenue"`
	BookingLeadTime       float64 `json:"bookingLeadTime"`
	TotalBookingLeadTime  int     `json:"totalBookingLeadTime"`
	AvgDailyRate          float64 `json:"avgDailyRate"`
	RevPAR                float64 `json:"revPAR"`
}
