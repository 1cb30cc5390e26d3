package amqp

import (
	"encoding/json"
	"time"
)

// RefreshRequestMessage asks the report worker to run a fresh
// aggregation. Anchor is a "2006-01-02" date; empty means today.
type RefreshRequestMessage struct {
	Anchor          string    `json:"anchor,omitempty"`
	LookAheadMonths int       `json:"lookAheadMonths"`
	RequestedAt     time.Time `json:"requestedAt"`
}

// StatsReadyMessage announces a finished aggregation run.
type StatsReadyMessage struct {
	RunID       string    `json:"runId"`
	Months      int       `json:"months"`
	ReportPath  string    `json:"reportPath,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

func NewRefreshRequestMessage(anchor string, lookAheadMonths int) *RefreshRequestMessage {
	return &RefreshRequestMessage{
		Anchor:          anchor,
		LookAheadMonths: lookAheadMonths,
		RequestedAt:     time.Now().UTC(),
	}
}

func (m *RefreshRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RefreshRequestMessageFromJSON(data []byte) (*RefreshRequestMessage, error) {
	var m RefreshRequestMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *StatsReadyMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
