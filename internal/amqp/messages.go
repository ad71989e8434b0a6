package amqp

import (
	"encoding/json"
	"time"

	"txdash/internal/core"
)

// MonthlyReportMessage carries the combined report of one month.
type MonthlyReportMessage struct {
	Month       int                 `json:"month"`
	Report      core.CombinedReport `json:"report"`
	RecordCount int                 `json:"recordCount"`
	GeneratedAt time.Time           `json:"generatedAt"`
}

// NewMonthlyReportMessage wraps report for month. RecordCount is the number
// of records sold in that month, which equals the histogram total.
func NewMonthlyReportMessage(month int, report core.CombinedReport, generatedAt time.Time) *MonthlyReportMessage {
	return &MonthlyReportMessage{
		Month:       month,
		Report:      report,
		RecordCount: report.PriceRanges.Total(),
		GeneratedAt: generatedAt.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *MonthlyReportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthlyReportMessageFromJSON creates a message from JSON bytes
func MonthlyReportMessageFromJSON(data []byte) (*MonthlyReportMessage, error) {
	var msg MonthlyReportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := core.ValidateMonth(msg.Month); err != nil {
		return nil, err
	}
	return &msg, nil
}
