package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// AlertRegenerateMessage asks the worker to re-run the financial analysis
// for one user and month after a write changed the underlying records.
type AlertRegenerateMessage struct {
	UserID    int64     `json:"user_id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"` // 1-12
	Timestamp time.Time `json:"timestamp"`
}

func NewAlertRegenerateMessage(userID int64, year, month int) *AlertRegenerateMessage {
	return &AlertRegenerateMessage{
		UserID:    userID,
		Year:      year,
		Month:     month,
		Timestamp: time.Now().UTC(),
	}
}

func (m *AlertRegenerateMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AlertRegenerateMessageFromJSON(data []byte) (*AlertRegenerateMessage, error) {
	var m AlertRegenerateMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal alert regenerate message: %w", err)
	}
	if m.UserID <= 0 {
		return nil, fmt.Errorf("alert regenerate message: invalid user id %d", m.UserID)
	}
	if m.Month < 1 || m.Month > 12 {
		return nil, fmt.Errorf("alert regenerate message: invalid month %d", m.Month)
	}
	return &m, nil
}
