package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseRecordedMessage announces a freshly appended expense. The worker
// consumes it and runs the per-category alert check for that one user, so
// limit feedback arrives right after the spend instead of waiting for the
// daily sweep.
type ExpenseRecordedMessage struct {
	TransactionID int64     `json:"transaction_id"`
	UserID        int64     `json:"user_id"`
	Category      string    `json:"category"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewExpenseRecordedMessage(transactionID, userID int64, category string) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		TransactionID: transactionID,
		UserID:        userID,
		Category:      category,
		Timestamp:     time.Now(),
	}
}

func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
