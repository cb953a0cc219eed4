package amqp

import (
	"encoding/json"
	"time"
)

// PaymentSyncMessage asks the worker to mirror one payment to the ledger
// sheet. It carries only the ID; the worker loads the full row from the
// store so the message never goes stale.
type PaymentSyncMessage struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPaymentSyncMessage(id, tenantID int64) *PaymentSyncMessage {
	return &PaymentSyncMessage{
		ID:        id,
		TenantID:  tenantID,
		Timestamp: time.Now(),
	}
}

func (m *PaymentSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PaymentSyncMessageFromJSON(data []byte) (*PaymentSyncMessage, error) {
	var msg PaymentSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
