package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event kinds carried on the ledger stream.
const (
	KindTransactionCreated = "transaction.created"
	KindTransactionDeleted = "transaction.deleted"
)

// schemaVersion stamps outgoing messages so consumers can reject
// formats they do not understand.
const schemaVersion = 1

// LedgerEventMessage is the lightweight message published for every
// ledger change. It carries only identifiers; consumers fetch the
// full transaction from the store when they need it.
type LedgerEventMessage struct {
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	Kind          string    `json:"kind"`
	Timestamp     time.Time `json:"timestamp"`
	Version       int64     `json:"version"`
}

func NewLedgerEventMessage(userID, txID, kind string) *LedgerEventMessage {
	return &LedgerEventMessage{
		UserID:        userID,
		TransactionID: txID,
		Kind:          kind,
		Timestamp:     time.Now(),
		Version:       schemaVersion,
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind != KindTransactionCreated && msg.Kind != KindTransactionDeleted {
		return nil, fmt.Errorf("unknown event kind %q", msg.Kind)
	}
	return &msg, nil
}
