package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

type (
	// Entity names the kind of record a LedgerEvent refers to.
	Entity string
	// Action is what happened to the record.
	Action string
)

const (
	EntityTransaction Entity = "transaction"
	EntityCategory    Entity = "category"

	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// LedgerEvent is a lightweight notification that a record changed.
// It carries only the id; consumers read the current state from the store.
type LedgerEvent struct {
	Entity    Entity    `json:"entity"`
	Action    Action    `json:"action"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(entity Entity, action Action, id string) *LedgerEvent {
	return &LedgerEvent{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and validates an event.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.ID == "" {
		return nil, fmt.Errorf("ledger event without id")
	}
	switch e.Entity {
	case EntityTransaction, EntityCategory:
	default:
		return nil, fmt.Errorf("unknown entity %q", e.Entity)
	}
	switch e.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return nil, fmt.Errorf("unknown action %q", e.Action)
	}
	return &e, nil
}
