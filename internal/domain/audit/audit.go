// Package audit defines the domain-facing audit trail contract.
// Disposal reasons and batch-level order history are regulatory records in a
// pharmacy; the storage layer persists them with payload compression.
package audit

import (
	"context"

	"dispensary/internal/core/id"
)

// Action identifies the audited operation.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDispose Action = "dispose"
	ActionOrder   Action = "order"
)

// Recorder persists audit entries. Implementations must be safe to call
// inside a transaction so the record commits atomically with the change.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
}

// Nop is a Recorder that discards entries. Used in tests.
type Nop struct{}

func (Nop) Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error {
	return nil
}
