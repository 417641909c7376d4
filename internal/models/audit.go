package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActionType classifies an audited mutation.
type ActionType string

const (
	ActionCreate    ActionType = "create"
	ActionUpdate    ActionType = "update"
	ActionDelete    ActionType = "delete"
	ActionFinancial ActionType = "financial"
)

// AuditEntry is an immutable record of an administrative mutation.
//
// Entries whose action carries a capturable prior state hold a full pre-mutation
// snapshot of the order; replaying the snapshot restores every field, not just
// the one that motivated the entry. Entries without a snapshot are not
// undoable and callers must check Undoable before offering undo.
type AuditEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action        ActionType         `bson:"action" json:"action"`
	Target        string             `bson:"target" json:"target"`
	Details       string             `bson:"details" json:"details"`
	Actor         string             `bson:"actor" json:"actor"`
	Undoable      bool               `bson:"undoable" json:"undoable"`
	OrderSnapshot *Order             `bson:"orderSnapshot,omitempty" json:"orderSnapshot,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
