package models

import "time"

// AuditLog records one booking event. Appends are best-effort and never
// roll back the operation they describe.
type AuditLog struct {
	ID        string    `db:"id" json:"id"`
	Action    string    `db:"action" json:"action"`
	SlotID    string    `db:"slot_id" json:"slot_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Detail    string    `db:"detail" json:"detail"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
