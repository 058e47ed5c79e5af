package model

import "time"

// Ingestion records a policy document whose chunks were fully written to the
// vector store under a given schema version.
type Ingestion struct {
	Source        string    `db:"source" json:"source"`
	SchemaVersion int       `db:"schema_version" json:"schemaVersion"`
	Chunks        int       `db:"chunks" json:"chunks"`
	Dimension     int       `db:"dimension" json:"dimension"`
	CompletedAt   time.Time `db:"completed_at" json:"completedAt"`
}
