package registry

import "time"

// Status is the document lifecycle state. Transitions are
// processing -> ready or processing -> failed; terminal states are final.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// Document is the durable metadata record for one ingested file. Owned by
// the registry; written exactly twice per ingestion (initial processing
// record, then the terminal ready/failed record).
type Document struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Status    Status    `json:"status"`
	Chunks    int       `json:"chunks"`
	FileSize  int64     `json:"file_size"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
