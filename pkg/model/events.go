package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event subjects published by this repo.
const (
	SubjectImportCompleted = "evt.catalog.import.completed.v1"
	SubjectQuoteSubmitted  = "evt.quote.submitted.v1"
	SubjectFeedUploaded    = "evt.catalog.feed.uploaded.v1"
)

// Envelope is the canonical event wrapper.
type Envelope struct {
	ID        uuid.UUID       `json:"id"`
	Topic     string          `json:"topic"`
	EventType string          `json:"event_type"`
	Version   string          `json:"version"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into a fresh envelope.
func NewEnvelope(topic, eventType, source string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		ID:        uuid.New(),
		Topic:     topic,
		EventType: eventType,
		Version:   "1.0.0",
		Source:    source,
		Timestamp: time.Now().UTC(),
		Payload:   data,
	}, nil
}

// ImportRun summarizes one inventory/pricing import.
type ImportRun struct {
	ID            uuid.UUID `json:"id"`
	Mode          string    `json:"mode"`
	Styles        int       `json:"styles"`
	InventoryRows int       `json:"inventory_rows"`
	PricingRows   int       `json:"pricing_rows"`
	FailedStyles  []string  `json:"failed_styles,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Status        string    `json:"status"`
	ErrorMessage  string    `json:"error,omitempty"`
}

// FeedUpload describes a file pushed to Box.
type FeedUpload struct {
	FileID     string    `json:"file_id"`
	FileName   string    `json:"file_name"`
	SharedLink string    `json:"shared_link,omitempty"`
	Rows       int       `json:"rows"`
	UploadedAt time.Time `json:"uploaded_at"`
}
