package events

import (
	"encoding/json"
	"time"
)

const (
	SearchStarted   = "search_started"
	SearchProgress  = "search_progress"
	SearchFinished  = "search_finished"
	ListingsSaved   = "listings_saved"
	ListingUpdated  = "listing_updated"
	ListingDeleted  = "listing_deleted"
	ConfigUpdated   = "config_updated"
	ExtractFinished = "extract_finished"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// MakeEvent encodes a v1 event for the SSE stream.
func MakeEvent(reqID, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   1,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}

// Publisher is what producers need from a Hub.
type Publisher interface {
	Publish(evt string)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(string) {}
