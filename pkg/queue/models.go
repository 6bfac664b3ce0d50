package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequestType identifies the type of request in the queue
type RequestType string

const (
	// RequestTypeAdvance moves the world clock forward
	RequestTypeAdvance RequestType = "advance"

	// RequestTypeSave persists a snapshot without advancing
	RequestTypeSave RequestType = "save"
)

// MaxAdvanceMinutes bounds a single advance request to one week of a default
// calendar.
const MaxAdvanceMinutes = 7 * 24 * 60

var ErrInvalidRequest = errors.New("invalid request")

// Request is a unit of work for the simulation worker.
type Request struct {
	RequestID string      `json:"request_id"`
	Type      RequestType `json:"type"`
	WorldID   uuid.UUID   `json:"world_id"`

	// Advance-specific fields
	Minutes int64 `json:"minutes,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewAdvanceRequest builds a clock-advance request for a world.
func NewAdvanceRequest(worldID uuid.UUID, minutes int64) *Request {
	return &Request{
		RequestID:  uuid.New().String(),
		Type:       RequestTypeAdvance,
		WorldID:    worldID,
		Minutes:    minutes,
		EnqueuedAt: time.Now(),
	}
}

// Validate checks that the request can be processed.
func (r *Request) Validate() error {
	if r.WorldID == uuid.Nil {
		return fmt.Errorf("%w: missing world id", ErrInvalidRequest)
	}
	switch r.Type {
	case RequestTypeAdvance:
		if r.Minutes <= 0 || r.Minutes > MaxAdvanceMinutes {
			return fmt.Errorf("%w: minutes must be in [1,%d], got %d", ErrInvalidRequest, MaxAdvanceMinutes, r.Minutes)
		}
	case RequestTypeSave:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRequest, r.Type)
	}
	return nil
}

// MarshalJSON serializes the request to JSON for Redis storage
func (r *Request) MarshalJSON() ([]byte, error) {
	type Alias Request
	return json.Marshal(&struct {
		WorldID string `json:"world_id"`
		*Alias
	}{
		WorldID: r.WorldID.String(),
		Alias:   (*Alias)(r),
	})
}

// UnmarshalJSON deserializes the request from JSON in Redis
func (r *Request) UnmarshalJSON(data []byte) error {
	type Alias Request
	aux := &struct {
		WorldID string `json:"world_id"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	worldID, err := uuid.Parse(aux.WorldID)
	if err != nil {
		return fmt.Errorf("%w: world id: %v", ErrInvalidRequest, err)
	}

	r.WorldID = worldID
	return nil
}

// ToJSON converts the request to JSON bytes for Redis
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
