// Package sse implements Server-Sent Events so open clients can refresh after
// category, assignment and highlight changes.
package sse

import (
	"time"

	"github.com/versemark/versemark-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventCategoryDeleted is sent after a category deletion finishes, including partial failures.
	EventCategoryDeleted EventType = "category.deleted"

	// EventAssignmentUpdated is sent when a color's label set is written.
	EventAssignmentUpdated EventType = "assignment.updated"
	// EventAssignmentDeleted is sent when a color's assignment row is removed.
	EventAssignmentDeleted EventType = "assignment.deleted"

	EventHighlightCreated EventType = "highlight.created"
	EventHighlightUpdated EventType = "highlight.updated"
	EventHighlightDeleted EventType = "highlight.deleted"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one message on the stream.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// CategoryDeletedEventData summarizes a finished deletion.
type CategoryDeletedEventData struct {
	OperationID string   `json:"operation_id"`
	Category    string   `json:"category"`
	Colors      []string `json:"colors"`
	Deleted     int      `json:"deleted"`
	Protected   int      `json:"protected"`
	Failed      int      `json:"failed"`
}

// AssignmentEventData carries the new label set for a color.
type AssignmentEventData struct {
	Assignment *domain.CategoryAssignment `json:"assignment"`
}

// AssignmentDeletedEventData identifies the color whose row was removed.
type AssignmentDeletedEventData struct {
	Color string `json:"color"`
}

// HighlightEventData carries a created or updated highlight.
type HighlightEventData struct {
	Highlight *domain.Highlight `json:"highlight"`
}

// HighlightDeletedEventData identifies a removed highlight.
type HighlightDeletedEventData struct {
	HighlightID string `json:"highlight_id"`
	Color       string `json:"color"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

func newEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// NewCategoryDeletedEvent creates a category.deleted event.
func NewCategoryDeletedEvent(data CategoryDeletedEventData) Event {
	return newEvent(EventCategoryDeleted, data)
}

// NewAssignmentUpdatedEvent creates an assignment.updated event.
func NewAssignmentUpdatedEvent(a *domain.CategoryAssignment) Event {
	return newEvent(EventAssignmentUpdated, AssignmentEventData{Assignment: a})
}

// NewAssignmentDeletedEvent creates an assignment.deleted event.
func NewAssignmentDeletedEvent(color string) Event {
	return newEvent(EventAssignmentDeleted, AssignmentDeletedEventData{Color: color})
}

// NewHighlightCreatedEvent creates a highlight.created event.
func NewHighlightCreatedEvent(h *domain.Highlight) Event {
	return newEvent(EventHighlightCreated, HighlightEventData{Highlight: h})
}

// NewHighlightUpdatedEvent creates a highlight.updated event.
func NewHighlightUpdatedEvent(h *domain.Highlight) Event {
	return newEvent(EventHighlightUpdated, HighlightEventData{Highlight: h})
}

// NewHighlightDeletedEvent creates a highlight.deleted event.
func NewHighlightDeletedEvent(id, color string) Event {
	return newEvent(EventHighlightDeleted, HighlightDeletedEventData{HighlightID: id, Color: color})
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat, HeartbeatEventData{ServerTime: time.Now()})
}
