// Package feed is the simulated real-time event feed: a tagged-variant
// event model, a websocket hub that fans events out to dashboard clients,
// and a timer-driven generator that fabricates activity. It is a mock by
// design: no reconnection protocol, no delivery guarantees.
package feed

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/nrfta/gridcache-go/console/models"
)

// Event type tags. Clients switch exhaustively on Message.Type.
const (
	TypeResourceUpdated = "resource_updated"
	TypeMetricsTick     = "metrics_tick"
	TypeAccessRequested = "access_requested"
)

// Message is the wire envelope: a type tag plus the variant payload.
type Message struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	At   string `json:"at"`
	Data any    `json:"data"`
}

// ResourceUpdated reports a status or attribute change on one resource.
type ResourceUpdated struct {
	ResourceID string `json:"resourceId"`
	Name       string `json:"name"`
	Status     string `json:"status"`
}

// MetricsTick reports drifted utilization numbers for one resource.
type MetricsTick struct {
	ResourceID        string  `json:"resourceId"`
	CPUUtilization    float64 `json:"cpuUtilization"`
	MemoryUtilization float64 `json:"memoryUtilization"`
}

// AccessRequested reports a new pending access request.
type AccessRequested struct {
	RequestID    string `json:"requestId"`
	ResourceID   string `json:"resourceId"`
	ResourceName string `json:"resourceName"`
	Reason       string `json:"reason"`
}

func envelope(eventType string, data any) Message {
	return Message{
		ID:   ulid.Make().String(),
		Type: eventType,
		At:   time.Now().UTC().Format(time.RFC3339),
		Data: data,
	}
}

// NewResourceUpdated wraps a resource change in its envelope.
func NewResourceUpdated(r models.Resource) Message {
	return envelope(TypeResourceUpdated, ResourceUpdated{
		ResourceID: r.ID.String(),
		Name:       r.Name,
		Status:     r.Status,
	})
}

// NewMetricsTick wraps a utilization sample in its envelope.
func NewMetricsTick(r models.Resource) Message {
	return envelope(TypeMetricsTick, MetricsTick{
		ResourceID:        r.ID.String(),
		CPUUtilization:    models.ClampUtilization(r.CPUUtilization),
		MemoryUtilization: models.ClampUtilization(r.MemoryUtilization),
	})
}

// NewAccessRequested wraps a new access request in its envelope.
func NewAccessRequested(ar models.AccessRequest, resourceName string) Message {
	return envelope(TypeAccessRequested, AccessRequested{
		RequestID:    ar.ID.String(),
		ResourceID:   ar.ResourceID.String(),
		ResourceName: resourceName,
		Reason:       ar.Reason,
	})
}

// drift nudges a utilization value by up to ±step, clamped to [0, 100].
func drift(v, step float64) float64 {
	v += (rand.Float64()*2 - 1) * step
	return models.ClampUtilization(v)
}
