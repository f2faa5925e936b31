package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeScheduleClosed       = "schedule.closed"
	EventTypeRequestStatusChanged = "request.status_changed"
)

type ScheduleClosedEvent struct {
	BaseEvent
	ScheduleID int64 `json:"schedule_id"`
	Month      int   `json:"month"`
	Year       int   `json:"year"`
	ClosedBy   int64 `json:"closed_by"`
}

func NewScheduleClosedEvent(scheduleID int64, month, year int, closedBy int64) *ScheduleClosedEvent {
	return &ScheduleClosedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeScheduleClosed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"schedule_id": scheduleID,
				"month":       month,
				"year":        year,
				"closed_by":   closedBy,
			},
		},
		ScheduleID: scheduleID,
		Month:      month,
		Year:       year,
		ClosedBy:   closedBy,
	}
}

type RequestStatusChangedEvent struct {
	BaseEvent
	RequestID     int64  `json:"request_id"`
	RequestNumber string `json:"request_number"`
	FromStatus    string `json:"from_status"`
	ToStatus      string `json:"to_status"`
	ChangedBy     int64  `json:"changed_by"`
}

func NewRequestStatusChangedEvent(requestID int64, number, from, to string, changedBy int64) *RequestStatusChangedEvent {
	return &RequestStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestStatusChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":     requestID,
				"request_number": number,
				"from_status":    from,
				"to_status":      to,
				"changed_by":     changedBy,
			},
		},
		RequestID:     requestID,
		RequestNumber: number,
		FromStatus:    from,
		ToStatus:      to,
		ChangedBy:     changedBy,
	}
}
