package model

import (
	"time"

	"github.com/google/uuid"
)

type MeetStatus string

const (
	MeetStatusNew       MeetStatus = "new"
	MeetStatusPending   MeetStatus = "pending"
	MeetStatusCompleted MeetStatus = "completed"
)

// Meet is a video-conference request submitted by an organizer.
type Meet struct {
	ID           uuid.UUID  `json:"id"`
	EventName    *string    `json:"eventName"`
	CustomerName *string    `json:"customerName"`
	Email        *string    `json:"email"`
	Phone        *string    `json:"phone"`
	Location     *string    `json:"location"`
	Platform     *string    `json:"platform"`
	Devices      *string    `json:"devices"`
	URL          *string    `json:"url"`
	ShortURL     *string    `json:"shortUrl"`
	Status       MeetStatus `json:"status"`
	Description  *string    `json:"description"`
	AdminID      *uuid.UUID `json:"adminId"`
	AdminName    *string    `json:"adminName,omitempty"`
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt"`
}

// StartInstant returns the absolute start time of the meet, or false
// when the meet has no scheduled start.
func (m *Meet) StartInstant() (time.Time, bool) {
	if m.Start == nil {
		return time.Time{}, false
	}
	return m.Start.UTC(), true
}
