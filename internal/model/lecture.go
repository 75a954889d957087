package model

import (
	"time"

	"github.com/google/uuid"
)

// Lecture is a scheduled lecture. Date carries the calendar day, Start
// only the time of day; the two are combined for reminder scheduling.
type Lecture struct {
	ID           uuid.UUID  `json:"id"`
	Group        *string    `json:"group"`
	Lector       *string    `json:"lector"`
	Platform     *string    `json:"platform"`
	Unit         *string    `json:"unit"`
	Location     *string    `json:"location"`
	URL          *string    `json:"url"`
	ShortURL     *string    `json:"shortUrl"`
	StreamKey    *string    `json:"streamKey"`
	Description  *string    `json:"description"`
	AdminID      *uuid.UUID `json:"adminId"`
	AdminName    *string    `json:"adminName,omitempty"`
	Date         time.Time  `json:"date"`
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
	AbnormalTime *string    `json:"abnormalTime"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt"`
}

// StartInstant combines Date's calendar day with Start's clock fields,
// expressed in UTC. Returns false when Start is not set.
func (l *Lecture) StartInstant() (time.Time, bool) {
	if l.Start == nil {
		return time.Time{}, false
	}
	d := l.Date.UTC()
	t := l.Start.UTC()
	combined := time.Date(
		d.Year(), d.Month(), d.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		time.UTC,
	)
	return combined, true
}
