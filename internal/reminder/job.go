// Package reminder implements scheduling and dispatch of "starting
// soon" notifications for meets and lectures. A reminder fires 30
// minutes before the event start; events closer than that never get
// one.
package reminder

import "fmt"

type Kind string

const (
	KindMeet    Kind = "meet"
	KindLecture Kind = "lecture"
)

// JobKey derives the deterministic queue key for an event's reminder.
// The same (kind, id) pair always yields the same key, which is what
// makes cancellation and replacement idempotent.
func JobKey(kind Kind, id string) string {
	return fmt.Sprintf("%s-email-%s", kind, id)
}

// MeetJob carries everything the dispatcher needs to render a meet
// reminder. Fields are copied out of the event at schedule time and
// not re-fetched when the job fires.
type MeetJob struct {
	Email     string `json:"email"`
	EventName string `json:"eventName"`
	Place     string `json:"place"`
	URL       string `json:"url"`
	ShortURL  string `json:"shortUrl"`
	DateTime  string `json:"dateTime"`
}

// LectureJob carries the lecture reminder payload. Lectures have no
// organizer email, so there is no email field.
type LectureJob struct {
	Lector   string `json:"lector"`
	Group    string `json:"group"`
	Unit     string `json:"unit"`
	Place    string `json:"place"`
	ShortURL string `json:"shortUrl"`
	DateTime string `json:"dateTime"`
}

// Job is the queue payload: a union tagged by Type. Exactly one of
// Meet or Lecture is set, matching the tag.
type Job struct {
	Type    Kind        `json:"type"`
	ID      string      `json:"id"`
	Meet    *MeetJob    `json:"meet,omitempty"`
	Lecture *LectureJob `json:"lecture,omitempty"`
}
