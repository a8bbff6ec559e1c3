package model

import "time"

// VideoRef identifies a video returned by a platform search. IDs are unique
// within a single collection run.
type VideoRef struct {
	ID          string
	Title       string
	ChannelID   string
	PublishedAt time.Time
}
