package model

import "time"

// RawComment is a single top-level comment or reply as fetched from a video's
// comment threads. Replies are flattened alongside their parent with no linkage.
type RawComment struct {
	ID                string
	Text              string
	AuthorDisplayName string // Empty when the platform omits the author.
	LikeCount         int64
	PublishedAt       time.Time
}
