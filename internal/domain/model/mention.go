package model

import "time"

// PlatformYouTube is the platform tag stamped on every mention collected from YouTube.
const PlatformYouTube = "youtube"

// DefaultLang is the language assigned to mentions before downstream detection.
const DefaultLang = "en"

// NormalizedMention is the persisted unit of the output dataset. One mention is
// created per RawComment and never mutated afterwards. Entities, Sentiment and
// Topics are empty placeholders filled by downstream enrichment.
type NormalizedMention struct {
	Platform   string      `json:"platform"`
	ExternalID string      `json:"external_id"`
	CreatedAt  time.Time   `json:"created_at"`
	Author     *string     `json:"author"`
	Text       string      `json:"text"`
	Lang       string      `json:"lang"`
	Meta       MentionMeta `json:"meta"`
	Entities   Entities    `json:"entities"`
	Sentiment  Sentiment   `json:"sentiment"`
	Topics     []string    `json:"topics"`
	ShowID     *string     `json:"show_id"`
	EpisodeID  *string     `json:"episode_id"`
}

// MentionMeta carries the enclosing video context of a mention.
type MentionMeta struct {
	VideoID    string `json:"video_id"`
	VideoTitle string `json:"video_title"`
	ChannelID  string `json:"channel_id"`
	LikeCount  int64  `json:"like_count"`
}

// Entities holds extracted entity lists. Always serialized as empty arrays, never null.
type Entities struct {
	Characters []string `json:"characters"`
	Hashtags   []string `json:"hashtags"`
	Keywords   []string `json:"keywords"`
}

// Sentiment is the downstream sentiment classification; both fields are null until enriched.
type Sentiment struct {
	Label *string  `json:"label"`
	Score *float64 `json:"score"`
}
