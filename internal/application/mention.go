package application

import "github.com/ericfisherdev/mentionpipe/internal/domain/model"

// MappingOptions carries the run-level fields stamped on every mention.
type MappingOptions struct {
	ShowID string // Empty serializes as null.
	Lang   string // Empty falls back to model.DefaultLang.
}

// MapMention converts a fetched comment and its enclosing video into a
// NormalizedMention. It is a pure function: identical inputs always produce
// identical output.
func MapMention(video model.VideoRef, comment model.RawComment, opts MappingOptions) model.NormalizedMention {
	lang := opts.Lang
	if lang == "" {
		lang = model.DefaultLang
	}

	return model.NormalizedMention{
		Platform:   model.PlatformYouTube,
		ExternalID: comment.ID,
		CreatedAt:  comment.PublishedAt,
		Author:     optionalString(comment.AuthorDisplayName),
		Text:       comment.Text,
		Lang:       lang,
		Meta: model.MentionMeta{
			VideoID:    video.ID,
			VideoTitle: video.Title,
			ChannelID:  video.ChannelID,
			LikeCount:  comment.LikeCount,
		},
		Entities: model.Entities{
			Characters: []string{},
			Hashtags:   []string{},
			Keywords:   []string{},
		},
		Sentiment: model.Sentiment{},
		Topics:    []string{},
		ShowID:    optionalString(opts.ShowID),
		EpisodeID: nil,
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
