package entity

import "time"

// Version is an immutable snapshot of an article's content.
// For a given article exactly one Version has IsCurrent set, and
// VersionNumber increases by one for every snapshot appended.
type Version struct {
	ID            int64
	ArticleID     int64
	VersionNumber int
	VersionType   VersionType
	ContentSnapshot

	IsCurrent      bool
	RevisionType   string // strategy id; empty for the original
	RevisionPrompt string
	ChangesSummary string
	Provider       string
	CreatedAt      time.Time
}
