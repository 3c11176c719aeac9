package domain

import "time"

// BehaviorItem is one liked or read article captured for a user.
type BehaviorItem struct {
	Text       string
	RecordedAt time.Time
}

// NewBehaviorItem joins title and summary the same way for likes and reads.
func NewBehaviorItem(title, summary string, recordedAt time.Time) BehaviorItem {
	return BehaviorItem{Text: title + ". " + summary, RecordedAt: recordedAt}
}

// UserProfile holds the raw interest signals of a user. Likes and History are
// ordered most recent first.
type UserProfile struct {
	UserID     string
	Categories []string
	Likes      []BehaviorItem
	History    []BehaviorItem
}

// HasBehavior reports whether any likes or reads are present.
func (p UserProfile) HasBehavior() bool {
	return len(p.Likes) > 0 || len(p.History) > 0
}
