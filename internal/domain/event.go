package domain

// EventTable identifies the source table of a queued database event.
type EventTable string

const (
	TableComments      EventTable = "comments"
	TableLikes         EventTable = "likes"
	TableFollows       EventTable = "follows"
	TableAnnouncements EventTable = "announcements"
)

// IsValid reports whether the table is one the mapper knows how to handle.
// Rows from any other table are marked processed without producing
// notifications; they are ignored, not errors.
func (t EventTable) IsValid() bool {
	switch t {
	case TableComments, TableLikes, TableFollows, TableAnnouncements:
		return true
	}
	return false
}

// CommentRecord mirrors the row inserted into comments by the application.
type CommentRecord struct {
	ID       string `json:"id"`
	PromptID string `json:"prompt_id"`
	UserID   string `json:"user_id"`
	Content  string `json:"content"`
}

// LikeRecord mirrors the row inserted into likes.
type LikeRecord struct {
	ID       string `json:"id"`
	PromptID string `json:"prompt_id"`
	UserID   string `json:"user_id"`
}

// FollowRecord mirrors the row inserted into follows.
type FollowRecord struct {
	FollowerID  string `json:"follower_id"`
	FollowingID string `json:"following_id"`
}

// AnnouncementRecord mirrors the row inserted into announcements.
type AnnouncementRecord struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Notification is the ephemeral delivery payload produced by the mapper.
// It is never persisted: constructed per queue item, handed to the push
// client once per device token, then discarded.
type Notification struct {
	RecipientID string            `json:"recipient_id"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
}

// PromptMeta is the subset of a prompt row the mapper needs to address
// comment and like notifications.
type PromptMeta struct {
	AuthorID string
	Title    string
}
