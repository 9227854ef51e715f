package mapper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/prompty/notifier/internal/domain"
	"github.com/prompty/notifier/internal/repository"
)

// Notification titles shown on user devices. The Prompty client localises
// nothing on its side; these strings go out verbatim.
const (
	titleComment  = "新しいコメント"
	titleLike     = "いいね！"
	titleFollower = "新しいフォロワー"
)

// Mapper turns a queued database event into zero or more notifications.
// All per-table addressing rules live here: recipient resolution,
// self-notify suppression, and announcement fan-out.
type Mapper struct {
	content   repository.ContentRepository
	fanoutCap int
	logger    *zap.Logger
}

func New(content repository.ContentRepository, fanoutCap int, logger *zap.Logger) *Mapper {
	return &Mapper{content: content, fanoutCap: fanoutCap, logger: logger}
}

// Map resolves the recipients, title, and body for one queue row.
//
// An unknown table name yields (nil, nil): the caller marks the row
// processed without attempting delivery. A lookup miss (deleted prompt or
// profile) also yields (nil, nil) — nothing to notify is not an error.
// A non-nil error means the row itself is bad (malformed record_data or a
// failed lookup query) and becomes the row's error_message.
func (m *Mapper) Map(ctx context.Context, table domain.EventTable, record json.RawMessage) ([]domain.Notification, error) {
	switch table {
	case domain.TableComments:
		return m.mapComment(ctx, record)
	case domain.TableLikes:
		return m.mapLike(ctx, record)
	case domain.TableFollows:
		return m.mapFollow(ctx, record)
	case domain.TableAnnouncements:
		return m.mapAnnouncement(ctx, record)
	default:
		m.logger.Debug("ignoring event from unhandled table", zap.String("table", string(table)))
		return nil, nil
	}
}

func (m *Mapper) mapComment(ctx context.Context, record json.RawMessage) ([]domain.Notification, error) {
	var rec domain.CommentRecord
	if err := json.Unmarshal(record, &rec); err != nil {
		return nil, fmt.Errorf("decode comment record: %w", err)
	}

	meta, err := m.content.PromptMeta(ctx, rec.PromptID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Commenting on your own prompt notifies nobody.
	if meta.AuthorID == rec.UserID {
		return nil, nil
	}

	return []domain.Notification{{
		RecipientID: meta.AuthorID,
		Title:       titleComment,
		Body:        fmt.Sprintf("「%s」に新しいコメントが届きました", meta.Title),
		Data: map[string]string{
			"type":       "comment",
			"prompt_id":  rec.PromptID,
			"comment_id": rec.ID,
		},
	}}, nil
}

func (m *Mapper) mapLike(ctx context.Context, record json.RawMessage) ([]domain.Notification, error) {
	var rec domain.LikeRecord
	if err := json.Unmarshal(record, &rec); err != nil {
		return nil, fmt.Errorf("decode like record: %w", err)
	}

	meta, err := m.content.PromptMeta(ctx, rec.PromptID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Liking your own prompt notifies nobody.
	if meta.AuthorID == rec.UserID {
		return nil, nil
	}

	return []domain.Notification{{
		RecipientID: meta.AuthorID,
		Title:       titleLike,
		Body:        fmt.Sprintf("「%s」がいいねされました", meta.Title),
		Data: map[string]string{
			"type":      "like",
			"prompt_id": rec.PromptID,
			"like_id":   rec.ID,
		},
	}}, nil
}

func (m *Mapper) mapFollow(ctx context.Context, record json.RawMessage) ([]domain.Notification, error) {
	var rec domain.FollowRecord
	if err := json.Unmarshal(record, &rec); err != nil {
		return nil, fmt.Errorf("decode follow record: %w", err)
	}

	name, err := m.content.ProfileName(ctx, rec.FollowerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return []domain.Notification{{
		RecipientID: rec.FollowingID,
		Title:       titleFollower,
		Body:        fmt.Sprintf("%sさんにフォローされました", name),
		Data: map[string]string{
			"type":        "follow",
			"follower_id": rec.FollowerID,
		},
	}}, nil
}

func (m *Mapper) mapAnnouncement(ctx context.Context, record json.RawMessage) ([]domain.Notification, error) {
	var rec domain.AnnouncementRecord
	if err := json.Unmarshal(record, &rec); err != nil {
		return nil, fmt.Errorf("decode announcement record: %w", err)
	}

	// Fan out to every profile, capped per invocation. The cap is enforced
	// in the listing query, not here.
	ids, err := m.content.ProfileIDs(ctx, m.fanoutCap)
	if err != nil {
		return nil, err
	}

	notifications := make([]domain.Notification, 0, len(ids))
	for _, id := range ids {
		notifications = append(notifications, domain.Notification{
			RecipientID: id,
			Title:       rec.Title,
			Body:        rec.Content,
			Data: map[string]string{
				"type":            "announcement",
				"announcement_id": rec.ID,
			},
		})
	}
	return notifications, nil
}
