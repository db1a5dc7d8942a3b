// Package votes implements the one vote transaction shared by posts, answers
// and answer replies: the per-user vote row, the denormalized vote_status
// aggregate on the target, and the notification to the target's author are all
// written in a single database transaction, so the ledger and the aggregate
// cannot diverge on partial failure.
package votes

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ibunity/backend/internal/htmlutil"
	"github.com/ibunity/backend/internal/models"
)

var (
	ErrBadValue       = errors.New("vote value must be -1 or 1")
	ErrTargetNotFound = errors.New("vote target not found")
)

// Outcome says what Cast did with the user's vote row.
type Outcome string

const (
	OutcomeCreated Outcome = "created" // first vote on this target
	OutcomeRemoved Outcome = "removed" // same direction again, vote retracted
	OutcomeFlipped Outcome = "flipped" // opposite direction, vote updated in place
)

// Result is returned to the HTTP layer; NewStatus is the authoritative
// aggregate after the transaction so clients reconcile instead of drifting.
type Result struct {
	Outcome   Outcome `json:"outcome"`
	NewStatus int     `json:"vote_status"`
	Notified  bool    `json:"-"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// target is the slice of a votable entity the engine needs: who to notify,
// which table to bump, and where the notification anchor should point.
type target struct {
	table      string
	authorID   int
	anchorHref string
	anchorText string
	notifyType models.NotificationType
}

func (s *Service) lookupTarget(tx *gorm.DB, kind models.VoteKind, targetID int) (target, error) {
	switch kind {
	case models.VoteKindPost:
		var post models.Post
		if err := tx.First(&post, targetID).Error; err != nil {
			return target{}, ErrTargetNotFound
		}
		return target{
			table:      "posts",
			authorID:   post.AuthorID,
			anchorHref: fmt.Sprintf("/posts/%d", post.ID),
			anchorText: post.Title,
			notifyType: models.NotificationTypePostVote,
		}, nil

	case models.VoteKindAnswer:
		var answer models.Answer
		if err := tx.First(&answer, targetID).Error; err != nil {
			return target{}, ErrTargetNotFound
		}
		var post models.Post
		if err := tx.First(&post, answer.PostID).Error; err != nil {
			return target{}, ErrTargetNotFound
		}
		return target{
			table:      "answers",
			authorID:   answer.AuthorID,
			anchorHref: fmt.Sprintf("/posts/%d#answer-%d", post.ID, answer.ID),
			anchorText: post.Title,
			notifyType: models.NotificationTypeAnswerVote,
		}, nil

	case models.VoteKindReply:
		var reply models.AnswerReply
		if err := tx.First(&reply, targetID).Error; err != nil {
			return target{}, ErrTargetNotFound
		}
		var answer models.Answer
		if err := tx.First(&answer, reply.AnswerID).Error; err != nil {
			return target{}, ErrTargetNotFound
		}
		var post models.Post
		if err := tx.First(&post, answer.PostID).Error; err != nil {
			return target{}, ErrTargetNotFound
		}
		return target{
			table:      "answer_replies",
			authorID:   reply.AuthorID,
			anchorHref: fmt.Sprintf("/posts/%d#reply-%d", post.ID, reply.ID),
			anchorText: post.Title,
			notifyType: models.NotificationTypeReplyVote,
		}, nil
	}
	return target{}, fmt.Errorf("unknown vote kind %q", kind)
}

// resolve computes what to do with the existing vote row and the signed change
// to apply to the aggregate. existing is nil when the user has not voted yet.
func resolve(existing *models.Vote, value int) (Outcome, int) {
	if existing == nil {
		return OutcomeCreated, value
	}
	if existing.Value == value {
		// Toggle-off: remove the old contribution.
		return OutcomeRemoved, -value
	}
	// Flip: remove the old contribution, add the new one.
	return OutcomeFlipped, 2 * value
}

// Cast applies a user's vote to a target. Three cases: no prior vote creates
// the row, same direction retracts it, opposite direction flips it in place.
// A notification to the target's author rides the same transaction, except on
// retract or when the author is the voter.
func (s *Service) Cast(userID int, kind models.VoteKind, targetID, value int) (Result, error) {
	if value != 1 && value != -1 {
		return Result{}, ErrBadValue
	}

	var res Result
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tgt, err := s.lookupTarget(tx, kind, targetID)
		if err != nil {
			return err
		}

		var existingPtr *models.Vote
		var existing models.Vote
		err = tx.Where("user_id = ? AND kind = ? AND target_id = ?", userID, kind, targetID).
			First(&existing).Error
		if err == nil {
			existingPtr = &existing
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		outcome, delta := resolve(existingPtr, value)
		switch outcome {
		case OutcomeCreated:
			vote := models.Vote{UserID: userID, Kind: kind, TargetID: targetID, Value: value}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		case OutcomeRemoved:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case OutcomeFlipped:
			if err := tx.Model(&existing).UpdateColumn("value", value).Error; err != nil {
				return err
			}
		}

		if err := tx.Table(tgt.table).Where("id = ?", targetID).
			UpdateColumn("vote_status", gorm.Expr("vote_status + ?", delta)).Error; err != nil {
			return err
		}

		var newStatus int
		if err := tx.Table(tgt.table).Select("vote_status").Where("id = ?", targetID).
			Scan(&newStatus).Error; err != nil {
			return err
		}

		res = Result{Outcome: outcome, NewStatus: newStatus}

		// No notification on retract, and never on your own content.
		if outcome == OutcomeRemoved || tgt.authorID == userID {
			return nil
		}

		var voter models.User
		if err := tx.First(&voter, userID).Error; err != nil {
			return err
		}

		verb := "upvoted"
		if value == -1 {
			verb = "downvoted"
		}
		noun := string(kind)
		body := fmt.Sprintf("%s %s your %s %s",
			voter.DisplayName, verb, noun, htmlutil.Anchor(tgt.anchorHref, tgt.anchorText))

		notification := models.Notification{
			NotifyToID: tgt.authorID,
			NotifyByID: userID,
			Type:       tgt.notifyType,
			Body:       body,
		}
		if err := tx.Create(&notification).Error; err != nil {
			return err
		}
		res.Notified = true
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// StatusFor returns the value of the caller's current vote on a target,
// 0 when they have not voted.
func (s *Service) StatusFor(userID int, kind models.VoteKind, targetID int) int {
	var vote models.Vote
	err := s.db.Where("user_id = ? AND kind = ? AND target_id = ?", userID, kind, targetID).
		First(&vote).Error
	if err != nil {
		return 0
	}
	return vote.Value
}
