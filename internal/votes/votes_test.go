package votes

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ibunity/backend/internal/models"
	"github.com/ibunity/backend/internal/testdb"
)

func TestResolve(t *testing.T) {
	up := &models.Vote{Value: 1}
	down := &models.Vote{Value: -1}

	tests := []struct {
		name     string
		existing *models.Vote
		value    int
		outcome  Outcome
		delta    int
	}{
		{"first upvote", nil, 1, OutcomeCreated, 1},
		{"first downvote", nil, -1, OutcomeCreated, -1},
		{"retract upvote", up, 1, OutcomeRemoved, -1},
		{"retract downvote", down, -1, OutcomeRemoved, 1},
		{"flip up to down", up, -1, OutcomeFlipped, -2},
		{"flip down to up", down, 1, OutcomeFlipped, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, delta := resolve(tt.existing, tt.value)
			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.delta, delta)
		})
	}
}

func TestCastRejectsBadValue(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Cast(1, models.VoteKindPost, 1, 0)
	assert.ErrorIs(t, err, ErrBadValue)
	_, err = svc.Cast(1, models.VoteKindPost, 1, 2)
	assert.ErrorIs(t, err, ErrBadValue)
}

func seedUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{
		Username:    name,
		Email:       name + "@test.local",
		Password:    "x",
		DisplayName: name,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedPost(t *testing.T, db *gorm.DB, authorID int) models.Post {
	t.Helper()
	subject := models.Subject{Name: fmt.Sprintf("Subject %d", authorID), Curriculum: "DP"}
	require.NoError(t, db.Create(&subject).Error)
	post := models.Post{SubjectID: subject.ID, AuthorID: authorID, Title: "How do I integrate by parts?"}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func postStatus(t *testing.T, db *gorm.DB, postID int) int {
	t.Helper()
	var post models.Post
	require.NoError(t, db.First(&post, postID).Error)
	return post.VoteStatus
}

func TestCast(t *testing.T) {
	db := testdb.New(t)
	svc := NewService(db)

	author := seedUser(t, db, "author")
	voter := seedUser(t, db, "voter")
	post := seedPost(t, db, author.ID)

	t.Run("target not found", func(t *testing.T) {
		_, err := svc.Cast(voter.ID, models.VoteKindPost, post.ID+999, 1)
		assert.ErrorIs(t, err, ErrTargetNotFound)
	})

	t.Run("create then flip then retract", func(t *testing.T) {
		res, err := svc.Cast(voter.ID, models.VoteKindPost, post.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, res.Outcome)
		assert.Equal(t, 1, res.NewStatus)
		assert.Equal(t, 1, postStatus(t, db, post.ID))
		assert.Equal(t, 1, svc.StatusFor(voter.ID, models.VoteKindPost, post.ID))

		// Opposite direction flips the row in place: net change is 2.
		res, err = svc.Cast(voter.ID, models.VoteKindPost, post.ID, -1)
		require.NoError(t, err)
		assert.Equal(t, OutcomeFlipped, res.Outcome)
		assert.Equal(t, -1, res.NewStatus)
		assert.Equal(t, -1, svc.StatusFor(voter.ID, models.VoteKindPost, post.ID))

		var count int64
		require.NoError(t, db.Model(&models.Vote{}).
			Where("user_id = ? AND kind = ? AND target_id = ?", voter.ID, models.VoteKindPost, post.ID).
			Count(&count).Error)
		assert.Equal(t, int64(1), count, "flip must not create a second vote row")

		// Same direction again retracts.
		res, err = svc.Cast(voter.ID, models.VoteKindPost, post.ID, -1)
		require.NoError(t, err)
		assert.Equal(t, OutcomeRemoved, res.Outcome)
		assert.Equal(t, 0, res.NewStatus)
		assert.Equal(t, 0, svc.StatusFor(voter.ID, models.VoteKindPost, post.ID))

		require.NoError(t, db.Model(&models.Vote{}).
			Where("user_id = ? AND kind = ? AND target_id = ?", voter.ID, models.VoteKindPost, post.ID).
			Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("double vote is a toggle", func(t *testing.T) {
		before := postStatus(t, db, post.ID)

		_, err := svc.Cast(voter.ID, models.VoteKindPost, post.ID, 1)
		require.NoError(t, err)
		res, err := svc.Cast(voter.ID, models.VoteKindPost, post.ID, 1)
		require.NoError(t, err)

		assert.Equal(t, OutcomeRemoved, res.Outcome)
		assert.Equal(t, before, postStatus(t, db, post.ID))
	})
}

func TestCastNotifications(t *testing.T) {
	db := testdb.New(t)
	svc := NewService(db)

	author := seedUser(t, db, "author")
	voter := seedUser(t, db, "voter")
	post := seedPost(t, db, author.ID)

	notificationCount := func() int64 {
		var n int64
		require.NoError(t, db.Model(&models.Notification{}).
			Where("notify_to_id = ?", author.ID).Count(&n).Error)
		return n
	}

	res, err := svc.Cast(voter.ID, models.VoteKindPost, post.ID, 1)
	require.NoError(t, err)
	assert.True(t, res.Notified)
	assert.Equal(t, int64(1), notificationCount())

	var notification models.Notification
	require.NoError(t, db.Where("notify_to_id = ?", author.ID).First(&notification).Error)
	assert.Equal(t, models.NotificationTypePostVote, notification.Type)
	assert.Equal(t, voter.ID, notification.NotifyByID)
	assert.Contains(t, notification.Body, "upvoted")
	assert.Contains(t, notification.Body, fmt.Sprintf(`href="/posts/%d"`, post.ID))

	// Retract writes no notification.
	res, err = svc.Cast(voter.ID, models.VoteKindPost, post.ID, 1)
	require.NoError(t, err)
	assert.False(t, res.Notified)
	assert.Equal(t, int64(1), notificationCount())

	// Voting on your own content never notifies.
	res, err = svc.Cast(author.ID, models.VoteKindPost, post.ID, 1)
	require.NoError(t, err)
	assert.True(t, res.Outcome == OutcomeCreated)
	assert.False(t, res.Notified)
	assert.Equal(t, int64(1), notificationCount())
}

func TestCastAnswerAndReply(t *testing.T) {
	db := testdb.New(t)
	svc := NewService(db)

	author := seedUser(t, db, "author")
	responder := seedUser(t, db, "responder")
	voter := seedUser(t, db, "voter")
	post := seedPost(t, db, author.ID)

	answer := models.Answer{PostID: post.ID, AuthorID: responder.ID, Body: "Use u-substitution first."}
	require.NoError(t, db.Create(&answer).Error)
	reply := models.AnswerReply{AnswerID: answer.ID, AuthorID: author.ID, Depth: 1, Body: "That worked, thanks."}
	require.NoError(t, db.Create(&reply).Error)

	res, err := svc.Cast(voter.ID, models.VoteKindAnswer, answer.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewStatus)

	var got models.Answer
	require.NoError(t, db.First(&got, answer.ID).Error)
	assert.Equal(t, 1, got.VoteStatus)

	var notification models.Notification
	require.NoError(t, db.Where("notify_to_id = ?", responder.ID).First(&notification).Error)
	assert.Equal(t, models.NotificationTypeAnswerVote, notification.Type)

	res, err = svc.Cast(voter.ID, models.VoteKindReply, reply.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, -1, res.NewStatus)

	var gotReply models.AnswerReply
	require.NoError(t, db.First(&gotReply, reply.ID).Error)
	assert.Equal(t, -1, gotReply.VoteStatus)

	// Votes on different kinds never collide even with the same target id.
	assert.Equal(t, 1, svc.StatusFor(voter.ID, models.VoteKindAnswer, answer.ID))
	assert.Equal(t, -1, svc.StatusFor(voter.ID, models.VoteKindReply, reply.ID))
}

// The aggregate must always equal the signed sum of the vote rows, whatever
// sequence of votes a crowd of users throws at it.
func TestCastAggregateConsistency(t *testing.T) {
	db := testdb.New(t)
	svc := NewService(db)

	author := seedUser(t, db, "author")
	post := seedPost(t, db, author.ID)

	var voters []models.User
	for i := 0; i < 5; i++ {
		voters = append(voters, seedUser(t, db, fmt.Sprintf("voter%d", i)))
	}

	sumOfRows := func() int {
		var sum int
		require.NoError(t, db.Model(&models.Vote{}).
			Where("kind = ? AND target_id = ?", models.VoteKindPost, post.ID).
			Select("COALESCE(SUM(value), 0)").Scan(&sum).Error)
		return sum
	}

	// Each step is (voter index, value); covers create, flip and retract.
	steps := []struct {
		voter int
		value int
	}{
		{0, 1}, {1, 1}, {2, -1}, {0, -1}, {3, 1},
		{1, 1}, {4, -1}, {2, -1}, {0, -1}, {3, -1},
	}
	for i, step := range steps {
		res, err := svc.Cast(voters[step.voter].ID, models.VoteKindPost, post.ID, step.value)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, sumOfRows(), res.NewStatus, "step %d", i)
		assert.Equal(t, sumOfRows(), postStatus(t, db, post.ID), "step %d", i)
	}
}
