package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDifficultyLabel(t *testing.T) {
	tests := []struct {
		name                      string
		easy, medium, hard, total int64
		want                      string
	}{
		{"no votes", 0, 0, 0, 0, "Not"},
		{"easy plurality", 3, 1, 1, 5, "Easy"},
		{"medium plurality", 1, 3, 1, 5, "Medium"},
		{"hard plurality", 0, 1, 4, 5, "Hard"},
		{"easy wins three-way tie", 2, 2, 2, 6, "Easy"},
		{"medium wins tie with hard", 0, 2, 2, 4, "Medium"},
		{"single hard vote", 0, 0, 1, 1, "Hard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, difficultyLabel(tt.easy, tt.medium, tt.hard, tt.total))
		})
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, percentage(0, 0))
	assert.Equal(t, 0, percentage(5, 0))
	assert.Equal(t, 50, percentage(1, 2))
	assert.Equal(t, 33, percentage(1, 3))
	assert.Equal(t, 100, percentage(3, 3))
}

func TestDifficultyEndpoints(t *testing.T) {
	r, db := newTestEnv(t)

	author := createUser(t, db, "author")
	subject := createSubject(t, db, "Biology", "DP")
	post := createPost(t, db, subject.ID, author.ID, "Krebs cycle help")

	difficultyPath := fmt.Sprintf("/api/posts/%d/difficulty", post.ID)

	t.Run("no votes yields Not", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, difficultyPath, "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decode(t, w)
		assert.Equal(t, "Not", body["label"])
		assert.Equal(t, float64(0), body["total"])
	})

	t.Run("unknown post", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/posts/99999/difficulty", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("vote requires auth", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, difficultyPath, "", map[string]string{"bucket": "easy"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("votes aggregate into counts and label", func(t *testing.T) {
		for i, bucket := range []string{"easy", "easy", "hard"} {
			voter := createUser(t, db, fmt.Sprintf("difficulty-voter-%d", i))
			w := doJSON(t, r, http.MethodPost, difficultyPath, tokenFor(t, voter),
				map[string]string{"bucket": bucket})
			require.Equal(t, http.StatusOK, w.Code)
		}

		w := doJSON(t, r, http.MethodGet, difficultyPath, "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decode(t, w)
		assert.Equal(t, "Easy", body["label"])
		assert.Equal(t, float64(3), body["total"])

		counts := body["counts"].(map[string]any)
		assert.Equal(t, float64(2), counts["easy"])
		assert.Equal(t, float64(1), counts["hard"])

		percentages := body["percentages"].(map[string]any)
		assert.Equal(t, float64(66), percentages["easy"])
		assert.Equal(t, float64(33), percentages["hard"])
	})

	t.Run("revote replaces the bucket", func(t *testing.T) {
		voter := createUser(t, db, "flip-flopper")
		token := tokenFor(t, voter)

		w := doJSON(t, r, http.MethodPost, difficultyPath, token, map[string]string{"bucket": "easy"})
		require.Equal(t, http.StatusOK, w.Code)
		w = doJSON(t, r, http.MethodPost, difficultyPath, token, map[string]string{"bucket": "hard"})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, r, http.MethodGet, difficultyPath, "", nil)
		body := decode(t, w)
		assert.Equal(t, float64(4), body["total"], "revote must not add a row")

		counts := body["counts"].(map[string]any)
		assert.Equal(t, float64(2), counts["easy"])
		assert.Equal(t, float64(2), counts["hard"])
	})

	t.Run("rejects unknown bucket", func(t *testing.T) {
		voter := createUser(t, db, "bad-bucket")
		w := doJSON(t, r, http.MethodPost, difficultyPath, tokenFor(t, voter),
			map[string]string{"bucket": "impossible"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
