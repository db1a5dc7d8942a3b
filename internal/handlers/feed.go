package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ibunity/backend/internal/models"
)

// Feed staging: a small page first for fast paint, then a larger superset that
// all filtering operates on. Filters never issue new queries once the superset
// is loaded; items beyond it are knowingly missed.
const (
	feedQuickSize    = 15
	feedSupersetSize = 100
	feedCacheTTL     = 60 * time.Second
)

type feedFilters struct {
	Grade    string
	Criteria string
	PostType string
	DPLevel  string
	Paper    string
}

func (f feedFilters) empty() bool {
	return f == feedFilters{}
}

func (f feedFilters) match(p models.Post) bool {
	if f.Grade != "" && p.Grade != f.Grade {
		return false
	}
	if f.Criteria != "" && p.Criteria != f.Criteria {
		return false
	}
	if f.PostType != "" && p.PostType != f.PostType {
		return false
	}
	if f.DPLevel != "" && p.DPLevel != f.DPLevel {
		return false
	}
	if f.Paper != "" && p.Paper != f.Paper {
		return false
	}
	return true
}

// GetFeed assembles the home feed. stage=quick returns the newest few posts
// with no caching; the default full stage serves from a cached superset,
// personalized to the caller's joined subjects when possible, otherwise the
// public fallback ordered by recency or votes per curriculum.
func (h *PostHandler) GetFeed(c *gin.Context) {
	filters := feedFilters{
		Grade:    c.Query("grade"),
		Criteria: c.Query("criteria"),
		PostType: c.Query("type"),
		DPLevel:  c.Query("level"),
		Paper:    c.Query("paper"),
	}
	sort := c.Query("sort")
	if sort != "top" {
		sort = "recent"
	}
	curriculum := c.Query("curriculum")
	if curriculum == "" {
		curriculum = "DP"
	}

	userID, authed := extractUserID(c)
	var joined []int
	if authed {
		h.db.Model(&models.SubjectMember{}).Where("user_id = ?", userID).
			Pluck("subject_id", &joined)
	}
	personalized := len(joined) > 0

	if c.Query("stage") == "quick" {
		posts, err := h.queryFeed(joined, curriculum, "recent", feedQuickSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"posts":        posts,
			"stage":        "quick",
			"personalized": personalized,
		})
		return
	}

	var key string
	if personalized {
		key = fmt.Sprintf("feed:user:%d:%s", userID, sort)
	} else {
		key = fmt.Sprintf("feed:public:%s:%s", curriculum, sort)
	}

	var superset []models.Post
	if cached := h.feed.Get(key); cached != nil {
		superset = cached.([]models.Post)
	} else {
		var err error
		superset, err = h.queryFeed(joined, curriculum, sort, feedSupersetSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
			return
		}
		h.feed.Set(key, superset, feedCacheTTL)
	}

	posts := superset
	if !filters.empty() {
		posts = make([]models.Post, 0, len(superset))
		for _, p := range superset {
			if filters.match(p) {
				posts = append(posts, p)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":        posts,
		"stage":        "full",
		"personalized": personalized,
	})
}

func (h *PostHandler) queryFeed(joined []int, curriculum, sort string, limit int) ([]models.Post, error) {
	query := h.db.Preload("Author").Preload("Subject")

	if len(joined) > 0 {
		query = query.Where("subject_id IN ?", joined)
	} else {
		query = query.Joins("JOIN subjects ON subjects.id = posts.subject_id").
			Where("subjects.curriculum = ?", curriculum)
	}

	if sort == "top" {
		query = query.Order("vote_status desc").Order("posts.created_at desc")
	} else {
		query = query.Order("posts.created_at desc")
	}

	var posts []models.Post
	if err := query.Limit(limit).Find(&posts).Error; err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

func (h *PostHandler) invalidatePublicFeed(curriculum string) {
	for _, sort := range []string{"recent", "top"} {
		h.feed.Delete(fmt.Sprintf("feed:public:%s:%s", curriculum, sort))
	}
}
