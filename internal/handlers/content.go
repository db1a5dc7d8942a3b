package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ibunity/backend/internal/models"
	"github.com/ibunity/backend/internal/storage"
)

type ContentHandler struct {
	db    *gorm.DB
	store *storage.Store
}

func NewContentHandler(db *gorm.DB, store *storage.Store) *ContentHandler {
	return &ContentHandler{db: db, store: store}
}

// ListContent returns the content library, optionally filtered by subject
func (h *ContentHandler) ListContent(c *gin.Context) {
	query := h.db.Preload("Subject").Order("created_at desc")
	if subjectID := c.Query("subject_id"); subjectID != "" {
		query = query.Where("subject_id = ?", subjectID)
	}

	var items []models.ContentItem
	if err := query.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch content"})
		return
	}
	if items == nil {
		items = []models.ContentItem{}
	}

	c.JSON(http.StatusOK, items)
}

// GetContent returns one content item, with whether the caller owns it
func (h *ContentHandler) GetContent(c *gin.Context) {
	var item models.ContentItem
	if err := h.db.Preload("Subject").First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}

	purchased := false
	if userID, ok := extractUserID(c); ok {
		purchased = h.hasAccess(userID, item.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"item":      item,
		"purchased": purchased,
	})
}

// CreateContent uploads a new library item (admin only). Multipart form with
// the file itself and an optional thumbnail.
func (h *ContentHandler) CreateContent(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	priceCents, err := strconv.Atoi(c.PostForm("price_cents"))
	if err != nil || priceCents < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_cents is required"})
		return
	}
	subjectID, _ := strconv.Atoi(c.PostForm("subject_id"))

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	filePath, err := h.store.Save(storage.PrefixContentFiles, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	thumbnailPath := ""
	if thumb, err := c.FormFile("thumbnail"); err == nil {
		if thumbnailPath, err = h.store.Save(storage.PrefixContentThumbnails, thumb); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store thumbnail"})
			return
		}
	}

	item := models.ContentItem{
		Title:         title,
		Description:   c.PostForm("description"),
		SubjectID:     subjectID,
		UploaderID:    userID,
		PriceCents:    priceCents,
		Currency:      "usd",
		FilePath:      filePath,
		ThumbnailPath: thumbnailPath,
	}
	if err := h.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create content item"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// ListPurchases returns the caller's purchases
func (h *ContentHandler) ListPurchases(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var purchases []models.Purchase
	h.db.Preload("ContentItem").Where("user_id = ?", userID).
		Order("created_at desc").Find(&purchases)
	if purchases == nil {
		purchases = []models.Purchase{}
	}

	c.JSON(http.StatusOK, purchases)
}

// hasAccess reports whether a user bought an item or holds the unlimited bundle.
func (h *ContentHandler) hasAccess(userID, itemID int) bool {
	var count int64
	h.db.Model(&models.Purchase{}).
		Where("user_id = ? AND (content_item_id = ? OR bundle = ?)", userID, itemID, models.BundleUnlimited).
		Count(&count)
	return count > 0
}
