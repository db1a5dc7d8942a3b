package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ibunity/backend/internal/models"
	"github.com/ibunity/backend/internal/storage"
)

// ServeFile streams a stored object. Post attachments and thumbnails are
// public; content files require a purchase; submission files are visible only
// to their owner and admins.
func (h *ContentHandler) ServeFile(c *gin.Context) {
	objectPath := strings.TrimPrefix(c.Param("path"), "/")

	switch {
	case strings.HasPrefix(objectPath, storage.PrefixContentFiles+"/"):
		userID, ok := extractUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		var item models.ContentItem
		if err := h.db.Where("file_path = ?", objectPath).First(&item).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		if !h.hasAccess(userID, item.ID) && !isAdmin(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Purchase required"})
			return
		}

	case strings.HasPrefix(objectPath, storage.PrefixCoursework+"/"),
		strings.HasPrefix(objectPath, storage.PrefixProof+"/"):
		userID, ok := extractUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		var submission models.Submission
		if err := h.db.Where("file_path = ? OR proof_path = ?", objectPath, objectPath).
			First(&submission).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		if submission.UserID != userID && !isAdmin(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

	case strings.HasPrefix(objectPath, storage.PrefixPosts+"/"),
		strings.HasPrefix(objectPath, storage.PrefixContentThumbnails+"/"):
		// public

	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	fullPath, err := h.store.FilePath(objectPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid path"})
		return
	}
	c.File(fullPath)
}
