package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/ibunity/backend/internal/models"
)

// SeedSubjects creates the initial subject list on an empty database.
func SeedSubjects(db *gorm.DB) {
	var count int64
	db.Model(&models.Subject{}).Count(&count)
	if count > 0 {
		log.Println("Subjects already seeded, skipping")
		return
	}

	subjects := []models.Subject{
		{Name: "Mathematics AA", Group: "Mathematics", Curriculum: "DP", Description: "Analysis and Approaches SL/HL"},
		{Name: "Mathematics AI", Group: "Mathematics", Curriculum: "DP", Description: "Applications and Interpretation SL/HL"},
		{Name: "Physics", Group: "Sciences", Curriculum: "DP", Description: "DP Physics SL/HL"},
		{Name: "Chemistry", Group: "Sciences", Curriculum: "DP", Description: "DP Chemistry SL/HL"},
		{Name: "Biology", Group: "Sciences", Curriculum: "DP", Description: "DP Biology SL/HL"},
		{Name: "Economics", Group: "Individuals and Societies", Curriculum: "DP", Description: "DP Economics SL/HL"},
		{Name: "English A", Group: "Studies in Language and Literature", Curriculum: "DP", Description: "Language and Literature"},
		{Name: "Computer Science", Group: "Sciences", Curriculum: "DP", Description: "DP Computer Science SL/HL"},
		{Name: "Theory of Knowledge", Group: "Core", Curriculum: "DP", Description: "TOK essays and exhibitions"},
		{Name: "Extended Essay", Group: "Core", Curriculum: "DP", Description: "EE planning and feedback"},
		{Name: "MYP Mathematics", Group: "Mathematics", Curriculum: "MYP", Description: "MYP Mathematics criteria A-D"},
		{Name: "MYP Sciences", Group: "Sciences", Curriculum: "MYP", Description: "MYP integrated sciences"},
	}

	for _, subject := range subjects {
		if err := db.Create(&subject).Error; err != nil {
			log.Printf("Failed to create subject %s: %v", subject.Name, err)
		}
	}
	log.Println("Initial subjects created successfully")
}
