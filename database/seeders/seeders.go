package seeders

import (
	"log"
	"time"

	"schoolrecords_go/database"
	"schoolrecords_go/models"
	"schoolrecords_go/utils"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedUsers()
	SeedSessions()
	SeedHierarchy()
	SeedSchools()
	SeedPartners()

	log.Println("Database seeding completed successfully!")
}

// SeedUsers seeds the superuser and a demo coordinator account
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	adminPassword, err := utils.HashPassword("admin123")
	if err != nil {
		log.Printf("Error hashing admin password: %v", err)
		return
	}
	coordinatorPassword, err := utils.HashPassword("coordinator123")
	if err != nil {
		log.Printf("Error hashing coordinator password: %v", err)
		return
	}

	users := []models.User{
		{
			Username:    "admin",
			Password:    adminPassword,
			Email:       "admin@example.com",
			FirstName:   "System",
			LastName:    "Administrator",
			IsSuperuser: true,
			Status:      "active",
		},
		{
			Username:    "coordinator",
			Password:    coordinatorPassword,
			Email:       "coordinator@example.com",
			FirstName:   "Demo",
			LastName:    "Coordinator",
			IsSuperuser: false,
			Status:      "active",
		},
	}

	for _, user := range users {
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Error seeding user %s: %v", user.Username, err)
		}
	}

	log.Println("Users seeded successfully")
}

// SeedSessions seeds the term calendar
func SeedSessions() {
	var count int64
	database.DB.Model(&models.Session{}).Count(&count)
	if count > 0 {
		log.Println("Sessions already seeded, skipping...")
		return
	}

	sessions := []models.Session{
		{
			Name:      "Spring 2026",
			StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			Name:      "Fall 2026",
			StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, session := range sessions {
		if err := database.DB.Create(&session).Error; err != nil {
			log.Printf("Error seeding session %s: %v", session.Name, err)
		}
	}

	log.Println("Sessions seeded successfully")
}

// SeedHierarchy seeds a demo zone with a program and one schedule
func SeedHierarchy() {
	var count int64
	database.DB.Model(&models.Zone{}).Count(&count)
	if count > 0 {
		log.Println("Zones already seeded, skipping...")
		return
	}

	zone := models.Zone{Name: "North District", Description: "Northern coverage area"}
	if err := database.DB.Create(&zone).Error; err != nil {
		log.Printf("Error seeding zone: %v", err)
		return
	}

	program := models.Program{ZoneID: zone.ID, Name: "After School Reading", Description: "Literacy support program"}
	if err := database.DB.Create(&program).Error; err != nil {
		log.Printf("Error seeding program: %v", err)
		return
	}

	var session models.Session
	if err := database.DB.Where("name = ?", "Spring 2026").First(&session).Error; err != nil {
		log.Printf("Error loading session for schedule seed: %v", err)
		return
	}

	schedule := models.Schedule{
		ProgramID:   program.ID,
		SessionID:   session.ID,
		Address:     "Community Center, Room 4",
		MeetingDays: models.Weekdays{"Mon", "Wed"},
	}
	if err := database.DB.Create(&schedule).Error; err != nil {
		log.Printf("Error seeding schedule: %v", err)
		return
	}

	log.Println("Hierarchy seeded successfully")
}

// SeedSchools seeds a couple of demo schools
func SeedSchools() {
	var count int64
	database.DB.Model(&models.School{}).Count(&count)
	if count > 0 {
		log.Println("Schools already seeded, skipping...")
		return
	}

	schools := []models.School{
		{SchoolCode: 101, DistrictID: 1, Name: "Lincoln Elementary", Address: "12 Oak Street"},
		{SchoolCode: 102, DistrictID: 1, Name: "Riverside Middle School", Address: "80 River Road"},
	}

	for _, school := range schools {
		if err := database.DB.Create(&school).Error; err != nil {
			log.Printf("Error seeding school %s: %v", school.Name, err)
		}
	}

	log.Println("Schools seeded successfully")
}

// SeedPartners seeds partner organizations
func SeedPartners() {
	var count int64
	database.DB.Model(&models.Partner{}).Count(&count)
	if count > 0 {
		log.Println("Partners already seeded, skipping...")
		return
	}

	partners := []models.Partner{
		{Name: "City Library", Description: "Reading space and volunteer tutors"},
		{Name: "Youth Sports League", Description: "Shared facility partner"},
	}

	for _, partner := range partners {
		if err := database.DB.Create(&partner).Error; err != nil {
			log.Printf("Error seeding partner %s: %v", partner.Name, err)
		}
	}

	log.Println("Partners seeded successfully")
}
