package controllers

import (
	"strconv"

	"schoolrecords_go/database"
	"schoolrecords_go/middleware"
	"schoolrecords_go/models"
	"schoolrecords_go/services/permissions"
	"schoolrecords_go/utils"

	"github.com/gofiber/fiber/v2"
)

type StudentController struct{}

// GetStudents returns all students with pagination
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	var students []models.Student
	var total int64

	query := database.DB.Model(&models.Student{})

	if schoolID := c.Query("school_id"); schoolID != "" {
		query = query.Where("school_id = ?", schoolID)
	}
	if lastName := c.Query("last_name"); lastName != "" {
		query = query.Where("last_name LIKE ?", "%"+lastName+"%")
	}

	query.Count(&total)

	if err := query.Preload("School").Order("last_name, first_name").
		Offset(offset).Limit(limit).Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch students",
		})
	}

	return c.JSON(fiber.Map{
		"students": students,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetStudent returns a specific student by ID
func (sc *StudentController) GetStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var student models.Student
	if err := database.DB.Preload("School").First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}
	return c.JSON(fiber.Map{
		"student": student,
	})
}

type studentRequest struct {
	LocalID     int    `json:"local_id"`
	SchoolID    uint   `json:"school_id"`
	LastName    string `json:"last_name"`
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
}

// CreateStudent creates a new student
func (sc *StudentController) CreateStudent(c *fiber.Ctx) error {
	if err := requireFlat(c, permissions.KindStudent); err != nil {
		return err
	}

	var req studentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.LastName == "" || req.FirstName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Last name and first name are required",
		})
	}
	if req.LocalID == 0 || req.SchoolID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Local ID and school ID are required",
		})
	}

	var school models.School
	if err := database.DB.First(&school, req.SchoolID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "School not found",
		})
	}

	var existing models.Student
	if err := database.DB.Where("school_id = ? AND local_id = ?", req.SchoolID, req.LocalID).
		First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Student with this local ID already exists in the school",
		})
	}

	student := models.Student{
		LocalID:     req.LocalID,
		SchoolID:    req.SchoolID,
		LastName:    req.LastName,
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		Gender:      req.Gender,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
	}
	if req.DateOfBirth != "" {
		dob, err := utils.ParseDate(req.DateOfBirth)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Date of birth must use the YYYY-MM-DD format",
			})
		}
		student.DateOfBirth = &dob
	}

	if err := database.DB.Create(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create student",
		})
	}

	database.DB.Preload("School").First(&student, student.ID)

	middleware.LogActivity(c, "CREATE", "students", student.ID, student)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Student created successfully",
		"student": student,
	})
}

// UpdateStudent updates an existing student
func (sc *StudentController) UpdateStudent(c *fiber.Ctx) error {
	if err := requireFlat(c, permissions.KindStudent); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	var req studentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.MiddleName != "" {
		updates["middle_name"] = req.MiddleName
	}
	if req.Gender != "" {
		updates["gender"] = req.Gender
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.PhoneNumber != "" {
		updates["phone_number"] = req.PhoneNumber
	}
	if req.DateOfBirth != "" {
		dob, err := utils.ParseDate(req.DateOfBirth)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Date of birth must use the YYYY-MM-DD format",
			})
		}
		updates["date_of_birth"] = dob
	}
	if req.LocalID != 0 || req.SchoolID != 0 {
		localID := student.LocalID
		schoolID := student.SchoolID
		if req.LocalID != 0 {
			localID = req.LocalID
		}
		if req.SchoolID != 0 {
			schoolID = req.SchoolID
		}
		var existing models.Student
		if err := database.DB.Where("school_id = ? AND local_id = ? AND id != ?",
			schoolID, localID, student.ID).First(&existing).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Student with this local ID already exists in the school",
			})
		}
		updates["local_id"] = localID
		updates["school_id"] = schoolID
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&student).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update student",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "students", student.ID, req)

	return c.JSON(fiber.Map{
		"message": "Student updated successfully",
		"student": student,
	})
}

// DeleteStudent deletes a student without enrollments
func (sc *StudentController) DeleteStudent(c *fiber.Ctx) error {
	if err := requireFlat(c, permissions.KindStudent); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	var enrollmentCount int64
	database.DB.Model(&models.Enrollment{}).Where("student_id = ?", student.ID).Count(&enrollmentCount)
	if enrollmentCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Student has existing enrollments",
		})
	}

	if err := database.DB.Delete(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete student",
		})
	}

	middleware.LogActivity(c, "DELETE", "students", student.ID, student)

	return c.JSON(fiber.Map{
		"message": "Student deleted successfully",
	})
}
