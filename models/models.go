package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// WeekNames is the week ordering used for attendance validation and
// date-picker configuration: index 0 is Sunday, matching time.Weekday.
var WeekNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Weekdays is a set of meeting-day names stored as a comma separated text
// column with a trailing comma, e.g. "Mon,Wed,".
type Weekdays []string

func (w Weekdays) Value() (driver.Value, error) {
	if len(w) == 0 {
		return "", nil
	}
	return strings.Join(w, ",") + ",", nil
}

func (w *Weekdays) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case nil:
		*w = nil
		return nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("weekdays: unsupported column type %T", value)
	}
	s = strings.TrimSuffix(s, ",")
	if s == "" {
		*w = Weekdays{}
		return nil
	}
	*w = strings.Split(s, ",")
	return nil
}

// Contains reports whether the weekday name is a meeting day.
func (w Weekdays) Contains(name string) bool {
	for _, d := range w {
		if d == name {
			return true
		}
	}
	return false
}

// IsValid reports whether every entry is a known weekday name.
func (w Weekdays) IsValid() bool {
	for _, d := range w {
		known := false
		for _, n := range WeekNames {
			if d == n {
				known = true
				break
			}
		}
		if !known {
			return false
		}
	}
	return true
}

// User model
type User struct {
	BaseModel
	Username    string `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password    string `json:"-" gorm:"size:255;not null"`
	Email       string `json:"email" gorm:"size:255"`
	FirstName   string `json:"first_name" gorm:"size:100"`
	LastName    string `json:"last_name" gorm:"size:100"`
	IsSuperuser bool   `json:"is_superuser" gorm:"default:false"`
	Status      string `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','inactive','suspended')"` // active, inactive, suspended

	// Relationships
	Profile *UserProfile `json:"profile,omitempty" gorm:"foreignKey:UserID"`
}

// UserProfile holds the per-user permission state. It is lazily created on
// first access (see services/permissions.ProfileFor) and never deleted.
type UserProfile struct {
	BaseModel
	UserID      uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	Address     string `json:"address" gorm:"size:500"`
	PhoneNumber string `json:"phone_number" gorm:"size:20"`

	// Graded permissions: sets of entities the user may edit, implying edit
	// rights on everything beneath them in the hierarchy.
	ZonePermissions     []Zone     `json:"zone_permissions,omitempty" gorm:"many2many:user_profile_zone_permissions"`
	ProgramPermissions  []Program  `json:"program_permissions,omitempty" gorm:"many2many:user_profile_program_permissions"`
	SchedulePermissions []Schedule `json:"schedule_permissions,omitempty" gorm:"many2many:user_profile_schedule_permissions"`

	// Non-graded permissions: flat booleans, no hierarchy.
	SessionPermission bool `json:"session_permission" gorm:"default:false"`
	SchoolPermission  bool `json:"school_permission" gorm:"default:false"`
	StudentPermission bool `json:"student_permission" gorm:"default:false"`
	PartnerPermission bool `json:"partner_permission" gorm:"default:false"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Zone model: top level of the records hierarchy
type Zone struct {
	BaseModel
	Name        string `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`

	// Relationships
	Programs []Program `json:"programs,omitempty" gorm:"foreignKey:ZoneID"`
}

// Program model: belongs to exactly one Zone; name unique within the zone
type Program struct {
	BaseModel
	Name        string `json:"name" gorm:"size:50;not null;uniqueIndex:idx_programs_zone_name"`
	ZoneID      uint   `json:"zone_id" gorm:"not null;uniqueIndex:idx_programs_zone_name"`
	Description string `json:"description" gorm:"type:text"`

	// Relationships
	Zone      Zone       `json:"zone,omitempty" gorm:"foreignKey:ZoneID"`
	Schedules []Schedule `json:"schedules,omitempty" gorm:"foreignKey:ProgramID"`
}

// Session model: a calendar period shared by schedules across programs
type Session struct {
	BaseModel
	Name        string    `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"type:text"`
	StartDate   time.Time `json:"start_date" gorm:"type:date;not null"`
	EndDate     time.Time `json:"end_date" gorm:"type:date;not null"`
}

// Schedule model: one program meeting through one session
type Schedule struct {
	BaseModel
	ProgramID   uint     `json:"program_id" gorm:"not null;uniqueIndex:idx_schedules_program_session"`
	SessionID   uint     `json:"session_id" gorm:"not null;uniqueIndex:idx_schedules_program_session"`
	TeacherID   uint     `json:"teacher_id"`
	Address     string   `json:"address" gorm:"type:text"`
	MeetingDays Weekdays `json:"meeting_days" gorm:"type:text"`

	// Relationships
	Program Program `json:"program,omitempty" gorm:"foreignKey:ProgramID"`
	Session Session `json:"session,omitempty" gorm:"foreignKey:SessionID"`
	Teacher User    `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
}

// CanceledDate model: a day a schedule does not meet
type CanceledDate struct {
	BaseModel
	ScheduleID uint      `json:"schedule_id" gorm:"not null;uniqueIndex:idx_canceled_schedule_date"`
	Date       time.Time `json:"date" gorm:"type:date;not null;uniqueIndex:idx_canceled_schedule_date"`
	Comment    string    `json:"comment" gorm:"size:200"`

	// Relationships
	Schedule Schedule `json:"schedule,omitempty" gorm:"foreignKey:ScheduleID"`
}

// School model
type School struct {
	BaseModel
	SchoolCode int    `json:"school_code" gorm:"not null;uniqueIndex:idx_schools_district_code"`
	DistrictID int    `json:"district_id" gorm:"not null;uniqueIndex:idx_schools_district_code"`
	Name       string `json:"name" gorm:"size:50;not null"`
	Address    string `json:"address" gorm:"type:text"`
}

// Student model
type Student struct {
	BaseModel
	LocalID     int        `json:"local_id" gorm:"not null;uniqueIndex:idx_students_school_local"`
	SchoolID    uint       `json:"school_id" gorm:"not null;uniqueIndex:idx_students_school_local"`
	LastName    string     `json:"last_name" gorm:"size:50;not null"`
	FirstName   string     `json:"first_name" gorm:"size:50;not null"`
	MiddleName  string     `json:"middle_name" gorm:"size:50"`
	DateOfBirth *time.Time `json:"date_of_birth" gorm:"type:date"`
	Gender      string     `json:"gender" gorm:"size:1"`
	Address     string     `json:"address" gorm:"type:text"`
	PhoneNumber string     `json:"phone_number" gorm:"size:20"`

	// Relationships
	School School `json:"school,omitempty" gorm:"foreignKey:SchoolID"`
}

// Enrollment model: a student attending a schedule, optionally for a
// sub-range of the session
type Enrollment struct {
	BaseModel
	ScheduleID uint       `json:"schedule_id" gorm:"not null;uniqueIndex:idx_enrollments_schedule_student"`
	StudentID  uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_enrollments_schedule_student"`
	StartDate  *time.Time `json:"start_date" gorm:"type:date"`
	EndDate    *time.Time `json:"end_date" gorm:"type:date"`

	// Relationships
	Schedule Schedule `json:"schedule,omitempty" gorm:"foreignKey:ScheduleID"`
	Student  Student  `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// Partner model
type Partner struct {
	BaseModel
	Name        string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Description string `json:"description" gorm:"size:200"`
}

// Attendance status codes
const (
	AttendancePresent = "P"
	AttendanceExcused = "E"
	AttendanceAbsent  = "A"
	AttendanceUnset   = ""
)

// IsValidAttendanceStatus reports whether s is a recordable status code.
func IsValidAttendanceStatus(s string) bool {
	switch s {
	case AttendancePresent, AttendanceExcused, AttendanceAbsent, AttendanceUnset:
		return true
	}
	return false
}

// Attendance model: one record per (enrollment, date), lazily created the
// first time a valid attendance day is viewed. The composite unique index
// is what keeps the lazy creation single under concurrent requests.
type Attendance struct {
	BaseModel
	EnrollmentID uint      `json:"enrollment_id" gorm:"not null;uniqueIndex:idx_attendances_enrollment_date"`
	Date         time.Time `json:"date" gorm:"type:date;not null;uniqueIndex:idx_attendances_enrollment_date"`
	Status       string    `json:"status" gorm:"size:10;default:''"` // P, E, A or unset
	Comment      string    `json:"comment" gorm:"type:text"`
	PartnerID    *uint     `json:"partner_id" gorm:"default:null"`

	// Relationships
	Enrollment Enrollment `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID"`
	Partner    *Partner   `json:"partner,omitempty" gorm:"foreignKey:PartnerID"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// LogArchive model for tracking archived logs
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"` // pending, completed, failed
	Error       string    `json:"error" gorm:"type:text"`
}
