package permissions

import (
	"errors"
	"fmt"
	"time"

	"schoolrecords_go/models"

	"gorm.io/gorm"
)

// Level identifies a step of the records hierarchy, from the top down.
type Level int

const (
	LevelZone Level = iota
	LevelProgram
	LevelSchedule
)

// Path is a prefix of the hierarchy's selector sequence. Selectors are
// natural keys, each scoped by the entity resolved above it: a program name
// is only unique within its zone, a session name picks one schedule within
// its program. Empty fields mean the path stops there; deeper selectors
// without the shallower ones are invalid by construction.
type Path struct {
	ZoneName    string
	ProgramName string
	SessionName string

	// Leaf selectors under a fully resolved schedule.
	StudentID  uint       // picks an enrollment
	CanceledOn *time.Time // picks a canceled date record
}

// Resolution is the outcome of walking a Path: the concrete entities at each
// level and the accumulated edit permission at the deepest resolved level.
type Resolution struct {
	Zone         *models.Zone
	Program      *models.Program
	Schedule     *models.Schedule
	Enrollment   *models.Enrollment
	CanceledDate *models.CanceledDate

	// CanEdit accumulates monotonically while walking: once a level grants
	// edit permission, every deeper level inherits it.
	CanEdit bool

	// grants carries the profile loaded during the walk so listing queries
	// do not reload it.
	grants grantSet
}

// Resolver answers permission questions against the records hierarchy.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// grantSet is the in-memory view of a profile's graded permissions, keyed
// by level. Loading it once per request keeps the fold below a pure
// computation instead of one membership query per level.
type grantSet struct {
	zones     map[uint]struct{}
	programs  map[uint]struct{}
	schedules map[uint]struct{}
}

func newGrantSet(profile *models.UserProfile) grantSet {
	g := grantSet{
		zones:     make(map[uint]struct{}, len(profile.ZonePermissions)),
		programs:  make(map[uint]struct{}, len(profile.ProgramPermissions)),
		schedules: make(map[uint]struct{}, len(profile.SchedulePermissions)),
	}
	for _, z := range profile.ZonePermissions {
		g.zones[z.ID] = struct{}{}
	}
	for _, p := range profile.ProgramPermissions {
		g.programs[p.ID] = struct{}{}
	}
	for _, s := range profile.SchedulePermissions {
		g.schedules[s.ID] = struct{}{}
	}
	return g
}

func (g grantSet) has(level Level, id uint) bool {
	switch level {
	case LevelZone:
		_, ok := g.zones[id]
		return ok
	case LevelProgram:
		_, ok := g.programs[id]
		return ok
	case LevelSchedule:
		_, ok := g.schedules[id]
		return ok
	}
	return false
}

type pathStep struct {
	level Level
	id    uint
}

// evaluate folds the edit permission over the resolved path, top down. The
// accumulator only ever turns true; it is threaded through rather than
// re-derived per level, which is what makes permission monotonic downward.
func evaluate(superuser bool, grants grantSet, steps []pathStep) bool {
	perm := superuser
	for _, s := range steps {
		perm = perm || grants.has(s.level, s.id)
	}
	return perm
}

// Resolve walks path left to right, looking up each entity by its scoped
// natural key and accumulating edit permission. An unresolvable selector at
// any level yields ErrNotFound.
func (r *Resolver) Resolve(user *models.User, path Path) (*Resolution, error) {
	profile, err := ProfileFor(r.db, user)
	if err != nil {
		return nil, err
	}
	grants := newGrantSet(profile)

	res := &Resolution{grants: grants}
	var steps []pathStep

	if path.ZoneName != "" {
		var zone models.Zone
		if err := r.db.Where("name = ?", path.ZoneName).First(&zone).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: zone %q", ErrNotFound, path.ZoneName)
			}
			return nil, err
		}
		res.Zone = &zone
		steps = append(steps, pathStep{LevelZone, zone.ID})

		if path.ProgramName != "" {
			var program models.Program
			if err := r.db.Where("name = ? AND zone_id = ?", path.ProgramName, zone.ID).First(&program).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fmt.Errorf("%w: program %q in zone %q", ErrNotFound, path.ProgramName, path.ZoneName)
				}
				return nil, err
			}
			res.Program = &program
			steps = append(steps, pathStep{LevelProgram, program.ID})

			if path.SessionName != "" {
				var schedule models.Schedule
				err := r.db.Preload("Session").
					Joins("JOIN sessions ON sessions.id = schedules.session_id").
					Where("schedules.program_id = ? AND sessions.name = ?", program.ID, path.SessionName).
					First(&schedule).Error
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return nil, fmt.Errorf("%w: schedule for session %q in program %q", ErrNotFound, path.SessionName, path.ProgramName)
					}
					return nil, err
				}
				res.Schedule = &schedule
				steps = append(steps, pathStep{LevelSchedule, schedule.ID})

				if path.StudentID != 0 {
					var enrollment models.Enrollment
					err := r.db.Preload("Student").
						Where("schedule_id = ? AND student_id = ?", schedule.ID, path.StudentID).
						First(&enrollment).Error
					if err != nil {
						if errors.Is(err, gorm.ErrRecordNotFound) {
							return nil, fmt.Errorf("%w: enrollment of student %d", ErrNotFound, path.StudentID)
						}
						return nil, err
					}
					res.Enrollment = &enrollment
				}
				if path.CanceledOn != nil {
					var canceled models.CanceledDate
					err := r.db.Where("schedule_id = ? AND date = ?", schedule.ID, path.CanceledOn.Format("2006-01-02")).
						First(&canceled).Error
					if err != nil {
						if errors.Is(err, gorm.ErrRecordNotFound) {
							return nil, fmt.Errorf("%w: canceled date %s", ErrNotFound, path.CanceledOn.Format("2006-01-02"))
						}
						return nil, err
					}
					res.CanceledDate = &canceled
				}
			}
		}
	}

	res.CanEdit = evaluate(user.IsSuperuser, grants, steps)
	return res, nil
}

// ProfileFor returns the user's permission profile, creating an empty one on
// first access. Every profile read in the codebase goes through here.
func ProfileFor(db *gorm.DB, user *models.User) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := db.Preload("ZonePermissions").
		Preload("ProgramPermissions").
		Preload("SchedulePermissions").
		Where("user_id = ?", user.ID).
		First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = models.UserProfile{UserID: user.ID}
	if createErr := db.Create(&profile).Error; createErr != nil {
		// Lost a concurrent first-access race; the row exists now.
		var existing models.UserProfile
		if readErr := db.Where("user_id = ?", user.ID).First(&existing).Error; readErr != nil {
			return nil, createErr
		}
		return &existing, nil
	}
	return &profile, nil
}
