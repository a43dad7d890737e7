package permissions

import (
	"errors"
	"fmt"
	"sort"

	"schoolrecords_go/models"

	"gorm.io/gorm"
)

// GrantScope is the set of permissions a user is allowed to hand to someone
// else. Holding a zone lets you grant the programs and schedules beneath it,
// holding a program lets you grant its schedules; zones themselves can only
// be granted by a superuser. Flat permissions are grantable only when held.
type GrantScope struct {
	Zones     []models.Zone     `json:"zones"`
	Programs  []models.Program  `json:"programs"`
	Schedules []models.Schedule `json:"schedules"`

	Session bool `json:"session"`
	School  bool `json:"school"`
	Student bool `json:"student"`
	Partner bool `json:"partner"`
}

// Grantable computes the user's grant scope.
func (r *Resolver) Grantable(user *models.User) (*GrantScope, error) {
	scope := &GrantScope{}

	if user.IsSuperuser {
		if err := r.db.Order("name").Find(&scope.Zones).Error; err != nil {
			return nil, err
		}
		if err := r.db.Order("name").Find(&scope.Programs).Error; err != nil {
			return nil, err
		}
		if err := r.db.Preload("Session").Preload("Program").Find(&scope.Schedules).Error; err != nil {
			return nil, err
		}
		scope.Session, scope.School, scope.Student, scope.Partner = true, true, true, true
		return scope, nil
	}

	profile, err := ProfileFor(r.db, user)
	if err != nil {
		return nil, err
	}
	zoneIDs, programIDs, _ := grantIDs(profile)

	scope.Zones = []models.Zone{}
	if err := r.db.Where("zone_id IN ?", zoneIDs).Order("name").Find(&scope.Programs).Error; err != nil {
		return nil, err
	}

	zonePrograms := r.db.Model(&models.Program{}).Select("id").Where("zone_id IN ?", zoneIDs)
	err = r.db.Preload("Session").Preload("Program").
		Where(r.db.Where("program_id IN ?", programIDs).Or("program_id IN (?)", zonePrograms)).
		Find(&scope.Schedules).Error
	if err != nil {
		return nil, err
	}

	scope.Session = profile.SessionPermission
	scope.School = profile.SchoolPermission
	scope.Student = profile.StudentPermission
	scope.Partner = profile.PartnerPermission
	return scope, nil
}

// GrantRequest is the full permission state a granter submits for a target
// user. Graded fields are entity id sets; flat fields are the desired
// boolean values.
type GrantRequest struct {
	ZoneIDs     []uint `json:"zone_ids"`
	ProgramIDs  []uint `json:"program_ids"`
	ScheduleIDs []uint `json:"schedule_ids"`

	Session bool `json:"session_permission"`
	School  bool `json:"school_permission"`
	Student bool `json:"student_permission"`
	Partner bool `json:"partner_permission"`
}

// ApplyGrants rewrites the target's permissions within the granter's scope.
// At each graded level the new grant set is the requested ids the granter
// may grant plus the target's existing ids the granter may not touch: the
// granter can neither add nor strip anything outside their own scope. Flat permissions change
// only where the granter holds them.
func (r *Resolver) ApplyGrants(granter *models.User, targetUserID uint, req GrantRequest) (*models.UserProfile, error) {
	scope, err := r.Grantable(granter)
	if err != nil {
		return nil, err
	}

	var target models.User
	if err := r.db.First(&target, targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, targetUserID)
		}
		return nil, err
	}
	profile, err := ProfileFor(r.db, &target)
	if err != nil {
		return nil, err
	}

	existingZones, existingPrograms, existingSchedules := grantIDs(profile)

	zoneIDs := mergeGrantIDs(req.ZoneIDs, existingZones, zoneScopeIDs(scope))
	programIDs := mergeGrantIDs(req.ProgramIDs, existingPrograms, programScopeIDs(scope))
	scheduleIDs := mergeGrantIDs(req.ScheduleIDs, existingSchedules, scheduleScopeIDs(scope))

	err = r.db.Transaction(func(tx *gorm.DB) error {
		var zones []models.Zone
		if err := tx.Where("id IN ?", zoneIDs).Find(&zones).Error; err != nil {
			return err
		}
		if err := tx.Model(profile).Association("ZonePermissions").Replace(zones); err != nil {
			return err
		}

		var programs []models.Program
		if err := tx.Where("id IN ?", programIDs).Find(&programs).Error; err != nil {
			return err
		}
		if err := tx.Model(profile).Association("ProgramPermissions").Replace(programs); err != nil {
			return err
		}

		var schedules []models.Schedule
		if err := tx.Where("id IN ?", scheduleIDs).Find(&schedules).Error; err != nil {
			return err
		}
		if err := tx.Model(profile).Association("SchedulePermissions").Replace(schedules); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if scope.Session {
			updates["session_permission"] = req.Session
		}
		if scope.School {
			updates["school_permission"] = req.School
		}
		if scope.Student {
			updates["student_permission"] = req.Student
		}
		if scope.Partner {
			updates["partner_permission"] = req.Partner
		}
		if len(updates) > 0 {
			if err := tx.Model(profile).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ProfileFor(r.db, &target)
}

// mergeGrantIDs keeps requested ids the granter may grant and preserves
// existing ids the granter may not touch. Result is sorted and duplicate
// free.
func mergeGrantIDs(requested, existing, grantable []uint) []uint {
	inScope := make(map[uint]struct{}, len(grantable))
	for _, id := range grantable {
		inScope[id] = struct{}{}
	}

	out := make([]uint, 0, len(requested)+len(existing))
	seen := make(map[uint]struct{})
	add := func(id uint) {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	for _, id := range requested {
		if _, ok := inScope[id]; ok {
			add(id)
		}
	}
	for _, id := range existing {
		if _, ok := inScope[id]; !ok {
			add(id)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func zoneScopeIDs(scope *GrantScope) []uint {
	ids := make([]uint, 0, len(scope.Zones))
	for _, z := range scope.Zones {
		ids = append(ids, z.ID)
	}
	return ids
}

func programScopeIDs(scope *GrantScope) []uint {
	ids := make([]uint, 0, len(scope.Programs))
	for _, p := range scope.Programs {
		ids = append(ids, p.ID)
	}
	return ids
}

func scheduleScopeIDs(scope *GrantScope) []uint {
	ids := make([]uint, 0, len(scope.Schedules))
	for _, s := range scope.Schedules {
		ids = append(ids, s.ID)
	}
	return ids
}

func grantIDs(profile *models.UserProfile) (zones, programs, schedules []uint) {
	zones = make([]uint, 0, len(profile.ZonePermissions))
	for _, z := range profile.ZonePermissions {
		zones = append(zones, z.ID)
	}
	programs = make([]uint, 0, len(profile.ProgramPermissions))
	for _, p := range profile.ProgramPermissions {
		programs = append(programs, p.ID)
	}
	schedules = make([]uint, 0, len(profile.SchedulePermissions))
	for _, s := range profile.SchedulePermissions {
		schedules = append(schedules, s.ID)
	}
	return zones, programs, schedules
}
