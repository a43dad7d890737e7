package permissions

import (
	"sort"

	"schoolrecords_go/models"
)

// Listing queries are distinct from point resolution: a user who can edit
// schedule S must see S's program and zone in listings without gaining edit
// rights on them, and must not see sibling entities they hold no grant on.
//
// The visibility unions are computed as ID sets in memory from the user's
// grants plus an ancestor index loaded for just those grants, then fetched
// with a single Find on the target table.

// parentIndex maps granted entities to their ancestors.
type parentIndex struct {
	programZone     map[uint]uint // program id -> zone id
	scheduleProgram map[uint]uint // schedule id -> program id
}

// loadParentIndex fetches the ancestor columns for the granted schedules
// and for the granted programs plus those schedules' programs.
func (r *Resolver) loadParentIndex(grants grantSet) (parentIndex, error) {
	ix := parentIndex{
		programZone:     make(map[uint]uint),
		scheduleProgram: make(map[uint]uint, len(grants.schedules)),
	}

	if len(grants.schedules) > 0 {
		var schedules []models.Schedule
		err := r.db.Select("id", "program_id").
			Where("id IN ?", setToIDs(grants.schedules)).
			Find(&schedules).Error
		if err != nil {
			return ix, err
		}
		for _, s := range schedules {
			ix.scheduleProgram[s.ID] = s.ProgramID
		}
	}

	programIDs := setToIDs(grants.programs)
	for _, pid := range ix.scheduleProgram {
		programIDs = append(programIDs, pid)
	}
	if len(programIDs) > 0 {
		var programs []models.Program
		err := r.db.Select("id", "zone_id").
			Where("id IN ?", programIDs).
			Find(&programs).Error
		if err != nil {
			return ix, err
		}
		for _, p := range programs {
			ix.programZone[p.ID] = p.ZoneID
		}
	}
	return ix, nil
}

// visibleZoneIDs unions direct zone grants with the zones of granted
// programs and of granted schedules' programs.
func visibleZoneIDs(grants grantSet, ix parentIndex) []uint {
	set := make(map[uint]struct{}, len(grants.zones))
	for id := range grants.zones {
		set[id] = struct{}{}
	}
	for pid := range grants.programs {
		if zid, ok := ix.programZone[pid]; ok {
			set[zid] = struct{}{}
		}
	}
	for sid := range grants.schedules {
		if zid, ok := ix.programZone[ix.scheduleProgram[sid]]; ok {
			set[zid] = struct{}{}
		}
	}
	return setToIDs(set)
}

// visibleProgramIDs unions the zone's directly granted programs with the
// zone's programs of granted schedules. Programs of other zones never
// qualify, whatever the grant.
func visibleProgramIDs(zoneID uint, grants grantSet, ix parentIndex) []uint {
	set := make(map[uint]struct{})
	for pid := range grants.programs {
		if ix.programZone[pid] == zoneID {
			set[pid] = struct{}{}
		}
	}
	for sid := range grants.schedules {
		pid := ix.scheduleProgram[sid]
		if ix.programZone[pid] == zoneID {
			set[pid] = struct{}{}
		}
	}
	return setToIDs(set)
}

// visibleScheduleIDs keeps only directly granted schedules of the program.
// No deeper grants exist below schedules, so there is nothing to union.
func visibleScheduleIDs(programID uint, grants grantSet, ix parentIndex) []uint {
	set := make(map[uint]struct{})
	for sid := range grants.schedules {
		if ix.scheduleProgram[sid] == programID {
			set[sid] = struct{}{}
		}
	}
	return setToIDs(set)
}

func setToIDs(set map[uint]struct{}) []uint {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// VisibleZones returns the zones the user may see plus the root-level edit
// flag. With root edit permission (superuser) every zone is visible.
func (r *Resolver) VisibleZones(user *models.User) ([]models.Zone, bool, error) {
	res, err := r.Resolve(user, Path{})
	if err != nil {
		return nil, false, err
	}

	var zones []models.Zone
	if res.CanEdit {
		if err := r.db.Order("name").Find(&zones).Error; err != nil {
			return nil, false, err
		}
		return zones, true, nil
	}

	ix, err := r.loadParentIndex(res.grants)
	if err != nil {
		return nil, false, err
	}
	ids := visibleZoneIDs(res.grants, ix)
	if len(ids) == 0 {
		return []models.Zone{}, false, nil
	}
	if err := r.db.Where("id IN ?", ids).Order("name").Find(&zones).Error; err != nil {
		return nil, false, err
	}
	return zones, false, nil
}

// VisiblePrograms lists the programs of the resolved zone the user may see.
// res must come from a Resolve call whose path ends at the zone.
func (r *Resolver) VisiblePrograms(res *Resolution) ([]models.Program, error) {
	var programs []models.Program
	if res.CanEdit {
		if err := r.db.Where("zone_id = ?", res.Zone.ID).Order("name").Find(&programs).Error; err != nil {
			return nil, err
		}
		return programs, nil
	}

	ix, err := r.loadParentIndex(res.grants)
	if err != nil {
		return nil, err
	}
	ids := visibleProgramIDs(res.Zone.ID, res.grants, ix)
	if len(ids) == 0 {
		return []models.Program{}, nil
	}
	if err := r.db.Where("id IN ?", ids).Order("name").Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

// VisibleSchedules lists the schedules of the resolved program the user may
// see: every schedule when the path grants edit, otherwise only directly
// granted ones.
func (r *Resolver) VisibleSchedules(res *Resolution) ([]models.Schedule, error) {
	var schedules []models.Schedule
	if res.CanEdit {
		if err := r.db.Preload("Session").Where("program_id = ?", res.Program.ID).Find(&schedules).Error; err != nil {
			return nil, err
		}
		return schedules, nil
	}

	ix, err := r.loadParentIndex(res.grants)
	if err != nil {
		return nil, err
	}
	ids := visibleScheduleIDs(res.Program.ID, res.grants, ix)
	if len(ids) == 0 {
		return []models.Schedule{}, nil
	}
	if err := r.db.Preload("Session").Where("id IN ?", ids).Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

// Enrollments lists the resolved schedule's enrollments, or nothing at all
// without edit permission. An empty result is the normal outcome here, not
// an error.
func (r *Resolver) Enrollments(res *Resolution) ([]models.Enrollment, error) {
	if !res.CanEdit {
		return []models.Enrollment{}, nil
	}
	var enrollments []models.Enrollment
	err := r.db.Preload("Student").Preload("Student.School").
		Where("schedule_id = ?", res.Schedule.ID).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

// CanceledDates lists the resolved schedule's canceled dates, or nothing at
// all without edit permission.
func (r *Resolver) CanceledDates(res *Resolution) ([]models.CanceledDate, error) {
	if !res.CanEdit {
		return []models.CanceledDate{}, nil
	}
	var canceled []models.CanceledDate
	err := r.db.Where("schedule_id = ?", res.Schedule.ID).Order("date").Find(&canceled).Error
	if err != nil {
		return nil, err
	}
	return canceled, nil
}
