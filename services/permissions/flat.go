package permissions

import (
	"fmt"

	"schoolrecords_go/models"
)

// Kinds of the non-graded permissions. These are flat booleans with no
// hierarchy behind them.
const (
	KindSession = "session"
	KindSchool  = "school"
	KindStudent = "student"
	KindPartner = "partner"
)

// flatAccessors maps a permission kind to its profile field. An enumerated
// dispatch table rather than field-name reflection, so an unknown kind is a
// programming error caught at the call site.
var flatAccessors = map[string]func(*models.UserProfile) bool{
	KindSession: func(p *models.UserProfile) bool { return p.SessionPermission },
	KindSchool:  func(p *models.UserProfile) bool { return p.SchoolPermission },
	KindStudent: func(p *models.UserProfile) bool { return p.StudentPermission },
	KindPartner: func(p *models.UserProfile) bool { return p.PartnerPermission },
}

// HasFlatPermission resolves a non-graded permission: the profile's boolean
// for the kind, or unconditionally true for a superuser.
func (r *Resolver) HasFlatPermission(user *models.User, kind string) (bool, error) {
	accessor, ok := flatAccessors[kind]
	if !ok {
		return false, fmt.Errorf("unknown flat permission kind %q", kind)
	}
	if user.IsSuperuser {
		return true, nil
	}
	profile, err := ProfileFor(r.db, user)
	if err != nil {
		return false, err
	}
	return accessor(profile), nil
}
