package model

// Role is the closed set of committee seats. The reference system keyed these
// off bare numeric IDs scattered through conditionals; here the exclusivity
// rule is a data-driven set check over named variants.
type Role string

const (
	RoleChairman  Role = "chairman"
	RoleSecretary Role = "secretary"
	RoleTreasurer Role = "treasurer"
)

// committeeRoles is the pairwise-exclusive set: a member holding any of these
// may not take another, in any block.
var committeeRoles = map[Role]struct{}{
	RoleChairman:  {},
	RoleSecretary: {},
	RoleTreasurer: {},
}

func (r Role) Valid() bool {
	_, ok := committeeRoles[r]
	return ok
}

// ExcludedBy reports whether holding `held` forbids taking r.
func (r Role) ExcludedBy(held Role) bool {
	if r == held {
		return true
	}
	_, a := committeeRoles[r]
	_, b := committeeRoles[held]
	return a && b
}

// RoleAssignment records a member holding a committee seat for a block.
type RoleAssignment struct {
	MemberID int64 `json:"member_id,string"`
	BlockID  int64 `json:"block_id,string"`
	Role     Role  `json:"role"`
}
