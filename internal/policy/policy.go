// Package policy centralizes every access decision for projects and tasks.
// All checks are pure functions over snapshots of the principal and the
// resource; the package holds no store handle and no mutable state, so the
// same predicate backs single-resource checks, in-memory list filters and
// the SQL filters built in the repository layer.
package policy

import (
	"errors"

	"github.com/workboard/workboard-api/internal/models"
)

// Operation identifies what the principal is trying to do.
type Operation string

const (
	OpRead          Operation = "read"
	OpUpdate        Operation = "update"
	OpDelete        Operation = "delete"
	OpManageMembers Operation = "manage_members"
	OpFavorite      Operation = "favorite"
)

var (
	// ErrForbidden means the resource exists but the principal lacks rights.
	ErrForbidden = errors.New("access denied")
	// ErrInactiveAccount means the principal is deactivated. Checked before
	// every other rule, for every operation.
	ErrInactiveAccount = errors.New("account is deactivated")
	// ErrOwnerRemoval means an attempt to remove the project owner from the
	// member set. Rejected for every caller, admins included.
	ErrOwnerRemoval = errors.New("project owner cannot be removed from members")
	// ErrAmbiguousDepartment means a project was created without a department
	// by a user who belongs to more than one.
	ErrAmbiguousDepartment = errors.New("ambiguous department, must specify")
	// ErrDepartmentNotAllowed means the creator named a department they do
	// not belong to.
	ErrDepartmentNotAllowed = errors.New("not a member of the specified department")
)

// Principal is a snapshot of the authenticated user taken at request time.
// Department membership must be loaded fresh per request; snapshots are not
// meant to be cached across requests.
type Principal struct {
	ID          uint64
	Role        models.UserRole
	Active      bool
	departments map[uint64]struct{}
}

// NewPrincipal builds a Principal from a user record with departments
// preloaded. The legacy single-department form is already normalized into
// the membership rows at the API boundary, so the set here is complete.
func NewPrincipal(user *models.User) Principal {
	departments := make(map[uint64]struct{}, len(user.Departments))
	for _, d := range user.Departments {
		departments[d.DepartmentID] = struct{}{}
	}
	return Principal{
		ID:          user.ID,
		Role:        user.Role,
		Active:      user.IsActive,
		departments: departments,
	}
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// InDepartment reports whether the principal belongs to the department.
func (p Principal) InDepartment(departmentID uint64) bool {
	_, ok := p.departments[departmentID]
	return ok
}

// DepartmentIDs returns the principal's department set as a slice, for
// building SQL filters.
func (p Principal) DepartmentIDs() []uint64 {
	ids := make([]uint64, 0, len(p.departments))
	for id := range p.departments {
		ids = append(ids, id)
	}
	return ids
}

// Project is the policy-relevant snapshot of a project record.
type Project struct {
	ID           uint64
	OwnerID      uint64
	DepartmentID *uint64
	Private      bool
	members      map[uint64]struct{}
}

// ProjectRecord builds a snapshot from a project with members preloaded.
func ProjectRecord(project *models.Project) Project {
	members := make(map[uint64]struct{}, len(project.Members))
	for _, m := range project.Members {
		members[m.UserID] = struct{}{}
	}
	return Project{
		ID:           project.ID,
		OwnerID:      project.OwnerID,
		DepartmentID: project.DepartmentID,
		Private:      project.IsPrivate,
		members:      members,
	}
}

// HasMember reports whether the user is in the project's member set.
func (r Project) HasMember(userID uint64) bool {
	_, ok := r.members[userID]
	return ok
}

// Task is the policy-relevant snapshot of a task record.
type Task struct {
	ID        uint64
	ProjectID *uint64
	CreatorID uint64
	Private   bool
	assignees map[uint64]struct{}
}

// TaskRecord builds a snapshot from a task with assignments preloaded.
func TaskRecord(task *models.Task) Task {
	assignees := make(map[uint64]struct{}, len(task.Assignments))
	for _, a := range task.Assignments {
		assignees[a.UserID] = struct{}{}
	}
	return Task{
		ID:        task.ID,
		ProjectID: task.ProjectID,
		CreatorID: task.CreatorID,
		Private:   task.IsPrivate,
		assignees: assignees,
	}
}

// HasAssignee reports whether the user is assigned to the task.
func (t Task) HasAssignee(userID uint64) bool {
	_, ok := t.assignees[userID]
	return ok
}

// CheckProject decides whether the principal may perform op on the project.
// A nil return means allow.
//
// Visibility (OpRead) is evaluated in priority order: admin, owner, member,
// then the privacy flag, then the department gate on public projects.
func CheckProject(p Principal, r Project, op Operation) error {
	if !p.Active {
		return ErrInactiveAccount
	}

	switch op {
	case OpRead:
		if p.IsAdmin() || r.OwnerID == p.ID || r.HasMember(p.ID) {
			return nil
		}
		if r.Private {
			return ErrForbidden
		}
		if r.DepartmentID != nil && p.InDepartment(*r.DepartmentID) {
			return nil
		}
		return ErrForbidden

	case OpUpdate, OpManageMembers:
		if p.IsAdmin() || r.OwnerID == p.ID {
			return nil
		}
		return ErrForbidden

	case OpDelete:
		// Managers may delete projects alongside owners and admins.
		if p.IsAdmin() || r.OwnerID == p.ID || p.Role == models.RoleManager {
			return nil
		}
		return ErrForbidden

	case OpFavorite:
		// Personal preference, read-level bar: owner or member.
		if r.OwnerID == p.ID || r.HasMember(p.ID) {
			return nil
		}
		return ErrForbidden
	}

	return ErrForbidden
}

// CanViewProject reports whether the principal has read access to the project.
func CanViewProject(p Principal, r Project) bool {
	return CheckProject(p, r, OpRead) == nil
}

// ProjectFilter returns the in-memory equivalent of the repository's SQL
// visibility filter: a predicate that admits exactly the projects
// CheckProject admits for OpRead.
func ProjectFilter(p Principal) func(Project) bool {
	return func(r Project) bool {
		return CanViewProject(p, r)
	}
}

// CheckTask decides whether the principal may perform op on the task. For
// tasks that belong to a project the caller must pass the parent project
// snapshot; visibility is the parent's visibility intersected with the
// task's own privacy flag. Standalone tasks are visible only to their
// creator, their assignees and admins.
func CheckTask(p Principal, t Task, project *Project, op Operation) error {
	if !p.Active {
		return ErrInactiveAccount
	}
	if p.IsAdmin() {
		return nil
	}

	involved := t.CreatorID == p.ID || t.HasAssignee(p.ID)

	if t.ProjectID == nil {
		if !involved {
			return ErrForbidden
		}
	} else {
		if project == nil {
			return ErrForbidden
		}
		if err := CheckProject(p, *project, OpRead); err != nil {
			return err
		}
		if t.Private && !involved {
			return ErrForbidden
		}
	}

	switch op {
	case OpRead:
		return nil
	case OpUpdate:
		if involved || (project != nil && project.OwnerID == p.ID) {
			return nil
		}
		return ErrForbidden
	case OpDelete:
		if t.CreatorID == p.ID || (project != nil && project.OwnerID == p.ID) {
			return nil
		}
		return ErrForbidden
	}

	return ErrForbidden
}

// CanViewTask reports whether the principal has read access to the task.
func CanViewTask(p Principal, t Task, project *Project) bool {
	return CheckTask(p, t, project, OpRead) == nil
}

// ResolveDepartment applies the creation-time department rules: an explicit
// department must be one the creator belongs to (admins may use any); with
// none given, the creator's sole department is auto-assigned, zero
// departments leaves the project global, and several make the request
// ambiguous.
func ResolveDepartment(p Principal, requested *uint64) (*uint64, error) {
	if !p.Active {
		return nil, ErrInactiveAccount
	}

	if requested != nil {
		if p.IsAdmin() || p.InDepartment(*requested) {
			return requested, nil
		}
		return nil, ErrDepartmentNotAllowed
	}

	switch len(p.departments) {
	case 0:
		return nil, nil
	case 1:
		for id := range p.departments {
			resolved := id
			return &resolved, nil
		}
	}
	return nil, ErrAmbiguousDepartment
}

// CheckMemberRemoval decides whether the principal may remove the given
// member from the project. Removing the owner fails for every caller.
func CheckMemberRemoval(p Principal, r Project, memberID uint64) error {
	if err := CheckProject(p, r, OpManageMembers); err != nil {
		return err
	}
	if memberID == r.OwnerID {
		return ErrOwnerRemoval
	}
	return nil
}
