package model

// Permission names one capability a role may hold. Route guards and
// services consult RolePermissions only; roles are never compared inline.
type Permission string

const (
	PermViewAllGroups  Permission = "view_all_groups"
	PermViewOwnGroups  Permission = "view_own_groups"
	PermTakeAttendance Permission = "take_attendance"
	PermSubmitStudents Permission = "submit_students"
	PermViewReports    Permission = "view_reports"
	PermExportReports  Permission = "export_reports"
	PermManageStudents Permission = "manage_students"
	PermManageUsers    Permission = "manage_users"
	PermManageGroups   Permission = "manage_groups"
	PermManageCache    Permission = "manage_cache"
)

// RolePermissions is the single capability table mapping each role to what
// it may do. Owner and reception are administratively equivalent.
var RolePermissions = map[string][]Permission{
	RoleOwner: {
		PermViewAllGroups, PermViewOwnGroups, PermTakeAttendance,
		PermSubmitStudents, PermViewReports, PermExportReports,
		PermManageStudents, PermManageUsers, PermManageGroups, PermManageCache,
	},
	RoleReception: {
		PermViewAllGroups, PermViewOwnGroups, PermTakeAttendance,
		PermSubmitStudents, PermViewReports, PermExportReports,
		PermManageStudents, PermManageUsers, PermManageGroups, PermManageCache,
	},
	RoleInstructor: {
		PermViewOwnGroups, PermTakeAttendance, PermSubmitStudents,
		PermViewReports, PermExportReports,
	},
}

// HasPermission reports whether role grants perm.
func HasPermission(role string, perm Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsFor returns the capability list of a role as strings, in
// table order.
func PermissionsFor(role string) []string {
	perms := RolePermissions[role]
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}
	return out
}
