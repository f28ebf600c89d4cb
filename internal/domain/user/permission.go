package user

type Permission string

const (
	// Attendance
	PermissionAttendanceCheckSelf Permission = "attendance.check_self"
	PermissionAttendanceViewOwn   Permission = "attendance.view_own"
	PermissionAttendanceManage    Permission = "attendance.manage"

	// Reports
	PermissionReportsView Permission = "reports.view"

	// Scheduled jobs
	PermissionJobsManage Permission = "jobs.manage"
)

// RolePermissions maps roles to their permissions.
// Super admins administer the platform but do not clock in themselves:
// attendance self-service is deliberately absent from their set.
var RolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermissionAttendanceManage,
		PermissionReportsView,
		PermissionJobsManage,
	},
	RoleManager: {
		PermissionAttendanceCheckSelf,
		PermissionAttendanceViewOwn,
		PermissionAttendanceManage,
		PermissionReportsView,
	},
	RoleEmployee: {
		PermissionAttendanceCheckSelf,
		PermissionAttendanceViewOwn,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
