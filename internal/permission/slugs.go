package permission

// Permission slug catalog. Rows in the permissions table use these
// values; handlers gate routes with them.
const (
	SlugLeavesView        = "leaves.view"
	SlugLeavesViewAll     = "leaves.view_all"
	SlugLeavesCreate      = "leaves.create"
	SlugLeavesApprove     = "leaves.approve"
	SlugLeavesHrApprove   = "leaves.hr_approve"
	SlugLeavesManageTypes = "leaves.manage_types"

	SlugBalancesView   = "balances.view"
	SlugBalancesManage = "balances.manage"

	SlugUsersView   = "users.view"
	SlugUsersManage = "users.manage"

	SlugRolesManage       = "roles.manage"
	SlugPermissionsManage = "permissions.manage"

	SlugCalendarView   = "calendar.view"
	SlugHolidaysManage = "holidays.manage"
)
