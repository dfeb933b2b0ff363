package auth

import "github.com/helpdesk-io/helpdesk-web/internal/models"

type Permission string

const (
	PermissionTicketRead      Permission = "ticket:read"
	PermissionTicketCreate    Permission = "ticket:create"
	PermissionTicketUpdate    Permission = "ticket:update"
	PermissionCommentInternal Permission = "comment:internal"

	PermissionClientRead   Permission = "client:read"
	PermissionClientManage Permission = "client:manage"

	PermissionUserManage     Permission = "user:manage"
	PermissionCategoryManage Permission = "category:manage"
	PermissionSettingsManage Permission = "settings:manage"

	PermissionReportView Permission = "report:view"
	PermissionAssetView  Permission = "asset:view"
)

// RBAC is the static role to permission table the UI uses to hide or guard
// pages. The backend enforces the same rules independently.
type RBAC struct {
	rolePermissions map[models.UserRole][]Permission
}

func NewRBAC() *RBAC {
	rbac := &RBAC{
		rolePermissions: make(map[models.UserRole][]Permission),
	}
	rbac.initializePermissions()
	return rbac
}

func (r *RBAC) initializePermissions() {
	r.rolePermissions[models.RoleAdmin] = []Permission{
		PermissionTicketRead, PermissionTicketCreate, PermissionTicketUpdate, PermissionCommentInternal,
		PermissionClientRead, PermissionClientManage,
		PermissionUserManage, PermissionCategoryManage, PermissionSettingsManage,
		PermissionReportView, PermissionAssetView,
	}

	r.rolePermissions[models.RoleAgent] = []Permission{
		PermissionTicketRead, PermissionTicketCreate, PermissionTicketUpdate, PermissionCommentInternal,
		PermissionClientRead,
		PermissionReportView, PermissionAssetView,
	}

	// Customers see their own client's tickets only; the backend scopes the data.
	r.rolePermissions[models.RoleCustomer] = []Permission{
		PermissionTicketRead, PermissionTicketCreate,
	}
}

func (r *RBAC) HasPermission(role string, permission Permission) bool {
	for _, p := range r.rolePermissions[models.UserRole(role)] {
		if p == permission {
			return true
		}
	}
	return false
}

func (r *RBAC) GetRolePermissions(role string) []Permission {
	return r.rolePermissions[models.UserRole(role)]
}

// Permissions returns the permission set of role as a lookup map, for templates.
func (r *RBAC) Permissions(role string) map[string]bool {
	perms := r.GetRolePermissions(role)
	out := make(map[string]bool, len(perms))
	for _, p := range perms {
		out[string(p)] = true
	}
	return out
}
