package domain

// Role names carried in access tokens. Admins never exist in the users table;
// they come from the static whitelist.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	// AdminUserID is the subject used in tokens issued to whitelisted admins.
	AdminUserID = "admin"
)
