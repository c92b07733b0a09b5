package utils

// Permission levels
const (
	DeveloperPermission = "developer"
	AdminPermission     = "admin"
	ModeratorPermission = "moderator"
	GuestPermission     = "guest"
)

// contains checks if a slice of strings contains an element.
func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// CheckPermission checks the highest permission level for a member's role IDs
// against the configured roles. The developer set is an explicit privileged
// identity list passed in by the caller, not a global lookup.
func CheckPermission(memberRoleIDs []string, userID string, adminRoleIDs, moderatorRoleIDs, developerUserIDs []string) string {
	if contains(developerUserIDs, userID) {
		return DeveloperPermission
	}

	for _, roleID := range memberRoleIDs {
		if contains(adminRoleIDs, roleID) {
			return AdminPermission
		}
	}

	for _, roleID := range memberRoleIDs {
		if contains(moderatorRoleIDs, roleID) {
			return ModeratorPermission
		}
	}

	return GuestPermission
}
