package contextkeys

const (
	// UserIDKey holds the authenticated user's ID in gin context.
	UserIDKey = "userID"
	// RoleKey holds the authenticated user's role in gin context.
	RoleKey = "role"
)
