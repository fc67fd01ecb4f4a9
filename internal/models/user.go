package models

// UserRole is the closed set of stakeholder roles on the platform.
type UserRole string

const (
	UserRoleAdmin       UserRole = "admin"
	UserRoleSchoolAdmin UserRole = "school_admin"
	UserRoleParent      UserRole = "parent"
	UserRoleStaff       UserRole = "staff"
	UserRoleVendor      UserRole = "vendor"
)

// RoleDisplay carries the presentation metadata for a role, resolved once at
// the boundary instead of branching per component.
type RoleDisplay struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

var roleDisplays = map[UserRole]RoleDisplay{
	UserRoleAdmin:       {Label: "Platform Admin", Icon: "shield"},
	UserRoleSchoolAdmin: {Label: "School Admin", Icon: "school"},
	UserRoleParent:      {Label: "Parent", Icon: "user"},
	UserRoleStaff:       {Label: "Staff", Icon: "briefcase"},
	UserRoleVendor:      {Label: "Vendor", Icon: "store"},
}

// Display returns the presentation metadata for the role. Unknown roles fall
// back to a plain label so a bad row never breaks rendering.
func (r UserRole) Display() RoleDisplay {
	if d, ok := roleDisplays[r]; ok {
		return d
	}
	return RoleDisplay{Label: string(r), Icon: "user"}
}

// Valid reports whether the role is one of the enumerated values.
func (r UserRole) Valid() bool {
	_, ok := roleDisplays[r]
	return ok
}

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	FullName     string   `gorm:"not null" json:"full_name"`
	Role         UserRole `gorm:"type:varchar(20);not null" json:"role"`
	SchoolID     *string  `gorm:"index" json:"school_id,omitempty"`
	AvatarURL    *string  `json:"avatar_url,omitempty"`
}
