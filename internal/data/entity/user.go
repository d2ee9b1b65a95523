package entity

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	Base
	Name               string   `db:"name"`
	Email              string   `db:"email"`
	PasswordHash       string   `db:"password"`
	Phone              *string  `db:"phone"`
	Role               UserRole `db:"role"`
	EmailNotifications bool     `db:"email_notifications"`
	PushNotifications  bool     `db:"push_notifications"`
	IsActive           bool     `db:"is_active"`
}
