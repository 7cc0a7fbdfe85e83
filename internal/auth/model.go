package auth

// User is the domain entity. Role is OWNER for restaurant owners,
// ADMIN for back-office accounts.
type User struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     string
}
