package models

// User is a login account. Password holds the bcrypt hash, never plaintext.
// Role is either "Admin" or "Customer".
type User struct {
	ID        int    `json:"Id"`
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	Email     string `json:"Email"`
	Phone     string `json:"Phone"`
	Password  string `json:"-"`
	Role      string `json:"Role"`
}

const (
	RoleAdmin    = "Admin"
	RoleCustomer = "Customer"
)
