package model

import "time"

// User is a marketplace account. Credentials live separately in Security.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Security holds the password hash of a user (1:1 with User).
type Security struct {
	UserID       string    `json:"-"`
	PasswordHash string    `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// DeliveryInfo is the shipping profile of a user.
type DeliveryInfo struct {
	UserID      string    `json:"user_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	City        string    `json:"city"`
	PostService string    `json:"post_service"`
	PostOffice  int       `json:"post_office"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Post services a delivery profile can point at.
const (
	PostServiceNovaPoshta = "nova_poshta"
	PostServiceUkrposhta  = "ukrposhta"
	PostServiceMeest      = "meest"
)

// PostServices lists every accepted post service.
var PostServices = []string{PostServiceNovaPoshta, PostServiceUkrposhta, PostServiceMeest}
