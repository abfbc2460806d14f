package domain

import "time"

// RoleClient is the only role this pipeline ever assigns; account
// administration (other roles, blocking) lives outside this service.
const RoleClient = "client"

// User is the account record linked one-to-one to a Client.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Nom          string    `json:"nom"`
	Prenom       string    `json:"prenom"`
	ImageURL     string    `json:"image_url,omitempty"`
	Bloquer      bool      `json:"bloquer"`
	ClientID     string    `json:"client_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName returns the display name used in notifications.
func (u *User) FullName() string {
	return u.Prenom + " " + u.Nom
}
