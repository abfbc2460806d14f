package domain

import "time"

// Client is the core aggregate root: a customer record that may own exactly
// one User account and any number of Dette records.
type Client struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Surnom    string    `json:"surnom" bson:"surnom"`
	Adresse   string    `json:"adresse" bson:"adresse"`
	Telephone string    `json:"telephone" bson:"telephone"`
	UserID    string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// HasAccount reports whether the client owns a linked user account.
func (c *Client) HasAccount() bool {
	return c.UserID != ""
}
