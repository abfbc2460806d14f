package handler

import "time"

// --- Request types ---

type userRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Nom      string `json:"nom"      validate:"required"`
	Prenom   string `json:"prenom"   validate:"required"`
	// Image is an optional base64-encoded profile image, with or without a
	// data-URL prefix.
	Image string `json:"image,omitempty"`
}

type createClientRequest struct {
	Surnom    string       `json:"surnom"    validate:"required"`
	Adresse   string       `json:"adresse"   validate:"required"`
	Telephone string       `json:"telephone" validate:"required"`
	Users     *userRequest `json:"users,omitempty"`
}

type updateClientRequest struct {
	Surnom    string `json:"surnom"    validate:"required"`
	Adresse   string `json:"adresse"   validate:"required"`
	Telephone string `json:"telephone" validate:"required"`
}

type searchByPhoneRequest struct {
	Telephone string `json:"telephone" validate:"required"`
}

// --- Response types, owned by the transport layer ---

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
	ImageURL string `json:"image_url,omitempty"`
	Bloquer  bool   `json:"bloquer"`
	ClientID string `json:"client_id"`
}

type clientResponse struct {
	ID        string        `json:"id"`
	Surnom    string        `json:"surnom"`
	Adresse   string        `json:"adresse"`
	Telephone string        `json:"telephone"`
	User      *userResponse `json:"user,omitempty"`
}

type detteResponse struct {
	ID             string    `json:"id"`
	Montant        float64   `json:"montant"`
	MontantDu      float64   `json:"montant_du"`
	MontantRestant float64   `json:"montant_restant"`
	Date           time.Time `json:"date"`
}

type dettesData struct {
	Client clientResponse  `json:"client"`
	Dettes []detteResponse `json:"dettes"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listClientsData struct {
	Clients    []clientResponse   `json:"clients"`
	Pagination paginationResponse `json:"pagination"`
}
