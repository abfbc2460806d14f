package ports

import (
	"context"
	"time"

	"github.com/teranga/client-registry/internal/core/domain"
)

// UserInput carries the optional account payload of a registration request.
type UserInput struct {
	Email    string
	Password string
	Nom      string
	Prenom   string
	// Image is the decoded profile image, nil when none was supplied.
	Image *domain.ImagePayload
}

// CreateClientInput carries all data needed to register a new client.
// User is nil when the client is registered without an account.
type CreateClientInput struct {
	Surnom    string
	Adresse   string
	Telephone string
	User      *UserInput
}

// ClientResult is returned by the service after a successful registration.
type ClientResult struct {
	ID        string
	Surnom    string
	Adresse   string
	Telephone string
	UserID    string
	CreatedAt time.Time
}

// ListClientsInput carries all parameters for the list endpoint.
// HasAccount and Active mirror the comptes/active query filters.
type ListClientsInput struct {
	Surnom     string
	Adresse    string
	Telephone  string
	HasAccount *bool
	Active     *bool
	SortBy     string
	SortDesc   bool
	Page       int
}

// ListClientsResult is returned by ListClients.
type ListClientsResult struct {
	Items      []ClientWithUser
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// DettesResult pairs a client with its debts. Dettes is empty (not an error)
// for a debt-free client.
type DettesResult struct {
	Client domain.Client
	Dettes []domain.Dette
}

// ClientService defines the use-case operations of the client registry.
type ClientService interface {
	// Create registers a client and, when input.User is set, its linked
	// account, then publishes a registration event strictly after commit.
	Create(ctx context.Context, input CreateClientInput) (*ClientResult, error)
	Get(ctx context.Context, id string) (*ClientWithUser, error)
	SearchByPhone(ctx context.Context, telephone string) (*ClientWithUser, error)
	List(ctx context.Context, input ListClientsInput) (*ListClientsResult, error)
	Update(ctx context.Context, id, surnom, adresse, telephone string) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
	ListDettes(ctx context.Context, clientID string) (*DettesResult, error)
	GetAccount(ctx context.Context, clientID string) (*domain.User, error)
}
