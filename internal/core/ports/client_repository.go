package ports

import (
	"context"

	"github.com/teranga/client-registry/internal/core/domain"
)

// ListClientsFilter carries all query parameters for listing clients.
// HasAccount and Active are tri-state: nil means "no filter".
type ListClientsFilter struct {
	Surnom     string // optional: substring match
	Adresse    string // optional: substring match
	Telephone  string // optional: substring match
	HasAccount *bool  // oui/non on the comptes parameter
	Active     *bool  // oui/non on the active parameter (user not blocked)
	SortBy     string // one of surnom, adresse, telephone; empty = insertion order
	SortDesc   bool
	Page       int // 1-based
	Limit      int // rows per page
}

// ClientWithUser pairs a client with its linked user, if any.
type ClientWithUser struct {
	Client domain.Client
	User   *domain.User
}

// ClientRepository defines persistence operations for clients and their
// linked users.
type ClientRepository interface {
	// CreateWithUser durably creates the client and, when user is non-nil,
	// its linked user in a single transaction. Either both rows commit or
	// neither does. On success the generated ids and cross-references are
	// written back onto the arguments.
	CreateWithUser(ctx context.Context, client *domain.Client, user *domain.User) error

	FindByID(ctx context.Context, id string) (*ClientWithUser, error)
	FindByPhone(ctx context.Context, telephone string) (*ClientWithUser, error)
	// List returns a page of clients matching filter and the total count.
	List(ctx context.Context, filter ListClientsFilter) ([]ClientWithUser, int64, error)
	Update(ctx context.Context, id string, surnom, adresse, telephone string) (*domain.Client, error)
	Delete(ctx context.Context, id string) error

	FindUserByClientID(ctx context.Context, clientID string) (*domain.User, error)
	ListDettes(ctx context.Context, clientID string) ([]domain.Dette, error)
	// SetUserImageURL persists the uploaded image URL on an already-committed
	// user row.
	SetUserImageURL(ctx context.Context, userID, url string) error
}
