package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/teranga/client-registry/internal/api/metrics"
	"github.com/teranga/client-registry/internal/core/domain"
	"github.com/teranga/client-registry/internal/core/ports"
)

// pageSize is the fixed page size of the client listing.
const pageSize = 5

var validate = validator.New()

// accountPayload mirrors the users block of a registration request for
// field-level validation before anything touches storage.
type accountPayload struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Nom      string `validate:"required"`
	Prenom   string `validate:"required"`
}

// RegistryService owns creation, lookup, update and deletion of clients and
// their linked user accounts.
type RegistryService struct {
	repo      ports.ClientRepository
	publisher ports.EventPublisher
	guard     ports.PublishGuard
	logger    zerolog.Logger
}

func NewRegistryService(
	repo ports.ClientRepository,
	publisher ports.EventPublisher,
	guard ports.PublishGuard,
	logger zerolog.Logger,
) *RegistryService {
	return &RegistryService{repo: repo, publisher: publisher, guard: guard, logger: logger}
}

// Create registers a client and, when input.User is present, its linked user
// account inside a single transaction. The registration event is published
// strictly after the transaction has committed, so subscribers never observe
// a client that could still be rolled back.
func (s *RegistryService) Create(ctx context.Context, input ports.CreateClientInput) (*ports.ClientResult, error) {
	if verr := validateCreateInput(input); verr != nil {
		return nil, verr
	}

	now := time.Now().UTC()
	client := domain.Client{
		Surnom:    input.Surnom,
		Adresse:   input.Adresse,
		Telephone: input.Telephone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var user *domain.User
	if input.User != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.User.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user = &domain.User{
			Email:        input.User.Email,
			PasswordHash: string(hash),
			Role:         domain.RoleClient,
			Nom:          input.User.Nom,
			Prenom:       input.User.Prenom,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	if err := s.repo.CreateWithUser(ctx, &client, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrPhoneTaken) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("telephone", input.Telephone).Msg("failed to create client")
		return nil, fmt.Errorf("create client: %w", err)
	}

	withAccount := "non"
	if user != nil {
		withAccount = "oui"
	}
	metrics.RegistrationsTotal.WithLabelValues(withAccount).Inc()
	s.logger.Info().
		Str("client_id", client.ID).
		Str("telephone", client.Telephone).
		Bool("with_account", user != nil).
		Msg("client registered")

	s.publishRegistered(ctx, client, user, imageFromInput(input))

	return &ports.ClientResult{
		ID:        client.ID,
		Surnom:    client.Surnom,
		Adresse:   client.Adresse,
		Telephone: client.Telephone,
		UserID:    client.UserID,
		CreatedAt: client.CreatedAt,
	}, nil
}

// publishRegistered hands the committed registration to the event bus, at
// most once per client. A guard failure is logged and the event published
// anyway: losing the side effects is worse than risking a duplicate.
func (s *RegistryService) publishRegistered(ctx context.Context, client domain.Client, user *domain.User, image *domain.ImagePayload) {
	seen, err := s.guard.AlreadyPublished(ctx, client.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("client_id", client.ID).Msg("publish guard check failed, publishing anyway")
	} else if seen {
		s.logger.Debug().Str("client_id", client.ID).Msg("registration event already published, skipping")
		return
	}

	if err := s.guard.MarkPublished(ctx, client.ID); err != nil {
		s.logger.Warn().Err(err).Str("client_id", client.ID).Msg("failed to mark registration as published")
	}

	s.publisher.Publish(domain.RegistrationEvent{Client: client, User: user, Image: image})
	metrics.EventsPublishedTotal.Inc()
}

func imageFromInput(input ports.CreateClientInput) *domain.ImagePayload {
	if input.User == nil {
		return nil
	}
	return input.User.Image
}

// validateCreateInput enforces the registration contract: client fields are
// required, and when an account payload is supplied it must carry a valid
// email, a password of at least 8 characters, and both name parts.
func validateCreateInput(input ports.CreateClientInput) *domain.ValidationError {
	fields := make(map[string]string)

	if input.Surnom == "" {
		fields["surnom"] = "surnom is required"
	}
	if input.Adresse == "" {
		fields["adresse"] = "adresse is required"
	}
	if input.Telephone == "" {
		fields["telephone"] = "telephone is required"
	}

	if input.User != nil {
		payload := accountPayload{
			Email:    input.User.Email,
			Password: input.User.Password,
			Nom:      input.User.Nom,
			Prenom:   input.User.Prenom,
		}
		if err := validate.Struct(payload); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					field, msg := accountFieldError(fe)
					fields[field] = msg
				}
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return domain.NewValidationError(fields)
}

func accountFieldError(fe validator.FieldError) (string, string) {
	switch fe.Field() {
	case "Email":
		if fe.Tag() == "email" {
			return "users.email", "email must be a valid address"
		}
		return "users.email", "email is required"
	case "Password":
		if fe.Tag() == "min" {
			return "users.password", "password must be at least 8 characters"
		}
		return "users.password", "password is required"
	case "Nom":
		return "users.nom", "nom is required"
	default:
		return "users.prenom", "prenom is required"
	}
}

// Get retrieves a client and its linked user by id.
func (s *RegistryService) Get(ctx context.Context, id string) (*ports.ClientWithUser, error) {
	return s.repo.FindByID(ctx, id)
}

// SearchByPhone retrieves a client by its telephone number, the natural
// external identifier.
func (s *RegistryService) SearchByPhone(ctx context.Context, telephone string) (*ports.ClientWithUser, error) {
	if telephone == "" {
		return nil, domain.NewValidationError(map[string]string{"telephone": "telephone is required"})
	}
	return s.repo.FindByPhone(ctx, telephone)
}

// List returns one page of clients matching the given filters.
func (s *RegistryService) List(ctx context.Context, input ports.ListClientsInput) (*ports.ListClientsResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}

	items, total, err := s.repo.List(ctx, ports.ListClientsFilter{
		Surnom:     input.Surnom,
		Adresse:    input.Adresse,
		Telephone:  input.Telephone,
		HasAccount: input.HasAccount,
		Active:     input.Active,
		SortBy:     input.SortBy,
		SortDesc:   input.SortDesc,
		Page:       page,
		Limit:      pageSize,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list clients")
		return nil, fmt.Errorf("list clients: %w", err)
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	return &ports.ListClientsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      pageSize,
		TotalPages: totalPages,
	}, nil
}

// Update modifies the client-scoped fields of an existing client.
func (s *RegistryService) Update(ctx context.Context, id, surnom, adresse, telephone string) (*domain.Client, error) {
	fields := make(map[string]string)
	if surnom == "" {
		fields["surnom"] = "surnom is required"
	}
	if adresse == "" {
		fields["adresse"] = "adresse is required"
	}
	if telephone == "" {
		fields["telephone"] = "telephone is required"
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields)
	}
	return s.repo.Update(ctx, id, surnom, adresse, telephone)
}

// Delete removes a client.
func (s *RegistryService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// ListDettes returns a client together with its debts. A debt-free client is
// a successful result with an empty slice, distinct from a missing client.
func (s *RegistryService) ListDettes(ctx context.Context, clientID string) (*ports.DettesResult, error) {
	found, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	dettes, err := s.repo.ListDettes(ctx, clientID)
	if err != nil {
		s.logger.Error().Err(err).Str("client_id", clientID).Msg("failed to list dettes")
		return nil, fmt.Errorf("list dettes: %w", err)
	}

	return &ports.DettesResult{Client: found.Client, Dettes: dettes}, nil
}

// GetAccount returns the user account linked to a client.
func (s *RegistryService) GetAccount(ctx context.Context, clientID string) (*domain.User, error) {
	return s.repo.FindUserByClientID(ctx, clientID)
}
