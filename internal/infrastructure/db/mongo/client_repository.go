package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teranga/client-registry/internal/core/domain"
	"github.com/teranga/client-registry/internal/core/ports"
)

const (
	collectionClients = "clients"
	collectionUsers   = "users"
	collectionDettes  = "dettes"
)

// ClientRepository implements ports.ClientRepository on MongoDB.
type ClientRepository struct {
	db      *mongo.Database
	clients *mongo.Collection
	users   *mongo.Collection
	dettes  *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{
		db:      db,
		clients: db.Collection(collectionClients),
		users:   db.Collection(collectionUsers),
		dettes:  db.Collection(collectionDettes),
	}
}

type clientDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Surnom    string             `bson:"surnom"`
	Adresse   string             `bson:"adresse"`
	Telephone string             `bson:"telephone"`
	UserID    primitive.ObjectID `bson:"user_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	Nom          string             `bson:"nom"`
	Prenom       string             `bson:"prenom"`
	ImageURL     string             `bson:"image_url,omitempty"`
	Bloquer      bool               `bson:"bloquer"`
	ClientID     primitive.ObjectID `bson:"client_id"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d clientDoc) toDomain() domain.Client {
	c := domain.Client{
		ID:        d.ID.Hex(),
		Surnom:    d.Surnom,
		Adresse:   d.Adresse,
		Telephone: d.Telephone,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if !d.UserID.IsZero() {
		c.UserID = d.UserID.Hex()
	}
	return c
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		Nom:          d.Nom,
		Prenom:       d.Prenom,
		ImageURL:     d.ImageURL,
		Bloquer:      d.Bloquer,
		ClientID:     d.ClientID.Hex(),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// CreateWithUser inserts the client and, when user is non-nil, the linked
// user inside one multi-document transaction: the client first (it must have
// an id for the back-reference), then the user, then the user_id back-fill on
// the client. Either everything commits or nothing does. Unique index
// violations are translated to domain sentinels.
func (r *ClientRepository) CreateWithUser(ctx context.Context, client *domain.Client, user *domain.User) error {
	sess, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	clientID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		cdoc := clientDoc{
			ID:        clientID,
			Surnom:    client.Surnom,
			Adresse:   client.Adresse,
			Telephone: client.Telephone,
			CreatedAt: client.CreatedAt,
			UpdatedAt: client.UpdatedAt,
		}
		if _, err := r.clients.InsertOne(sc, cdoc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrPhoneTaken
			}
			return nil, fmt.Errorf("insert client: %w", err)
		}

		if user == nil {
			return nil, nil
		}

		udoc := userDoc{
			ID:           userID,
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
			Role:         user.Role,
			Nom:          user.Nom,
			Prenom:       user.Prenom,
			Bloquer:      false,
			ClientID:     clientID,
			CreatedAt:    user.CreatedAt,
			UpdatedAt:    user.UpdatedAt,
		}
		if _, err := r.users.InsertOne(sc, udoc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrEmailTaken
			}
			return nil, fmt.Errorf("insert user: %w", err)
		}

		update := bson.M{"$set": bson.M{"user_id": userID, "updated_at": client.UpdatedAt}}
		if _, err := r.clients.UpdateByID(sc, clientID, update); err != nil {
			return nil, fmt.Errorf("backfill user_id: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	client.ID = clientID.Hex()
	if user != nil {
		client.UserID = userID.Hex()
		user.ID = userID.Hex()
		user.ClientID = client.ID
	}
	return nil
}

// FindByID retrieves a client and its linked user.
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*ports.ClientWithUser, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrClientNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByPhone retrieves a client by exact telephone match.
func (r *ClientRepository) FindByPhone(ctx context.Context, telephone string) (*ports.ClientWithUser, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"telephone": telephone})
}

func (r *ClientRepository) findOne(ctx context.Context, filter bson.M) (*ports.ClientWithUser, error) {
	var cdoc clientDoc
	if err := r.clients.FindOne(ctx, filter).Decode(&cdoc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}

	result := &ports.ClientWithUser{Client: cdoc.toDomain()}

	var udoc userDoc
	err := r.users.FindOne(ctx, bson.M{"client_id": cdoc.ID}).Decode(&udoc)
	switch {
	case err == nil:
		u := udoc.toDomain()
		result.User = &u
	case errors.Is(err, mongo.ErrNoDocuments):
		// client without account
	default:
		return nil, fmt.Errorf("find linked user: %w", err)
	}
	return result, nil
}

// listPage is the shape produced by the $facet stage of List.
type listPage struct {
	Total []struct {
		Count int64 `bson:"count"`
	} `bson:"total"`
	Items []struct {
		clientDoc `bson:",inline"`
		User      *userDoc `bson:"user"`
	} `bson:"items"`
}

// List runs a single aggregation: substring filters on the client fields, a
// $lookup of the linked user, account/blocked filters on the joined document,
// then sort + facet pagination so items and total count come back together.
func (r *ClientRepository) List(ctx context.Context, filter ports.ListClientsFilter) ([]ports.ClientWithUser, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	match := bson.M{}
	if filter.Surnom != "" {
		match["surnom"] = substringRegex(filter.Surnom)
	}
	if filter.Adresse != "" {
		match["adresse"] = substringRegex(filter.Adresse)
	}
	if filter.Telephone != "" {
		match["telephone"] = substringRegex(filter.Telephone)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "_id",
			"foreignField": "client_id",
			"as":           "user",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"user": bson.M{"$arrayElemAt": bson.A{"$user", 0}},
		}}},
	}

	joined := bson.M{}
	if filter.HasAccount != nil {
		if *filter.HasAccount {
			joined["user"] = bson.M{"$ne": nil}
		} else {
			joined["user"] = nil
		}
	}
	if filter.Active != nil {
		// bloquer lives on the joined user; matching on it implicitly
		// restricts results to clients with an account, like the original
		// account filters do.
		joined["user.bloquer"] = !*filter.Active
	}
	if len(joined) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: joined}})
	}

	if filter.SortBy != "" {
		order := 1
		if filter.SortDesc {
			order = -1
		}
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: filter.SortBy, Value: order}}}})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 5
	}
	skip := (filter.Page - 1) * limit
	if skip < 0 {
		skip = 0
	}
	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.M{
		"total": bson.A{bson.M{"$count": "count"}},
		"items": bson.A{bson.M{"$skip": skip}, bson.M{"$limit": limit}},
	}}})

	cur, err := r.clients.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer cur.Close(ctx)

	var pages []listPage
	if err := cur.All(ctx, &pages); err != nil {
		return nil, 0, fmt.Errorf("decode clients page: %w", err)
	}
	if len(pages) == 0 {
		return nil, 0, nil
	}

	page := pages[0]
	var total int64
	if len(page.Total) > 0 {
		total = page.Total[0].Count
	}

	items := make([]ports.ClientWithUser, 0, len(page.Items))
	for _, item := range page.Items {
		cw := ports.ClientWithUser{Client: item.clientDoc.toDomain()}
		if item.User != nil {
			u := item.User.toDomain()
			cw.User = &u
		}
		items = append(items, cw)
	}
	return items, total, nil
}

func substringRegex(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

// Update sets the client-scoped fields and returns the updated record.
func (r *ClientRepository) Update(ctx context.Context, id string, surnom, adresse, telephone string) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrClientNotFound
	}

	update := bson.M{"$set": bson.M{
		"surnom":     surnom,
		"adresse":    adresse,
		"telephone":  telephone,
		"updated_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var cdoc clientDoc
	if err := r.clients.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&cdoc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrPhoneTaken
		}
		return nil, fmt.Errorf("update client: %w", err)
	}

	c := cdoc.toDomain()
	return &c, nil
}

// Delete removes a client and its linked user, if any.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrClientNotFound
	}

	res, err := r.clients.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrClientNotFound
	}

	// The account is useless without its client, and leaving it behind would
	// pin the email in the unique index forever.
	if _, err := r.users.DeleteMany(ctx, bson.M{"client_id": oid}); err != nil {
		return fmt.Errorf("delete linked user: %w", err)
	}
	return nil
}

// FindUserByClientID returns the user account linked to a client.
func (r *ClientRepository) FindUserByClientID(ctx context.Context, clientID string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(clientID)
	if err != nil {
		return nil, domain.ErrClientNotFound
	}

	var udoc userDoc
	if err := r.users.FindOne(ctx, bson.M{"client_id": oid}).Decode(&udoc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by client: %w", err)
	}

	u := udoc.toDomain()
	return &u, nil
}

// ListDettes returns the debts owned by a client, most recent first.
func (r *ClientRepository) ListDettes(ctx context.Context, clientID string) ([]domain.Dette, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(clientID)
	if err != nil {
		return nil, domain.ErrClientNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := r.dettes.Find(ctx, bson.M{"client_id": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("list dettes: %w", err)
	}
	defer cur.Close(ctx)

	type detteDoc struct {
		ID             primitive.ObjectID `bson:"_id,omitempty"`
		ClientID       primitive.ObjectID `bson:"client_id"`
		Montant        float64            `bson:"montant"`
		MontantDu      float64            `bson:"montant_du"`
		MontantRestant float64            `bson:"montant_restant"`
		Date           time.Time          `bson:"date"`
	}

	var docs []detteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode dettes: %w", err)
	}

	dettes := make([]domain.Dette, 0, len(docs))
	for _, d := range docs {
		dettes = append(dettes, domain.Dette{
			ID:             d.ID.Hex(),
			ClientID:       d.ClientID.Hex(),
			Montant:        d.Montant,
			MontantDu:      d.MontantDu,
			MontantRestant: d.MontantRestant,
			Date:           d.Date,
		})
	}
	return dettes, nil
}

// SetUserImageURL persists the uploaded image URL on an existing user row.
func (r *ClientRepository) SetUserImageURL(ctx context.Context, userID, url string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	update := bson.M{"$set": bson.M{"image_url": url, "updated_at": time.Now().UTC()}}
	res, err := r.users.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("set image url: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes the repository relies on. The unique
// index on users.email backs the email invariant; the one on
// clients.telephone enforces the phone-as-identifier policy.
func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.clients.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "telephone", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("client indexes: %w", err)
	}

	_, err = r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	_, err = r.dettes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("dette indexes: %w", err)
	}
	return nil
}
