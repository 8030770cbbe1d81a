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

	"github.com/stackdesk/iam-service/internal/core/domain"
	"github.com/stackdesk/iam-service/internal/core/ports"
)

const collectionUsers = "users"

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	FirstName    string             `bson:"first_name"`
	LastName     string             `bson:"last_name"`
	RoleID       primitive.ObjectID `bson:"role"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (m mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID.Hex(),
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		RoleID:       m.RoleID.Hex(),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// mongoUserJoined is the shape produced by the $lookup pipelines: the user
// fields plus the resolved role document, never the password hash.
type mongoUserJoined struct {
	ID        primitive.ObjectID `bson:"_id"`
	Email     string             `bson:"email"`
	FirstName string             `bson:"first_name"`
	LastName  string             `bson:"last_name"`
	Role      mongoRole          `bson:"role"`
}

func (m mongoUserJoined) toPort() ports.UserWithRole {
	return ports.UserWithRole{
		ID:        m.ID.Hex(),
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Role:      *m.Role.toDomain(),
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var mu mongoUser
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindWithRole(ctx context.Context, id string) (*ports.UserWithRole, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	pipeline := append(mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"_id": oid}}},
	}, joinRolePipeline()...)

	rows, err := r.aggregateJoined(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("find user with role: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrUserNotFound
	}
	out := rows[0]
	return &out, nil
}

func (r *UserRepository) Search(ctx context.Context, term string) ([]ports.UserWithRole, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	nameRegex := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	pipeline := append(mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"first_name": nameRegex},
			bson.M{"last_name": nameRegex},
		}}}},
	}, joinRolePipeline()...)

	rows, err := r.aggregateJoined(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return rows, nil
}

// joinRolePipeline resolves the user's role reference. The unwind drops users
// whose role no longer exists, which is the desired inner-join effect.
func joinRolePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         collectionRoles,
			"localField":   "role",
			"foreignField": "_id",
			"as":           "role_doc",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$role_doc",
			"preserveNullAndEmptyArrays": false,
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":        1,
			"email":      1,
			"first_name": 1,
			"last_name":  1,
			"role": bson.M{
				"_id":            "$role_doc._id",
				"role_name":      "$role_doc.role_name",
				"access_modules": "$role_doc.access_modules",
				"active":         "$role_doc.active",
				"is_default":     "$role_doc.is_default",
			},
		}}},
	}
}

func (r *UserRepository) aggregateJoined(ctx context.Context, pipeline mongo.Pipeline) ([]ports.UserWithRole, error) {
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []mongoUserJoined
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	rows := make([]ports.UserWithRole, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, d.toPort())
	}
	return rows, nil
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	roleOID, err := primitive.ObjectIDFromHex(user.RoleID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	doc := mongoUser{
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		RoleID:       roleOID,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch ports.UserPatch) (*ports.UserWithRole, error) {
	updateCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	set, err := patchToSet(patch)
	if err != nil {
		return nil, err
	}

	res, err := r.col.UpdateOne(updateCtx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}

	return r.FindWithRole(ctx, id)
}

func (r *UserRepository) UpdateMany(ctx context.Context, ids []string, patch ports.UserPatch) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return 0, domain.ErrInvalidID
		}
		oids = append(oids, oid)
	}

	set, err := patchToSet(patch)
	if err != nil {
		return 0, err
	}

	res, err := r.col.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": oids}}, bson.M{"$set": set})
	if err != nil {
		return 0, fmt.Errorf("update many users: %w", err)
	}
	return res.MatchedCount, nil
}

// BulkUpdate writes per-row patches in one batch. Rows are independent and
// the batch is not atomic across them: a mid-batch failure leaves earlier
// rows written.
func (r *UserRepository) BulkUpdate(ctx context.Context, updates []ports.BulkUserPatch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		oid, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return domain.ErrInvalidID
		}
		set, err := patchToSet(u.Patch)
		if err != nil {
			return err
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": oid}).
			SetUpdate(bson.M{"$set": set}))
	}

	if _, err := r.col.BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("bulk update users: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) CountByRole(ctx context.Context, roleID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(roleID)
	if err != nil {
		return 0, domain.ErrInvalidID
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"role": oid})
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the indexes the user collection relies on; the unique
// email index backs write-time uniqueness enforcement.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func patchToSet(patch ports.UserPatch) (bson.M, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.PasswordHash != nil {
		set["password_hash"] = *patch.PasswordHash
	}
	if patch.FirstName != nil {
		set["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["last_name"] = *patch.LastName
	}
	if patch.RoleID != nil {
		oid, err := primitive.ObjectIDFromHex(*patch.RoleID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		set["role"] = oid
	}
	return set, nil
}
