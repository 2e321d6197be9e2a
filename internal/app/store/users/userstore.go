package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/kinnected/kinnected/internal/app/system/normalize"
	"github.com/kinnected/kinnected/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for new password hashes.
const PasswordCost = 12

var (
	ErrNotFound         = errors.New("user not found")
	ErrDuplicateEmail   = errors.New("a user with this email already exists")
	ErrDuplicateWallet  = errors.New("a user with this wallet address already exists")
	ErrNameRequired     = errors.New("name is required")
	ErrBadSettings      = errors.New("settings contain an unknown theme or profile visibility")
	ErrMilestoneTitle   = errors.New("milestone title is required")
	ErrMilestoneMissing = errors.New("milestone not found")
	ErrWrongPassword    = errors.New("password does not match")
	ErrBadAuthMethod    = errors.New(`auth_method must be "password", "wallet" or "google"`)
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// NewUser is the input to Create. Email and WalletAddress are both optional.
type NewUser struct {
	Email         string
	WalletAddress string
	Password      string
	AuthMethod    string
	Name          string
	Gender        string
	ProfileImage  string
}

// Create inserts a new user after normalizing fields. A non-empty Password
// is stored as a bcrypt hash.
func (s *Store) Create(ctx context.Context, in NewUser) (models.User, error) {
	now := time.Now().UTC()
	u := models.User{
		ID:            primitive.NewObjectID(),
		Email:         normalize.OptString(normalize.Email(in.Email)),
		WalletAddress: normalize.OptString(normalize.Wallet(in.WalletAddress)),
		AuthMethod:    strings.ToLower(strings.TrimSpace(in.AuthMethod)),
		Name:          normalize.Name(in.Name),
		Gender:        normalize.Gender(in.Gender),
		ProfileImage:  strings.TrimSpace(in.ProfileImage),
		Settings:      models.DefaultUserSettings(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if u.Name == "" {
		return models.User{}, ErrNameRequired
	}
	u.NameCI = text.Fold(u.Name)

	if u.AuthMethod == "" {
		switch {
		case in.Password != "":
			u.AuthMethod = models.AuthPassword
		case u.WalletAddress != nil:
			u.AuthMethod = models.AuthWallet
		}
	}
	if u.AuthMethod != "" && !models.IsValidAuthMethod(u.AuthMethod) {
		return models.User{}, ErrBadAuthMethod
	}

	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return models.User{}, err
		}
		u.PasswordHash = hash
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, dupError(err)
		}
		return models.User{}, err
	}
	return u, nil
}

// dupError picks the sentinel matching the unique index that was violated.
func dupError(err error) error {
	if strings.Contains(err.Error(), "wallet_address") {
		return ErrDuplicateWallet
	}
	return ErrDuplicateEmail
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks password against the stored hash.
func VerifyPassword(u models.User, password string) error {
	if u.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

// GetByWallet looks up a user by exact wallet address.
func (s *Store) GetByWallet(ctx context.Context, address string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"wallet_address": normalize.Wallet(address)})
}
