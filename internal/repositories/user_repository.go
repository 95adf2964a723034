package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"storechat/internal/models"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrBadCredentials = errors.New("invalid email or password")
	ErrEmailTaken     = errors.New("email already registered")
)

// UserRepository abstracts account persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, email, name, image, password string) (models.User, error)
	GetUser(ctx context.Context, userID int) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser registers an account with a bcrypt-hashed password.
func (r *UserRepo) CreateUser(ctx context.Context, email, name, image, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO users (email, name, image, password_hash) VALUES ($1, $2, $3, $4)
         ON CONFLICT (email) DO NOTHING
         RETURNING id, email, name, image`, email, name, image, string(hash)).
		Scan(&user.ID, &user.Email, &user.Name, &user.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrEmailTaken
	}
	return user, err
}

// GetUser fetches an account by id.
func (r *UserRepo) GetUser(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, email, name, image FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// Authenticate checks the password and returns the account.
func (r *UserRepo) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var row struct {
		models.User
		PasswordHash string `db:"password_hash"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT id, email, name, image, password_hash FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrBadCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrBadCredentials
	}
	return row.User, nil
}
