package repository

import (
	"database/sql"
	"errors"
	"time"

	"messenger-backend/internal/model"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) CreateUser(username, phoneNumber, passwordHash string) (*model.User, error) {
	var user model.User
	query := `
		INSERT INTO users (username, phone_number, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, phone_number, password_hash, created_at, last_login`

	err := r.DB.QueryRow(query, username, phoneNumber, passwordHash).Scan(
		&user.ID,
		&user.Username,
		&user.PhoneNumber,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.LastLogin,
	)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) GetUserByUsername(username string) (*model.User, error) {
	var user model.User
	query := `
		SELECT id, username, phone_number, password_hash, created_at, last_login
		FROM users
		WHERE username = $1`

	err := r.DB.QueryRow(query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PhoneNumber,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.LastLogin,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) GetUserByPhoneNumber(phoneNumber string) (*model.User, error) {
	var user model.User
	query := `
		SELECT id, username, phone_number, password_hash, created_at, last_login
		FROM users
		WHERE phone_number = $1`

	err := r.DB.QueryRow(query, phoneNumber).Scan(
		&user.ID,
		&user.Username,
		&user.PhoneNumber,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.LastLogin,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) UpdateLastLogin(userID int64) error {
	query := `UPDATE users SET last_login = $1 WHERE id = $2`
	_, err := r.DB.Exec(query, time.Now(), userID)
	return err
}
