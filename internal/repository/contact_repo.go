package repository

import (
	"database/sql"
	"errors"

	"messenger-backend/internal/model"
)

type ContactRepository struct {
	DB *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{DB: db}
}

func (r *ContactRepository) CreateContact(contact *model.Contact) (*model.Contact, error) {
	query := `
		INSERT INTO contacts (user_id, name, phone_number)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.DB.QueryRow(query, contact.UserID, contact.Name, contact.PhoneNumber).
		Scan(&contact.ID, &contact.CreatedAt)
	if err != nil {
		return nil, err
	}

	return contact, nil
}

func (r *ContactRepository) GetContactsByUserID(userID int64) ([]*model.Contact, error) {
	query := `
		SELECT id, user_id, name, phone_number, created_at
		FROM contacts
		WHERE user_id = $1
		ORDER BY name ASC`

	rows, err := r.DB.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.PhoneNumber, &c.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, &c)
	}

	return contacts, rows.Err()
}

func (r *ContactRepository) GetContactByID(id, userID int64) (*model.Contact, error) {
	var c model.Contact
	query := `
		SELECT id, user_id, name, phone_number, created_at
		FROM contacts
		WHERE id = $1 AND user_id = $2`

	err := r.DB.QueryRow(query, id, userID).Scan(&c.ID, &c.UserID, &c.Name, &c.PhoneNumber, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &c, nil
}

func (r *ContactRepository) ExistsByPhoneNumber(userID int64, phoneNumber string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM contacts WHERE user_id = $1 AND phone_number = $2)`
	err := r.DB.QueryRow(query, userID, phoneNumber).Scan(&exists)
	return exists, err
}

// FindFirstOwnerByPhoneNumber returns the oldest contact entry across all
// users for a phone number. Insertion order decides the winner when several
// users saved the same counterparty: first registered owner wins.
func (r *ContactRepository) FindFirstOwnerByPhoneNumber(phoneNumber string) (*model.Contact, error) {
	var c model.Contact
	query := `
		SELECT id, user_id, name, phone_number, created_at
		FROM contacts
		WHERE phone_number = $1
		ORDER BY id ASC
		LIMIT 1`

	err := r.DB.QueryRow(query, phoneNumber).Scan(&c.ID, &c.UserID, &c.Name, &c.PhoneNumber, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &c, nil
}

func (r *ContactRepository) UpdateContact(contact *model.Contact) (bool, error) {
	query := `
		UPDATE contacts
		SET name = $1, phone_number = $2
		WHERE id = $3 AND user_id = $4`

	res, err := r.DB.Exec(query, contact.Name, contact.PhoneNumber, contact.ID, contact.UserID)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (r *ContactRepository) DeleteContact(id, userID int64) (bool, error) {
	res, err := r.DB.Exec(`DELETE FROM contacts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}
