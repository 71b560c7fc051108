package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger-backend/internal/model"
)

type fakeContactStore struct {
	nextID   int64
	contacts []*model.Contact
}

func (f *fakeContactStore) CreateContact(contact *model.Contact) (*model.Contact, error) {
	f.nextID++
	contact.ID = f.nextID
	f.contacts = append(f.contacts, contact)
	return contact, nil
}

func (f *fakeContactStore) GetContactsByUserID(userID int64) ([]*model.Contact, error) {
	var out []*model.Contact
	for _, c := range f.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContactStore) GetContactByID(id, userID int64) (*model.Contact, error) {
	for _, c := range f.contacts {
		if c.ID == id && c.UserID == userID {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeContactStore) ExistsByPhoneNumber(userID int64, phoneNumber string) (bool, error) {
	for _, c := range f.contacts {
		if c.UserID == userID && c.PhoneNumber == phoneNumber {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeContactStore) UpdateContact(contact *model.Contact) (bool, error) {
	for i, c := range f.contacts {
		if c.ID == contact.ID && c.UserID == contact.UserID {
			f.contacts[i] = contact
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeContactStore) DeleteContact(id, userID int64) (bool, error) {
	for i, c := range f.contacts {
		if c.ID == id && c.UserID == userID {
			f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func TestCreateContactNormalizesPhone(t *testing.T) {
	svc := NewContactService(&fakeContactStore{})

	contact, err := svc.CreateContact(1, "Ana", "whatsapp:+1 (555) 010-0001")
	require.NoError(t, err)
	assert.Equal(t, "+15550100001", contact.PhoneNumber)
}

func TestCreateContactRejectsDuplicateNumber(t *testing.T) {
	svc := NewContactService(&fakeContactStore{})

	_, err := svc.CreateContact(1, "Ana", "+15550100001")
	require.NoError(t, err)

	// Same number with different formatting collides after normalization.
	_, err = svc.CreateContact(1, "Ana again", "+1 555-010-0001")
	assert.ErrorIs(t, err, ErrValidation)

	// A different user may save the same number.
	_, err = svc.CreateContact(2, "Ana", "+15550100001")
	assert.NoError(t, err)
}

func TestContactOwnershipBoundary(t *testing.T) {
	store := &fakeContactStore{}
	svc := NewContactService(store)

	contact, err := svc.CreateContact(1, "Ana", "+15550100001")
	require.NoError(t, err)

	_, err = svc.GetContact(2, contact.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateContact(2, contact.ID, "Hijacked", "+15550109999")
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.DeleteContact(2, contact.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The owner still sees the untouched contact.
	got, err := svc.GetContact(1, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
}

func TestUpdateAndDeleteContact(t *testing.T) {
	store := &fakeContactStore{}
	svc := NewContactService(store)

	contact, err := svc.CreateContact(1, "Ana", "+15550100001")
	require.NoError(t, err)

	updated, err := svc.UpdateContact(1, contact.ID, "Ana B", "+15550100002")
	require.NoError(t, err)
	assert.Equal(t, "Ana B", updated.Name)
	assert.Equal(t, "+15550100002", updated.PhoneNumber)

	require.NoError(t, svc.DeleteContact(1, contact.ID))

	contacts, err := svc.ListContacts(1)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}
