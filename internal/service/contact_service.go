package service

import "messenger-backend/internal/model"

type ContactStore interface {
	CreateContact(contact *model.Contact) (*model.Contact, error)
	GetContactsByUserID(userID int64) ([]*model.Contact, error)
	GetContactByID(id, userID int64) (*model.Contact, error)
	ExistsByPhoneNumber(userID int64, phoneNumber string) (bool, error)
	UpdateContact(contact *model.Contact) (bool, error)
	DeleteContact(id, userID int64) (bool, error)
}

type ContactService struct {
	Contacts ContactStore
}

func NewContactService(contacts ContactStore) *ContactService {
	return &ContactService{Contacts: contacts}
}

func (s *ContactService) CreateContact(userID int64, name, phoneNumber string) (*model.Contact, error) {
	if name == "" {
		return nil, validationErrorf("contact name is required")
	}
	phone := NormalizeAddress(phoneNumber)
	if phone == "" {
		return nil, validationErrorf("phone number is required")
	}

	exists, err := s.Contacts.ExistsByPhoneNumber(userID, phone)
	if err != nil {
		return nil, storageError(err)
	}
	if exists {
		return nil, validationErrorf("contact with this phone number already exists")
	}

	contact, err := s.Contacts.CreateContact(&model.Contact{
		UserID:      userID,
		Name:        name,
		PhoneNumber: phone,
	})
	if err != nil {
		return nil, storageError(err)
	}
	return contact, nil
}

func (s *ContactService) ListContacts(userID int64) ([]*model.Contact, error) {
	contacts, err := s.Contacts.GetContactsByUserID(userID)
	if err != nil {
		return nil, storageError(err)
	}
	if contacts == nil {
		contacts = []*model.Contact{}
	}
	return contacts, nil
}

func (s *ContactService) GetContact(userID, contactID int64) (*model.Contact, error) {
	contact, err := s.Contacts.GetContactByID(contactID, userID)
	if err != nil {
		return nil, storageError(err)
	}
	if contact == nil {
		return nil, ErrNotFound
	}
	return contact, nil
}

func (s *ContactService) UpdateContact(userID, contactID int64, name, phoneNumber string) (*model.Contact, error) {
	if name == "" {
		return nil, validationErrorf("contact name is required")
	}
	phone := NormalizeAddress(phoneNumber)
	if phone == "" {
		return nil, validationErrorf("phone number is required")
	}

	contact := &model.Contact{
		ID:          contactID,
		UserID:      userID,
		Name:        name,
		PhoneNumber: phone,
	}
	updated, err := s.Contacts.UpdateContact(contact)
	if err != nil {
		return nil, storageError(err)
	}
	if !updated {
		return nil, ErrNotFound
	}
	return contact, nil
}

func (s *ContactService) DeleteContact(userID, contactID int64) error {
	deleted, err := s.Contacts.DeleteContact(contactID, userID)
	if err != nil {
		return storageError(err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
