package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-floor/models"
	"github.com/yeremiapane/restaurant-floor/utils"
)

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

type CustomerDetails struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (d CustomerDetails) normalized() CustomerDetails {
	return CustomerDetails{
		Name:  strings.TrimSpace(d.Name),
		Phone: strings.TrimSpace(d.Phone),
		Email: strings.ToLower(strings.TrimSpace(d.Email)),
	}
}

func (d CustomerDetails) validate() error {
	if d.Name == "" {
		return validation("customer", "customer name is required")
	}
	if d.Phone == "" && d.Email == "" {
		return validation("customer", "customer phone or email is required")
	}
	return nil
}

// FindOrCreate matches a customer by email first, then by phone. A repeat
// customer only gets their name corrected; contact fields never change.
// It runs on whatever handle it is given so callers can pass a transaction.
func (s *CustomerService) FindOrCreate(tx *gorm.DB, details CustomerDetails) (*models.Customer, error) {
	d := details.normalized()
	if err := d.validate(); err != nil {
		return nil, err
	}

	customer, err := s.match(tx, d.Email, d.Phone)
	if err != nil {
		return nil, err
	}

	if customer != nil {
		if customer.Name != d.Name {
			if err := tx.Model(customer).Update("name", d.Name).Error; err != nil {
				return nil, err
			}
			customer.Name = d.Name
		}
		return customer, nil
	}

	customer = &models.Customer{Name: d.Name}
	if d.Phone != "" {
		customer.Phone = &d.Phone
	}
	if d.Email != "" {
		customer.Email = &d.Email
	}
	if err := tx.Create(customer).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, newError(KindConflict, "customer", 0, "customer contact already registered")
		}
		return nil, err
	}
	utils.InfoLogger.WithField("customer_id", customer.ID).Info("customer created")
	return customer, nil
}

// Lookup is the read-only side of the directory.
func (s *CustomerService) Lookup(ctx context.Context, phone, email string) (*models.Customer, error) {
	phone = strings.TrimSpace(phone)
	email = strings.ToLower(strings.TrimSpace(email))
	if phone == "" && email == "" {
		return nil, validation("customer", "phone or email is required")
	}
	customer, err := s.match(s.db.WithContext(ctx), email, phone)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, newError(KindNotFound, "customer", 0, "customer not found")
	}
	return customer, nil
}

func (s *CustomerService) match(tx *gorm.DB, email, phone string) (*models.Customer, error) {
	if email != "" {
		var c models.Customer
		err := tx.Where("email = ?", email).First(&c).Error
		if err == nil {
			return &c, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if phone != "" {
		var c models.Customer
		err := tx.Where("phone = ?", phone).First(&c).Error
		if err == nil {
			return &c, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}
