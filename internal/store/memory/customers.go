package memory

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"strings"
)

func (s *Store) FindOrCreateByEmail(ctx context.Context, email, fullName, phone string) (int64, error) {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Role == rental.RoleCustomer && strings.EqualFold(u.Email, email) {
			return u.ID, nil
		}
	}
	c := rental.Customer{
		ID:       s.nextID(),
		Username: rental.CustomerHandle(fullName),
		Email:    email,
		FullName: fullName,
		Phone:    phone,
		Role:     rental.RoleCustomer,
	}
	s.users[c.ID] = user{Customer: c}
	return c.ID, nil
}

// Customer returns a stored customer; used by tests and the admin views.
func (s *Store) Customer(ctx context.Context, id int64) (rental.Customer, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	u, ok := s.users[id]
	if !ok {
		return rental.Customer{}, notFound("customer", id)
	}
	return u.Customer, nil
}

// AddAdmin seeds an admin account with an already hashed password.
func (s *Store) AddAdmin(ctx context.Context, username, fullName, passwordHash string) (int64, error) {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	for _, u := range s.users {
		if u.Username == username {
			return 0, violation("username %q already taken", username)
		}
	}
	id := s.nextID()
	s.users[id] = user{
		Customer:     rental.Customer{ID: id, Username: username, FullName: fullName, Role: rental.RoleAdmin},
		PasswordHash: passwordHash,
	}
	return id, nil
}

func (s *Store) FindAdmin(ctx context.Context, username string) (rental.Admin, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	for _, u := range s.users {
		if u.Role == rental.RoleAdmin && u.Username == username {
			return rental.Admin{ID: u.ID, Username: u.Username, FullName: u.FullName, PasswordHash: u.PasswordHash}, nil
		}
	}
	return rental.Admin{}, fmt.Errorf("%w: admin %q", rental.ErrNotFound, username)
}
