package auth

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"strconv"
	"strings"
	"time"
)

var ErrUnauthorized = errors.New("unauthorized")

// Admin is the authenticated principal attached to an admin request.
type Admin struct {
	ID       int64
	Username string
}

type claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Guard issues and validates admin bearer tokens.
type Guard struct {
	Secret []byte
	TTL    time.Duration
	Admins rental.AdminStore
	Now    func() time.Time
}

func (g *Guard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Login checks username/password against the admin's bcrypt hash.
func (g *Guard) Login(ctx context.Context, username, password string) (string, Admin, error) {
	a, err := g.Admins.FindAdmin(ctx, username)
	if errors.Is(err, rental.ErrNotFound) {
		return "", Admin{}, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	}
	if err != nil {
		return "", Admin{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return "", Admin{}, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	}
	admin := Admin{ID: a.ID, Username: a.Username}
	tok, err := g.Issue(admin)
	return tok, admin, err
}

func (g *Guard) Issue(a Admin) (string, error) {
	now := g.now()
	c := claims{
		Username: a.Username,
		Role:     rental.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(a.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(g.Secret)
}

// Parse validates an "Authorization: Bearer <token>" header value.
func (g *Guard) Parse(header string) (Admin, error) {
	tokenStr := strings.TrimSpace(header)
	if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
		tokenStr = strings.TrimSpace(tokenStr[7:])
	}
	if tokenStr == "" {
		return Admin{}, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}

	var c claims
	_, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (any, error) {
		return g.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(g.now))
	if err != nil {
		return Admin{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if c.Role != rental.RoleAdmin {
		return Admin{}, fmt.Errorf("%w: not an admin token", ErrUnauthorized)
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return Admin{}, fmt.Errorf("%w: bad subject", ErrUnauthorized)
	}
	return Admin{ID: id, Username: c.Username}, nil
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

type adminKey struct{}

func WithAdmin(ctx context.Context, a Admin) context.Context {
	return context.WithValue(ctx, adminKey{}, a)
}

func AdminFrom(ctx context.Context) (Admin, bool) {
	a, ok := ctx.Value(adminKey{}).(Admin)
	return a, ok
}
