package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"backend-racehub/internal/shared"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Service authenticates against the credentials file and persists
// registrations and profile changes back to it.
type Service struct {
	path             string
	preauthorization bool
	validate         *validator.Validate
	now              func() time.Time

	mu   sync.RWMutex
	file *CredentialsFile
}

type Claims struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// Session is what a successful login hands back: the signed cookie value
// and when it stops being accepted.
type Session struct {
	Profile
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewService serves file and writes changes to path. With preauthorization
// set, only emails listed under preauthorized may register.
func NewService(path string, file *CredentialsFile, preauthorization bool) *Service {
	if file.Credentials.Usernames == nil {
		file.Credentials.Usernames = map[string]User{}
	}
	return &Service{
		path:             path,
		preauthorization: preauthorization,
		validate:         validator.New(),
		now:              time.Now,
		file:             file,
	}
}

func (s *Service) CookieName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file.Cookie.Name
}

func (s *Service) cookieTTL() time.Duration {
	return time.Duration(s.file.Cookie.ExpiryDays * float64(24*time.Hour))
}

func (s *Service) Login(req LoginRequest) (Session, error) {
	username := normalizeUsername(req.Username)
	if username == "" {
		return Session{}, shared.ErrInvalidCredentials
	}

	s.mu.RLock()
	user, ok := s.file.Credentials.Usernames[username]
	key := []byte(s.file.Cookie.Key)
	ttl := s.cookieTTL()
	s.mu.RUnlock()

	if !ok {
		return Session{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return Session{}, shared.ErrInvalidCredentials
	}

	expiresAt := s.now().Add(ttl)
	claims := Claims{
		Username: username,
		Name:     user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return Session{}, err
	}
	return Session{Profile: profile(username, user), Token: token, ExpiresAt: expiresAt}, nil
}

// Verify checks a session token and returns the username it was issued
// for. Tokens for users removed from the file are rejected.
func (s *Service) Verify(token string) (string, error) {
	s.mu.RLock()
	key := []byte(s.file.Cookie.Key)
	s.mu.RUnlock()

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", shared.ErrNotAuthenticated
	}
	if _, err := s.Profile(claims.Username); err != nil {
		return "", shared.ErrNotAuthenticated
	}
	return claims.Username, nil
}

func (s *Service) Profile(username string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.file.Credentials.Usernames[username]
	if !ok {
		return Profile{}, shared.ErrUserNotFound
	}
	return profile(username, user), nil
}

func (s *Service) Register(req RegisterRequest) (Profile, error) {
	if err := s.validate.Struct(req); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	username := normalizeUsername(req.Username)
	if username == "" {
		return Profile{}, fmt.Errorf("%w: username is blank", shared.ErrInvalidInput)
	}
	if req.Password != req.RepeatPassword {
		return Profile{}, shared.ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.file.Credentials.Usernames[username]; exists {
		return Profile{}, shared.ErrUserExists
	}
	emails := s.file.Preauthorized.Emails
	idx := slices.Index(emails, req.Email)
	if s.preauthorization && idx < 0 {
		return Profile{}, shared.ErrNotPreauthorized
	}

	user := User{Email: req.Email, Name: req.Name, Password: string(hash)}
	s.file.Credentials.Usernames[username] = user
	if s.preauthorization {
		s.file.Preauthorized.Emails = slices.Delete(slices.Clone(emails), idx, idx+1)
	}

	if err := s.file.Save(s.path); err != nil {
		delete(s.file.Credentials.Usernames, username)
		s.file.Preauthorized.Emails = emails
		return Profile{}, err
	}
	return profile(username, user), nil
}

// UpdateDetails changes name and/or email. Empty fields are left as they
// are; a request that changes nothing is rejected.
func (s *Service) UpdateDetails(username string, req UpdateDetailsRequest) (Profile, error) {
	if err := s.validate.Struct(req); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.file.Credentials.Usernames[username]
	if !ok {
		return Profile{}, shared.ErrUserNotFound
	}
	updated := old
	if req.Name != "" {
		updated.Name = req.Name
	}
	if req.Email != "" {
		updated.Email = req.Email
	}
	if updated == old {
		return Profile{}, shared.ErrNothingToUpdate
	}

	s.file.Credentials.Usernames[username] = updated
	if err := s.file.Save(s.path); err != nil {
		s.file.Credentials.Usernames[username] = old
		return Profile{}, err
	}
	return profile(username, updated), nil
}

// HashPasswords bcrypt-hashes each password, for seeding the credentials
// file by hand.
func HashPasswords(passwords []string) ([]string, error) {
	hashes := make([]string, 0, len(passwords))
	for _, p := range passwords {
		if p == "" {
			return nil, errors.New("empty password")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, string(hash))
	}
	return hashes, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func profile(username string, u User) Profile {
	return Profile{Username: username, Name: u.Name, Email: u.Email}
}
