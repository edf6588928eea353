package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/audiobox/internal/models"
	"github.com/desertthunder/audiobox/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt ignores anything longer
	defaultSessionTTL = 7 * 24 * time.Hour
)

// UserStore persists accounts.
type UserStore interface {
	Create(user *models.User) error
	Get(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

// FavoriteStore persists the track ids each user has saved.
type FavoriteStore interface {
	Add(userID, trackID string) error
	Remove(userID, trackID string) error
	List(userID string) ([]string, error)
}

// SessionClaims are the JWT claims issued on signup and login.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AccountService handles signup, login and session verification.
type AccountService struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	clock  func() time.Time
}

// NewAccountService creates an [AccountService] signing sessions with secret.
func NewAccountService(users UserStore, secret string, ttl time.Duration) (*AccountService, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: jwt secret is required", shared.ErrInvalidConfig)
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AccountService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		clock:  time.Now,
	}, nil
}

// SetHashCost overrides the bcrypt cost. Values outside bcrypt's range are ignored.
func (s *AccountService) SetHashCost(cost int) {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		s.cost = cost
	}
}

// SetClock replaces the time source used for token issue and expiry checks.
func (s *AccountService) SetClock(clock func() time.Time) { s.clock = clock }

// Signup creates an account and returns a session token for it.
func (s *AccountService) Signup(name, email, password string) (string, *models.User, error) {
	name = strings.TrimSpace(name)
	email = shared.NormalizeEmail(email)

	if name == "" || email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: name, email and password are required", shared.ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return "", nil, fmt.Errorf("%w: email is not valid", shared.ErrInvalidInput)
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return "", nil, fmt.Errorf("%w: password must be %d to %d characters", shared.ErrInvalidInput, minPasswordLength, maxPasswordLength)
	}

	if _, err := s.users.GetByEmail(email); err == nil {
		return "", nil, shared.ErrUserExists
	} else if !errors.Is(err, shared.ErrUserNotFound) {
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(0, email, name, string(hash))
	if err := s.users.Create(user); err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login checks the password for email and returns a new session token.
//
// Unknown emails and wrong passwords both fail with [shared.ErrInvalidCredentials].
func (s *AccountService) Login(email, password string) (string, *models.User, error) {
	email = shared.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", shared.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(email)
	if errors.Is(err, shared.ErrUserNotFound) {
		return "", nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(password)); err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs an HS256 session token for user.
func (s *AccountService) IssueToken(user *models.User) (string, error) {
	now := s.clock()
	claims := SessionClaims{
		Email: user.Email(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a session token and returns its claims.
func (s *AccountService) Verify(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, shared.ErrInvalidToken
	}
	return claims, nil
}

// User loads the account a session belongs to.
func (s *AccountService) User(id string) (*models.User, error) {
	return s.users.Get(id)
}

// Library manages per-user preferences and favorites.
type Library struct {
	users     UserStore
	favorites FavoriteStore
}

// NewLibrary creates a [Library].
func NewLibrary(users UserStore, favorites FavoriteStore) *Library {
	return &Library{users: users, favorites: favorites}
}

// SetTheme stores the theme preference for userID.
func (l *Library) SetTheme(userID, theme string) (models.Theme, error) {
	t, err := models.ParseTheme(theme)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	user, err := l.users.Get(userID)
	if err != nil {
		return "", err
	}
	user.SetTheme(t)
	if err := l.users.Update(user); err != nil {
		return "", err
	}
	return t, nil
}

// Favorites lists the saved track ids of userID, oldest first.
func (l *Library) Favorites(userID string) ([]string, error) {
	return l.favorites.List(userID)
}

// AddFavorite saves trackID for userID and returns the updated list. Adding twice is a no-op.
func (l *Library) AddFavorite(userID, trackID string) ([]string, error) {
	trackID = strings.TrimSpace(trackID)
	if trackID == "" {
		return nil, fmt.Errorf("%w: trackId is required", shared.ErrInvalidInput)
	}
	if err := l.favorites.Add(userID, trackID); err != nil {
		return nil, err
	}
	return l.favorites.List(userID)
}

// RemoveFavorite drops trackID for userID and returns the updated list.
func (l *Library) RemoveFavorite(userID, trackID string) ([]string, error) {
	if trackID == "" {
		return nil, fmt.Errorf("%w: trackId is required", shared.ErrInvalidInput)
	}
	if err := l.favorites.Remove(userID, trackID); err != nil {
		return nil, err
	}
	return l.favorites.List(userID)
}
