package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rapPayne/online-store-server/internal/domain"
	"github.com/rapPayne/online-store-server/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing.
	BcryptCost = 10

	// AccessTokenExpiration bounds how long an issued token is honored.
	AccessTokenExpiration = 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Claims are the JWT claims carried by an access token: the opaque caller
// identity the core receives on every request.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	Username      string
	Email         string
	Password      string
	First         string
	Last          string
	StreetAddress string
}

// UserService implements registration, login, and account CRUD over the
// users collection. Passwords are stored only as bcrypt hashes.
type UserService struct {
	users     store.Collection[domain.User]
	jwtSecret string
	logger    *zap.Logger
}

// NewUserService creates a user service over the given store.
func NewUserService(s store.DocumentStore, jwtSecret string, logger *zap.Logger) *UserService {
	return &UserService{users: store.Users(s), jwtSecret: jwtSecret, logger: logger}
}

// Register creates a new account with a hashed password and the default
// user role. Username and email must both be unused.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	_, found, err := s.users.Find(ctx, func(u domain.User) bool {
		return u.Username == input.Username || u.Email == input.Email
	})
	if err != nil {
		return nil, err
	}
	if found {
		return nil, domain.ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), BcryptCost)
	if err != nil {
		return nil, err
	}

	user := domain.User{
		Username:      input.Username,
		Email:         input.Email,
		Password:      string(hash),
		First:         input.First,
		Last:          input.Last,
		StreetAddress: input.StreetAddress,
		Role:          domain.RoleUser,
	}
	if err := s.users.Add(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("username", user.Username))
	return &user, nil
}

// Login verifies the credentials and returns a signed access token plus the
// account. Unknown users and wrong passwords are indistinguishable.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, found, err := s.users.Find(ctx, func(u domain.User) bool { return u.Username == username })
	if err != nil {
		return "", nil, err
	}
	if !found {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(&user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("user logged in", zap.String("username", user.Username))
	return token, &user, nil
}

// ValidateToken parses a signed access token and returns its claims.
func (s *UserService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// Get returns the account with the given username.
func (s *UserService) Get(ctx context.Context, username string) (*domain.User, error) {
	user, found, err := s.users.Find(ctx, func(u domain.User) bool { return u.Username == username })
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}

// List returns every account in insertion order.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.Get(ctx)
}

// Update applies a field patch to the account. The username is immutable, a
// patched password is re-hashed, and only admin callers may change the role.
func (s *UserService) Update(ctx context.Context, caller domain.Caller, username string, patch map[string]any) (*domain.User, error) {
	cleaned := make(map[string]any, len(patch))
	for k, v := range patch {
		switch k {
		case "username":
			// immutable key
		case "role":
			if caller.IsAdmin() {
				cleaned[k] = v
			}
		case "password":
			raw, ok := v.(string)
			if !ok || raw == "" {
				return nil, &domain.ValidationError{Field: "password", Message: "must be a non-empty string"}
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(raw), BcryptCost)
			if err != nil {
				return nil, err
			}
			cleaned[k] = string(hash)
		default:
			cleaned[k] = v
		}
	}

	user, found, err := s.users.UpdateWhere(ctx, func(u domain.User) bool { return u.Username == username }, cleaned)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}

// Delete removes the account. Orders placed by the username are kept as-is.
func (s *UserService) Delete(ctx context.Context, username string) (*domain.User, error) {
	user, found, err := s.users.RemoveWhere(ctx, func(u domain.User) bool { return u.Username == username })
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotFound
	}

	s.logger.Info("user deleted", zap.String("username", username))
	return &user, nil
}

func validateRegisterInput(input RegisterInput) error {
	switch {
	case strings.TrimSpace(input.Username) == "":
		return &domain.ValidationError{Field: "username", Message: "is required"}
	case strings.TrimSpace(input.Email) == "":
		return &domain.ValidationError{Field: "email", Message: "is required"}
	case input.Password == "":
		return &domain.ValidationError{Field: "password", Message: "is required"}
	case strings.TrimSpace(input.First) == "":
		return &domain.ValidationError{Field: "first", Message: "is required"}
	case strings.TrimSpace(input.Last) == "":
		return &domain.ValidationError{Field: "last", Message: "is required"}
	}
	return nil
}

func (s *UserService) generateAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
