package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"pairchat/internal/domain"
	"pairchat/internal/repository"
)

var (
	ErrInvalidIdentity  = errors.New("identity must include user id and username")
	ErrIdentityNotFound = errors.New("identity not found")
	ErrUsernameTaken    = errors.New("username already taken")
)

// IdentityService registers self-asserted identities and issues the tokens
// the transports use to carry the user id. There are no credentials: the
// token is plumbing, not authentication.
type IdentityService struct {
	identityRepo repository.IdentityRepository
	jwtSecret    []byte
	now          func() time.Time
}

func NewIdentityService(identityRepo repository.IdentityRepository, jwtSecret string) *IdentityService {
	return &IdentityService{
		identityRepo: identityRepo,
		jwtSecret:    []byte(jwtSecret),
		now:          time.Now,
	}
}

type IdentityResponse struct {
	Identity domain.Identity `json:"identity"`
	Token    string          `json:"token"`
}

// Register assigns a fresh opaque user id to the claimed username and
// persists the pair. The id is a random token, so room keys derived from
// two ids are collision-free by construction.
func (s *IdentityService) Register(ctx context.Context, username string) (*IdentityResponse, error) {
	existing, err := s.identityRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	identity := domain.Identity{
		UserID:   uuid.NewString(),
		Username: username,
	}
	if !identity.Valid() {
		return nil, ErrInvalidIdentity
	}

	if err := s.identityRepo.Create(ctx, &identity); err != nil {
		// The pre-check above is advisory; the store's uniqueness
		// constraint decides races between concurrent registrations.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("creating identity: %w", err)
	}

	token, err := s.generateToken(identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &IdentityResponse{Identity: identity, Token: token}, nil
}

func (s *IdentityService) Get(ctx context.Context, userID string) (*domain.Identity, error) {
	identity, err := s.identityRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrIdentityNotFound
	}
	return identity, nil
}

func (s *IdentityService) generateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": s.now().Add(30 * 24 * time.Hour).Unix(),
		"iat": s.now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
