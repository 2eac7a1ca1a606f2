package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/shared"
)

// PrincipalSource loads the live principal for a user id. The token service
// consults it on every extraction so permission changes apply without
// re-login.
type PrincipalSource interface {
	LoadPrincipal(ctx context.Context, userID int64) (*shared.Principal, error)
}

// Config carries the signing material and the two independent lifetimes.
type Config struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Pair is the issued token pair returned on login and refresh.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Service signs and verifies HMAC tokens and tracks revocations.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	blacklist  Blacklist
	principals PrincipalSource
	now        func() time.Time
}

// NewService wires the token service.
func NewService(cfg Config, blacklist Blacklist, principals PrincipalSource) *Service {
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 168 * time.Hour
	}
	return &Service{
		secret:     []byte(cfg.Secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		blacklist:  blacklist,
		principals: principals,
		now:        time.Now,
	}
}

// IssuePair signs a fresh access/refresh pair for the identity.
func (s *Service) IssuePair(userID int64, username string, roles []string) (*Pair, error) {
	access, err := s.sign(newClaims(userID, username, roles, TypeAccess, s.accessTTL, s.now()))
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	refresh, err := s.sign(newClaims(userID, username, roles, TypeRefresh, s.refreshTTL, s.now()))
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Validate parses and verifies a token of the expected type, rejecting
// blacklisted IDs. Expiry maps to TOKEN_EXPIRED, every other defect to
// TOKEN_INVALID.
func (s *Service) Validate(ctx context.Context, raw, expectedType string) (*Claims, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return nil, err
	}
	if claims.Type != expectedType {
		return nil, apperr.ErrTokenInvalid
	}
	revoked, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	if revoked {
		return nil, apperr.ErrTokenInvalid
	}
	return claims, nil
}

// IsExpired reports whether the token is past its lifetime. It fails closed:
// a token that cannot be parsed at all counts as expired.
func (s *Service) IsExpired(raw string) bool {
	_, err := s.parse(raw)
	if err == nil {
		return false
	}
	return true
}

// Principal validates an access token and loads the live principal for its
// identity. Role and permission grants always reflect current state, never
// the snapshot captured at signing time.
func (s *Service) Principal(ctx context.Context, raw string) (*shared.Principal, error) {
	claims, err := s.Validate(ctx, raw, TypeAccess)
	if err != nil {
		return nil, err
	}
	p, err := s.principals.LoadPrincipal(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrUnauthorized
	}
	return p, nil
}

// Invalidate blacklists the token for its remaining lifetime. Invalidating
// an already-expired or malformed token is a no-op.
func (s *Service) Invalidate(ctx context.Context, raw string) error {
	claims, err := s.parse(raw)
	if err != nil {
		return nil
	}
	ttl := claims.RemainingTTL(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.Add(ctx, claims.ID, ttl); err != nil {
		return apperr.ErrInternal.Wrap(err)
	}
	return nil
}

// Refresh exchanges a valid refresh token for a brand-new pair and revokes
// the used refresh token so it cannot be replayed.
func (s *Service) Refresh(ctx context.Context, raw string) (*Pair, error) {
	claims, err := s.Validate(ctx, raw, TypeRefresh)
	if err != nil {
		return nil, err
	}
	pair, err := s.IssuePair(claims.UserID, claims.Username, claims.Roles)
	if err != nil {
		return nil, err
	}
	if err := s.blacklist.Add(ctx, claims.ID, claims.RemainingTTL(s.now())); err != nil {
		return nil, apperr.ErrInternal.Wrap(err)
	}
	return pair, nil
}

func (s *Service) sign(claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.ErrTokenExpired
		}
		return nil, apperr.ErrTokenInvalid.Wrap(err)
	}
	return claims, nil
}
