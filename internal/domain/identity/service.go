package identity

import (
	"context"
	"errors"
	"strings"
)

// UserInfo is the identity the external authentication service resolves a
// token to. The community subsystem never stores it; it only keys sessions
// by the opaque ID.
type UserInfo struct {
	ID      string
	IsStaff bool
}

// Service is the external user-identity collaborator
type Service interface {
	// Verify resolves a bearer token to a user
	Verify(ctx context.Context, token string) (*UserInfo, error)
}

var ErrInvalidToken = errors.New("invalid token")

// StaticService is a development stand-in for the real identity service.
// Any non-empty token is accepted as the user ID; the configured admin token
// grants staff rights.
type StaticService struct {
	AdminToken string
}

func NewStaticService(adminToken string) *StaticService {
	return &StaticService{AdminToken: adminToken}
}

func (s *StaticService) Verify(ctx context.Context, token string) (*UserInfo, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	if s.AdminToken != "" && token == s.AdminToken {
		return &UserInfo{ID: "staff", IsStaff: true}, nil
	}
	return &UserInfo{ID: token}, nil
}
