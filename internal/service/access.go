package service

import (
	"context"
	"errors"
	"time"

	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"github.com/GunarsK-portfolio/artist-site/internal/repository"
)

// ProfileLookup fetches the role record for a principal.
type ProfileLookup interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// Access is the result of a passed authorization check.
type Access struct {
	Principal models.Principal
	Refreshed *Session
}

// AccessService re-derives "is this caller an authenticated admin" for every
// admin request, independently of the page gate.
type AccessService interface {
	RequireAdmin(ctx context.Context, tokens SessionTokens) (*Access, error)
}

type accessService struct {
	sessions SessionService
	profiles ProfileLookup
	timeout  time.Duration
}

// NewAccessService creates a new AccessService. Each collaborator call is
// bounded by timeout when it is positive.
func NewAccessService(sessions SessionService, profiles ProfileLookup, timeout time.Duration) AccessService {
	return &accessService{
		sessions: sessions,
		profiles: profiles,
		timeout:  timeout,
	}
}

// RequireAdmin fails closed: a collaborator error while resolving the session
// yields ErrUnauthenticated, and any failure of the role lookup yields
// ErrForbidden. The refreshed session, if any, is returned alongside the
// error so the caller can still persist it.
func (s *accessService) RequireAdmin(ctx context.Context, tokens SessionTokens) (*Access, error) {
	result, err := s.getUser(ctx, tokens)
	if err != nil || result.Principal == nil {
		return nil, errors.Join(ErrUnauthenticated, err)
	}

	access := &Access{Principal: *result.Principal, Refreshed: result.Refreshed}

	profile, err := s.findProfile(ctx, result.Principal.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return access, ErrForbidden
		}
		return access, errors.Join(ErrForbidden, err)
	}
	if !profile.IsAdmin() {
		return access, ErrForbidden
	}
	return access, nil
}

func (s *accessService) getUser(ctx context.Context, tokens SessionTokens) (*UserResult, error) {
	ctx, cancel := WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.sessions.GetUser(ctx, tokens)
}

func (s *accessService) findProfile(ctx context.Context, id string) (*models.Profile, error) {
	ctx, cancel := WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.profiles.FindByID(ctx, id)
}

// WithTimeout bounds a collaborator call. A non-positive timeout leaves the
// context unchanged.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
