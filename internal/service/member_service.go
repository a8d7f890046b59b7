package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/iliyamo/roomescape/internal/model"
	"github.com/iliyamo/roomescape/internal/repository"
	"github.com/iliyamo/roomescape/internal/telemetry"
	"github.com/iliyamo/roomescape/internal/utils"
)

// TokenIssuer creates and verifies login tokens.
type TokenIssuer interface {
	CreateToken(memberID int64) (utils.IssuedToken, error)
	ParseSubject(token string) (int64, error)
}

// MemberService handles login, token resolution and member registration.
type MemberService struct {
	members MemberRepository
	tokens  TokenIssuer
	hasher  *utils.PasswordHasher
}

func NewMemberService(members MemberRepository, tokens TokenIssuer, hasher *utils.PasswordHasher) *MemberService {
	return &MemberService{members: members, tokens: tokens, hasher: hasher}
}

// Login checks the credentials and issues a token for the member.
func (s *MemberService) Login(ctx context.Context, email, password string) (tok utils.IssuedToken, err error) {
	ctx, span := telemetry.StartSpan(ctx, "MemberService.Login")
	defer func() { telemetry.EndSpan(span, err) }()

	m, err := s.members.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.hasher.Burn(password)
		return utils.IssuedToken{}, ErrInvalidCredentials
	}
	if err != nil {
		return utils.IssuedToken{}, err
	}
	if !s.hasher.Verify(m.PasswordHash, password) {
		return utils.IssuedToken{}, ErrInvalidCredentials
	}
	span.SetAttributes(attribute.Int64("member.id", m.ID))
	return s.tokens.CreateToken(m.ID)
}

// GetLoginMember resolves the member a token was issued to. Any failure to
// do so is reported as ErrUnauthenticated.
func (s *MemberService) GetLoginMember(ctx context.Context, token string) (model.LoginMember, error) {
	if token == "" {
		return model.LoginMember{}, ErrUnauthenticated
	}
	id, err := s.tokens.ParseSubject(token)
	if err != nil {
		return model.LoginMember{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	m, err := s.members.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.LoginMember{}, ErrUnauthenticated
	}
	if err != nil {
		return model.LoginMember{}, err
	}
	return model.LoginMember{ID: m.ID, Name: m.Name, Role: m.Role}, nil
}

// Signup registers a regular member.
func (s *MemberService) Signup(ctx context.Context, name, email, password string) (model.Member, error) {
	return s.create(ctx, name, email, password, model.RoleUser)
}

func (s *MemberService) create(ctx context.Context, name, email, password string, role model.Role) (model.Member, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.Member{}, fmt.Errorf("hash password: %w", err)
	}
	m := model.Member{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.members.Create(ctx, &m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Member{}, ErrDuplicateEmail
		}
		return model.Member{}, err
	}
	return m, nil
}

// List returns every member.
func (s *MemberService) List(ctx context.Context) ([]model.Member, error) {
	return s.members.List(ctx)
}

// EnsureAdmin creates an administrator with the given credentials unless a
// member with that email already exists. It reports whether one was created.
func (s *MemberService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	if email == "" {
		return false, nil
	}
	_, err := s.members.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if _, err := s.create(ctx, name, email, password, model.RoleAdmin); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return false, nil
		}
		return false, err
	}
	zerolog.Ctx(ctx).Info().Str("email", email).Msg("administrator account created")
	return true, nil
}
