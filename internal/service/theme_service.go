package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iliyamo/roomescape/internal/model"
	"github.com/iliyamo/roomescape/internal/repository"
	"github.com/iliyamo/roomescape/internal/telemetry"
)

const (
	// PopularWindowDays is how many days, ending yesterday, the ranking covers.
	PopularWindowDays   = 7
	DefaultPopularLimit = 10
	MaxPopularLimit     = 50

	popularQueryTimeout = 5 * time.Second
)

// ThemeService manages themes and the popularity ranking.
type ThemeService struct {
	themes ThemeRepository
	now    Clock
	loc    *time.Location
	group  singleflight.Group
}

func NewThemeService(themes ThemeRepository, now Clock, loc *time.Location) *ThemeService {
	if loc == nil {
		loc = time.Local
	}
	return &ThemeService{themes: themes, now: orNow(now), loc: loc}
}

func (s *ThemeService) List(ctx context.Context) ([]model.Theme, error) {
	return s.themes.List(ctx)
}

// Create adds a theme; names are unique.
func (s *ThemeService) Create(ctx context.Context, th model.Theme) (model.Theme, error) {
	if err := s.themes.Create(ctx, &th); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Theme{}, ErrDuplicateTheme
		}
		return model.Theme{}, err
	}
	return th, nil
}

// Delete removes a theme that no reservation uses.
func (s *ThemeService) Delete(ctx context.Context, id int64) error {
	if _, err := s.themes.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrThemeNotFound
		}
		return err
	}
	used, err := s.themes.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return ErrThemeInUse
	}
	err = s.themes.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrReferenced):
		return ErrThemeInUse
	case errors.Is(err, repository.ErrNotFound):
		return ErrThemeNotFound
	}
	return err
}

// Popular returns the most booked themes over the last PopularWindowDays
// days, excluding today. limit is clamped to [1, MaxPopularLimit] and
// defaults to DefaultPopularLimit. Identical concurrent calls share one query.
func (s *ThemeService) Popular(ctx context.Context, limit int) (out []model.PopularTheme, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ThemeService.Popular")
	defer func() { telemetry.EndSpan(span, err) }()

	switch {
	case limit <= 0:
		limit = DefaultPopularLimit
	case limit > MaxPopularLimit:
		limit = MaxPopularLimit
	}
	from, to := s.window()
	key := from.Format(model.DateLayout) + ":" + strconv.Itoa(limit)

	// Shared by every caller with the same key; detached from the first
	// caller's cancellation.
	v, err, _ := s.group.Do(key, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), popularQueryTimeout)
		defer cancel()
		return s.themes.Popular(qctx, from, to, limit)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.PopularTheme), nil
}

func (s *ThemeService) window() (from, to time.Time) {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return today.AddDate(0, 0, -PopularWindowDays), today.AddDate(0, 0, -1)
}
