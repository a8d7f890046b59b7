package handler

import (
	"github.com/iliyamo/roomescape/internal/model"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4,max=72"`
}

type loginCheckResponse struct {
	Name string `json:"name"`
}

type memberResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

func newMemberResponse(m model.Member) memberResponse {
	return memberResponse{ID: m.ID, Name: m.Name, Email: m.Email, Role: string(m.Role)}
}

type timeRequest struct {
	StartAt string `json:"startAt" validate:"required,clock"`
}

type timeResponse struct {
	ID      int64  `json:"id"`
	StartAt string `json:"startAt"`
}

func newTimeResponse(t model.ReservationTime) timeResponse {
	return timeResponse{ID: t.ID, StartAt: t.Clock()}
}

type availableTimeResponse struct {
	ID            int64  `json:"id"`
	StartAt       string `json:"startAt"`
	AlreadyBooked bool   `json:"alreadyBooked"`
}

type availableQuery struct {
	Date    string `json:"date" validate:"required,date"`
	ThemeID int64  `json:"themeId" validate:"required,gt=0"`
}

type themeRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,url,max=500"`
}

type themeResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

func newThemeResponse(t model.Theme) themeResponse {
	return themeResponse{ID: t.ID, Name: t.Name, Description: t.Description, Thumbnail: t.Thumbnail}
}

type popularThemeResponse struct {
	themeResponse
	ReservationCount int64 `json:"reservationCount"`
}

type reservationRequest struct {
	Name    string `json:"name" validate:"max=50"`
	Date    string `json:"date" validate:"required,date"`
	TimeID  int64  `json:"timeId" validate:"required,gt=0"`
	ThemeID int64  `json:"themeId" validate:"required,gt=0"`
}

type reservationResponse struct {
	ID    int64         `json:"id"`
	Name  string        `json:"name"`
	Date  string        `json:"date"`
	Time  timeResponse  `json:"time"`
	Theme themeResponse `json:"theme"`
}

func newReservationResponse(r model.Reservation) reservationResponse {
	return reservationResponse{
		ID:    r.ID,
		Name:  r.Name,
		Date:  r.Date.Format(model.DateLayout),
		Time:  newTimeResponse(r.Time),
		Theme: newThemeResponse(r.Theme),
	}
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
