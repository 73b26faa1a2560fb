package http

import (
	"github.com/aussiebroadwan/sataplan/internal/sataplan/domain"
	"github.com/aussiebroadwan/sataplan/pkg/sdk"
)

func toUserResponse(u domain.User) sdk.UserResponse {
	return sdk.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

func toGoalResponse(g domain.Goal) sdk.GoalResponse {
	return sdk.GoalResponse{
		ID:          g.ID,
		UserID:      g.UserID,
		Name:        g.Name,
		Description: g.Description,
		Motivations: toMotivationResponses(g.Motivations),
		CreatedAt:   g.CreatedAt,
	}
}

func toMotivationResponses(ms []domain.Motivation) []sdk.MotivationResponse {
	out := make([]sdk.MotivationResponse, len(ms))
	for i, m := range ms {
		out[i] = toMotivationResponse(m)
	}
	return out
}

func toMotivationResponse(m domain.Motivation) sdk.MotivationResponse {
	return sdk.MotivationResponse{ID: m.ID, Quote: m.Quote, Link: m.Link}
}

func toTokenResponse(p domain.TokenPair) sdk.TokenResponse {
	return sdk.TokenResponse{
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		TokenType:        p.TokenType,
		ExpiresIn:        secondsUntil(p.AccessExpiresAt),
		RefreshExpiresIn: secondsUntil(p.RefreshExpiresAt),
	}
}
