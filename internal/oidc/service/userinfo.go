package service

import (
	"context"
	"fmt"
)

// UserInfoService answers /userinfo for an already verified access token.
type UserInfoService struct {
	Claims *ClaimsProvider
}

// UserInfo returns the claims subject's token scope unlocks, plus sub.
func (s *UserInfoService) UserInfo(ctx context.Context, subject, scope string) (map[string]any, error) {
	if subject == "" {
		return nil, ErrInvalidRequest
	}

	claims, err := s.Claims.ClaimsFor(ctx, ClaimsRequest{Subject: subject, Scope: scope})
	if err != nil {
		return nil, fmt.Errorf("resolve userinfo claims: %w", err)
	}
	claims["sub"] = subject
	return claims, nil
}
