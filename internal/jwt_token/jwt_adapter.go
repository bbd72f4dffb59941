package jwttoken

import (
	authmw "profileguard/pkg/platform/middleware/auth"
)

// Validator adapts JWTService to the auth middleware, which depends only on
// its own claims type.
type Validator struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *Validator {
	return &Validator{service: service}
}

func (v *Validator) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{
		AccountID: claims.AccountID,
		SessionID: claims.SessionID,
	}, nil
}
