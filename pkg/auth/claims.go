package auth

import (
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Groups granted by the identity provider. Admins pass every group check.
const (
	GroupBooking = "booking.default.user"
	GroupFinance = "finance.default.user"
	GroupAdmin   = "admin.root"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Login  string
	Groups []string
	JTI    string
}

// AccessTokenClaims represents the typed JWT presented by clients.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Login  string    `json:"login,omitempty"`
	Groups []string  `json:"groups"`
	jwt.RegisteredClaims
}

// InGroup reports whether the claims grant any of the given groups.
func (c *AccessTokenClaims) InGroup(groups ...string) bool {
	if c == nil {
		return false
	}
	for _, g := range c.Groups {
		g = strings.TrimSpace(g)
		if g == GroupAdmin || slices.Contains(groups, g) {
			return true
		}
	}
	return false
}
