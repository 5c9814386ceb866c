package jwt

import "github.com/golang-jwt/jwt"

// Token types carried in the "type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Payload defines the structure of the JSON Web Token (JWT) claims accepted by socialhub.
// Tokens are issued by the account service; the subject carries the numeric user id
// as a decimal string.
type Payload struct {
	// StandardClaims embeds the registered claims (sub, exp, iat, iss) at the top level
	// of the token body.
	jwt.StandardClaims

	// Email is the account address, when the issuer includes it.
	Email string `json:"email,omitempty"`

	// DisplayName is the account display name, when the issuer includes it.
	DisplayName string `json:"display_name,omitempty"`

	// Type distinguishes access tokens from refresh tokens. Only access tokens
	// open sessions.
	Type string `json:"type"`
}
