package models

// TokenTypeBearer is the token_type value issued with every access token
const TokenTypeBearer = "bearer"

// AuthToken is the response body for a successful token request
type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
