package model

import "time"

// LoginRequest represents a credentials login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a new account request. GoogleID is set when the
// account is created after an unknown Google sign-in.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
	Name     string `json:"name"`
	GoogleID string `json:"googleId,omitempty"`
}

// AuthResponse is returned by login, register and an existing-account Google sign-in.
type AuthResponse struct {
	AccessToken string  `json:"accessToken"`
	User        RawUser `json:"user"`
}

// RefreshResponse is returned by the refresh endpoint.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// GoogleAuthRequest carries the OAuth access token obtained from Google.
type GoogleAuthRequest struct {
	AccessToken string `json:"accessToken"`
}

// GoogleData is the Google account data echoed back for unknown accounts so
// the caller can prefill registration.
type GoogleData struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	GoogleID string `json:"googleId"`
	Picture  string `json:"picture,omitempty"`
}

// GoogleAuthResponse is the verification endpoint's answer.
type GoogleAuthResponse struct {
	UserExists  bool        `json:"userExists"`
	AccessToken string      `json:"accessToken,omitempty"`
	User        *RawUser    `json:"user,omitempty"`
	GoogleData  *GoogleData `json:"googleData,omitempty"`
}

// ProfileResponse accepts the profile either wrapped in "user" or at top level.
type ProfileResponse struct {
	User *RawUser `json:"user,omitempty"`
	RawUser
}

// Unwrap returns the profile regardless of envelope.
func (p ProfileResponse) Unwrap() RawUser {
	if p.User != nil {
		return *p.User
	}
	return p.RawUser
}

// AdminLoginResponse is returned by the admin API login endpoint.
type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
