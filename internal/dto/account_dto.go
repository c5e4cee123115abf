package dto

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}
