package domain

// KeyReq is one keypad press sent by the disguise UI.
type KeyReq struct {
	Token string `json:"token"`
}

// KeyRes has the same shape whichever code, if any, was entered.
type KeyRes struct {
	Display string `json:"display"`
	Screen  string `json:"screen"`
}

// SessionReq carries the tokens stored on login.
type SessionReq struct {
	AuthToken    string `json:"auth_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginRes is returned by the backend when it issues a session.
type LoginRes struct {
	AuthToken    string `json:"auth_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
