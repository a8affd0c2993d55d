package domain

// HotTake is a user's opinion scored for truthfulness by the backend.
type HotTake struct {
	TakeID            int     `json:"take_id"`
	Content           string  `json:"content"`
	TruthfulnessScore float64 `json:"truthfulness_score"`
}

// UserProfile is the response of GET /user/get-username/{email}.
type UserProfile struct {
	Username string `json:"username"`
}

// TokenResponse is returned by the login and signup endpoints.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
