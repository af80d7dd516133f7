package identity

// Account аккаунт из сервиса идентификации
type Account struct {
	ID       int64  `json:"id"`
	Role     string `json:"role"` // client | business
	IsActive bool   `json:"is_active"`
}

// ErrorResponse модель ошибки от сервиса идентификации
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
