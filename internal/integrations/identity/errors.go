package identity

import "errors"

var (
	// ErrAccountNotFound возвращается, когда аккаунт не найден в сервисе идентификации
	ErrAccountNotFound = errors.New("identity client: account not found")

	// ErrRoleMismatch возвращается, когда роль из заголовка не совпадает с ролью аккаунта
	ErrRoleMismatch = errors.New("identity client: role mismatch")

	// ErrAccountDisabled возвращается для заблокированного аккаунта
	ErrAccountDisabled = errors.New("identity client: account disabled")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("identity client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("identity client: invalid response")

	// ErrServiceDegraded возвращается, когда сервис недоступен, а проверка выполняется в режиме fail-open
	ErrServiceDegraded = errors.New("identity service unavailable: verification skipped")
)
