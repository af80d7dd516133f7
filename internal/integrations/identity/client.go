package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Client клиент сервиса идентификации: подтверждает, что заголовки запроса описывают реальный аккаунт
type Client struct {
	baseURL    string
	httpClient *http.Client
	failOpen   bool
	log        Logger
}

// NewClient создает новый экземпляр клиента.
// failOpen разрешает запросы, если сервис идентификации недоступен.
func NewClient(baseURL string, timeout time.Duration, failOpen bool, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		failOpen: failOpen,
		log:      log,
	}
}

// GetAccount получает аккаунт по ID
func (c *Client) GetAccount(ctx context.Context, accountID int64) (*Account, error) {
	url := fmt.Sprintf("%s/internal/accounts/%d", c.baseURL, accountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrAccountNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var account Account
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &account, nil
}

// VerifyActor проверяет, что аккаунт существует, активен и имеет заявленную роль.
// При недоступности сервиса и включенном fail-open возвращает ErrServiceDegraded.
func (c *Client) VerifyActor(ctx context.Context, actor domain.Actor) error {
	account, err := c.GetAccount(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			c.log.Warn("VerifyActor: account id=%d not found", actor.ID)
			return err
		}
		if c.failOpen {
			c.log.Error("VerifyActor: identity service unavailable, skipping verification for id=%d: %v", actor.ID, err)
			return fmt.Errorf("%w: account_id=%d, error=%v", ErrServiceDegraded, actor.ID, err)
		}
		c.log.Error("VerifyActor: identity service unavailable for id=%d: %v", actor.ID, err)
		return err
	}

	if !account.IsActive {
		c.log.Warn("VerifyActor: account id=%d is disabled", actor.ID)
		return ErrAccountDisabled
	}

	role, err := domain.ParseRole(account.Role)
	if err != nil || role != actor.Role {
		c.log.Warn("VerifyActor: account id=%d has role %q, request claims %q", actor.ID, account.Role, actor.Role)
		return ErrRoleMismatch
	}

	return nil
}
