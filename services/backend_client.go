package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/yeremiapane/restaurant-pos/config"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// Backend is the remote REST backend as the console sees it.
type Backend interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)
	Items(ctx context.Context, token string) ([]models.CatalogItem, error)
	Categories(ctx context.Context, token string) ([]models.Category, error)
	Blocks(ctx context.Context, token string) ([]models.Block, error)
	CreateOrder(ctx context.Context, token string, sub models.OrderSubmission) (*models.Order, error)
	UpdateOrder(ctx context.Context, token string, orderID uint, sub models.OrderSubmission) (*models.Order, error)
	GetOrder(ctx context.Context, token string, orderID uint) (*models.Order, error)
	UpdateStatus(ctx context.Context, token string, update models.StatusUpdate) error
	UpdatePayment(ctx context.Context, token string, orderID uint, update models.PaymentUpdate) (*models.Order, error)
	ClearTable(ctx context.Context, token string, blockID, tableID uint) error
}

// BackendError is a failed backend call. StatusCode is zero when the request
// never got a response (timeout, connection refused).
type BackendError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("backend %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("backend %s failed with %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed if sent again.
func (e *BackendError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= http.StatusInternalServerError
}

// IsRetryable reports whether err carries a retryable backend failure.
func IsRetryable(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Retryable()
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// BackendClient talks to the backend over HTTP. It never retries on its own.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	codec      models.OrderTypeCodec
}

func NewBackendClient(cfg config.BackendConfig) (*BackendClient, error) {
	codec, err := models.NewOrderTypeCodec(cfg.OrderTypeStyle)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &BackendClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		codec:      codec,
	}, nil
}

func (bc *BackendClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	var res models.LoginResult
	if err := bc.do(ctx, "login", http.MethodPost, "/login", "", creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (bc *BackendClient) Items(ctx context.Context, token string) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	if err := bc.do(ctx, "list items", http.MethodGet, "/catalog/items", token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (bc *BackendClient) Categories(ctx context.Context, token string) ([]models.Category, error) {
	var categories []models.Category
	if err := bc.do(ctx, "list categories", http.MethodGet, "/catalog/categories", token, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (bc *BackendClient) Blocks(ctx context.Context, token string) ([]models.Block, error) {
	var blocks []models.Block
	if err := bc.do(ctx, "list blocks", http.MethodGet, "/blocks", token, nil, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (bc *BackendClient) CreateOrder(ctx context.Context, token string, sub models.OrderSubmission) (*models.Order, error) {
	sub.Type = bc.codec.Encode(sub.Type)

	var order models.Order
	if err := bc.do(ctx, "create order", http.MethodPost, "/orders", token, sub, &order); err != nil {
		return nil, err
	}
	return bc.decodeOrder(&order), nil
}

func (bc *BackendClient) UpdateOrder(ctx context.Context, token string, orderID uint, sub models.OrderSubmission) (*models.Order, error) {
	sub.Type = bc.codec.Encode(sub.Type)

	var order models.Order
	if err := bc.do(ctx, "update order", http.MethodPut, orderPath(orderID), token, sub, &order); err != nil {
		return nil, err
	}
	return bc.decodeOrder(&order), nil
}

func (bc *BackendClient) GetOrder(ctx context.Context, token string, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := bc.do(ctx, "get order", http.MethodGet, orderPath(orderID), token, nil, &order); err != nil {
		return nil, err
	}
	return bc.decodeOrder(&order), nil
}

func (bc *BackendClient) UpdateStatus(ctx context.Context, token string, update models.StatusUpdate) error {
	return bc.do(ctx, "update status", http.MethodPatch, "/orders/status", token, update, nil)
}

func (bc *BackendClient) UpdatePayment(ctx context.Context, token string, orderID uint, update models.PaymentUpdate) (*models.Order, error) {
	var order models.Order
	path := orderPath(orderID) + "/payment"
	if err := bc.do(ctx, "update payment", http.MethodPatch, path, token, update, &order); err != nil {
		return nil, err
	}
	return bc.decodeOrder(&order), nil
}

func (bc *BackendClient) ClearTable(ctx context.Context, token string, blockID, tableID uint) error {
	path := fmt.Sprintf("/blocks/%d/tables/%d/order", blockID, tableID)
	return bc.do(ctx, "clear table", http.MethodDelete, path, token, nil, nil)
}

func (bc *BackendClient) decodeOrder(order *models.Order) *models.Order {
	order.Type = bc.codec.Decode(order.Type)
	return order
}

func orderPath(orderID uint) string {
	return "/orders/" + strconv.FormatUint(uint64(orderID), 10)
}

// do sends one request and decodes the envelope's data into out.
func (bc *BackendClient) do(ctx context.Context, op, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error marshaling %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, bc.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error creating %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := bc.httpClient.Do(req)
	if err != nil {
		utils.ErrorLogger.Printf("Backend %s %s failed after %v: %v", method, path, time.Since(start), err)
		return &BackendError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &BackendError{Op: op, Err: fmt.Errorf("error reading response: %w", err)}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		utils.InfoLogger.Printf("Backend %s %s returned %d: %s", method, path, resp.StatusCode, msg)
		return &BackendError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return &BackendError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    "malformed response body",
			Err:        decodeErr,
		}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &BackendError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    "unexpected response data",
			Err:        err,
		}
	}
	return nil
}
