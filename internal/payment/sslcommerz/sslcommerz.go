package sslcommerz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	sandboxBaseURL = "https://sandbox.sslcommerz.com"
	liveBaseURL    = "https://securepay.sslcommerz.com"

	initPath     = "/gwprocess/v4/api.php"
	validatePath = "/validator/api/validationserverAPI.php"

	defaultCurrency = "BDT"
	defaultTimeout  = 30 * time.Second
)

// 网关状态值
const (
	StatusSuccess   = "SUCCESS"
	StatusValid     = "VALID"
	StatusValidated = "VALIDATED"
)

var (
	ErrConfigInvalid    = errors.New("sslcommerz config invalid")
	ErrRequestFailed    = errors.New("sslcommerz request failed")
	ErrResponseInvalid  = errors.New("sslcommerz response invalid")
	ErrInitRejected     = errors.New("sslcommerz init rejected")
	ErrValidationFailed = errors.New("sslcommerz validation failed")
)

// Config SSLCommerz 商户配置
type Config struct {
	StoreID       string
	StorePassword string
	Sandbox       bool
	BaseURL       string // 为空时按 Sandbox 选择官方地址
	Currency      string
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// InitInput 发起托管支付输入
type InitInput struct {
	TransactionID string
	Amount        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	SuccessURL    string
	FailURL       string
	CancelURL     string
}

// InitResult 发起托管支付结果
type InitResult struct {
	Status         string
	GatewayPageURL string
	SessionKey     string
	FailedReason   string
	Raw            map[string]interface{}
}

// ValidationResult 校验接口返回
type ValidationResult struct {
	Status            string `json:"status"`
	TranID            string `json:"tran_id"`
	ValID             string `json:"val_id"`
	Amount            string `json:"amount"`
	StoreAmount       string `json:"store_amount"`
	Currency          string `json:"currency"`
	CardType          string `json:"card_type"`
	CardIssuer        string `json:"card_issuer"`
	CardBrand         string `json:"card_brand"`
	BankTransactionID string `json:"bank_tran_id"`
	TranDate          string `json:"tran_date"`
}

// Callback 网关回调表单
type Callback struct {
	TranID      string
	ValID       string
	Amount      string
	StoreAmount string
	CardType    string
	BankTranID  string
	Status      string
	TranDate    string
	Currency    string
	CardIssuer  string
	CardBrand   string
}

// ValidateConfig 校验商户配置完整性
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.StoreID) == "" {
		return fmt.Errorf("%w: store_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.StorePassword) == "" {
		return fmt.Errorf("%w: store_password is required", ErrConfigInvalid)
	}
	return nil
}

// InitPayment 调用网关创建托管支付会话
func InitPayment(ctx context.Context, cfg *Config, input InitInput) (*InitResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if input.TransactionID == "" || input.Amount == "" {
		return nil, fmt.Errorf("%w: tran_id and amount are required", ErrConfigInvalid)
	}
	if input.SuccessURL == "" || input.FailURL == "" || input.CancelURL == "" {
		return nil, fmt.Errorf("%w: callback urls are required", ErrConfigInvalid)
	}

	params := map[string]string{
		"store_id":         cfg.StoreID,
		"store_passwd":     cfg.StorePassword,
		"total_amount":     input.Amount,
		"currency":         cfg.currency(),
		"tran_id":          input.TransactionID,
		"success_url":      input.SuccessURL,
		"fail_url":         input.FailURL,
		"cancel_url":       input.CancelURL,
		"cus_name":         orNA(input.CustomerName),
		"cus_email":        orNA(input.CustomerEmail),
		"cus_phone":        orNA(input.CustomerPhone),
		"cus_add1":         "N/A",
		"cus_city":         "N/A",
		"cus_country":      "N/A",
		"shipping_method":  "NO",
		"product_name":     "N/A",
		"product_category": "N/A",
		"product_profile":  "general",
	}
	body, err := postForm(ctx, cfg, cfg.baseURL()+initPath, params)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	result := &InitResult{
		Status:         strings.ToUpper(readString(raw, "status")),
		GatewayPageURL: readString(raw, "GatewayPageURL"),
		SessionKey:     readString(raw, "sessionkey"),
		FailedReason:   readString(raw, "failedreason"),
		Raw:            raw,
	}
	if result.Status != StatusSuccess {
		return result, fmt.Errorf("%w: %s", ErrInitRejected, result.FailedReason)
	}
	if result.GatewayPageURL == "" {
		return result, fmt.Errorf("%w: missing GatewayPageURL", ErrResponseInvalid)
	}
	return result, nil
}

// ValidateTransaction 通过 val_id 向网关确认交易
func ValidateTransaction(ctx context.Context, cfg *Config, valID string) (*ValidationResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	valID = strings.TrimSpace(valID)
	if valID == "" {
		return nil, fmt.Errorf("%w: val_id is required", ErrValidationFailed)
	}
	query := url.Values{}
	query.Set("val_id", valID)
	query.Set("store_id", cfg.StoreID)
	query.Set("store_passwd", cfg.StorePassword)
	query.Set("format", "json")
	endpoint := cfg.baseURL() + validatePath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	body, err := do(cfg, req)
	if err != nil {
		return nil, err
	}

	var result ValidationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	status := strings.ToUpper(strings.TrimSpace(result.Status))
	if status != StatusValid && status != StatusValidated {
		return &result, fmt.Errorf("%w: status=%s", ErrValidationFailed, result.Status)
	}
	return &result, nil
}

// ParseCallback 从回调表单读取字段
func ParseCallback(form map[string][]string) Callback {
	return Callback{
		TranID:      firstValue(form, "tran_id"),
		ValID:       firstValue(form, "val_id"),
		Amount:      firstValue(form, "amount"),
		StoreAmount: firstValue(form, "store_amount"),
		CardType:    firstValue(form, "card_type"),
		BankTranID:  firstValue(form, "bank_tran_id"),
		Status:      firstValue(form, "status"),
		TranDate:    firstValue(form, "tran_date"),
		Currency:    firstValue(form, "currency"),
		CardIssuer:  firstValue(form, "card_issuer"),
		CardBrand:   firstValue(form, "card_brand"),
	}
}

// ToMap 转为原始载荷，用于落库留存
func (c Callback) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"tran_id":      c.TranID,
		"val_id":       c.ValID,
		"amount":       c.Amount,
		"store_amount": c.StoreAmount,
		"card_type":    c.CardType,
		"bank_tran_id": c.BankTranID,
		"status":       c.Status,
		"tran_date":    c.TranDate,
		"currency":     c.Currency,
		"card_issuer":  c.CardIssuer,
		"card_brand":   c.CardBrand,
	}
}

func (c *Config) baseURL() string {
	if base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"); base != "" {
		return base
	}
	if c.Sandbox {
		return sandboxBaseURL
	}
	return liveBaseURL
}

func (c *Config) currency() string {
	if currency := strings.ToUpper(strings.TrimSpace(c.Currency)); currency != "" {
		return currency
	}
	return defaultCurrency
}

func (c *Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func postForm(ctx context.Context, cfg *Config, endpoint string, params map[string]string) ([]byte, error) {
	values := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		values.Set(k, v)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return do(cfg, req)
}

func do(cfg *Config, req *http.Request) ([]byte, error) {
	resp, err := cfg.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return body, nil
}

func readString(raw map[string]interface{}, key string) string {
	if raw == nil {
		return ""
	}
	switch v := raw[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func firstValue(form map[string][]string, key string) string {
	if form == nil {
		return ""
	}
	values := form[key]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return strings.TrimSpace(value)
}
