package sanmar

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/httpclient"
	"github.com/nwca/sanmar-adapters/internal/rate"
)

const rateKey = "sanmar"

// Endpoints are the SOAP service URLs for one SanMar environment.
type Endpoints struct {
	ProductInfo  string
	Pricing      string
	Inventory    string
	PromoPricing string
}

// EndpointsFor returns the production hosts, or the edev-ws hosts when development is set.
func EndpointsFor(development bool) Endpoints {
	host := "https://ws.sanmar.com:8080"
	if development {
		host = "https://edev-ws.sanmar.com:8080"
	}
	return EndpointsAt(host)
}

// EndpointsAt builds the service paths under an arbitrary base URL.
func EndpointsAt(base string) Endpoints {
	base = strings.TrimRight(base, "/")
	return Endpoints{
		ProductInfo:  base + "/SanMarWebService/SanMarProductInfoServicePort",
		Pricing:      base + "/SanMarWebService/SanMarPricingServicePort",
		Inventory:    base + "/promostandards/InventoryServiceBindingV2final",
		PromoPricing: base + "/promostandards/PricingAndConfigurationServiceBinding",
	}
}

// Client talks to SanMar's SOAP services. Credentials are passed per call.
type Client struct {
	logger    *zap.Logger
	exec      *httpclient.Executor
	endpoints Endpoints
}

// NewClient constructs a SanMar SOAP client. A zero timeout means 30s.
func NewClient(logger *zap.Logger, rateMgr *rate.Manager, endpoints Endpoints, timeout time.Duration, observe httpclient.Observer) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	exec := httpclient.New(logger, rateMgr, &http.Client{Timeout: timeout}, 3, rateKey, nil)
	if observe != nil {
		exec.WithObserver(observe)
	}
	return &Client{logger: logger, exec: exec, endpoints: endpoints}
}

// WithBackoff overrides the retry schedule; tests use it to avoid sleeping.
func (c *Client) WithBackoff(fn func(attempt int) time.Duration) *Client {
	c.exec.WithBackoff(fn)
	return c
}

// GetProductInfo calls getProductInfoByStyleColorSize. color and size may be empty.
func (c *Client) GetProductInfo(ctx context.Context, creds Credentials, style, color, size string) (*ProductInfoResult, error) {
	if !creds.Valid() {
		return nil, ErrNoCredentials
	}
	req := productInfoRequest{Arg1: newWebServiceUser(creds)}
	req.Arg0.Style, req.Arg0.Color, req.Arg0.Size = style, color, size

	resp, err := call[productInfoResponse](ctx, c, c.endpoints.ProductInfo, "getProductInfoByStyleColorSize", req, nsAttr("impl", nsImpl))
	if err != nil {
		return nil, err
	}
	res := &resp.Return
	if res.ErrorOccurred {
		return nil, &ServiceError{Operation: "getProductInfoByStyleColorSize", Message: res.Message}
	}
	if len(res.Items) == 0 {
		return nil, ErrEmptyResponse
	}
	c.logger.Debug("sanmar.product_info_fetched",
		zap.String("style", style),
		zap.Int("items", len(res.Items)))
	return res, nil
}

// GetPricing calls the SanMar Pricing Service getPricing operation.
func (c *Client) GetPricing(ctx context.Context, creds Credentials, style, color, size string) (*PricingResult, error) {
	if !creds.Valid() {
		return nil, ErrNoCredentials
	}
	req := pricingRequest{Arg1: newWebServiceUser(creds)}
	req.Arg0.Style, req.Arg0.Color, req.Arg0.Size = style, color, size

	resp, err := call[pricingResponse](ctx, c, c.endpoints.Pricing, "getPricing", req, nsAttr("impl", nsImpl))
	if err != nil {
		return nil, err
	}
	res := &resp.Return
	if res.ErrorOccurred {
		return nil, &ServiceError{Operation: "getPricing", Message: res.Message}
	}
	if len(res.Items) == 0 {
		return nil, ErrEmptyResponse
	}
	return res, nil
}

// GetInventoryLevels calls PromoStandards Inventory 2.0.0 for one product id (style).
func (c *Client) GetInventoryLevels(ctx context.Context, creds Credentials, style string) (*InventoryResult, error) {
	if !creds.Valid() {
		return nil, ErrNoCredentials
	}
	req := inventoryRequest{
		WSVersion: "2.0.0",
		ID:        creds.Username,
		Password:  creds.Password,
		ProductID: style,
	}
	resp, err := call[inventoryResponse](ctx, c, c.endpoints.Inventory, "getInventoryLevels", req,
		nsAttr("ns", nsInventory), nsAttr("shar", nsInventoryShared))
	if err != nil {
		return nil, err
	}
	if len(resp.Inventory.Parts) == 0 {
		if msg, ok := firstError(resp.ServiceMessages); ok {
			return nil, &ServiceError{Operation: "getInventoryLevels", Code: msg.Code, Message: msg.Description}
		}
		return nil, ErrEmptyResponse
	}
	return &resp.Inventory, nil
}

// GetConfigurationAndPricing calls PromoStandards Pricing and Configuration 1.0.0
// for blank goods in USD.
func (c *Client) GetConfigurationAndPricing(ctx context.Context, creds Credentials, style string, priceType PriceType) (*ConfigurationResult, error) {
	if !creds.Valid() {
		return nil, ErrNoCredentials
	}
	req := configurationRequest{
		WSVersion:            "1.0.0",
		ID:                   creds.Username,
		Password:             creds.Password,
		ProductID:            style,
		Currency:             "USD",
		FobID:                "1",
		PriceType:            string(priceType),
		LocalizationCountry:  "US",
		LocalizationLanguage: "EN",
		ConfigurationType:    "Blank",
	}
	resp, err := call[configurationResponse](ctx, c, c.endpoints.PromoPricing, "getConfigurationAndPricing", req,
		nsAttr("ns", nsPPC), nsAttr("shar", nsPPCShared))
	if err != nil {
		return nil, err
	}
	if resp.ErrorMessage != nil && resp.ErrorMessage.Description != "" {
		return nil, &ServiceError{Operation: "getConfigurationAndPricing", Code: resp.ErrorMessage.Code, Message: resp.ErrorMessage.Description}
	}
	if len(resp.Configuration.Parts) == 0 {
		return nil, ErrEmptyResponse
	}
	return &resp.Configuration, nil
}

func firstError(msgs []ServiceMessage) (ServiceMessage, bool) {
	for _, m := range msgs {
		if strings.EqualFold(m.Severity, "Error") || m.Severity == "" {
			return m, true
		}
	}
	return ServiceMessage{}, false
}
