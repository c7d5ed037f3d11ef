// internal/services/sideshift_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ideabay/ideabay-backend/internal/config"
	"github.com/ideabay/ideabay-backend/internal/models"
)

// CheckoutGateway is the slice of the payment provider the purchase and
// webhook services depend on.
type CheckoutGateway interface {
	CreateCheckout(ctx context.Context, req *CheckoutRequest, callerIP string) (*Checkout, error)
	GetCheckout(ctx context.Context, checkoutID string) (*Checkout, error)
	GetShift(ctx context.Context, shiftID string) (*Shift, error)
}

type CheckoutRequest struct {
	SettleCoin    string `json:"settleCoin"`
	SettleNetwork string `json:"settleNetwork"`
	SettleAmount  string `json:"settleAmount"`
	SettleAddress string `json:"settleAddress"`
	SettleMemo    string `json:"settleMemo,omitempty"`
	AffiliateID   string `json:"affiliateId"`
	SuccessURL    string `json:"successUrl"`
	CancelURL     string `json:"cancelUrl"`
}

type Checkout struct {
	ID            string          `json:"id"`
	SettleCoin    string          `json:"settleCoin"`
	SettleNetwork string          `json:"settleNetwork"`
	SettleAddress string          `json:"settleAddress"`
	SettleAmount  string          `json:"settleAmount"`
	AffiliateID   string          `json:"affiliateId"`
	SuccessURL    string          `json:"successUrl"`
	CancelURL     string          `json:"cancelUrl"`
	Orders        []CheckoutOrder `json:"orders"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}

// CheckoutOrder is a settlement order ("shift") the provider spawned under a
// checkout. Its ID is the identifier webhooks are keyed by.
type CheckoutOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Shift struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	TxID   string `json:"txid,omitempty"`
}

type coinNetwork struct {
	Coin    string
	Network string
}

// chainMap maps a seller's preferred chain to the provider's settle
// coin/network pair. Unknown chains fall back to Ethereum mainnet; that is a
// silent default, not an error.
var chainMap = map[models.Chain]coinNetwork{
	models.ChainEthereum: {Coin: "ETH", Network: "mainnet"},
	models.ChainPolygon:  {Coin: "MATIC", Network: "mainnet"},
	models.ChainArbitrum: {Coin: "ETH", Network: "arbitrum"},
	models.ChainOptimism: {Coin: "ETH", Network: "optimism"},
	models.ChainSepolia:  {Coin: "ETH", Network: "sepolia"},
}

// CoinAndNetworkForChain resolves the settlement pair for a chain name.
func CoinAndNetworkForChain(chain models.Chain) (coin, network string) {
	if cn, ok := chainMap[chain]; ok {
		return cn.Coin, cn.Network
	}
	return "ETH", "mainnet"
}

// SideShiftClient talks to the SideShift Pay v2 API.
type SideShiftClient struct {
	apiURL    string
	secret    string
	accountID string
	client    *http.Client
}

func NewSideShiftClient(cfg config.SideShiftConfig) *SideShiftClient {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &SideShiftClient{
		apiURL:    cfg.APIURL,
		secret:    cfg.Secret,
		accountID: cfg.AccountID,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *SideShiftClient) CreateCheckout(ctx context.Context, req *CheckoutRequest, callerIP string) (*Checkout, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &GatewayError{Op: "create checkout", Message: "marshal request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/checkout", bytes.NewReader(body))
	if err != nil {
		return nil, &GatewayError{Op: "create checkout", Message: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("x-sideshift-secret", c.secret)
	httpReq.Header.Set("x-user-ip", callerIP)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &GatewayError{Op: "create checkout", Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{Op: "create checkout", Message: remoteError(resp)}
	}

	var checkout Checkout
	if err := json.NewDecoder(resp.Body).Decode(&checkout); err != nil {
		return nil, &GatewayError{Op: "create checkout", Message: "decode response", Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"checkout_id":    checkout.ID,
		"settle_coin":    checkout.SettleCoin,
		"settle_network": checkout.SettleNetwork,
	}).Info("SideShift checkout created")

	return &checkout, nil
}

func (c *SideShiftClient) GetCheckout(ctx context.Context, checkoutID string) (*Checkout, error) {
	var checkout Checkout
	if err := c.get(ctx, "/checkout/"+checkoutID, "get checkout", &checkout); err != nil {
		return nil, err
	}
	return &checkout, nil
}

func (c *SideShiftClient) GetShift(ctx context.Context, shiftID string) (*Shift, error) {
	var shift Shift
	if err := c.get(ctx, "/shifts/"+shiftID, "get shift", &shift); err != nil {
		return nil, err
	}
	return &shift, nil
}

func (c *SideShiftClient) get(ctx context.Context, path, op string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return &GatewayError{Op: op, Message: "build request", Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("x-sideshift-secret", c.secret)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return &GatewayError{Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &GatewayError{Op: op, Message: remoteError(resp)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &GatewayError{Op: op, Message: "decode response", Err: err}
	}

	return nil
}

// remoteError extracts the provider's error message from a non-2xx response,
// falling back to the HTTP status.
func remoteError(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(body) > 0 {
		var payload struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error.Message != "" {
			return payload.Error.Message
		}
	}
	return fmt.Sprintf("unexpected status %s", resp.Status)
}
