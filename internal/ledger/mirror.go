package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/haki-platform/haki-backend/internal/models"
)

// tinybarsPerHbar converts mirror-node balances, which are reported in
// tinybars.
const tinybarsPerHbar = 100_000_000

// MirrorClient queries the public mirror-node REST API for read-only
// account, transaction and token state. Reads go to the mirror node instead
// of consensus nodes, so they are free and do not need the operator key.
type MirrorClient struct {
	baseURL    string
	tokenID    string
	httpClient *http.Client
}

// NewMirrorClient creates a mirror-node client for the given base URL.
func NewMirrorClient(baseURL, tokenID string) *MirrorClient {
	return &MirrorClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokenID: tokenID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type mirrorAccountResponse struct {
	Account string `json:"account"`
	Balance struct {
		Balance int64 `json:"balance"`
		Tokens  []struct {
			TokenID string `json:"token_id"`
			Balance int64  `json:"balance"`
		} `json:"tokens"`
	} `json:"balance"`
}

// MirrorTransaction is the subset of mirror-node transaction fields the
// explorer endpoints expose.
type MirrorTransaction struct {
	TransactionID  string `json:"transaction_id"`
	Name           string `json:"name"`
	Result         string `json:"result"`
	ConsensusAt    string `json:"consensus_timestamp"`
	ChargedTxFee   int64  `json:"charged_tx_fee"`
	MemoBase64     string `json:"memo_base64"`
	EntityID       string `json:"entity_id"`
	TransactionTag string `json:"transaction_hash"`
}

type mirrorTransactionResponse struct {
	Transactions []MirrorTransaction `json:"transactions"`
}

// MirrorTokenInfo is the mirror-node token projection.
type MirrorTokenInfo struct {
	TokenID     string `json:"token_id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    string `json:"decimals"`
	TotalSupply string `json:"total_supply"`
	Type        string `json:"type"`
}

// AccountBalance returns the HBAR and reputation-token balance of an
// account.
func (m *MirrorClient) AccountBalance(ctx context.Context, account string) (*models.WalletBalance, error) {
	var parsed mirrorAccountResponse
	if err := m.get(ctx, "/api/v1/accounts/"+account, &parsed); err != nil {
		return nil, err
	}

	balance := &models.WalletBalance{
		Account:   parsed.Account,
		Hbar:      float64(parsed.Balance.Balance) / tinybarsPerHbar,
		FetchedAt: time.Now(),
	}
	for _, t := range parsed.Balance.Tokens {
		if t.TokenID == m.tokenID {
			balance.TokenUnits = t.Balance
			break
		}
	}

	return balance, nil
}

// Transaction returns the mirror-node record of one transaction.
func (m *MirrorClient) Transaction(ctx context.Context, txID string) (*MirrorTransaction, error) {
	var parsed mirrorTransactionResponse
	if err := m.get(ctx, "/api/v1/transactions/"+txID, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Transactions) == 0 {
		return nil, fmt.Errorf("mirror: transaction %s not found", txID)
	}
	return &parsed.Transactions[0], nil
}

// TokenInfo returns the mirror-node record of the reputation token.
func (m *MirrorClient) TokenInfo(ctx context.Context) (*MirrorTokenInfo, error) {
	if m.tokenID == "" {
		return nil, fmt.Errorf("mirror: reputation token is not configured")
	}
	var parsed MirrorTokenInfo
	if err := m.get(ctx, "/api/v1/tokens/"+m.tokenID, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (m *MirrorClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("mirror: build request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mirror: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("mirror: %s not found", path)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("mirror: unexpected status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("mirror: decode response: %w", err)
	}
	return nil
}
