package ledger

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/opengov-ph/treasury-backend/internal/config"
)

// Result is what the workflow gets back from an anchoring attempt. Committed
// false means the digest is not on the ledger; the approval itself still
// stands and the record carries anchored=false for later reconciliation.
type Result struct {
	Ref       string `json:"ref"`
	Committed bool   `json:"committed"`
}

// Gateway anchors approval documents on the external append-only ledger.
// Implementations never return an error: every failure mode degrades to
// Result{Committed: false}.
type Gateway interface {
	Record(ctx context.Context, kind string, doc Document, digest, signer string) Result
}

// Client talks JSON-RPC to the private ledger node. Transactions are sent
// from the signer's node-managed account; gas is estimated first and capped
// at the configured ceiling so a misbehaving node can't run away with fees.
type Client struct {
	endpoint   string
	contract   string
	chainID    int64
	gasCeiling uint64
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg config.Ledger) *Client {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		contract:   cfg.ContractAddress,
		chainID:    cfg.ChainID,
		gasCeiling: cfg.GasCeiling,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// recordPayload is the transaction data handed to the recorder contract.
// Amounts cross this boundary in centavos; the ledger only deals in integer
// minor units.
type recordPayload struct {
	Kind           string `json:"kind"`
	RecordID       string `json:"record_id"`
	Digest         string `json:"digest"`
	AmountCentavos int64  `json:"amount_centavos"`
	CreatorWallet  string `json:"creator_wallet"`
	ApproverWallet string `json:"approver_wallet"`
}

func (c *Client) Record(ctx context.Context, kind string, doc Document, digest, signer string) Result {
	if err := c.limiter.Wait(ctx); err != nil {
		log.Printf("[ledger] rate limit wait aborted: %v", err)
		return Result{}
	}

	payload := recordPayload{
		Kind:           kind,
		RecordID:       doc.RecordID,
		Digest:         digest,
		AmountCentavos: toMinorUnits(doc.Amount),
		CreatorWallet:  doc.CreatorWallet,
		ApproverWallet: doc.ApproverWallet,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[ledger] encode payload: %v", err)
		return Result{}
	}

	tx := map[string]string{
		"from": signer,
		"to":   c.contract,
		"data": "0x" + hex.EncodeToString(data),
	}

	var gasHex string
	if err := c.rpcCall(ctx, "eth_estimateGas", []any{tx}, &gasHex); err != nil {
		log.Printf("[ledger] estimate gas: %v", err)
		return Result{}
	}
	gas, err := parseHexUint(gasHex)
	if err != nil {
		log.Printf("[ledger] parse gas estimate %q: %v", gasHex, err)
		return Result{}
	}
	if c.gasCeiling > 0 && gas > c.gasCeiling {
		gas = c.gasCeiling
	}
	tx["gas"] = fmt.Sprintf("0x%x", gas)

	var txHash string
	if err := c.rpcCall(ctx, "eth_sendTransaction", []any{tx}, &txHash); err != nil {
		log.Printf("[ledger] send transaction: %v", err)
		return Result{}
	}

	log.Printf("[ledger] anchored %s %s tx=%s", kind, doc.RecordID, txHash)
	return Result{Ref: txHash, Committed: true}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) rpcCall(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("node returned status %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return err
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	return json.Unmarshal(rpcResp.Result, out)
}

func parseHexUint(s string) (uint64, error) {
	var v uint64
	if _, err := fmt.Sscanf(s, "0x%x", &v); err != nil {
		return 0, err
	}
	return v, nil
}

// toMinorUnits converts a peso amount to centavos. Amounts are validated to
// at most two decimal places before they reach the gateway.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// Static is a deterministic Gateway for tests and offline development.
type Static struct {
	Ref       string
	Committed bool
}

func (s Static) Record(ctx context.Context, kind string, doc Document, digest, signer string) Result {
	if !s.Committed {
		return Result{}
	}
	return Result{Ref: s.Ref, Committed: true}
}
