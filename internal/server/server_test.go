package server

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crabbox/internal/config"
	infradb "crabbox/internal/infra/db"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceAddr = "0x9999999999999999999999999999999999999999"

type testServer struct {
	t        *testing.T
	handler  http.Handler
	ownerKey *ecdsa.PrivateKey
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := infradb.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, infradb.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	ownerKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	cfg := config.Config{
		FEURL: "http://localhost:5173",
		Auth: config.Auth{
			JWTSecret:      "test-secret",
			AccessTokenTTL: 15 * time.Minute,
			LoginNonceTTL:  5 * time.Minute,
		},
		Chain: config.Chain{
			OwnerAddress:       crypto.PubkeyToAddress(ownerKey.PublicKey).Hex(),
			ServiceAddress:     serviceAddr,
			TokenFaucetEnabled: true,
		},
	}

	s := NewServer(Deps{Config: cfg, DB: db})
	return &testServer{t: t, handler: s.Handler(), ownerKey: ownerKey}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

// challenge → 署名 → login でJWTを得る
func (s *testServer) login(key *ecdsa.PrivateKey) string {
	s.t.Helper()
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()

	code, ch := s.do(http.MethodPost, "/auth/challenge", "", map[string]string{"address": addr})
	require.Equal(s.t, http.StatusOK, code)

	sig, err := crypto.Sign(accounts.TextHash([]byte(ch["message"].(string))), key)
	require.NoError(s.t, err)
	sig[64] += 27

	code, res := s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"address":   addr,
		"signature": hexutil.Encode(sig),
	})
	require.Equal(s.t, http.StatusOK, code, res)
	return res["token"].(map[string]interface{})["access_token"].(string)
}

func TestServer_PurchaseAndRefundFlow(t *testing.T) {
	s := newTestServer(t)

	buyerKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	buyerAddr := crypto.PubkeyToAddress(buyerKey.PublicKey).Hex()

	ownerTok := s.login(s.ownerKey)
	buyerTok := s.login(buyerKey)

	code, me := s.do(http.MethodGet, "/me", ownerTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OWNER", me["role"])

	code, ow := s.do(http.MethodGet, "/owner", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, crypto.PubkeyToAddress(s.ownerKey.PublicKey).Hex(), ow["owner"])

	//商品登録（5トークン×3個）
	code, gb := s.do(http.MethodPut, "/admin/giftboxes/1", ownerTok, map[string]interface{}{
		"name": "Snow crab", "description": "2kg", "price": "5", "stock": 3, "active": true,
	})
	require.Equal(t, http.StatusOK, code, gb)
	assert.Equal(t, float64(5_000_000), gb["price"])

	code, next := s.do(http.MethodGet, "/giftboxes/next-id", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), next["next_id"])

	//購入者以外は商品登録できない
	code, res := s.do(http.MethodPut, "/admin/giftboxes/2", buyerTok, map[string]interface{}{
		"name": "x", "price": "1", "stock": 1, "active": true,
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "PERMISSION_DENIED", res["code"])

	code, _ = s.do(http.MethodPost, "/admin/token/mint", ownerTok, map[string]string{"to": buyerAddr, "amount": "100"})
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPost, "/token/approve", buyerTok, map[string]string{"spender": serviceAddr, "amount": "100"})
	require.Equal(t, http.StatusOK, code)

	//未ログインは買えない
	code, _ = s.do(http.MethodPost, "/orders", "", map[string]interface{}{"gift_box_id": 1, "quantity": 1, "shipping_info": "Tokyo"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, order := s.do(http.MethodPost, "/orders", buyerTok, map[string]interface{}{
		"gift_box_id": 1, "quantity": 2, "shipping_info": "Tokyo",
	})
	require.Equal(t, http.StatusCreated, code, order)
	assert.Equal(t, float64(1), order["id"])
	assert.Equal(t, float64(10_000_000), order["total_amount"])
	assert.Equal(t, buyerAddr, order["buyer"])

	//在庫を超える購入
	code, res = s.do(http.MethodPost, "/orders", buyerTok, map[string]interface{}{
		"gift_box_id": 1, "quantity": 2, "shipping_info": "Tokyo",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INSUFFICIENT_STOCK", res["code"])

	code, gb = s.do(http.MethodGet, "/giftboxes/1", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), gb["stock"])

	code, next = s.do(http.MethodGet, "/orders/next-id", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), next["next_id"])

	code, bal := s.do(http.MethodGet, "/token/balance/"+buyerAddr, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(90_000_000), bal["balance"])

	//返金申請 → 一部返金
	code, order = s.do(http.MethodPost, "/orders/1/refund-request", buyerTok, nil)
	require.Equal(t, http.StatusOK, code, order)
	assert.Equal(t, "REFUND_REQUESTED", order["status_name"])

	code, order = s.do(http.MethodPost, "/admin/orders/1/refund/approve", ownerTok, map[string]string{"amount": "4"})
	require.Equal(t, http.StatusOK, code, order)
	assert.Equal(t, float64(3), order["status"])

	code, order = s.do(http.MethodGet, "/orders/1", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(4_000_000), order["refund_amount"])

	code, w := s.do(http.MethodPost, "/admin/withdraw", ownerTok, nil)
	require.Equal(t, http.StatusOK, code, w)
	assert.Equal(t, float64(6_000_000), w["amount"])

	code, res = s.do(http.MethodPost, "/admin/withdraw", ownerTok, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "NOTHING_TO_WITHDRAW", res["code"])

	code, list := s.do(http.MethodGet, "/admin/orders?status=REFUNDED", ownerTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), list["total"])

	code, _ = s.do(http.MethodGet, "/admin/audit-logs?involving="+buyerAddr+"&money=true&action=approve_refund,withdraw", ownerTok, nil)
	require.Equal(t, http.StatusOK, code)
	code, res = s.do(http.MethodGet, "/admin/audit-logs?money=maybe", ownerTok, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION", res["code"])

	code, ledger := s.do(http.MethodGet, "/admin/ledger", ownerTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), ledger["balance"])
}

func TestServer_LogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	tok := s.login(key)

	code, _ := s.do(http.MethodGet, "/me/orders", tok, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodPost, "/auth/logout", tok, nil)
	require.Equal(t, http.StatusOK, code)

	code, res := s.do(http.MethodGet, "/me/orders", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", res["code"])
}

func TestServer_LoginRejectsWrongSigner(t *testing.T) {
	s := newTestServer(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()

	code, ch := s.do(http.MethodPost, "/auth/challenge", "", map[string]string{"address": addr})
	require.Equal(t, http.StatusOK, code)

	sig, err := crypto.Sign(accounts.TextHash([]byte(ch["message"].(string))), other)
	require.NoError(t, err)

	code, _ = s.do(http.MethodPost, "/auth/login", "", map[string]string{"address": addr, "signature": hexutil.Encode(sig)})
	assert.Equal(t, http.StatusUnauthorized, code)

	//nonceは使い捨て
	sig, err = crypto.Sign(accounts.TextHash([]byte(ch["message"].(string))), key)
	require.NoError(t, err)
	code, _ = s.do(http.MethodPost, "/auth/login", "", map[string]string{"address": addr, "signature": hexutil.Encode(sig)})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestServer_PublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, h := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", h["status"])

	code, list := s.do(http.MethodGet, "/giftboxes?limit=10", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), list["total"])

	code, res := s.do(http.MethodGet, "/giftboxes/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION", res["code"])

	code, res = s.do(http.MethodGet, "/orders/7", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", res["code"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "crabbox_http_requests_total")
}
