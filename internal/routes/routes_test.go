package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/congo-pay/payroll_escrow/internal/config"
	"github.com/congo-pay/payroll_escrow/internal/logging"
)

const operatorKey = "payroll-operator"

type client struct {
	t   *testing.T
	app *fiber.App
}

func newClient(t *testing.T) client {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(operatorKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash key: %v", err)
	}
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	cfg := config.Config{
		AppName:            "PayrollEscrow",
		AppEnv:             "test",
		IdempotencyTTL:     time.Minute,
		OperatorKeyHash:    string(hash),
		AuthFailuresPerMin: 5,
	}
	app := fiber.New()
	if err := Setup(app, Deps{Cfg: cfg, Cache: cache, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return client{t: t, app: app}
}

func (c client) do(method, path, body string) (int, map[string]any) {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+operatorKey)
	req.Header.Set("Idempotency-Key", uuid.NewString())
	resp, err := c.app.Test(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var payload map[string]any
	_ = json.Unmarshal(raw, &payload)
	return resp.StatusCode, payload
}

func (c client) createWallet(denom string) string {
	c.t.Helper()
	status, payload := c.do(http.MethodPost, "/api/v1/wallets", `{"owner_id":"`+uuid.NewString()+`","denom":`+denom+`}`)
	if status != http.StatusCreated {
		c.t.Fatalf("create wallet: status %d payload %v", status, payload)
	}
	id, _ := payload["id"].(string)
	return id
}

func (c client) balance(walletID string) map[string]any {
	c.t.Helper()
	status, payload := c.do(http.MethodGet, "/api/v1/wallets/"+walletID+"/balance", "")
	if status != http.StatusOK {
		c.t.Fatalf("balance: status %d", status)
	}
	bal, _ := payload["balance"].(map[string]any)
	return bal
}

func TestPayrollFlow(t *testing.T) {
	c := newClient(t)
	employer := c.createWallet(`{"native":"uatom"}`)
	employee := c.createWallet(`{"native":"uatom"}`)

	if status, _ := c.do(http.MethodPost, "/api/v1/wallets/"+employer+"/deposits", `{"denom":"uatom","amount":"1000"}`); status != http.StatusCreated {
		t.Fatalf("deposit: status %d", status)
	}

	status, payload := c.do(http.MethodPost, "/api/v1/transfers",
		`{"from_wallet_id":"`+employer+`","to_wallet_id":"`+employee+`","funds":{"native":[{"denom":"uatom","amount":"400"}]}}`)
	if status != http.StatusCreated {
		t.Fatalf("transfer: status %d payload %v", status, payload)
	}

	if status, _ := c.do(http.MethodPost, "/api/v1/wallets/"+employee+"/withdrawals",
		`{"recipient":"cosmos1employee","funds":{"native":[{"denom":"uatom","amount":"100"}]}}`); status != http.StatusCreated {
		t.Fatalf("withdraw: status %d", status)
	}

	assertNative(t, c.balance(employer), "600")
	assertNative(t, c.balance(employee), "300")

	status, _ = c.do(http.MethodPost, "/api/v1/transfers",
		`{"from_wallet_id":"`+employee+`","to_wallet_id":"`+employer+`","funds":{"native":[{"denom":"uatom","amount":"301"}]}}`)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for overdraft, got %d", status)
	}
	assertNative(t, c.balance(employee), "300")
}

func TestTokenWalletRejectsNativeFunds(t *testing.T) {
	c := newClient(t)
	w := c.createWallet(`{"cw20":"juno1tokenaddr"}`)

	if status, _ := c.do(http.MethodPost, "/api/v1/wallets/"+w+"/deposits", `{"denom":"ujuno","amount":"5"}`); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}

	bal := c.balance(w)
	token, ok := bal["cw20"].(map[string]any)
	if !ok || token["address"] != "juno1tokenaddr" || token["amount"] != "0" {
		t.Fatalf("unexpected token balance %v", bal)
	}
}

func TestPingIsPublic(t *testing.T) {
	c := newClient(t)
	resp, err := c.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	resp, err = c.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/wallets/x/balance", nil))
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without operator key, got %d", resp.StatusCode)
	}
}

func TestSetupRequiresBackendsOutsideDev(t *testing.T) {
	err := Setup(fiber.New(), Deps{Cfg: config.Config{AppEnv: "production"}, Logger: logging.Discard()})
	if err == nil {
		t.Fatal("expected error without database")
	}
}

func assertNative(t *testing.T, bal map[string]any, amount string) {
	t.Helper()
	coins, ok := bal["native"].([]any)
	if !ok || len(coins) != 1 {
		t.Fatalf("expected one native coin, got %v", bal)
	}
	coin := coins[0].(map[string]any)
	if coin["denom"] != "uatom" || coin["amount"] != amount {
		t.Fatalf("expected %suatom, got %v", amount, coin)
	}
}
