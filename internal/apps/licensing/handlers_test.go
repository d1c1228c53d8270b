package licensing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/noveos/backend/internal/config"
	"github.com/noveos/backend/internal/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testAdminToken = "test-admin-token"

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	cfg := &config.Config{
		AdminToken: testAdminToken,
		SiteURL:    "https://noveos.jp",
	}

	app := fiber.New()
	plugin := New(mailer.NewWithChannels("ops@example.com"))
	plugin.RegisterRoutes(app.Group("/api"), db, cfg)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, admin bool) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("X-Admin-Token", testAdminToken)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestGenerateLicenseEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	t.Run("requires admin token", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/license/generate", map[string]interface{}{
			"plan": "startup", "customer_name": "A", "customer_email": "a@example.com",
		}, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("issues a startup license", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/license/generate", map[string]interface{}{
			"plan":           "startup",
			"customer_name":  "Hana Sato",
			"customer_email": "hana@example.com",
			"months":         1,
		}, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "Startup", body["plan"])
		assert.EqualValues(t, 50, body["server_limit"])
		assert.Equal(t, fmtDate(today().AddDate(0, 0, 30)), body["valid_until"])
		assert.Contains(t, body["license_key"], "NOVE-STA-")
	})

	t.Run("rejects unknown plan", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/license/generate", map[string]interface{}{
			"plan": "platinum", "customer_name": "A", "customer_email": "a@example.com",
		}, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/license/generate", map[string]interface{}{
			"plan": "startup", "customer_name": "A", "customer_email": "not-an-email",
		}, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestTrialEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/trial/request", map[string]interface{}{
		"name": "Yuki Tanaka", "email": "yuki@example.com", "company": "Tanaka LLC",
	}, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["server_limit"])
	assert.Equal(t, fmtDate(today().AddDate(0, 0, TrialDays)), body["valid_until"])
	key, _ := body["license_key"].(string)
	assert.Contains(t, key, "NOVE-TRI-")
	assert.Contains(t, body["install_command"], key)
	assert.Contains(t, body["install_command"], "install.sh")

	// One trial per email.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/trial/request", map[string]interface{}{
		"name": "Yuki Tanaka", "email": "yuki@example.com",
	}, false)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestActivateEndpoint(t *testing.T) {
	app, db := newTestApp(t)
	seedLicense(t, db, "NOVE-PER-AAAA-BBBB-1001", "personal", 2, today().AddDate(0, 0, 30), true)

	activate := func(machine string) (*http.Response, map[string]interface{}) {
		return doJSON(t, app, http.MethodPost, "/api/license/activate", map[string]interface{}{
			"license_key": "NOVE-PER-AAAA-BBBB-1001", "machine_id": machine,
		}, false)
	}

	resp, body := activate("m1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_valid"])
	assert.Equal(t, StatusActivated, body["status"])
	assert.EqualValues(t, 1, body["activated_count"])

	resp, body = activate("m1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, StatusValid, body["status"])
	assert.EqualValues(t, 1, body["activated_count"])

	resp, _ = activate("m2")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = activate("m3")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, ReasonLimitReached, body["reason"])
	assert.EqualValues(t, 2, body["server_limit"])

	resp, body = doJSON(t, app, http.MethodPost, "/api/license/activate", map[string]interface{}{
		"license_key": "NOVE-XXX-0000-0000-0000", "machine_id": "m1",
	}, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestValidateEndpoint(t *testing.T) {
	app, db := newTestApp(t)
	seedLicense(t, db, "NOVE-ACA-AAAA-BBBB-1001", "academic", 10, today().AddDate(0, 0, 90), true)

	resp, body := doJSON(t, app, http.MethodGet, "/api/license/validate/NOVE-ACA-AAAA-BBBB-1001", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_valid"])
	assert.Equal(t, false, body["is_expired"])
	assert.EqualValues(t, 0, body["activated_count"])
	assert.Equal(t, "NOVE-ACA-AAAA-BBBB-1001", body["license_key"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/license/validate/NOVE-XXX-0000-0000-0000", nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRevokeEndpoint(t *testing.T) {
	app, db := newTestApp(t)
	seedLicense(t, db, "NOVE-STD-AAAA-BBBB-1001", "standard", 500, today().AddDate(0, 0, 90), true)

	resp, _ := doJSON(t, app, http.MethodDelete, "/api/license/NOVE-STD-AAAA-BBBB-1001", nil, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodDelete, "/api/license/NOVE-STD-AAAA-BBBB-1001", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	// Activation against the revoked license is refused.
	resp, body = doJSON(t, app, http.MethodPost, "/api/license/activate", map[string]interface{}{
		"license_key": "NOVE-STD-AAAA-BBBB-1001", "machine_id": "m1",
	}, false)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, ReasonRevoked, body["reason"])
}

func TestActivationAdminEndpoints(t *testing.T) {
	app, db := newTestApp(t)
	seedLicense(t, db, "NOVE-STA-AAAA-BBBB-2001", "startup", 50, today().AddDate(0, 0, 30), true)

	for i := 0; i < 3; i++ {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/license/activate", map[string]interface{}{
			"license_key": "NOVE-STA-AAAA-BBBB-2001", "machine_id": fmt.Sprintf("m%d", i),
		}, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/license/NOVE-STA-AAAA-BBBB-2001/activations", nil)
	req.Header.Set("X-Admin-Token", testAdminToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var acts []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&acts))
	assert.Len(t, acts, 3)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/license/NOVE-STA-AAAA-BBBB-2001/activations/m1", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&Activation{}).
		Where("license_key = ?", "NOVE-STA-AAAA-BBBB-2001").
		Count(&count).Error)
	assert.EqualValues(t, 2, count)

	// Listing all licenses includes the count.
	req = httptest.NewRequest(http.MethodGet, "/api/licenses", nil)
	req.Header.Set("X-Admin-Token", testAdminToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var licenses []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&licenses))
	require.Len(t, licenses, 1)
	assert.EqualValues(t, 2, licenses[0]["activated_count"])
}
