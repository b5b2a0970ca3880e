package api_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKitFlow_RegisterGenerateCollect(t *testing.T) {
	ts := startTestServer(t, &mockDBPinger{}, "0.1.0")
	defer ts.shutdown()

	token := signUpUser(t, ts, "staff@example.com", "secret6", "Staff One")

	// Register two runners.
	for _, r := range []map[string]any{
		{"fullName": "Aisha Rahman", "bibNumber": "101"},
		{"fullName": "Ben Ong", "bibNumber": "102"},
	} {
		status, _ := doJSON(t, http.MethodPost, ts.baseURL+"/runners", token, r)
		require.Equal(t, http.StatusCreated, status)
	}

	// Generate one pending kit per runner.
	status, env := doJSON(t, http.MethodPost, ts.baseURL+"/runners/kits", token, nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(2), env["data"].(map[string]interface{})["created"])

	// The kit list carries runner details and pending status.
	status, env = doJSON(t, http.MethodGet, ts.baseURL+"/kits", token, nil)
	require.Equal(t, http.StatusOK, status)
	kits := env["data"].([]interface{})
	require.Len(t, kits, 2)
	first := kits[0].(map[string]interface{})
	assert.Equal(t, "pending", first["status"])
	kitID := first["id"].(string)

	// Dashboard before collection.
	status, env = doJSON(t, http.MethodGet, ts.baseURL+"/dashboard", token, nil)
	require.Equal(t, http.StatusOK, status)
	dash := env["data"].(map[string]interface{})
	assert.Equal(t, float64(2), dash["totalRunners"])
	assert.Equal(t, float64(2), dash["pendingKits"])
	assert.Equal(t, float64(0), dash["collectionRate"])

	// Collect the first kit via a representative.
	status, env = doJSON(t, http.MethodPost, ts.baseURL+"/kits/"+kitID+"/collect", token, map[string]any{
		"collectionType": "representative",
		"representative": map[string]any{
			"fullName": "Siti Binti Ali",
			"idNumber": "880101-14-5678",
			"idType":   "ic",
		},
	})
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, env["data"].(map[string]interface{})["representativeId"])

	// A second collection of the same kit conflicts.
	status, env = doJSON(t, http.MethodPost, ts.baseURL+"/kits/"+kitID+"/collect", token, map[string]any{
		"collectionType": "self",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_COLLECTED", env["error"].(map[string]interface{})["code"])

	// Dashboard reflects the flip.
	status, env = doJSON(t, http.MethodGet, ts.baseURL+"/dashboard", token, nil)
	require.Equal(t, http.StatusOK, status)
	dash = env["data"].(map[string]interface{})
	assert.Equal(t, float64(1), dash["pendingKits"])
	assert.Equal(t, float64(1), dash["collectedKits"])
	assert.Equal(t, float64(50), dash["collectionRate"])
}

func TestKitFlow_SearchFilters(t *testing.T) {
	ts := startTestServer(t, &mockDBPinger{}, "0.1.0")
	defer ts.shutdown()

	token := signUpUser(t, ts, "staff@example.com", "secret6", "Staff One")

	for _, r := range []map[string]any{
		{"fullName": "Aisha Rahman", "bibNumber": "101"},
		{"fullName": "Ben Ong", "bibNumber": "202"},
	} {
		status, _ := doJSON(t, http.MethodPost, ts.baseURL+"/runners", token, r)
		require.Equal(t, http.StatusCreated, status)
	}

	status, env := doJSON(t, http.MethodGet, ts.baseURL+"/runners?search=aisha", token, nil)
	require.Equal(t, http.StatusOK, status)
	runners := env["data"].([]interface{})
	require.Len(t, runners, 1)
	assert.Equal(t, "Aisha Rahman", runners[0].(map[string]interface{})["fullName"])

	status, _ = doJSON(t, http.MethodPost, ts.baseURL+"/runners/kits", token, nil)
	require.Equal(t, http.StatusCreated, status)

	status, env = doJSON(t, http.MethodGet, ts.baseURL+"/kits?search=202", token, nil)
	require.Equal(t, http.StatusOK, status)
	kits := env["data"].([]interface{})
	require.Len(t, kits, 1)
	assert.Equal(t, "202", kits[0].(map[string]interface{})["kitNumber"])
}

func TestKitExport_RoleGated(t *testing.T) {
	ts := startTestServer(t, &mockDBPinger{}, "0.1.0")
	defer ts.shutdown()

	userToken := signUpUser(t, ts, "staff@example.com", "secret6", "Staff One")

	// Plain users cannot export.
	status, _ := doJSON(t, http.MethodGet, ts.baseURL+"/kits/collections/export", userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Organizers can.
	orgToken := signUpUser(t, ts, "organizer@example.com", "secret6", "Org One")
	promote(t, ts, "organizer@example.com", "organizer")

	req, err := http.NewRequest(http.MethodGet, ts.baseURL+"/kits/collections/export", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+orgToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "kit-collections-")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}

func TestKitCollect_ValidationOverHTTP(t *testing.T) {
	ts := startTestServer(t, &mockDBPinger{}, "0.1.0")
	defer ts.shutdown()

	token := signUpUser(t, ts, "staff@example.com", "secret6", "Staff One")

	status, _ := doJSON(t, http.MethodPost, ts.baseURL+"/runners", token, map[string]any{
		"fullName": "Aisha Rahman", "bibNumber": "101",
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = doJSON(t, http.MethodPost, ts.baseURL+"/runners/kits", token, nil)
	require.Equal(t, http.StatusCreated, status)

	_, env := doJSON(t, http.MethodGet, ts.baseURL+"/kits", token, nil)
	kitID := env["data"].([]interface{})[0].(map[string]interface{})["id"].(string)

	// Representative collection without the representative's details fails
	// and leaves the kit pending.
	status, env = doJSON(t, http.MethodPost, ts.baseURL+"/kits/"+kitID+"/collect", token, map[string]any{
		"collectionType": "representative",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env["error"].(map[string]interface{})["code"])

	_, env = doJSON(t, http.MethodGet, ts.baseURL+"/kits", token, nil)
	first := env["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "pending", first["status"])
}
