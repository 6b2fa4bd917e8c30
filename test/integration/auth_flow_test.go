//go:build integration

package integration

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medportal/internal/database"
)

func TestSchemaBootstrapIsIdempotent(t *testing.T) {
	ctx := context.Background()

	db, err := database.New(ctx, databaseURL, 2, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	require.NoError(t, db.EnsureSchema(ctx))
	require.NoError(t, db.Health(ctx))
}

func TestLoginRefreshLogout(t *testing.T) {
	server, _ := newServer(t)

	tokens := login(t, server.URL, adminID, adminPassword)
	assert.Equal(t, "Admin", tokens.Role)
	assert.Equal(t, "bearer", tokens.TokenType)
	assert.Equal(t, int64(3600), tokens.ExpiresIn)

	resp := doJSON(t, http.MethodPost, server.URL+"/session/validate?token="+tokens.AccessToken, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	info := decode[struct {
		Valid    bool   `json:"valid"`
		DoctorID string `json:"doctor_id"`
	}](t, resp)
	assert.True(t, info.Valid)
	assert.Equal(t, adminID, info.DoctorID)

	resp = doJSON(t, http.MethodPost, server.URL+"/token/refresh", map[string]string{"refresh_token": tokens.RefreshToken}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := decode[tokenPair](t, resp)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The rotated-out token is single use.
	resp = doJSON(t, http.MethodPost, server.URL+"/token/refresh", map[string]string{"refresh_token": tokens.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/logout", map[string]string{"refresh_token": rotated.RefreshToken}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/token/refresh", map[string]string{"refresh_token": rotated.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestConcurrentRefreshHasOneWinner(t *testing.T) {
	server, _ := newServer(t)
	tokens := login(t, server.URL, adminID, adminPassword)

	const racers = 5
	body := `{"refresh_token":"` + tokens.RefreshToken + `"}`
	statuses := make([]int, racers)

	var wg sync.WaitGroup
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(server.URL+"/token/refresh", "application/json", strings.NewReader(body))
			if err != nil {
				return
			}
			_ = resp.Body.Close()
			statuses[i] = resp.StatusCode
		}()
	}
	wg.Wait()

	wins := 0
	for _, status := range statuses {
		if status == http.StatusOK {
			wins++
		} else {
			assert.Equal(t, http.StatusUnauthorized, status)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestFailedLoginsAreAudited(t *testing.T) {
	server, _ := newServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/login", map[string]string{"doctor_id": adminID, "password": "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	admin := login(t, server.URL, adminID, adminPassword)

	resp = doJSON(t, http.MethodGet, server.URL+"/admin/audit?doctor_id="+adminID+"&action=login_attempt&success=false", nil, admin.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[struct {
		Items []struct {
			Action  string  `json:"action"`
			Success bool    `json:"success"`
			Reason  *string `json:"reason"`
		} `json:"items"`
	}](t, resp)

	require.NotEmpty(t, page.Items)
	assert.Equal(t, "login_attempt", page.Items[0].Action)
	assert.False(t, page.Items[0].Success)
	require.NotNil(t, page.Items[0].Reason)
	assert.Equal(t, "wrong_password", *page.Items[0].Reason)
}
