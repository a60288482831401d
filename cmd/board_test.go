package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/poupa/internal/api"
	"github.com/theirongolddev/poupa/internal/store"
)

func newTestClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	kv, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	prefs := store.NewPrefs(kv, nil)
	require.NoError(t, prefs.SaveSession(store.Session{Token: "tok", UserID: "1", Username: "ana"}))
	return api.NewClient(srv.URL, prefs)
}

func TestFetchBoardSectionsFailIndependently(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/challenges", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	})
	mux.HandleFunc("/user/achievements", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"title":"First step","xp_reward":10,"achieved_at":"2025-03-01T10:00:00"}]`))
	})
	mux.HandleFunc("/rankings", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"username":"ana","level":3,"xp":420,"is_current_user":true}]`))
	})

	d := fetchBoard(context.Background(), newTestClient(t, mux), true, true, true)

	assert.Error(t, d.challengesErr)
	assert.Nil(t, d.challenges)
	require.NoError(t, d.achievementsErr)
	require.Len(t, d.achievements, 1)
	assert.True(t, d.achievements[0].Achieved())
	require.NoError(t, d.rankingsErr)
	require.Len(t, d.rankings, 1)
	assert.Equal(t, "ana", d.rankings[0].Username)
}

func TestFetchBoardSkipsUnwantedSections(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(`[]`))
	})

	d := fetchBoard(context.Background(), newTestClient(t, mux), false, false, true)
	assert.NoError(t, d.rankingsErr)
	assert.Equal(t, 1, hits)
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateBaseURL(t *testing.T) {
	assert.NoError(t, validateBaseURL("http://localhost:5000/api"))
	assert.NoError(t, validateBaseURL("https://poupa.example.com"))
	assert.Error(t, validateBaseURL("localhost:5000"))
	assert.Error(t, validateBaseURL("ftp://x"))
}

func TestErrorLine(t *testing.T) {
	assert.Equal(t, errNotLoggedIn.Error(), errorLine(errNotLoggedIn))
	assert.Equal(t, api.MsgNetwork, errorLine(&api.NetworkError{Method: "GET", Path: "/profile", Err: context.DeadlineExceeded}))
}

func TestCmdContextHasNoDeadline(t *testing.T) {
	ctx, cancel := cmdContext()
	defer cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok)
}
