package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rrens/deskflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, success bool, data any, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"data":    data,
		"error":   errMsg,
	})
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, true, domain.User{ID: "u1", Email: "a@b.c"}, "")
	}))
	defer srv.Close()

	t.Run("token present", func(t *testing.T) {
		client := NewClient(srv.URL, WithTokenSource(func() string { return "tok-123" }))
		_, err := client.Me(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok-123", gotAuth)
	})

	t.Run("no token source", func(t *testing.T) {
		client := NewClient(srv.URL)
		_, err := client.Me(context.Background())
		require.NoError(t, err)
		assert.Empty(t, gotAuth)
	})

	t.Run("empty token omits header", func(t *testing.T) {
		client := NewClient(srv.URL, WithTokenSource(func() string { return "" }))
		_, err := client.Me(context.Background())
		require.NoError(t, err)
		assert.Empty(t, gotAuth)
	})
}

func TestClient_UnauthorizedFiresHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "token expired")
	}))
	defer srv.Close()

	fired := 0
	client := NewClient(srv.URL, WithUnauthorizedHook(func() { fired++ }))

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "token expired", Message(err))
	assert.Equal(t, 1, fired)

	// The hook fires for every 401, including on the login endpoint.
	_, err = client.Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 2, fired)
}

func TestClient_ForbiddenDoesNotFireHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusForbidden, false, nil, "access denied")
	}))
	defer srv.Close()

	fired := 0
	client := NewClient(srv.URL, WithUnauthorizedHook(func() { fired++ }))

	_, err := client.GetTicket(context.Background(), "t1")
	require.Error(t, err)
	assert.True(t, IsForbidden(err))
	assert.False(t, IsUnauthorized(err))
	assert.Equal(t, "access denied", Message(err))
	assert.Zero(t, fired)
}

func TestClient_DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)

		var creds domain.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "agent@example.com", creds.Email)

		writeEnvelope(w, http.StatusOK, true, domain.Session{
			Token: "tok-1",
			User:  &domain.User{ID: "u1", Name: "Agent", Email: creds.Email, Role: domain.RoleAgent},
		}, "")
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	session, err := client.Login(context.Background(), "agent@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", session.Token)
	require.NotNil(t, session.User)
	assert.Equal(t, domain.RoleAgent, session.User.Role)
}

func TestClient_EnvelopeFailure(t *testing.T) {
	t.Run("success false", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, false, nil, "something broke")
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		_, err := client.Me(context.Background())
		require.Error(t, err)
		assert.Equal(t, "something broke", Message(err))
	})

	t.Run("missing data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, true, nil, "")
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		_, err := client.Me(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing data")
	})

	t.Run("non-json error page", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Bad Gateway", http.StatusBadGateway)
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		_, err := client.Me(context.Background())
		require.Error(t, err)
		assert.True(t, IsStatus(err, http.StatusBadGateway))
		assert.Equal(t, "Bad Gateway", Message(err))
	})
}

func TestClient_TicketFilterQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tickets", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		assert.Equal(t, "high", r.URL.Query().Get("priority"))
		assert.Equal(t, "printer", r.URL.Query().Get("search"))
		writeEnvelope(w, http.StatusOK, true, []domain.Ticket{{ID: "t1", Title: "Printer down"}}, "")
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	tickets, err := client.ListTickets(context.Background(), domain.TicketFilter{
		Status:   domain.StatusOpen,
		Priority: domain.PriorityHigh,
		Search:   "printer",
	})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "Printer down", tickets[0].Title)
}

func TestClient_MessageRoutes(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/tickets/t1/messages", r.URL.Path)
			writeEnvelope(w, http.StatusOK, true, []domain.Message{
				{ID: "m1", TicketID: "t1", Body: "hello", CreatedAt: now},
			}, "")
		case http.MethodPost:
			assert.Equal(t, "/tickets/t1/messages", r.URL.Path)
			var input domain.MessageCreate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
			writeEnvelope(w, http.StatusCreated, true, domain.Message{
				ID: "m2", TicketID: "t1", Body: input.Body, CreatedAt: now,
			}, "")
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	messages, err := client.ListMessages(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Body)

	sent, err := client.SendMessage(context.Background(), "t1", "any update?")
	require.NoError(t, err)
	assert.Equal(t, "m2", sent.ID)
	assert.Equal(t, "any update?", sent.Body)
}
