package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTokens struct {
	token   string
	cleared int
}

func (m *memTokens) Token() string { return m.token }

func (m *memTokens) ClearToken() error {
	m.token = ""
	m.cleared++
	return nil
}

func newTestClient(t *testing.T, h http.HandlerFunc, tokens TokenStore, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", tokens, opts...)
}

func TestBearerHeaderAttached(t *testing.T) {
	var gotAuth, gotReqID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		assert.Equal(t, "/api/user/xp", r.URL.Path)
		_, _ = io.WriteString(w, `{"xp":10,"level":1,"next_level_xp":100,"last_xp_grant":null}`)
	}, &memTokens{token: "abc"})

	s, err := c.UserXP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, 10, s.XP)
}

func TestNoTokenSendsUnauthenticated(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `[]`)
	}, &memTokens{})

	_, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestUnauthorizedClearsTokenAndNotifies(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusUnprocessableEntity} {
		tokens := &memTokens{token: "expired"}
		var notified int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"msg":"Token has expired"}`)
		}, tokens, WithUnauthorizedHandler(func() { atomic.AddInt32(&notified, 1) }))

		_, err := c.Profile(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnauthorized), "status %d: %v", status, err)

		var ae *AuthError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, status, ae.Status)
		assert.Equal(t, "Token has expired", ae.Message)

		assert.Empty(t, tokens.token)
		assert.Equal(t, 1, tokens.cleared)
		assert.Equal(t, int32(1), atomic.LoadInt32(&notified))
		assert.Equal(t, KindAuth, Classify(err))
	}
}

func TestHTTPErrorCarriesServerMessage(t *testing.T) {
	tokens := &memTokens{token: "abc"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Categoria não encontrada"}`)
	}, tokens)

	_, err := c.CreateTransaction(context.Background(), TransactionInput{
		Description: "x", Amount: 1, Type: TypeExpense, CategoryID: 99,
	})
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "Categoria não encontrada", he.Message)
	assert.Equal(t, "Categoria não encontrada", UserMessage(err))
	assert.Equal(t, "abc", tokens.token, "non-auth errors keep the session")
}

func TestMalformedNextLevelXP(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"xp":10,"level":1,"next_level_xp":0}`)
	}, &memTokens{token: "abc"})

	_, err := c.UserXP(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
	assert.Equal(t, KindMalformed, Classify(err))
}

func TestUndecodableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>oops</html>`)
	}, nil)

	_, err := c.Challenges(context.Background())
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, nil)
	_, err := c.Rankings(context.Background())
	var ne *NetworkError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, KindNetwork, Classify(err))
	assert.Equal(t, MsgNetwork, UserMessage(err))
}

func TestTimeoutOptIn(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, nil, WithTimeout(50*time.Millisecond))

	_, err := c.Rankings(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindNetwork, Classify(err))
}

func TestDailyGrantMissingXPGrantedIsZero(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = io.WriteString(w, `{"message":"Você já recebeu XP hoje. Volte amanhã!","total_xp":100,"level":1,"next_level_xp":200}`)
	}, &memTokens{token: "abc"})

	r, err := c.GrantDailyXP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, r.XPGranted)
	assert.Equal(t, 100, r.State().XP)
}

func TestRecalculateLevel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"message":"ok","xp":450,"old_level":2,"new_level":3,"level_changed":true,"next_level_xp":600}`)
	}, &memTokens{token: "abc"})

	r, err := c.RecalculateLevel(context.Background())
	require.NoError(t, err)
	assert.True(t, r.LevelChanged)
	assert.Equal(t, 3, r.NewLevel)
}

func TestRecalculateLevelWithoutOldLevel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"level_changed":false,"new_level":2,"xp":150,"next_level_xp":300}`)
	}, &memTokens{token: "abc"})

	r, err := c.RecalculateLevel(context.Background())
	require.NoError(t, err)
	assert.False(t, r.LevelChanged)
	assert.Nil(t, r.OldLevel)
	assert.Equal(t, 2, r.NewLevel)
	assert.Equal(t, 150, r.XP)
	assert.Equal(t, 300, r.NextLevelXP)
}

func TestRecalculateLevelRejectsBadOldLevel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"level_changed":true,"old_level":0,"new_level":2,"xp":150,"next_level_xp":300}`)
	}, &memTokens{token: "abc"})

	_, err := c.RecalculateLevel(context.Background())
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

// txServer keeps created transactions in memory and lists them back.
type txServer struct {
	mu     sync.Mutex
	nextID int
	txs    []Transaction
}

func (s *txServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodPost:
		var in TransactionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, `{"error":"bad body"}`, http.StatusBadRequest)
			return
		}
		s.nextID++
		tx := Transaction{
			ID: s.nextID, Description: in.Description, Amount: in.Amount,
			Type: in.Type, Date: in.Date, CategoryID: in.CategoryID, UserID: 1,
			CreatedAt: "2025-01-10 12:00:00",
		}
		s.txs = append(s.txs, tx)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "Transação criada com sucesso", "transaction": tx})
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(s.txs)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	srv := &txServer{nextID: 6}
	c := newTestClient(t, srv.ServeHTTP, &memTokens{token: "abc"})

	in := TransactionInput{Description: "Mercado", Amount: 45.90, Type: TypeExpense, Date: "2025-01-10", CategoryID: 3}
	created, err := c.CreateTransaction(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 7, created.ID)

	list, err := c.Transactions(context.Background(), TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	tx := list[0]
	assert.Equal(t, created.ID, tx.ID)
	assert.Equal(t, in.Description, tx.Description)
	assert.InDelta(t, in.Amount, tx.Amount, 1e-9)
	assert.Equal(t, in.Type, tx.Type)
	assert.Equal(t, in.Date, tx.Date)
	assert.Equal(t, in.CategoryID, tx.CategoryID)
}

func TestCreateTransactionDecodesWrappedRecord(t *testing.T) {
	var got TransactionInput
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"message":"Transação criada com sucesso","transaction":{
			"id":7,"description":"Mercado","amount":45.9,"type":"expense","date":"2025-01-10",
			"created_at":"2025-01-10 12:00:00","user_id":1,"category_id":3,
			"category":{"id":3,"name":"Alimentação","type":"expense","color":"#FF5722"}}}`)
	}, &memTokens{token: "abc"})

	in := TransactionInput{Description: "Mercado", Amount: 45.90, Type: TypeExpense, Date: "2025-01-10", CategoryID: 3}
	tx, err := c.CreateTransaction(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, in, got)
	assert.Equal(t, 7, tx.ID)
	require.NotNil(t, tx.Category)
	assert.Equal(t, "Alimentação", tx.Category.Name)
}

func TestUpdateTransactionBareRecord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/transactions/7", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"amount": 50.0}, body)
		_, _ = io.WriteString(w, `{"id":7,"description":"Mercado","amount":50,"type":"expense","date":"2025-01-10","category_id":3}`)
	}, &memTokens{token: "abc"})

	amount := 50.0
	tx, err := c.UpdateTransaction(context.Background(), 7, TransactionUpdate{Amount: &amount})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, tx.Amount, 1e-9)
}

func TestInvalidTypeRejectedBeforeSending(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, &memTokens{token: "abc"})

	_, err := c.CreateTransaction(context.Background(), TransactionInput{Description: "x", Amount: 1, Type: "transfer", CategoryID: 1})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, KindValidation, Classify(err))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestTransactionFilterQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "expense", q.Get("type"))
		assert.Equal(t, "3", q.Get("category_id"))
		assert.Equal(t, "2025-01-01", q.Get("start_date"))
		assert.False(t, q.Has("limit"))
		_, _ = io.WriteString(w, `[]`)
	}, &memTokens{token: "abc"})

	_, err := c.Transactions(context.Background(), TransactionFilter{Type: TypeExpense, CategoryID: 3, StartDate: "2025-01-01"})
	require.NoError(t, err)
}

func TestLoginRequiresToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"message":"Login bem-sucedido","user_id":1,"username":"ana"}`)
	}, nil)

	_, err := c.Login(context.Background(), "ana", "pw")
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}
