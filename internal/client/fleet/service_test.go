package fleet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehmet-raif33/ulasfleet/internal/client/api"
)

type fakeTokens struct {
	authed bool
	token  string
}

func (f *fakeTokens) IsAuthenticated() bool { return f.authed }
func (f *fakeTokens) AccessToken() string   { return f.token }

func newTestClient(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, api.Options{
		Tokens:      &fakeTokens{authed: true, token: "t-1"},
		BackoffBase: time.Millisecond,
	})
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, data any, pagination *api.Pagination) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"success":    true,
		"data":       data,
		"pagination": pagination,
	})
	require.NoError(t, err)
}

func TestVehicleService_List(t *testing.T) {
	var gotPath, gotAuth string
	svc := NewVehicleService(newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(t, w,
			[]Vehicle{{ID: "v1", Plate: "34 ABC 01"}, {ID: "v2", Plate: "06 XYZ 99"}},
			&api.Pagination{Page: 2, Limit: 10, Total: 12, TotalPages: 2})
	}))

	page, err := svc.List(context.Background(), ListParams{Page: 2, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, "/vehicles?limit=10&page=2", gotPath)
	assert.Equal(t, "Bearer t-1", gotAuth)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "34 ABC 01", page.Items[0].Plate)
	require.NotNil(t, page.Pagination)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestCollection_GetEscapesID(t *testing.T) {
	var gotPath string
	svc := NewPersonnelService(newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		writeEnvelope(t, w, Personnel{ID: "p/1", Name: "Ada"}, nil)
	}))

	p, err := svc.Get(context.Background(), "p/1")
	require.NoError(t, err)
	assert.Equal(t, "/personnel/p%2F1", gotPath)
	assert.Equal(t, "Ada", p.Name)
}

func TestCollection_CreateUpdateDelete(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]any
	}
	var calls []call
	svc := NewTransactionService(newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, path: r.URL.Path}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&c.body)
		}
		calls = append(calls, c)
		writeEnvelope(t, w, Transaction{ID: "tx1", Amount: 150}, nil)
	}))

	ctx := context.Background()
	created, err := svc.Create(ctx, map[string]any{"amount": 150})
	require.NoError(t, err)
	assert.Equal(t, "tx1", created.ID)

	_, err = svc.Update(ctx, "tx1", map[string]any{"amount": 200})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "tx1"))

	require.Len(t, calls, 3)
	assert.Equal(t, call{method: http.MethodPost, path: "/transactions", body: map[string]any{"amount": float64(150)}}, calls[0])
	assert.Equal(t, http.MethodPut, calls[1].method)
	assert.Equal(t, "/transactions/tx1", calls[1].path)
	assert.Equal(t, call{method: http.MethodDelete, path: "/transactions/tx1"}, calls[2])
}

func TestCollection_ServerErrorSurfacesClassified(t *testing.T) {
	svc := NewCategoryService(newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"name is required"}`))
	}))

	_, err := svc.Create(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Equal(t, api.KindRequestFailed, api.KindOf(err))
	assert.Contains(t, err.Error(), "name is required")
}

func TestHealthService_CheckIsPublic(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(t, w, HealthStatus{Status: "ok"}, nil)
	}))
	t.Cleanup(srv.Close)
	c := api.NewClient(srv.URL, api.Options{BackoffBase: time.Millisecond})

	st, err := NewHealthService(c).Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", st.Status)
	assert.Empty(t, gotAuth, "health is reachable without a credential")
}
