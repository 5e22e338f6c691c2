package dashclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ihorko/product-dashboard/pkg/dashclient"
	"github.com/ihorko/product-dashboard/pkg/envelope"
	"github.com/ihorko/product-dashboard/pkg/model"
	"github.com/ihorko/product-dashboard/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type proxyStub struct {
	server *httptest.Server
	hits   atomic.Int64
	auth   atomic.Pointer[string]
	query  atomic.Pointer[string]
	body   atomic.Pointer[string]
}

func newProxyStub(t *testing.T, handler http.HandlerFunc) *proxyStub {
	t.Helper()
	ps := &proxyStub{}
	ps.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.hits.Add(1)
		auth := r.Header.Get("Authorization")
		ps.auth.Store(&auth)
		query := r.URL.RawQuery
		ps.query.Store(&query)
		body, _ := io.ReadAll(r.Body)
		s := string(body)
		ps.body.Store(&s)
		handler(w, r)
	}))
	t.Cleanup(ps.server.Close)
	return ps
}

func TestListAttachesTokenAndBuildsQuery(t *testing.T) {
	ps := newProxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status_code":"200","is_success":true,"error_code":null,"data":[{"product_id":"p-1","product_title":"Desk Lamp","product_price":19.99}],"pagination":{"page":2,"limit":10,"total":23,"total_pages":3}}`))
	})

	client := dashclient.New(ps.server.URL,
		dashclient.WithTokenSource(session.Static{BearerToken: "Bearer tok-1"}))

	resp := client.List(context.Background(), dashclient.ListParams{Page: 2, Limit: 10, Search: "  lamp  "})
	require.True(t, resp.IsSuccess)
	assert.Nil(t, resp.ErrorCode)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Desk Lamp", resp.Data[0].Title)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 23, resp.Pagination.Total)

	assert.Equal(t, "Bearer tok-1", *ps.auth.Load())
	assert.Contains(t, *ps.query.Load(), "page=2")
	assert.Contains(t, *ps.query.Load(), "limit=10")
	assert.Contains(t, *ps.query.Load(), "search=lamp")
}

func TestListOmitsBlankSearchAndDefaults(t *testing.T) {
	ps := newProxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status_code":"200","is_success":true,"error_code":null,"data":[]}`))
	})
	client := dashclient.New(ps.server.URL)

	resp := client.List(context.Background(), dashclient.ListParams{Search: "   "})
	require.True(t, resp.IsSuccess)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)

	query := *ps.query.Load()
	assert.Contains(t, query, "page=1")
	assert.Contains(t, query, "limit=10")
	assert.NotContains(t, query, "search")
	assert.Empty(t, *ps.auth.Load(), "no session means no Authorization header")
}

func TestListRemoteFailureReturnsEnvelopeNotError(t *testing.T) {
	ps := newProxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"backend down"}`))
	})
	client := dashclient.New(ps.server.URL)

	resp := client.List(context.Background(), dashclient.ListParams{})
	assert.False(t, resp.IsSuccess)
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, envelope.CodeFetchProductsError, *resp.ErrorCode)
	assert.Equal(t, "500", resp.StatusCode)
	assert.Equal(t, "backend down", resp.Message)
	assert.NotNil(t, resp.Data, "list data must stay an array on failure")
}

func TestListNetworkFailure(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	var notes []dashclient.Notification
	client := dashclient.New(dead.URL, dashclient.WithNotifier(dashclient.NotifierFunc(func(n dashclient.Notification) {
		notes = append(notes, n)
	})))

	resp := client.List(context.Background(), dashclient.ListParams{})
	assert.False(t, resp.IsSuccess)
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, envelope.CodeFetchProductsError, *resp.ErrorCode)

	require.Len(t, notes, 1)
	assert.Equal(t, dashclient.KindNetworkError, notes[0].Kind)
}

func TestGetRejectsBlankIDLocally(t *testing.T) {
	ps := newProxyStub(t, func(w http.ResponseWriter, r *http.Request) {})
	client := dashclient.New(ps.server.URL)

	resp, err := client.Get(context.Background(), "   ")
	assert.Nil(t, resp)

	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "product_id", vErr.Field)
	assert.Equal(t, int64(0), ps.hits.Load(), "blank id must not issue a network call")
}

func TestGetSuccess(t *testing.T) {
	ps := newProxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status_code":"200","is_success":true,"error_code":null,"data":{"product_id":"p-1","product_title":"Desk Lamp","product_price":19.99}}`))
	})
	client := dashclient.New(ps.server.URL)

	resp, err := client.Get(context.Background(), "p-1")
	require.NoError(t, err)
	require.True(t, resp.IsSuccess)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "p-1", resp.Data.ID)
	assert.Contains(t, *ps.query.Load(), "product_id=p-1")
}

func TestCreateValidatesLocally(t *testing.T) {
	ps := newProxyStub(t, func(w http.ResponseWriter, r *http.Request) {})
	client := dashclient.New(ps.server.URL)

	tests := []struct {
		name  string
		input model.ProductInput
		field string
	}{
		{name: "short title", input: model.ProductInput{Title: "x", Price: 10}, field: "product_title"},
		{name: "negative price", input: model.ProductInput{Title: "Desk Lamp", Price: -0.01}, field: "product_price"},
		{name: "price over cap", input: model.ProductInput{Title: "Desk Lamp", Price: 1000000.00}, field: "product_price"},
		{name: "broken image url", input: model.ProductInput{Title: "Desk Lamp", Price: 10, Image: "not a url"}, field: "product_image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.Create(context.Background(), tt.input)
			assert.Nil(t, resp)

			var vErr *model.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
	assert.Equal(t, int64(0), ps.hits.Load(), "validation failures must not issue network calls")
}

func TestCreateCleansBeforeSending(t *testing.T) {
	ps := newProxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status_code":"201","is_success":true,"error_code":null,"data":{"product_id":"p-new","product_title":"Desk Lamp","product_price":20}}`))
	})
	client := dashclient.New(ps.server.URL)

	resp, err := client.Create(context.Background(), model.ProductInput{
		Title: "  Desk Lamp  ",
		Price: 19.999,
	})
	require.NoError(t, err)
	require.True(t, resp.IsSuccess)

	sent := *ps.body.Load()
	assert.Contains(t, sent, `"product_title":"Desk Lamp"`)
	assert.Contains(t, sent, `"product_price":20`)
}

func TestCreateRemoteFailure(t *testing.T) {
	ps := newProxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"product already exists"}`))
	})
	client := dashclient.New(ps.server.URL)

	resp, err := client.Create(context.Background(), model.ProductInput{Title: "Desk Lamp", Price: 10})
	require.NoError(t, err, "remote failures must not surface as errors")
	assert.False(t, resp.IsSuccess)
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, envelope.CodeCreateProductError, *resp.ErrorCode)
	assert.Equal(t, "409", resp.StatusCode)
	assert.Equal(t, "product already exists", resp.Message)
}

func TestUpdateSendsProductIDWithPatch(t *testing.T) {
	ps := newProxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status_code":"200","is_success":true,"error_code":null,"data":{"product_id":"p-1"}}`))
	})
	client := dashclient.New(ps.server.URL)

	price := 25.504
	resp, err := client.Update(context.Background(), "p-1", model.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess)

	sent := *ps.body.Load()
	assert.Contains(t, sent, `"product_id":"p-1"`)
	assert.Contains(t, sent, `"product_price":25.5`)
	assert.NotContains(t, sent, "product_title")
}

func TestUpdateRejectsBlankIDAndBadPatch(t *testing.T) {
	ps := newProxyStub(t, func(w http.ResponseWriter, r *http.Request) {})
	client := dashclient.New(ps.server.URL)

	_, err := client.Update(context.Background(), "", model.ProductPatch{})
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "product_id", vErr.Field)

	bad := -1.0
	_, err = client.Update(context.Background(), "p-1", model.ProductPatch{Price: &bad})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "product_price", vErr.Field)

	assert.Equal(t, int64(0), ps.hits.Load())
}

func TestNotificationsByStatusClass(t *testing.T) {
	tests := []struct {
		status int
		kind   dashclient.Kind
	}{
		{status: http.StatusUnauthorized, kind: dashclient.KindSessionExpired},
		{status: http.StatusForbidden, kind: dashclient.KindForbidden},
		{status: http.StatusNotFound, kind: dashclient.KindNotFound},
		{status: http.StatusTooManyRequests, kind: dashclient.KindRateLimited},
		{status: http.StatusInternalServerError, kind: dashclient.KindServerError},
		{status: http.StatusRequestTimeout, kind: dashclient.KindTimeout},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			ps := newProxyStub(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message":"nope"}`))
			})

			var notes []dashclient.Notification
			client := dashclient.New(ps.server.URL, dashclient.WithNotifier(dashclient.NotifierFunc(func(n dashclient.Notification) {
				notes = append(notes, n)
			})))

			resp, err := client.Get(context.Background(), "p-1")
			require.NoError(t, err)
			assert.False(t, resp.IsSuccess)

			require.Len(t, notes, 1)
			assert.Equal(t, tt.kind, notes[0].Kind)
			assert.Equal(t, tt.status, notes[0].StatusCode)
			assert.Equal(t, "nope", notes[0].Message)
		})
	}

	t.Run("no notification on success", func(t *testing.T) {
		ps := newProxyStub(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status_code":"200","is_success":true,"error_code":null,"data":null}`))
		})

		fired := false
		client := dashclient.New(ps.server.URL, dashclient.WithNotifier(dashclient.NotifierFunc(func(dashclient.Notification) {
			fired = true
		})))

		_, err := client.Get(context.Background(), "p-1")
		require.NoError(t, err)
		assert.False(t, fired)
	})
}

func TestTimeoutNotification(t *testing.T) {
	ps := newProxyStub(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	var notes []dashclient.Notification
	client := dashclient.New(ps.server.URL,
		dashclient.WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}),
		dashclient.WithNotifier(dashclient.NotifierFunc(func(n dashclient.Notification) {
			notes = append(notes, n)
		})))

	resp := client.List(context.Background(), dashclient.ListParams{})
	assert.False(t, resp.IsSuccess)
	assert.Equal(t, "408", resp.StatusCode)

	require.Len(t, notes, 1)
	assert.Equal(t, dashclient.KindTimeout, notes[0].Kind)
}
