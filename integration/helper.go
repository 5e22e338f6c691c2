package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ihorko/product-dashboard/internal/backend"
	"github.com/ihorko/product-dashboard/internal/config"
	httpAPI "github.com/ihorko/product-dashboard/internal/http"
	"github.com/ihorko/product-dashboard/internal/http/controller"
	"github.com/ihorko/product-dashboard/pkg/envelope"
	"github.com/ihorko/product-dashboard/pkg/model"
)

// fakeUpstream is an in-memory stand-in for the external product API. It
// speaks the same envelope format and honors page/limit/search, which lets the
// whole proxy stack run end to end without a real backend.
type fakeUpstream struct {
	mu       sync.Mutex
	products map[string]map[string]interface{}

	// LastAuth records the Authorization header of the most recent request.
	LastAuth string
	// LastQuery records the raw query string of the most recent request.
	LastQuery string
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{products: map[string]map[string]interface{}{}}
}

// Seed inserts a product directly into the store and returns its id.
func (f *fakeUpstream) Seed(p model.Product) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	raw, _ := json.Marshal(p)
	var entry map[string]interface{}
	_ = json.Unmarshal(raw, &entry)
	f.products[p.ID] = entry
	return p.ID
}

func (f *fakeUpstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/web/v1/products", f.list)
	mux.HandleFunc("/api/web/v1/product", f.single)
	return mux
}

func (f *fakeUpstream) record(r *http.Request) {
	f.LastAuth = r.Header.Get("Authorization")
	f.LastQuery = r.URL.RawQuery
}

func (f *fakeUpstream) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(r)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	search := r.URL.Query().Get("search")
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var matched []map[string]interface{}
	for _, entry := range f.products {
		title, _ := entry["product_title"].(string)
		if search == "" || strings.Contains(strings.ToLower(title), strings.ToLower(search)) {
			matched = append(matched, entry)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, _ := matched[i]["product_id"].(string)
		b, _ := matched[j]["product_id"].(string)
		return a < b
	})

	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	pageItems := matched[start:end]
	if pageItems == nil {
		pageItems = []map[string]interface{}{}
	}

	totalPages := (total + limit - 1) / limit
	writeJSON(w, http.StatusOK, envelope.Success(http.StatusOK, pageItems, &envelope.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		Search:     search,
	}))
}

func (f *fakeUpstream) single(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(r)

	switch r.Method {
	case http.MethodGet:
		entry, ok := f.products[r.URL.Query().Get("product_id")]
		if !ok {
			writeJSON(w, http.StatusNotFound, envelope.Failure(http.StatusNotFound, "NOT_FOUND", "product not found"))
			return
		}
		writeJSON(w, http.StatusOK, envelope.Success(http.StatusOK, entry, nil))

	case http.MethodPost:
		var entry map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
			writeJSON(w, http.StatusBadRequest, envelope.Failure(http.StatusBadRequest, "BAD_REQUEST", "malformed body"))
			return
		}
		title, _ := entry["product_title"].(string)
		for _, existing := range f.products {
			if existingTitle, _ := existing["product_title"].(string); existingTitle == title {
				writeJSON(w, http.StatusConflict, envelope.Failure(http.StatusConflict, "DUPLICATE", "product already exists"))
				return
			}
		}
		id := uuid.NewString()
		entry["product_id"] = id
		entry["created_timestamp"] = time.Now().UTC().Format(time.RFC3339)
		f.products[id] = entry
		writeJSON(w, http.StatusCreated, envelope.Success(http.StatusCreated, entry, nil))

	case http.MethodPut:
		var patch map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSON(w, http.StatusBadRequest, envelope.Failure(http.StatusBadRequest, "BAD_REQUEST", "malformed body"))
			return
		}
		id, _ := patch["product_id"].(string)
		entry, ok := f.products[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, envelope.Failure(http.StatusNotFound, "NOT_FOUND", "product not found"))
			return
		}
		for key, value := range patch {
			if key != "product_id" {
				entry[key] = value
			}
		}
		entry["updated_timestamp"] = time.Now().UTC().Format(time.RFC3339)
		writeJSON(w, http.StatusOK, envelope.Success(http.StatusOK, entry, nil))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// TestStack wires the fake upstream behind a real proxy router, both served
// over httptest so requests traverse the full middleware chain.
type TestStack struct {
	Upstream *fakeUpstream
	Proxy    *httptest.Server

	upstreamServer *httptest.Server
}

// SetupStack starts the fake upstream and the proxy in front of it.
func SetupStack(t *testing.T) *TestStack {
	t.Helper()

	upstream := newFakeUpstream()
	upstreamServer := httptest.NewServer(upstream.handler())

	gin.SetMode(gin.TestMode)
	conf := &config.Config{
		Backend: config.Backend{
			BaseURL:      upstreamServer.URL + "/api/web/v1",
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		},
	}
	backendClient := backend.New(conf.Backend.BaseURL, conf.Backend.ReadTimeout, conf.Backend.WriteTimeout)
	router := httpAPI.InitRouter(conf, gin.New(), controller.New(conf), controller.NewProductController(backendClient))

	return &TestStack{
		Upstream:       upstream,
		Proxy:          httptest.NewServer(router),
		upstreamServer: upstreamServer,
	}
}

// Cleanup stops both servers.
func (s *TestStack) Cleanup(t *testing.T) {
	t.Helper()
	s.Proxy.Close()
	s.upstreamServer.Close()
}
