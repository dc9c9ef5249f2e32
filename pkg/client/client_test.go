package vqgate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQuery(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/query" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"uuid":"doc-1","score":0.92,"distance":0.08,"properties":{"title":"first","year":2021}},
			{"uuid":"doc-2","properties":{"title":"second"}}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithAPIKey("secret"))

	items, err := c.Query(context.Background(), SearchRequest{
		Collection:    "articles",
		Query:         "machine learning",
		TopK:          10,
		ExcludeFields: []string{"body"},
		Filter: And(
			Eq("status", "active"),
			Gte("year", 2020),
		),
	})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", gotAuth)
	}
	if gotBody["collection_name"] != "articles" {
		t.Errorf("collection_name = %v", gotBody["collection_name"])
	}
	if gotBody["top_k"] != float64(10) {
		t.Errorf("top_k = %v, want 10", gotBody["top_k"])
	}

	filter, ok := gotBody["filter"].(map[string]any)
	if !ok {
		t.Fatalf("filter missing or wrong type: %v", gotBody["filter"])
	}
	if filter["operator"] != "And" {
		t.Errorf("filter operator = %v, want And", filter["operator"])
	}
	conds, ok := filter["conditions"].([]any)
	if !ok || len(conds) != 2 {
		t.Fatalf("filter conditions = %v, want 2 entries", filter["conditions"])
	}
	first := conds[0].(map[string]any)
	if first["field"] != "status" || first["operator"] != "eq" || first["value"] != "active" {
		t.Errorf("first condition = %v", first)
	}

	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].UUID != "doc-1" {
		t.Errorf("items[0].UUID = %q", items[0].UUID)
	}
	if items[0].Score == nil || *items[0].Score != 0.92 {
		t.Errorf("items[0].Score = %v, want 0.92", items[0].Score)
	}
	if items[1].Score != nil || items[1].Distance != nil {
		t.Errorf("items[1] metrics should be nil: score=%v distance=%v", items[1].Score, items[1].Distance)
	}
	if items[0].Properties["year"] != float64(2021) {
		t.Errorf("items[0].Properties[year] = %v", items[0].Properties["year"])
	}
}

func TestQuery_OmitsDefaultTopK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, present := body["top_k"]; present {
			t.Errorf("top_k should be omitted when zero: %v", body["top_k"])
		}
		if _, present := body["filter"]; present {
			t.Errorf("filter should be omitted when nil: %v", body["filter"])
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	items, err := New(srv.URL).Query(context.Background(), SearchRequest{
		Collection: "articles",
		Query:      "q",
	})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
}

func TestQuery_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     string
		sentinel error
	}{
		{"malformed filter", http.StatusBadRequest, "malformed_filter", ErrMalformedFilter},
		{"unsupported operator", http.StatusBadRequest, "unsupported_operator", ErrUnsupportedOperator},
		{"too complex", http.StatusBadRequest, "filter_too_complex", ErrFilterTooComplex},
		{"unknown field", http.StatusBadRequest, "unknown_field", ErrUnknownField},
		{"not found", http.StatusNotFound, "collection_not_found", ErrCollectionNotFound},
		{"embedding", http.StatusBadGateway, "embedding_provider_error", ErrEmbeddingProvider},
		{"backend", http.StatusInternalServerError, "backend_error", ErrBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"code":    tt.code,
					"message": "boom",
				})
			}))
			defer srv.Close()

			_, err := New(srv.URL).Query(context.Background(), SearchRequest{
				Collection: "articles",
				Query:      "q",
			})
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("error = %v, want %v", err, tt.sentinel)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error is not *APIError: %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Message != "boom" {
				t.Errorf("Message = %q", apiErr.Message)
			}
		})
	}
}

func TestQuery_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Query(context.Background(), SearchRequest{Collection: "c", Query: "q"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not *APIError: %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if apiErr.Code != "internal_error" {
		t.Errorf("Code = %q", apiErr.Code)
	}
}

func TestCollections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/collections" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"collections":["articles","places"]}`))
	}))
	defer srv.Close()

	cols, err := New(srv.URL).Collections(context.Background())
	if err != nil {
		t.Fatalf("Collections() error: %v", err)
	}
	if len(cols) != 2 || cols[0] != "articles" || cols[1] != "places" {
		t.Errorf("Collections() = %v", cols)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","backend_version":"8.0.1"}`))
	}))
	defer srv.Close()

	h, err := New(srv.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if h.Status != "ok" || h.BackendVersion != "8.0.1" {
		t.Errorf("Health() = %+v", h)
	}
}

func TestHealth_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"error"}`))
	}))
	defer srv.Close()

	h, err := New(srv.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if h.Status != "error" {
		t.Errorf("Status = %q, want error", h.Status)
	}
}

func TestFilterMarshal(t *testing.T) {
	f := Or(
		And(Eq("status", "active"), Lte("year", 2024)),
		Like("title", "intro*"),
	)

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"operator":"Or","conditions":[` +
		`{"operator":"And","conditions":[` +
		`{"field":"status","operator":"eq","value":"active"},` +
		`{"field":"year","operator":"lte","value":2024}]},` +
		`{"field":"title","operator":"like","value":"intro*"}]}`
	if string(data) != want {
		t.Errorf("marshal =\n%s\nwant\n%s", data, want)
	}
}
