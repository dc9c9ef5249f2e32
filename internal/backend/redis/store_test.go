package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kestrel-cloud/vqgate/internal/backend"
	"github.com/kestrel-cloud/vqgate/internal/backend/predicate"
	"github.com/kestrel-cloud/vqgate/internal/domain"
	"github.com/kestrel-cloud/vqgate/internal/domain/search/filter"
)

type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (e *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	e.calls++
	return e.vector, e.err
}

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c, &stubEmbedder{})
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, &stubEmbedder{})
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"Unknown Index name", "unknown index", true},
		{"NO SUCH INDEX", "no such index", true},
		{"hello world", "world", true},
		{"short", "longer than input", false},
		{"exact", "exact", true},
		{"", "", true},
	}
	for _, tc := range tests {
		got := containsIgnoreCase(tc.s, tc.sub)
		if got != tc.want {
			t.Errorf("containsIgnoreCase(%q, %q) = %v, want %v", tc.s, tc.sub, got, tc.want)
		}
	}
}

// --- search.go tests ---

func TestSemanticSearch_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[1] == "vq:docs:idx"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2), // total
			mock.RedisString("vq:docs:doc-1"),
			mock.RedisArray(
				mock.RedisString("__vector_score"),
				mock.RedisString("0.1"),
				mock.RedisString("title"),
				mock.RedisString("first"),
				mock.RedisString("year"),
				mock.RedisString("2021"),
			),
			mock.RedisString("vq:docs:doc-2"),
			mock.RedisArray(
				mock.RedisString("__vector_score"),
				mock.RedisString("0.4"),
				mock.RedisString("title"),
				mock.RedisString("second"),
			),
		)))

	s := NewStoreForTest(c, &stubEmbedder{vector: []float32{0.1, 0.2}})
	records, err := s.SemanticSearch(context.Background(), backend.Query{
		Collection: "docs",
		Text:       "hello",
		TopK:       5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].UUID != "doc-1" {
		t.Errorf("expected uuid doc-1, got %s", records[0].UUID)
	}
	// cosine distance 0.1 maps to similarity 0.9
	if records[0].Score == nil || *records[0].Score < 0.89 || *records[0].Score > 0.91 {
		t.Errorf("expected score ~0.9, got %v", records[0].Score)
	}
	if records[0].Distance == nil || *records[0].Distance != 0.1 {
		t.Errorf("expected distance 0.1, got %v", records[0].Distance)
	}
	if records[0].Properties["title"] != "first" {
		t.Errorf("title = %v", records[0].Properties["title"])
	}
	if records[0].Properties["year"] != float64(2021) {
		t.Errorf("year = %v", records[0].Properties["year"])
	}
	if records[1].UUID != "doc-2" {
		t.Errorf("expected uuid doc-2, got %s", records[1].UUID)
	}
}

func TestSemanticSearch_PredicatePrefilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" &&
				cmd[2] == "(@status:{active} @year:[2020 +inf])=>[KNN 5 @vector $BLOB]"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c, &stubEmbedder{vector: []float32{0.1}})
	_, err := s.SemanticSearch(context.Background(), backend.Query{
		Collection: "docs",
		Text:       "q",
		TopK:       5,
		Predicate: predicate.NewAll(
			predicate.NewLeaf("status", filter.OpEq, filter.String("active")),
			predicate.NewLeaf("year", filter.OpGte, filter.Number(2020)),
		),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSemanticSearch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c, &stubEmbedder{vector: []float32{0.1}})
	records, err := s.SemanticSearch(context.Background(), backend.Query{
		Collection: "docs", Text: "q", TopK: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected 0 records, got %d", len(records))
	}
}

func TestSemanticSearch_UnknownIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisError("no such index")))

	s := NewStoreForTest(c, &stubEmbedder{vector: []float32{0.1}})
	_, err := s.SemanticSearch(context.Background(), backend.Query{
		Collection: "missing", Text: "q", TopK: 5,
	})
	if !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Fatalf("got %v, want ErrCollectionNotFound", err)
	}
}

func TestSemanticSearch_EmbedderFailureSkipsBackend(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	// No Do expectation: the search must not reach the wire.

	embedErr := errors.New("provider down")
	s := NewStoreForTest(c, &stubEmbedder{err: embedErr})
	_, err := s.SemanticSearch(context.Background(), backend.Query{
		Collection: "docs", Text: "q", TopK: 5,
	})
	if !errors.Is(err, embedErr) {
		t.Fatalf("got %v, want embed error", err)
	}
}

func TestSemanticSearch_Validation(t *testing.T) {
	s := &Store{embed: &stubEmbedder{}}
	ctx := context.Background()

	_, err := s.SemanticSearch(ctx, backend.Query{Text: "q", TopK: 5})
	if err == nil {
		t.Error("expected error for empty collection")
	}

	_, err = s.SemanticSearch(ctx, backend.Query{Collection: "docs", Text: "q"})
	if err == nil {
		t.Error("expected error for non-positive topK")
	}
}

// --- schema.go tests ---

func ftInfoReply() rueidis.RedisMessage {
	attr := func(identifier, alias, typ string) rueidis.RedisMessage {
		return mock.RedisArray(
			mock.RedisString("identifier"), mock.RedisString(identifier),
			mock.RedisString("attribute"), mock.RedisString(alias),
			mock.RedisString("type"), mock.RedisString(typ),
		)
	}
	return mock.RedisArray(
		mock.RedisString("index_name"), mock.RedisString("vq:docs:idx"),
		mock.RedisString("attributes"), mock.RedisArray(
			attr("status", "status", "TAG"),
			attr("year", "year", "NUMERIC"),
			attr("title", "title", "TEXT"),
			attr("__vector", "__vector", "VECTOR"),
		),
		mock.RedisString("num_docs"), mock.RedisString("42"),
	)
}

func TestCollectionSchema_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "vq:docs:idx")).
		Return(mock.Result(ftInfoReply()))

	s := NewStoreForTest(c, &stubEmbedder{})
	schema, err := s.CollectionSchema(context.Background(), "docs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKinds := map[string]backend.FieldKind{
		"status": backend.FieldTag,
		"year":   backend.FieldNumeric,
		"title":  backend.FieldText,
	}
	for field, want := range wantKinds {
		kind, ok := schema.Kind(field)
		if !ok || kind != want {
			t.Errorf("field %s: kind %v ok=%v, want %v", field, kind, ok, want)
		}
	}
	if schema.Has("__vector") {
		t.Error("vector attribute must not be a filterable field")
	}
}

func TestCollectionSchema_UnknownIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "vq:missing:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c, &stubEmbedder{})
	_, err := s.CollectionSchema(context.Background(), "missing")
	if !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Fatalf("got %v, want ErrCollectionNotFound", err)
	}
}

func TestCollectionSchema_Unavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "vq:docs:idx")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, &stubEmbedder{})
	_, err := s.CollectionSchema(context.Background(), "docs")
	if !errors.Is(err, backend.ErrSchemaUnavailable) {
		t.Fatalf("got %v, want ErrSchemaUnavailable", err)
	}
}

func TestListCollections(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT._LIST")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString("vq:docs:idx"),
			mock.RedisString("vq:articles:idx"),
			mock.RedisString("other-app:idx"),
			mock.RedisString("vq:stray"),
		)))

	s := NewStoreForTest(c, &stubEmbedder{})
	names, err := s.ListCollections(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"articles", "docs"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

// --- health.go tests ---

func TestHealth_Connected(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))
	c.EXPECT().
		Do(gomock.Any(), mock.Match("INFO", "server")).
		Return(mock.Result(mock.RedisString(
			"# Server\r\nredis_version:8.0.1\r\nredis_mode:standalone\r\n")))

	s := NewStoreForTest(c, &stubEmbedder{})
	h, err := s.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.Connected {
		t.Error("expected connected")
	}
	if h.Version != "8.0.1" {
		t.Errorf("version = %q, want 8.0.1", h.Version)
	}
}

func TestHealth_Disconnected(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, &stubEmbedder{})
	h, err := s.Health(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if h.Connected {
		t.Error("expected disconnected")
	}
}
