package redis

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/feedex/internal/db"
	"github.com/kailas-cloud/feedex/internal/domain/search/filter"
	"github.com/kailas-cloud/feedex/internal/domain/search/score"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
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

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestWaitForReady_RetriesUntilPong(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.ErrorResult(errors.New("connection refused"))),
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.Result(mock.RedisString("PONG"))),
	)

	if err := NewStoreForTest(c).WaitForReady(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_TimeoutCarriesLastError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	refused := errors.New("connection refused")
	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.ErrorResult(refused)).MinTimes(1)

	err := NewStoreForTest(c).WaitForReady(context.Background(), 150*time.Millisecond)
	if !errors.Is(err, refused) {
		t.Fatalf("expected last ping error, got %v", err)
	}
}

func TestIsRedisErr(t *testing.T) {
	reply := mock.Result(mock.RedisError("ERR Index already exists")).Error()
	if !isRedisErr(reply, "index already exists") {
		t.Error("reply should match ignoring case")
	}
	if isRedisErr(reply, "unknown index name") {
		t.Error("reply matched another message")
	}
	if isRedisErr(errors.New("index already exists"), "index already exists") {
		t.Error("transport error is not a Redis reply")
	}
	if isRedisErr(nil, "x") {
		t.Error("nil error matched")
	}
}

func TestNewStore_NoAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

// --- hash.go tests ---

func TestHSetMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.Result(mock.RedisInt64(1)),
		})

	s := NewStoreForTest(c)
	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: "k1", Fields: map[string]string{"f1": "v1"}},
		{Key: "k2", Fields: map[string]string{"f2": "v2"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSetMulti_Empty(t *testing.T) {
	s := &Store{}
	if err := s.HSetMulti(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScan_Pages(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SCAN", "0", "MATCH", "p:*", "COUNT", "100")).
			Return(mock.Result(mock.RedisArray(mock.RedisString("7"), mock.RedisArray(mock.RedisString("p:1"))))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SCAN", "7", "MATCH", "p:*", "COUNT", "100")).
			Return(mock.Result(mock.RedisArray(mock.RedisString("0"), mock.RedisArray(mock.RedisString("p:2"))))),
	)

	s := NewStoreForTest(c)
	keys, err := s.Scan(context.Background(), "p:*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(keys, []string{"p:1", "p:2"}) {
		t.Errorf("keys = %v", keys)
	}
}

// --- kv.go tests ---

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "missing")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "mykey", "myvalue")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.Set(context.Background(), "mykey", []byte("myvalue")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- queue.go tests ---

func TestPush_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("LPUSH", "jobs", "payload")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	if err := s.Push(context.Background(), "jobs", []byte("payload")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPop_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "BRPOP" && cmd[1] == "jobs"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisString("jobs"), mock.RedisString("payload"))))

	s := NewStoreForTest(c)
	got, err := s.Pop(context.Background(), "jobs", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("got %q", got)
	}
}

func TestPop_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "BRPOP" })).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.Pop(context.Background(), "jobs", time.Second)
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

// --- tx.go tests ---

func TestApply_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	// MULTI, DEL old, DEL new, HSET new, EXEC
	c.EXPECT().
		DoMulti(gomock.Any(), mock.Match("MULTI"), mock.Match("DEL", "old"),
			mock.Match("DEL", "new"), mock.Match("HSET", "new", "f", "v"), mock.Match("EXEC")).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisString("QUEUED")),
			mock.Result(mock.RedisString("QUEUED")),
			mock.Result(mock.RedisString("QUEUED")),
			mock.Result(mock.RedisArray(mock.RedisInt64(1), mock.RedisInt64(0), mock.RedisInt64(1))),
		})

	s := NewStoreForTest(c)
	err := s.Apply(context.Background(), []string{"old"}, []db.HashSetItem{
		{Key: "new", Fields: map[string]string{"f": "v"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApply_Aborted(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisString("QUEUED")),
			mock.Result(mock.RedisNil()),
		})

	s := NewStoreForTest(c)
	err := s.Apply(context.Background(), []string{"old"}, nil)
	if !errors.Is(err, db.ErrTxAborted) {
		t.Errorf("expected ErrTxAborted, got %v", err)
	}
}

func TestApply_QueuedError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisError("WRONGTYPE")),
			mock.Result(mock.RedisError("EXECABORT")),
		})

	s := NewStoreForTest(c)
	if err := s.Apply(context.Background(), []string{"old"}, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestApply_Noop(t *testing.T) {
	s := &Store{}
	if err := s.Apply(context.Background(), nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- index.go tests ---

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.CREATE", "test:idx", "ON", "HASH", "PREFIX", "1", "test:",
			"SCHEMA", "slug", "AS", "slug_raw", "TAG", "created", "NUMERIC", "SORTABLE",
		)).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	idx := db.NewIndex("test:idx").Prefix("test:").TagAs("slug", "slug_raw").SortableNumeric("created").MustBuild()
	if err := s.CreateIndex(context.Background(), idx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	idx := &db.IndexDefinition{
		Name:   "test:idx",
		Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}},
	}
	err := s.CreateIndex(context.Background(), idx)
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.INFO", "present")).
			Return(mock.Result(mock.RedisArray())),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.INFO", "absent")).
			Return(mock.Result(mock.RedisError("Unknown index name"))),
	)

	s := NewStoreForTest(c)
	ok, err := s.IndexExists(context.Background(), "present")
	if err != nil || !ok {
		t.Errorf("present: (%v, %v)", ok, err)
	}
	ok, err = s.IndexExists(context.Background(), "absent")
	if err != nil || ok {
		t.Errorf("absent: (%v, %v)", ok, err)
	}
}

// --- search.go tests ---

func hit(key string, kv ...string) []rueidis.RedisMessage {
	fields := make([]rueidis.RedisMessage, len(kv))
	for i, v := range kv {
		fields[i] = mock.RedisString(v)
	}
	return []rueidis.RedisMessage{mock.RedisString(key), mock.RedisArray(fields...)}
}

func searchReply(total int64, hits ...[]rueidis.RedisMessage) rueidis.RedisResult {
	msgs := []rueidis.RedisMessage{mock.RedisInt64(total)}
	for _, h := range hits {
		msgs = append(msgs, h...)
	}
	return mock.Result(mock.RedisArray(msgs...))
}

func TestSearch_Unscored(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.SEARCH", "idx", "@item_type:{brand}",
			"SORTBY", "created", "DESC",
			"LIMIT", "10", "5",
			"DIALECT", "2",
		)).
		Return(searchReply(12, hit("el:1", "id", "1"), hit("el:2", "id", "2")))

	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.SearchQuery{
		Index:    "idx",
		Filter:   filter.All(filter.Term("item_type", "brand")),
		SortBy:   "created",
		SortDesc: true,
		Offset:   10,
		Limit:    5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 12 || len(res.Entries) != 2 {
		t.Fatalf("got total=%d entries=%d", res.Total, len(res.Entries))
	}
	if res.Entries[0].Key != "el:1" || res.Entries[0].Fields["id"] != "1" {
		t.Errorf("entry[0] = %+v", res.Entries[0])
	}
}

func TestSearch_ScoredRanksAndPaginates(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			// candidate window fetched from offset 0
			i := slices.Index(cmd, "LIMIT")
			return cmd[0] == "FT.SEARCH" && i > 0 && cmd[i+1] == "0" && cmd[i+2] == "50"
		})).
		Return(searchReply(4,
			hit("fi:1", "item_type", "app", "order", "0"),
			hit("fi:2", "item_type", "collection", "order", "1"),
			hit("fi:3", "item_type", "shelf", "order", "7"),
			hit("fi:4", "item_type", "brand", "order", "2"),
		))

	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.SearchQuery{
		Index: "idx",
		Functions: []score.Function{
			score.BoostFactor(10000, filter.All(filter.Term("item_type", "shelf"))),
			score.FieldValueFactor("order", score.ModifierReciprocal,
				filter.Bool(nil, nil, []filter.Condition{filter.Term("item_type", "shelf")})),
		},
		Offset: 0,
		Limit:  3,
		Window: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 4 {
		t.Errorf("total = %d, want backend total 4", res.Total)
	}
	var keys []string
	for _, e := range res.Entries {
		keys = append(keys, e.Key)
	}
	if want := []string{"fi:3", "fi:1", "fi:2"}; !slices.Equal(keys, want) {
		t.Errorf("order = %v, want %v", keys, want)
	}
}

func TestSearch_Validation(t *testing.T) {
	s := &Store{}
	if _, err := s.Search(context.Background(), &db.SearchQuery{}); err == nil {
		t.Error("expected error for empty index name")
	}
	if _, err := s.Search(context.Background(), &db.SearchQuery{Index: "idx", Limit: -1}); err == nil {
		t.Error("expected error for negative limit")
	}
}

func TestSearch_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.Search(context.Background(), &db.SearchQuery{Index: "idx", Limit: 1})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSearch {
		t.Errorf("expected db.Error with FT.SEARCH op, got %v", err)
	}
}

func TestPaginate(t *testing.T) {
	entries := []db.SearchEntry{{Key: "a"}, {Key: "b"}, {Key: "c"}}
	if got := paginate(entries, 5, 2); len(got) != 0 {
		t.Errorf("offset past end: %v", got)
	}
	if got := paginate(entries, 1, 0); len(got) != 2 {
		t.Errorf("zero limit keeps the rest: %v", got)
	}
	if got := paginate(entries, 1, 1); len(got) != 1 || got[0].Key != "b" {
		t.Errorf("window: %v", got)
	}
}
