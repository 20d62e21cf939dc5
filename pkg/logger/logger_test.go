package logger

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeCollection struct {
	mu   sync.Mutex
	docs []LogDocument
}

func (f *fakeCollection) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range docs {
		f.docs = append(f.docs, d.(LogDocument))
	}
	return &mongo.InsertManyResult{}, nil
}

func TestWithCtxReturnsInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc")

	ctx := InjectLogger(context.Background(), base)
	WithCtx(ctx).Info("hello")

	assert.Contains(t, buf.String(), "request_id=abc")
	assert.Equal(t, L, WithCtx(context.Background()))
}

func TestSetupProductionWritesJSON(t *testing.T) {
	prev := L
	defer func() { L = prev; slog.SetDefault(prev) }()

	var buf bytes.Buffer
	log := Setup(Options{Production: true, Output: &buf})
	log.Debug("dropped")
	log.Info("kept", "k", 1)

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
}

func TestMongoHandlerFlushesOnClose(t *testing.T) {
	col := &fakeCollection{}
	h := newMongoHandler(col, slog.LevelInfo, nil)

	log := slog.New(h).With("request_id", "r-1").WithGroup("db")
	log.Info("query", "table", "coupons")
	log.Debug("ignored")
	h.Close()
	h.Close()

	col.mu.Lock()
	defer col.mu.Unlock()
	require.Len(t, col.docs, 1)
	doc := col.docs[0]
	assert.Equal(t, "query", doc.Msg)
	assert.Equal(t, "r-1", doc.RequestID)
	assert.Equal(t, "coupons", doc.Attrs["db.table"])
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	log := slog.New(NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	))
	log.Info("info line")

	assert.Contains(t, a.String(), "info line")
	assert.Empty(t, b.String())
}
