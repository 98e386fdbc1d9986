package oxidb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parisxmas/oxikpi/internal/oxidb"
	"github.com/parisxmas/oxikpi/internal/oxidb/oxidbtest"
)

func getClient(t *testing.T) (*oxidb.Client, *oxidbtest.Server) {
	t.Helper()
	srv := oxidbtest.NewServer()
	t.Cleanup(srv.Close)
	c, err := oxidb.Connect(context.Background(), srv.Addr)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, srv
}

func TestPing(t *testing.T) {
	c, _ := getClient(t)

	pong, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong", pong)
}

func TestInsertAndFind(t *testing.T) {
	c, _ := getClient(t)
	ctx := context.Background()

	for _, name := range []string{"Bob", "Alice", "Carol"} {
		result, err := c.Insert(ctx, "go_test", map[string]any{"name": name, "dept": "cs"})
		require.NoError(t, err)
		assert.NotNil(t, result["id"])
	}

	docs, err := c.Find(ctx, "go_test", map[string]any{"name": "Alice"}, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, float64(2), docs[0]["_id"])

	skip, limit := 1, 1
	docs, err = c.Find(ctx, "go_test", map[string]any{"dept": "cs"}, &oxidb.FindOptions{
		Sort:  map[string]any{"name": 1},
		Skip:  &skip,
		Limit: &limit,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Bob", docs[0]["name"])

	n, err := c.Count(ctx, "go_test", map[string]any{"dept": "cs"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestFindOneMissingReturnsNil(t *testing.T) {
	c, _ := getClient(t)

	doc, err := c.FindOne(context.Background(), "go_test", map[string]any{"name": "nobody"})
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestUpdateAndDelete(t *testing.T) {
	c, _ := getClient(t)
	ctx := context.Background()

	_, err := c.Insert(ctx, "go_test", map[string]any{"name": "Alice", "status": "pending"})
	require.NoError(t, err)

	_, err = c.UpdateOne(ctx, "go_test", map[string]any{"name": "Alice"}, map[string]any{"$set": map[string]any{"status": "approved"}})
	require.NoError(t, err)
	doc, err := c.FindOne(ctx, "go_test", map[string]any{"name": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "approved", doc["status"])

	_, err = c.DeleteOne(ctx, "go_test", map[string]any{"name": "Alice"})
	require.NoError(t, err)
	n, err := c.Count(ctx, "go_test", map[string]any{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUniqueIndexViolation(t *testing.T) {
	c, _ := getClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateUniqueIndex(ctx, "users", "email"))
	_, err := c.Insert(ctx, "users", map[string]any{"email": "a@uni.edu"})
	require.NoError(t, err)

	_, err = c.Insert(ctx, "users", map[string]any{"email": "a@uni.edu"})
	var oxErr *oxidb.Error
	require.True(t, errors.As(err, &oxErr))
	assert.True(t, oxidb.IsDuplicate(err))
	assert.False(t, oxidb.IsDuplicate(errors.New("duplicate")))
}

func TestBlobRoundTrip(t *testing.T) {
	c, _ := getClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateBucket(ctx, "files"))
	require.NoError(t, c.PutObject(ctx, "files", "k1", []byte("hello"), "text/plain"))

	data, meta, err := c.GetObject(ctx, "files", "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "text/plain", meta["content_type"])

	require.NoError(t, c.DeleteObject(ctx, "files", "k1"))
	_, _, err = c.GetObject(ctx, "files", "k1")
	assert.Error(t, err)
}

func TestServerErrorIsTyped(t *testing.T) {
	c, _ := getClient(t)

	_, err := c.InsertMany(context.Background(), "go_test", nil)
	var oxErr *oxidb.Error
	require.True(t, errors.As(err, &oxErr))
	assert.Contains(t, oxErr.Msg, "unknown command")
}

func TestRequestHonoursContextDeadline(t *testing.T) {
	c, srv := getClient(t)
	srv.SetDelay(500 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Ping(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestCancelledContextSkipsRoundTrip(t *testing.T) {
	c, _ := getClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Ping(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientIsBrokenAfterTimeout(t *testing.T) {
	c, srv := getClient(t)
	srv.SetDelay(200 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Ping(ctx)
	require.Error(t, err)

	srv.SetDelay(0)
	_, err = c.Ping(context.Background())
	assert.ErrorIs(t, err, oxidb.ErrBroken)
}
