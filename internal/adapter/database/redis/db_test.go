package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "userapp/pkg/test"
)

func TestRedisRepository(t *testing.T) {
	addr := SkipUnlessEnv(t, "REDIS_ADDR")
	ctx := context.Background()

	repo, err := NewRedisRepository(ctx, addr, "", 0, "userapp-test:"+uuid.NewString())
	require.NoError(t, err)
	defer repo.Close()

	value, err := repo.Get(ctx, "user:1")
	assert.NoError(t, err)
	assert.Nil(t, value)

	require.NoError(t, repo.Set(ctx, "user:1", []byte("one"), time.Minute))
	require.NoError(t, repo.Set(ctx, "user:2", []byte("two"), time.Minute))

	value, err = repo.Get(ctx, "user:1")
	assert.NoError(t, err)
	assert.Equal(t, []byte("one"), value)

	require.NoError(t, repo.DeleteByPrefix(ctx, "user:"))

	value, _ = repo.Get(ctx, "user:2")
	assert.Nil(t, value)
}

func TestRedisRepository_Key(t *testing.T) {
	cases := []struct {
		namespace string
		key       string
		expected  string
	}{
		{namespace: "userapp", key: "user:1", expected: "userapp:user:1"},
		{namespace: "userapp:", key: "user:1", expected: "userapp:user:1"},
		{namespace: "", key: "user:1", expected: "user:1"},
		{namespace: "userapp", key: "user:", expected: "userapp:user:"},
	}

	for _, tc := range cases {
		repo := newRedisRepository(nil, tc.namespace)
		assert.Equal(t, tc.expected, repo.key(tc.key), tc.namespace)
	}
}
