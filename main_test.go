package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunReturnsStartupErrors(t *testing.T) {
	t.Setenv("POSTS_LIST_LIMIT", "0")
	err := run()
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRunReturnsStorageErrors(t *testing.T) {
	t.Setenv("POSTS_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://%zz")
	err := run()
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to open storage")
}
