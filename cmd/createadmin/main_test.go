package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Ayush22-04/xetor-backen/internal/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRun(t *testing.T) {
	svc := users.NewService(users.NewMemoryUserRepository(), bcrypt.MinCost)
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), svc, "root", "pw", &out))
	require.Contains(t, out.String(), `created admin "root"`)

	err := run(context.Background(), svc, "root", "pw", &out)
	require.ErrorContains(t, err, "already exists")

	err = run(context.Background(), svc, "", "pw", &out)
	require.ErrorIs(t, err, users.ErrMissingFields)
}

func TestPrompt(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("  alice \n"))
	require.Equal(t, "alice", prompt(in, "Username: "))
}
