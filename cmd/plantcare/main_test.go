package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/plant-care/internal/cli"
)

func failingBuilder(context.Context, cli.Options) (*cli.Env, error) {
	return nil, errors.New("no keyring available")
}

// TestRun_Success verifies that run returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := run(context.Background(), []string{"next", "2024-01-10", "every 3 days"}, stdout, stderr, failingBuilder)

	assert.Equal(t, 0, code)
	assert.Equal(t, "2024-01-13\n", stdout.String())
	assert.Empty(t, stderr.String())
}

// TestRun_Failure verifies that errors are printed and exit non-zero.
func TestRun_Failure(t *testing.T) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := run(context.Background(), []string{"whoami"}, stdout, stderr, failingBuilder)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error: ")
}

// TestRun_UnknownCommand verifies cobra's usage errors surface.
func TestRun_UnknownCommand(t *testing.T) {
	stderr := new(bytes.Buffer)
	code := run(context.Background(), []string{"bogus"}, new(bytes.Buffer), stderr, failingBuilder)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unknown command")
}
