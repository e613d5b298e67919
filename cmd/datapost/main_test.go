package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t    *testing.T
	path string
}

func (c cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--backend", "bolt", "--bolt-path", c.path}, args...))
	err := root.Execute()
	return out.String(), err
}

func newCLI(t *testing.T) cli {
	t.Setenv("DATAPOST_MATCH_MODE", "")
	t.Setenv("DATAPOST_AMBIGUITY", "")
	return cli{t: t, path: filepath.Join(t.TempDir(), "datapost.db")}
}

func TestCLI_WriteReadDelete(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "write", "prices.json", `{"apple":1.2}`)
	require.NoError(t, err)

	out, err := c.run("", "read", "prices.json")
	require.NoError(t, err)
	assert.Equal(t, `{"apple":1.2}`, out)

	out, err = c.run("", "read", "--decode", "prices.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"apple":1.2}`, out)

	out, err = c.run("", "exists", "prices.json")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	_, err = c.run("", "delete", "prices.json")
	require.NoError(t, err)

	out, err = c.run("", "exists", "prices.json")
	assert.ErrorIs(t, err, errMissing)
	assert.Contains(t, out, "false")

	_, err = c.run("", "delete", "prices.json")
	assert.NoError(t, err, "deleting a missing file succeeds")
}

func TestCLI_WriteFromStdin(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("item,price\napple,1.20\n", "write", "prices.csv")
	require.NoError(t, err)

	out, err := c.run("", "read", "prices.csv")
	require.NoError(t, err)
	assert.Equal(t, "item,price\napple,1.20\n", out)
}

func TestCLI_Exact(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "write", "prices.json", "{}")
	require.NoError(t, err)

	out, err := c.run("", "exists", "price.json")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	_, err = c.run("", "--exact", "exists", "price.json")
	assert.ErrorIs(t, err, errMissing)
}

func TestCLI_Errors(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "read", "missing.json")
	assert.ErrorContains(t, err, "file not found")

	_, err = c.run("", "write", "noext", "x")
	assert.ErrorContains(t, err, "malformed filename")

	_, err = c.run("", "write", "f.bin", "x")
	assert.ErrorContains(t, err, "unknown file type")
}

func TestCLI_Types(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("", "types")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "csv\ttext/csv", lines[0])
	assert.Equal(t, "json\tapplication/json", lines[1])
}

func TestCLI_ReadDecodedYAML(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("1: one\ntrue: yes\n", "write", "flags.yaml")
	require.NoError(t, err)

	out, err := c.run("", "read", "--decode", "flags.yaml")
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":"one","true":"yes"}`, out)
}
