package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"sentinel", "help"}, &out, &errOut)
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "corpus")
	require.Contains(t, out.String(), "server")
}

func TestRunUnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"sentinel", "bogus"}, &out, &errOut)
	require.Equal(t, 2, code)
	require.Contains(t, errOut.String(), "Unknown command")
}

func TestRunDefaultsToServer(t *testing.T) {
	orig := startServer
	defer func() { startServer = orig }()

	called := false
	startServer = func(io.Writer) int {
		called = true
		return 0
	}

	code := Run([]string{"sentinel"}, io.Discard, io.Discard)
	require.Equal(t, 0, code)
	require.True(t, called)
}

func TestCorpusCmdUsage(t *testing.T) {
	var out, errOut bytes.Buffer
	code := runCorpusCmd(nil, &out, &errOut)
	require.Equal(t, 2, code)
	require.Contains(t, errOut.String(), "Usage")
}

func TestCorpusBuildAndShow(t *testing.T) {
	dir := t.TempDir()
	packPath := dir + "/pack_test.yaml"
	writeFile(t, packPath, `
schema_version: "1.0.0"
source: "NRC"
rules:
  - rule_id: "NRC-50.65"
    category: "Maintenance"
    text: "Monitor the effectiveness of maintenance on pumps and valves."
  - rule_id: "NRC-50.55a"
    category: "Codes"
    text: "Quality standards for safety related pressure vessels."
`)

	dbPath := dir + "/corpus.db"
	var out, errOut bytes.Buffer
	code := runCorpusCmd([]string{"build", "--packs", dir, "--db", dbPath, "--version", "test"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	require.Contains(t, out.String(), "2 rules")

	out.Reset()
	code = runCorpusCmd([]string{"show", "--db", dbPath}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	require.Contains(t, out.String(), "Version:  test")
	require.Contains(t, out.String(), "NRC-50.65")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o644))
}
