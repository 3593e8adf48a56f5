package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/msto63/euklid/pkg/core/config"
	"github.com/msto63/euklid/pkg/core/version"
)

// run executes the command line with a config that keeps history in dir
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runWithConfig(t, "", args...)
}

// runWithConfig runs args against a temporary config extended by extra TOML
func runWithConfig(t *testing.T, extra string, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "euklid.toml")
	content := "[general]\ndata_dir = \"" + filepath.ToSlash(dir) + "\"\n\n[history]\nenabled = true\npath = \"" +
		filepath.ToSlash(filepath.Join(dir, "history.db")) + "\"\n" + extra
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	var out, errOut bytes.Buffer
	stdout, stderr = &out, &errOut
	t.Cleanup(func() {
		stdout, stderr = os.Stdout, os.Stderr
		outputFlag, langFlag, stepsFlag, remoteFlag, exactFlag = "text", "", false, "", false
		statusTimeout = 3 * time.Second
	})

	err := execute(append([]string{"--config", cfgPath}, args...))
	return out.String(), errOut.String(), err
}

func TestCalc(t *testing.T) {
	out, _, err := run(t, "calc", "1/2", "+", "3/4")
	require.NoError(t, err)
	assert.Equal(t, "Result: 5/4\nMixed number: 1 1/4\nDecimal: 1.25\n", out)
}

func TestEvaluate(t *testing.T) {
	out, _, err := run(t, "evaluate", "2 3/4", "+", "1/4", "×", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Result: 9\n")
}

func TestCalcErrorIsLocalized(t *testing.T) {
	out, errOut, err := run(t, "--lang", "de", "calc", "1/2 ÷ 0")
	require.ErrorIs(t, err, errReported)
	assert.Empty(t, out)
	assert.Equal(t, "Division durch Null ist nicht definiert.\n", errOut)
}

func TestLCDAndCompare(t *testing.T) {
	out, _, err := run(t, "lcd", "1/4", "1/6")
	require.NoError(t, err)
	assert.Contains(t, out, "Least common denominator: 12\nEquivalent fractions: 3/12, 2/12\n")

	out, _, err = run(t, "compare", "1/2", "1/3")
	require.NoError(t, err)
	assert.Contains(t, out, "In ascending order: 1/3 < 1/2\n")

	out, _, err = run(t, "compare", "1/2", "2/4", "1/3")
	require.NoError(t, err)
	assert.Contains(t, out, "In ascending order: 1/3 < 1/2 = 1/2\n")
}

func TestDecimalCommands(t *testing.T) {
	out, _, err := run(t, "decimal", "0.375")
	require.NoError(t, err)
	assert.Equal(t, "Fraction: 3/8\n", out)

	out, _, err = run(t, "todecimal", "1/3")
	require.NoError(t, err)
	assert.Contains(t, out, "approximately 0.333")

	_, errOut, err := run(t, "todecimal", "--exact", "1/3")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut, "1/3")
}

func TestJSONOutput(t *testing.T) {
	out, _, err := run(t, "-o", "json", "parse", "2", "3/4")
	require.NoError(t, err)
	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "11/4", res["value"])
}

func TestUnknownOutputFormat(t *testing.T) {
	_, errOut, err := run(t, "-o", "xml", "calc", "1")
	require.Error(t, err)
	assert.Contains(t, errOut, "unknown output format")
}

func TestHistoryStats(t *testing.T) {
	out, _, err := run(t, "history", "stats")
	require.NoError(t, err)
	assert.Equal(t, "total: 0\nfailed: 0\n", out)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "euklid v")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "euklid.yaml")
	out, _, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote ")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Server.HTTPPort, cfg.Server.HTTPPort)

	_, _, err = run(t, "config", "init", path)
	assert.Error(t, err, "existing files are kept without --force")
}

func TestNegativeOperands(t *testing.T) {
	out, _, err := run(t, "decimal", "-0.5")
	require.NoError(t, err)
	assert.Equal(t, "Fraction: -1/2\n", out)

	out, _, err = run(t, "parse", "-3/4")
	require.NoError(t, err)
	assert.Contains(t, out, "Result: -3/4\n")

	out, _, err = run(t, "calc", "-1/2", "+", "1/4")
	require.NoError(t, err)
	assert.Contains(t, out, "Result: -1/4\n")

	out, _, err = run(t, "lcd", "-1/2", "1/3")
	require.NoError(t, err)
	assert.Contains(t, out, "Equivalent fractions: -3/6, 2/6\n")

	out, _, err = run(t, "compare", "1/3", "-1/2", "-o", "json")
	require.NoError(t, err)
	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &res), "flags after a negative operand still apply")
}

func TestProtectNegatives(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"calc", "1/2", "+", "1/4"}, []string{"calc", "1/2", "+", "1/4"}},
		{[]string{"calc", "1/2", "-", "1/4"}, []string{"calc", "1/2", "-", "1/4"}},
		{[]string{"decimal", "-0.5"}, []string{"decimal", "--", "-0.5"}},
		{[]string{"lcd", "1/3", "-1/2", "--lang", "de", "-.5"}, []string{"lcd", "1/3", "--lang", "de", "--", "-1/2", "-.5"}},
		{[]string{"calc", "-1", "--steps", "×", "2"}, []string{"calc", "--steps", "--", "-1", "×", "2"}},
		{[]string{"calc", "--", "-1"}, []string{"calc", "--", "-1"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, protectNegatives(tt.args), "%v", tt.args)
	}
}

func TestStatus(t *testing.T) {
	web := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/health" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer web.Close()
	host, httpPort, err := net.SplitHostPort(strings.TrimPrefix(web.URL, "http://"))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	rpc := grpc.NewServer()
	healthpb.RegisterHealthServer(rpc, grpchealth.NewServer())
	go rpc.Serve(ln)
	defer rpc.Stop()
	grpcPort := ln.Addr().(*net.TCPAddr).Port

	serverCfg := fmt.Sprintf("\n[server]\nhost = %q\nhttp_port = %s\ngrpc_port = %d\n", host, httpPort, grpcPort)
	out, _, err := runWithConfig(t, serverCfg, "status")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "euklid "+version.Server+": healthy\n"), out)
	assert.Contains(t, out, "[+] grpc")
	assert.Contains(t, out, "[+] http")

	out, _, err = runWithConfig(t, "", "status", "--remote", ln.Addr().String())
	require.NoError(t, err)
	assert.Contains(t, out, "[+] grpc")
	assert.NotContains(t, out, "http")

	web.Close()
	out, _, err = runWithConfig(t, serverCfg, "status", "--timeout", "500ms")
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, out, ": unhealthy\n")
	assert.Contains(t, out, "[-] http")
}

func TestSplitOperands(t *testing.T) {
	operands, operators := splitOperands([]string{"1/2", "+", "2 1/3", "×", "3"})
	assert.Equal(t, []string{"1/2", "2 1/3", "3"}, operands)
	assert.Equal(t, []string{"+", "×"}, operators)
}
