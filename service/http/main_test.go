package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"calc/client"
	"calc/engine/ast"
	"calc/engine/lexer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startTestServer(t *testing.T, args ServerArgs) *httptest.Server {
	calc, closeCalc, err := newCalculator(zap.NewNop(), args)
	require.NoError(t, err)
	t.Cleanup(closeCalc)
	return httptest.NewServer(newRouter(calc, zap.NewNop(), args))
}

func defaultArgs() ServerArgs {
	return ServerArgs{
		CacheSize:      100,
		CacheTTL:       time.Minute,
		MaxDepth:       16,
		MaxTokens:      1000,
		MaxBody:        1 << 16,
		Timeout:        time.Second,
		MaxConcurrency: 10,
	}
}

func post(t *testing.T, url string, body string) (int, map[string]interface{}) {
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestEvalServerClient(t *testing.T) {
	server := startTestServer(t, defaultArgs())
	defer server.Close()
	c, err := client.NewClient(server.URL, server.Client())
	require.NoError(t, err)

	scenarios := []struct {
		expr     string
		expected int32
	}{
		{"1+2*3", 7},
		{"8-3-2", 3},
		{"(1+2)*3+4/2", 11},
		{"-1+2", 1},
		{"5/0", 0},
	}
	for _, scenario := range scenarios {
		// twice, so the second round is served from the cache
		for i := 0; i < 2; i++ {
			found, err := c.Eval(scenario.expr)
			require.NoError(t, err, scenario.expr)
			assert.Equal(t, scenario.expected, found, scenario.expr)
		}
	}

	tokens, err := c.Lex("(1 + 23)")
	require.NoError(t, err)
	assert.Equal(t, []string{"(", "1", "+", "23", ")"}, tokens)

	node, err := c.Parse("2*-3")
	require.NoError(t, err)
	assert.True(t, ast.MakeBinary(ast.MakeNumber(2), lexer.Mul, ast.MakeNeg(ast.MakeNumber(3))).Equals(node))

	_, err = c.Eval("--1+2")
	assert.Error(t, err)
	_, err = c.Lex("1 $ 2")
	assert.Error(t, err)
}

func TestEval_Errors(t *testing.T) {
	server := startTestServer(t, defaultArgs())
	defer server.Close()

	scenarios := []struct {
		path  string
		body  string
		stage string
	}{
		{"/eval", `{"expr": "1 + a"}`, "lex"},
		{"/eval", `{"expr": "99999999999"}`, "lex"},
		{"/eval", `{"expr": "(1+2"}`, "parse"},
		{"/eval", `{"expr": "1+2*"}`, "parse"},
		{"/eval", `{"expr": ""}`, "parse"},
		{"/eval", `{}`, "parse"},
		{"/eval", `not json`, stageRequest},
		{"/lex", `{"expr": "#"}`, "lex"},
		{"/parse", `{"expr": "+1"}`, "parse"},
		{"/parse", `[1, 2]`, stageRequest},
	}
	for _, scenario := range scenarios {
		status, resp := post(t, server.URL+scenario.path, scenario.body)
		assert.Equal(t, http.StatusBadRequest, status, scenario.body)
		assert.Equal(t, scenario.stage, resp["stage"], scenario.body)
		assert.NotEmpty(t, resp["error"], scenario.body)
	}
}

func TestEval_WithAst(t *testing.T) {
	server := startTestServer(t, defaultArgs())
	defer server.Close()

	status, resp := post(t, server.URL+"/eval?ast=true", `{"expr": "-4"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(-4), resp["value"])
	assert.Equal(t, map[string]interface{}{
		"type":  "unary",
		"op":    "-",
		"child": map[string]interface{}{"type": "number", "value": float64(4)},
	}, resp["ast"])

	status, resp = post(t, server.URL+"/eval", `{"expr": "-4"}`)
	assert.Equal(t, http.StatusOK, status)
	_, ok := resp["ast"]
	assert.False(t, ok)
}

func TestParse_Printed(t *testing.T) {
	server := startTestServer(t, defaultArgs())
	defer server.Close()
	status, resp := post(t, server.URL+"/parse", `{"expr": "1 + 2 * 3 - 4"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "((1 + (2 * 3)) - 4)", resp["printed"])
}

func TestMaxDepth(t *testing.T) {
	args := defaultArgs()
	args.MaxDepth = 2
	server := startTestServer(t, args)
	defer server.Close()
	status, resp := post(t, server.URL+"/eval", `{"expr": "(((1)))"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "parse", resp["stage"])
}

func TestOversizedInput(t *testing.T) {
	args := defaultArgs()
	args.MaxBody = 4096
	server := startTestServer(t, args)
	defer server.Close()

	// a flat chain nests as deeply as its operator count
	chain := func(terms int) string {
		return `{"expr": "1` + strings.Repeat("+1", terms-1) + `"}`
	}
	status, resp := post(t, server.URL+"/eval", chain(200))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(200), resp["value"])

	status, resp = post(t, server.URL+"/eval", chain(600))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "lex", resp["stage"])
	assert.Contains(t, resp["error"], "too many tokens at offset 1000")

	// rejected before it is ever lexed
	for _, path := range []string{"/eval", "/lex", "/parse"} {
		status, resp = post(t, server.URL+path, chain(5000))
		assert.Equal(t, http.StatusBadRequest, status, path)
		assert.Equal(t, stageRequest, resp["stage"], path)
		assert.Contains(t, resp["error"], "request body too large", path)
	}

	// the server is still up
	status, resp = post(t, server.URL+"/eval", `{"expr": "2*3"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(6), resp["value"])
}

func TestNewCalculator_Close(t *testing.T) {
	calc, closeCalc, err := newCalculator(zap.NewNop(), defaultArgs())
	require.NoError(t, err)
	res, err := calc.Exec(context.Background(), "1+1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), res.Value)
	closeCalc()

	args := defaultArgs()
	args.CacheSize = 0
	_, closeCalc, err = newCalculator(zap.NewNop(), args)
	require.NoError(t, err)
	closeCalc()
}

func TestHealthAndMethods(t *testing.T) {
	args := defaultArgs()
	args.CacheSize = 0
	server := startTestServer(t, args)
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/eval")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
