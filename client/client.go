package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"

	"calc/engine/ast"
)

type Client struct {
	httpclient *http.Client
	url        *url.URL
}

func NewClient(hostport string, httpclient *http.Client) (*Client, error) {
	url, err := url.Parse(hostport)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hostport [%s]: %v", hostport, err)
	}
	return &Client{
		url:        url,
		httpclient: httpclient,
	}, nil
}

func (c Client) endpoint(path string) string {
	u := *c.url
	u.Path = path
	return u.String()
}

func (c Client) post(url string, expr string) ([]byte, error) {
	ser, err := json.Marshal(map[string]string{"expr": expr})
	if err != nil {
		return nil, fmt.Errorf("marshal error on client: %v", err)
	}
	response, err := c.httpclient.Post(url, "application/json", bytes.NewBuffer(ser))
	if err != nil {
		return nil, fmt.Errorf("server error: %v", err)
	}
	defer response.Body.Close()
	body, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read server response: %v", err)
	}
	// handle http error given by the server
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var serverErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &serverErr) == nil && serverErr.Error != "" {
			return nil, fmt.Errorf("%s: %s", http.StatusText(response.StatusCode), serverErr.Error)
		}
		return nil, fmt.Errorf("%s: %s", http.StatusText(response.StatusCode), string(body))
	}
	return body, nil
}

// Eval evaluates expr on the server.
func (c Client) Eval(expr string) (int32, error) {
	body, err := c.post(c.endpoint("/eval"), expr)
	if err != nil {
		return 0, err
	}
	var resp struct {
		Value int32 `json:"value"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("invalid server response: %v", err)
	}
	return resp.Value, nil
}

// Lex returns the lexemes of the tokens in expr.
func (c Client) Lex(expr string) ([]string, error) {
	body, err := c.post(c.endpoint("/lex"), expr)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Tokens []string `json:"tokens"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid server response: %v", err)
	}
	return resp.Tokens, nil
}

// Parse returns the tree the server built for expr.
func (c Client) Parse(expr string) (ast.Node, error) {
	body, err := c.post(c.endpoint("/parse"), expr)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Ast json.RawMessage `json:"ast"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid server response: %v", err)
	}
	return ast.Unmarshal(resp.Ast)
}
