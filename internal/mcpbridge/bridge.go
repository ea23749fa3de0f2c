// Package mcpbridge implements the stdio client for the database MCP server.
// Each Invoke spawns a fresh server process, writes a single JSON-RPC request
// line on stdin, and reads the JSON-RPC response from stdout. The server
// double-encodes its payload (a JSON document inside the content text field),
// so the client decodes twice. Database credentials never travel in the
// request body: the server reads them from the inherited environment.
package mcpbridge

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single request/response exchange, including the
// server's own database connection setup.
const DefaultTimeout = 60 * time.Second

// requestID is the constant correlation id. The client sends exactly one
// request per process, so no id sequencing is needed.
const requestID = 1

// Result is the normalized outcome of a tool invocation. Failures are data,
// not errors: callers inspect Success instead of handling an error path.
type Result struct {
	Success      bool             `json:"success"`
	Message      string           `json:"message,omitempty"`
	Data         []map[string]any `json:"data,omitempty"`
	RowsAffected *int             `json:"rowsAffected,omitempty"`
}

// Client invokes tools on an MCP server over stdio, one process per call.
type Client struct {
	command string
	args    []string
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default 60s exchange timeout. Used by tests;
// production callers keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a Client that spawns command (plus args) for every Invoke.
func New(command string, args []string, opts ...Option) *Client {
	c := &Client{command: command, args: args, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// jsonrpcRequest is the outgoing envelope: {"jsonrpc":"2.0","id":1,
// "method":"tools/call","params":{"name":...,"arguments":{...}}}.
type jsonrpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  jsonrpcParams `json:"params"`
}

type jsonrpcParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// rpcResult mirrors the portion of the JSON-RPC result the client consumes.
type rpcResult struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Invoke performs one synchronous tool call against the MCP server.
//
// The call blocks until the server process exits or the timeout elapses.
// On timeout the process is killed so nothing is left running. Every failure
// mode (spawn error, timeout, malformed output) is folded into a Result with
// Success=false; Invoke never panics and never returns a Go error.
func (c *Client) Invoke(operation string, arguments map[string]any) Result {
	if arguments == nil {
		arguments = map[string]any{}
	}

	payload, err := json.Marshal(jsonrpcRequest{
		JSONRPC: "2.0",
		ID:      requestID,
		Method:  "tools/call",
		Params:  jsonrpcParams{Name: operation, Arguments: arguments},
	})
	if err != nil {
		return failure(fmt.Sprintf("encode request: %v", err))
	}

	stdout, err := c.exchange(payload)
	if err != nil {
		return failure(err.Error())
	}

	return extractResult(stdout)
}

// exchange runs one server process: writes the request line, closes stdin,
// and waits for exit or timeout. Returns the captured stdout.
func (c *Client) exchange(payload []byte) ([]byte, error) {
	cmd := exec.Command(c.command, c.args...)

	// Env stays nil so the child inherits the parent environment verbatim.
	// This is how SUPPORT_DB_PATH / READONLY reach the server.
	var stdout, stderr bytes.Buffer
	cmd.Stdin = strings.NewReader(string(payload) + "\n")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("error calling MCP server: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-time.After(c.timeout):
		_ = cmd.Process.Kill()
		<-done // reap the killed process; no zombies on the timeout path
		return nil, fmt.Errorf("MCP server call timed out")
	case err := <-done:
		// A non-zero exit is not fatal by itself: the response line may
		// still be on stdout. Only a completely empty stdout is an error.
		if stdout.Len() == 0 {
			if err != nil {
				return nil, fmt.Errorf("error calling MCP server: %v", err)
			}
			return nil, fmt.Errorf("no valid response from MCP server")
		}
		return stdout.Bytes(), nil
	}
}

// extractResult scans stdout line by line for the first JSON line carrying a
// "result" key. The server may emit diagnostics before the response, and the
// response payload itself is JSON-encoded a second time inside
// result.content[0].text.
func extractResult(stdout []byte) Result {
	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(line, &envelope); err != nil {
			continue // diagnostic line, not JSON
		}
		raw, ok := envelope["result"]
		if !ok {
			continue
		}
		return decodeResult(raw)
	}

	return failure("no valid response from MCP server")
}

// decodeResult unwraps a "result" value. When the nested content text is
// present it is the authoritative payload (double-encoded by the server);
// otherwise the result object itself is decoded directly.
func decodeResult(raw json.RawMessage) Result {
	var rr rpcResult
	if err := json.Unmarshal(raw, &rr); err == nil && len(rr.Content) > 0 && rr.Content[0].Text != "" {
		var out Result
		if err := json.Unmarshal([]byte(rr.Content[0].Text), &out); err != nil {
			return failure(fmt.Sprintf("decode tool payload: %v", err))
		}
		return out
	}

	var out Result
	if err := json.Unmarshal(raw, &out); err != nil {
		return failure(fmt.Sprintf("decode result object: %v", err))
	}
	return out
}

func failure(message string) Result {
	return Result{Success: false, Message: message}
}
