package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/analyze"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/parser"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/syntax"
)

// Tool name constants.
const (
	ToolNameAnalyze = "cyclocalc_analyze"
	ToolNameTree    = "cyclocalc_tree"
)

// Input limits and defaults.
const (
	// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
	MaxCodeInputBytes = 1 << 20

	defaultPath = "snippet.py"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCode indicates the code parameter is empty.
	ErrEmptyCode = errors.New("code parameter is required and must not be empty")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
	// ErrUnsupportedPath indicates a path without a Python extension.
	ErrUnsupportedPath = errors.New("path must end in .py or .pyi")
	// ErrNoAnalyzer indicates the server was built without an analyzer.
	ErrNoAnalyzer = errors.New("analyzer not configured")
)

// AnalyzeInput is the input schema for the cyclocalc_analyze tool.
type AnalyzeInput struct {
	Code  string `json:"code"             jsonschema:"Python source code to analyze"`
	MinCC int    `json:"min_cc,omitempty" jsonschema:"omit functions with a lower cyclomatic complexity from the function list"`
	Path  string `json:"path,omitempty"   jsonschema:"file name used in function identifiers (default: snippet.py)"`
	TopN  int    `json:"top_n,omitempty"  jsonschema:"return at most this many functions (default: all)"`
}

// TreeInput is the input schema for the cyclocalc_tree tool.
type TreeInput struct {
	Code string `json:"code"           jsonschema:"Python source code to parse"`
	Kind string `json:"kind,omitempty" jsonschema:"optional node kind filter (e.g. Function)"`
	Path string `json:"path,omitempty" jsonschema:"file name (default: snippet.py)"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleAnalyze(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input AnalyzeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	path, err := validateCodeInput(input.Code, input.Path)
	if err != nil {
		return errorResult(err)
	}

	if s.analyzer == nil {
		return errorResult(ErrNoAnalyzer)
	}

	result, err := s.analyzer.RunInputs(ctx, []analyze.Input{{Path: path, Source: input.Code}})
	if err != nil {
		return errorResult(err)
	}

	result = result.WithMinCC(input.MinCC)
	result.Functions = result.TopFunctions(input.TopN)

	return jsonResult(result)
}

func (s *Server) handleTree(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input TreeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	path, err := validateCodeInput(input.Code, input.Path)
	if err != nil {
		return errorResult(err)
	}

	root, err := s.parser.Parse(ctx, path, []byte(input.Code))
	if err != nil {
		return errorResult(err)
	}

	if input.Kind == "" {
		return jsonResult(root)
	}

	return jsonResult(syntax.Collect(root, syntax.ParseKind(input.Kind)))
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateCodeInput checks common code input constraints and returns the
// file name to analyze under.
func validateCodeInput(code, path string) (string, error) {
	if code == "" {
		return "", ErrEmptyCode
	}

	if len(code) > MaxCodeInputBytes {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(code), MaxCodeInputBytes)
	}

	if path == "" {
		return defaultPath, nil
	}

	if !parser.Supports(path) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPath, path)
	}

	return path, nil
}
