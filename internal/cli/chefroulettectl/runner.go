package chefroulettectl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

// commandError marks failures that happen after argument parsing; they exit
// with 1 while usage problems exit with 2.
type commandError struct {
	err error
}

func (e *commandError) Error() string { return e.err.Error() }

func (e *commandError) Unwrap() error { return e.err }

func failed(format string, args ...any) error {
	return &commandError{err: fmt.Errorf(format, args...)}
}

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	var (
		baseURL string
		apiKey  string
		timeout time.Duration
	)
	newClient := func() *client {
		httpClient := defaults.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: timeout}
		}
		return &client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: strings.TrimSpace(apiKey), http: httpClient}
	}

	root := &cobra.Command{
		Use:           "chefroulettectl",
		Short:         "Inspect a ChefRoulette API deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return errors.New("a command is required")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&baseURL, "base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "ChefRoulette API base URL")
	root.PersistentFlags().StringVar(&apiKey, "api-key", defaults.APIKey, "bearer token for authenticated deployments")
	root.PersistentFlags().DurationVar(&timeout, "timeout", durationOr(defaults.Timeout, 10*time.Second), "HTTP timeout (e.g. 10s)")

	root.AddCommand(
		newStatusCmd("health", "/v1/health", newClient),
		newStatusCmd("ready", "/v1/ready", newClient),
		newListCmd(newClient),
		newExportCmd(newClient),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		var cmdErr *commandError
		if errors.As(err, &cmdErr) {
			return 1
		}
		_, _ = fmt.Fprintln(stderr)
		_, _ = fmt.Fprint(stderr, root.UsageString())
		return 2
	}
	return 0
}

func newStatusCmd(name, path string, newClient func() *client) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: "GET " + path,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := newClient().get(cmd.Context(), path)
			if err != nil {
				return err
			}
			if pretty, ok := prettyJSON(body); ok {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), pretty)
				return nil
			}
			if len(body) > 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(body))
			}
			return nil
		},
	}
}

func (c *client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, failed("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, failed("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failed("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, failed("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
