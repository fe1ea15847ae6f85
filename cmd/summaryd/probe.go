package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"summaryd/pkg/types"
)

func newProbeCmd() *cobra.Command {
	var (
		url     string
		live    bool
		wait    time.Duration
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check a running summaryd; exits non-zero when the model is not ready",
		Example: "  summaryd probe --url http://127.0.0.1:8000\n" +
			"  summaryd probe --live",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: timeout}
			check := func(ctx context.Context) (string, error) {
				if live {
					return probeHealth(ctx, client, url)
				}
				return probeStatus(ctx, client, url)
			}
			msg, err := waitFor(cmd.Context(), wait, check)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://127.0.0.1:8000", "Base URL of the service")
	cmd.Flags().BoolVar(&live, "live", false, "Check liveness (/health) instead of model readiness")
	cmd.Flags().DurationVar(&wait, "wait", 0, "Keep polling until the check passes or this much time elapsed")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "Per-request timeout")
	return cmd
}

// waitFor runs check once, or repeatedly once per second until it passes or
// wait elapses.
func waitFor(ctx context.Context, wait time.Duration, check func(context.Context) (string, error)) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}
	for {
		msg, err := check(ctx)
		if err == nil || wait <= 0 {
			return msg, err
		}
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return "", fmt.Errorf("timed out after %s: %w", wait, err)
		}
	}
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: %s %s", url, resp.Status, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func probeHealth(ctx context.Context, client *http.Client, base string) (string, error) {
	var h types.HealthResponse
	if err := getJSON(ctx, client, strings.TrimRight(base, "/")+"/health", &h); err != nil {
		return "", err
	}
	if h.Status != "ok" {
		return "", fmt.Errorf("unexpected health status %q", h.Status)
	}
	return "ok", nil
}

func probeStatus(ctx context.Context, client *http.Client, base string) (string, error) {
	var st types.ModelStatus
	if err := getJSON(ctx, client, strings.TrimRight(base, "/")+"/api/v1/status", &st); err != nil {
		return "", err
	}
	if !st.IsReady {
		msg := fmt.Sprintf("model %s not ready: %s", st.ModelName, st.Status)
		if st.LastError != "" {
			msg += " (" + st.LastError + ")"
		}
		return "", errors.New(msg)
	}
	return fmt.Sprintf("model %s: %s", st.ModelName, st.Status), nil
}
