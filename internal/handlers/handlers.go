// Package handlers provides the built-in step handler adapters: generic
// notification, outbound HTTP call, data processing, and wait steps. The
// AI generation, code review, testing, and deployment handlers live with
// their owning services and register themselves at startup
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/floeworks/floe/pkg/api"
	"github.com/floeworks/floe/pkg/log"
)

// Registrar is the part of the engine handlers plug into
type Registrar interface {
	RegisterHandler(api.StepType, api.Handler) error
}

const (
	defaultWaitSeconds    = 60
	maxResponseBodyLength = 1 << 20
)

var (
	ErrMissingURL     = errors.New("api_call step requires a url")
	ErrRequestFailed  = errors.New("request failed")
	ErrUnknownOp      = errors.New("unknown data_processing operation")
	ErrMarshalPayload = errors.New("failed to marshal request payload")
)

// RegisterBuiltins installs the generic adapters on the registrar. The
// HTTP client is shared across all api_call steps; per-attempt deadlines
// come from the step context
func RegisterBuiltins(r Registrar, client *http.Client) error {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	builtins := map[api.StepType]api.Handler{
		api.StepTypeNotification:   Notification,
		api.StepTypeAPICall:        APICall(client),
		api.StepTypeDataProcessing: DataProcessing,
		api.StepTypeWait:           Wait,
	}
	for t, h := range builtins {
		if err := r.RegisterHandler(t, h); err != nil {
			return err
		}
	}
	return nil
}

// Notification delivers a message through the structured log. Deployments
// wanting real delivery register their own handler over this tag
func Notification(
	_ context.Context, step *api.WorkflowStep, _ api.Args,
) (api.Args, error) {
	message := step.Config.GetString("message", "Workflow step completed")
	recipients := step.Config["recipients"]

	slog.Info("Notification sent",
		log.StepID(step.ID),
		slog.String("message", message),
		slog.Any("recipients", recipients))

	return api.Args{
		"message":    message,
		"recipients": recipients,
		"sent_at":    time.Now().Format(time.RFC3339),
	}, nil
}

// APICall returns a handler performing an outbound HTTP request described
// by the step config: url, method, headers, and an optional JSON body
func APICall(client *http.Client) api.Handler {
	return func(
		ctx context.Context, step *api.WorkflowStep, _ api.Args,
	) (api.Args, error) {
		url := step.Config.GetString("url", "")
		if url == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingURL, step.ID)
		}
		method := step.Config.GetString("method", http.MethodGet)

		var body io.Reader
		if payload, ok := step.Config["body"]; ok {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrMarshalPayload, err)
			}
			body = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for name, value := range step.Config.GetArgs("headers") {
			if s, ok := value.(string); ok {
				req.Header.Set(name, s)
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyLength))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s returned %d",
				ErrRequestFailed, url, resp.StatusCode)
		}

		return api.Args{
			"response_code": resp.StatusCode,
			"response_body": decodeBody(resp, data),
		}, nil
	}
}

// DataProcessing applies a named operation to the context's data value
func DataProcessing(
	_ context.Context, step *api.WorkflowStep, execCtx api.Args,
) (api.Args, error) {
	operation := step.Config.GetString("operation", "transform")
	data := execCtx["data"]

	switch operation {
	case "transform", "compare", "measure":
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		return api.Args{
			"operation":    operation,
			"input_size":   len(encoded),
			"processed_at": time.Now().Format(time.RFC3339),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOp, operation)
	}
}

// Wait delays for the configured number of seconds, honoring cancellation
// and the step deadline
func Wait(
	ctx context.Context, step *api.WorkflowStep, _ api.Args,
) (api.Args, error) {
	seconds := step.Config.GetInt("seconds", defaultWaitSeconds)

	timer := time.NewTimer(time.Duration(seconds) * time.Second)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return api.Args{
		"waited_seconds": seconds,
	}, nil
}

// decodeBody parses JSON responses into structured values and falls back
// to the raw text otherwise
func decodeBody(resp *http.Response, data []byte) any {
	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") &&
		gjson.ValidBytes(data) {
		return gjson.ParseBytes(data).Value()
	}
	return string(data)
}
