package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"stowaway/internal/config"
)

const userAgent = "stowaway/0.1.0"

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifyUploadCompleted(ctx context.Context, summary UploadSummary) error
	NotifyBatchCompleted(ctx context.Context, operation string, succeeded, failed int) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// UploadSummary describes a finished upload run.
type UploadSummary struct {
	Server    string
	Succeeded int
	Failed    int
	Bytes     int64
	Duration  time.Duration
	Cancelled bool
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		upload:   cfg.Notifications.Upload,
		batch:    cfg.Notifications.Batch,
		errors:   cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	upload   bool
	batch    bool
	errors   bool
}

func (n *ntfyService) NotifyUploadCompleted(ctx context.Context, summary UploadSummary) error {
	if !n.upload {
		return nil
	}
	duration := summary.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	title := "stowaway - Upload Complete"
	tags := []string{"stowaway", "upload", "completed"}
	switch {
	case summary.Cancelled:
		title = "stowaway - Upload Cancelled"
		tags = []string{"stowaway", "upload", "cancelled"}
	case summary.Failed > 0:
		title = "stowaway - Upload Complete (with errors)"
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "%d uploaded, %d failed in %s", summary.Succeeded, summary.Failed, duration)
	if summary.Bytes > 0 {
		fmt.Fprintf(&builder, "\n%s sent", humanize.IBytes(uint64(summary.Bytes)))
	}
	if server := strings.TrimSpace(summary.Server); server != "" {
		fmt.Fprintf(&builder, "\nServer: %s", server)
	}

	return n.send(ctx, payload{title: title, message: builder.String(), tags: tags})
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, operation string, succeeded, failed int) error {
	if !n.batch {
		return nil
	}
	operation = strings.TrimSpace(operation)
	if operation == "" {
		operation = "batch"
	}
	title := fmt.Sprintf("stowaway - %s Complete", capitalize(operation))
	message := fmt.Sprintf("%s finished: %d succeeded", operation, succeeded)
	if failed > 0 {
		title += " (with errors)"
		message = fmt.Sprintf("%s finished: %d succeeded, %d failed", operation, succeeded, failed)
	}
	return n.send(ctx, payload{
		title:   title,
		message: message,
		tags:    []string{"stowaway", operation, "completed"},
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	return n.send(ctx, payload{
		title:    "stowaway - Error",
		message:  builder.String(),
		tags:     []string{"stowaway", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "stowaway - Test",
		message:  "Notification system test",
		tags:     []string{"stowaway", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type noopService struct{}

func (noopService) NotifyUploadCompleted(context.Context, UploadSummary) error   { return nil }
func (noopService) NotifyBatchCompleted(context.Context, string, int, int) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error             { return nil }
func (noopService) TestNotification(context.Context) error                       { return nil }
