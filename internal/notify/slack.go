package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/leakguard-io/leakguard/internal/lifecycle"
	"github.com/leakguard-io/leakguard/internal/masking"
)

// SlackNotifier posts new-finding summaries to a Slack incoming webhook. The
// message carries only counts, type names, and one masked sample location;
// raw content never reaches this package.
type SlackNotifier struct {
	httpc      *resty.Client
	webhookURL string
	logger     hclog.Logger
}

type slackMessage struct {
	Text string `json:"text"`
}

// NewSlackNotifier builds a notifier. An empty webhook URL yields a no-op
// notifier, so callers wire it unconditionally.
func NewSlackNotifier(httpc *resty.Client, webhookURL string, logger hclog.Logger) *SlackNotifier {
	return &SlackNotifier{
		httpc:      httpc,
		webhookURL: webhookURL,
		logger:     logger,
	}
}

// NotifyNewFindings implements lifecycle.Notifier.
func (n *SlackNotifier) NotifyNewFindings(ctx context.Context, event lifecycle.Event) error {
	if n.webhookURL == "" {
		return nil
	}

	text := FormatEvent(event)

	resp, err := n.httpc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(slackMessage{Text: text}).
		Post(n.webhookURL)
	if err != nil {
		return fmt.Errorf("failed to post slack notification: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode())
	}

	n.logger.Debug("slack notification sent", "repo", event.RepoID, "new", event.NewCount)
	return nil
}

// FormatEvent renders the notification text. The whole message goes through
// the preview sanitizer as a final guard against token-like runs slipping in
// via file paths.
func FormatEvent(event lifecycle.Event) string {
	parts := make([]string, 0, len(event.TopTypes))
	for _, tc := range event.TopTypes {
		parts = append(parts, fmt.Sprintf("%s: %d", tc.Type, tc.Count))
	}

	raw := fmt.Sprintf("LeakGuard: %d new findings in %s. Top: %s. Sample: %s:%d",
		event.NewCount, event.RepoID, strings.Join(parts, ", "), event.SampleFile, event.SampleLine)

	return masking.SanitizeText(raw)
}
