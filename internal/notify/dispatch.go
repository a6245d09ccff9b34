package notify

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"eventnotify/internal/config"
	appLog "eventnotify/internal/log"
)

const lineNotifyEndpoint = "https://notify-api.line.me/api/notify"

// Dispatcher delivers the daily digest to the configured channels.
// Channels are independent: a Slack failure does not stop LINE.
type Dispatcher struct {
	cfg    config.NotifyConfig
	client *http.Client

	// lastSentPath stores the hash of the last delivered body so an
	// unchanged rerun is not re-sent.
	lastSentPath string

	dryRun bool
}

// NewDispatcher creates a Dispatcher. stateDir holds the last-sent
// marker; empty disables resend suppression.
func NewDispatcher(cfg config.NotifyConfig, stateDir string, dryRun bool) *Dispatcher {
	d := &Dispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		dryRun: dryRun,
	}
	if stateDir != "" {
		d.lastSentPath = filepath.Join(stateDir, "last_sent.txt")
	}
	return d
}

// Send delivers body to every configured channel and reports whether at
// least one delivery succeeded. In dry-run mode the body is logged and
// nothing is sent.
func (d *Dispatcher) Send(ctx context.Context, body string) (bool, error) {
	if d.dryRun {
		appLog.Info("dry run, not sending", "body_len", len(body))
		return false, nil
	}

	if d.alreadySent(body) {
		appLog.Info("digest unchanged since last send, skipping")
		return false, nil
	}

	sent := false
	var errs []error

	if d.cfg.SlackWebhookURL != "" {
		if err := d.sendSlack(ctx, body); err != nil {
			appLog.Error("slack delivery failed", err)
			errs = append(errs, fmt.Errorf("slack: %w", err))
		} else {
			sent = true
		}
	} else {
		appLog.Warn("no slack webhook configured, skipping slack")
	}

	if d.cfg.LineNotifyToken != "" {
		if err := d.sendLine(ctx, body); err != nil {
			appLog.Error("line delivery failed", err)
			errs = append(errs, fmt.Errorf("line: %w", err))
		} else {
			sent = true
		}
	}

	if sent {
		d.saveBodyHash(body)
	}
	return sent, errors.Join(errs...)
}

func (d *Dispatcher) sendSlack(ctx context.Context, body string) error {
	return slack.PostWebhookContext(ctx, d.cfg.SlackWebhookURL, &slack.WebhookMessage{Text: body})
}

// sendLine posts through the LINE Notify form API. There is no client
// library for it in our stack; the API is a single form POST.
func (d *Dispatcher) sendLine(ctx context.Context, body string) error {
	form := url.Values{"message": {body}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, lineNotifyEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.cfg.LineNotifyToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New(resp.Status)
	}
	return nil
}

func bodyHash(body string) string {
	sum := sha1.Sum([]byte(body))
	return hex.EncodeToString(sum[:])
}

func (d *Dispatcher) alreadySent(body string) bool {
	if d.lastSentPath == "" {
		return false
	}
	prev, err := os.ReadFile(d.lastSentPath)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(prev)) == bodyHash(body)
}

func (d *Dispatcher) saveBodyHash(body string) {
	if d.lastSentPath == "" {
		return
	}
	if err := os.WriteFile(d.lastSentPath, []byte(bodyHash(body)), 0o600); err != nil {
		appLog.Warn("last_sent write failed", "err", err)
	}
}
