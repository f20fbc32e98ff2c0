package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/showbridge/midirelay/sdk/contracts"
)

// webhookBodyLimit caps how much of a response body is kept for test results.
const webhookBodyLimit = 4096

// executeTrigger runs one matched trigger's action. Every failure path ends
// in an APP-ERR log entry; nothing here may panic the relay or prevent other
// triggers from running.
func (r *Relay) executeTrigger(t contracts.Trigger, ev contracts.MidiEvent) {
	action, ok := contracts.ParseActionType(t.ActionType)
	if !ok {
		r.logger.Warn("trigger has unknown action type; not dispatched",
			r.logger.Field().String("id", t.ID),
			r.logger.Field().String("actiontype", t.ActionType))
		return
	}

	switch action {
	case contracts.ActionHTTP:
		res, err := r.callWebhook(t)
		if err != nil {
			r.appError(t, ev, err.Error())
			return
		}
		if res.StatusCode < 200 || res.StatusCode > 299 {
			r.appError(t, ev, fmt.Sprintf("webhook returned %s", res.Status))
			return
		}
		r.activity.append(contracts.LogEntry{
			Timestamp: time.Now(),
			Direction: contracts.DirectionTrigger,
			Port:      ev.Port,
			Command:   string(ev.Type),
			Data:      fmt.Sprintf("%s %s -> %s", inferMethod(t.Method, t.JSONData), t.URL, res.Status),
		})

	case contracts.ActionMIDI:
		req := outboundFromTrigger(t, ev)
		if err := r.SendMIDI(req); err != nil {
			r.appError(t, ev, err.Error())
			return
		}
		r.activity.append(contracts.LogEntry{
			Timestamp: time.Now(),
			Direction: contracts.DirectionTrigger,
			Port:      ev.Port,
			Command:   string(ev.Type),
			Data:      fmt.Sprintf("sent %s to %s", req.MidiCommand, req.Port),
		})
	}
}

func (r *Relay) appError(t contracts.Trigger, ev contracts.MidiEvent, detail string) {
	r.activity.append(contracts.LogEntry{
		Timestamp: time.Now(),
		Direction: contracts.DirectionAppError,
		Port:      ev.Port,
		Command:   string(ev.Type),
		Data:      fmt.Sprintf("trigger %s: %s", t.ID, detail),
	})
}

// TestTrigger fires an http trigger's webhook immediately and returns the
// outcome to the caller. MIDI triggers are not testable this way; a test must
// never fire show equipment.
func (r *Relay) TestTrigger(id string) (contracts.WebhookResult, error) {
	stored, err := r.loadStoredTriggers()
	if err != nil {
		return contracts.WebhookResult{}, err
	}
	for _, t := range stored {
		if t.ID != id {
			continue
		}
		if action, ok := contracts.ParseActionType(t.ActionType); !ok || action != contracts.ActionHTTP {
			return contracts.WebhookResult{}, ErrNotTestable
		}
		return r.callWebhook(t)
	}
	return contracts.WebhookResult{}, fmt.Errorf("%w: %s", ErrTriggerNotFound, id)
}

// callWebhook performs the HTTP action: infer the method, validate the
// declared JSON body before any network I/O, then issue the request under
// the relay's timeout.
func (r *Relay) callWebhook(t contracts.Trigger) (contracts.WebhookResult, error) {
	method := inferMethod(t.Method, t.JSONData)

	var body io.Reader
	if t.JSONData != "" {
		if !json.Valid([]byte(t.JSONData)) {
			return contracts.WebhookResult{}, fmt.Errorf("invalid JSON body for %s", t.URL)
		}
		body = strings.NewReader(t.JSONData)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.httpTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, t.URL, body)
	if err != nil {
		return contracts.WebhookResult{}, fmt.Errorf("bad webhook request for %s: %w", t.URL, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return contracts.WebhookResult{}, errors.New(describeHTTPError(err, t.URL, r.httpTimeout))
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, webhookBodyLimit))
	return contracts.WebhookResult{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(data),
	}, nil
}

// inferMethod picks the HTTP method: an explicit recognized method wins, then
// POST when a JSON body is declared, then GET.
func inferMethod(method, jsonData string) string {
	switch m := strings.ToUpper(strings.TrimSpace(method)); m {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return m
	}
	if jsonData != "" {
		return http.MethodPost
	}
	return http.MethodGet
}

// describeHTTPError maps the usual webhook failure modes to readable strings.
func describeHTTPError(err error, url string, timeout time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s: timeout after %dms", url, timeout.Milliseconds())
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Sprintf("%s: connection refused", url)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Sprintf("%s: host not found: %s", url, dnsErr.Name)
	}
	return err.Error()
}

// outboundFromTrigger builds the MIDI action's send request, falling back
// per-field to the triggering event where an output field is absent.
func outboundFromTrigger(t contracts.Trigger, ev contracts.MidiEvent) contracts.OutboundMidiRequest {
	pick := func(out, fromEvent string) string {
		if strings.TrimSpace(out) != "" {
			return out
		}
		return fromEvent
	}

	return contracts.OutboundMidiRequest{
		Port:        t.OutputPort,
		MidiCommand: pick(t.OutputCommand, string(ev.Type)),
		Channel:     pick(t.OutputChannel, strconv.Itoa(int(ev.Channel))),
		Note:        pick(t.OutputNote, strconv.Itoa(int(ev.Note))),
		Velocity:    pick(t.OutputVelocity, strconv.Itoa(int(ev.Velocity))),
		Controller:  pick(t.OutputController, strconv.Itoa(int(ev.Controller))),
		Value:       pick(t.OutputValue, strconv.Itoa(ev.Value)),
	}
}
