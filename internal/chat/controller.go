package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/novahuman/compass/internal/api"
	"github.com/novahuman/compass/internal/logger"
	"github.com/novahuman/compass/internal/models"
)

// Fixed backoff schedule for the initial history load. The first attempt
// fires immediately; the later delays absorb backend cold starts.
var loadSchedule = []time.Duration{0, 1500 * time.Millisecond, 3500 * time.Millisecond}

const (
	placeholderReply = "I'm here. What do you want to work on next?"
	failureReply     = "I couldn't reach the backend. Give it a moment and try again."
)

// Controller owns the lifecycle of one conversation: lazy session-id
// creation, optimistic sends, retrying initial load, and a single-flight
// send lock. Methods are safe for use from multiple goroutines; concurrent
// sends are dropped, not queued.
type Controller struct {
	api *api.Client
	log zerolog.Logger

	mu           sync.Mutex
	sid          string
	turns        []models.ChatTurn
	sendInFlight bool
	loadGen      int
	lastErr      string
	nudged       bool
	execCtx      models.ChatContext

	// OnSessionCreated fires with a freshly synthesized session id before
	// the network call, so a slow backend can never leave the caller
	// without an addressable session.
	OnSessionCreated func(sid string)

	// sleep is injectable so tests can run the retry schedule instantly.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewController creates a controller bound to one backend client.
func NewController(client *api.Client) *Controller {
	return &Controller{
		api:   client,
		log:   logger.WithField("component", "chat"),
		sleep: sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SessionID returns the current session id, or "" before the first send.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sid
}

// Turns returns a copy of the conversation, oldest first.
func (c *Controller) Turns() []models.ChatTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ChatTurn, len(c.turns))
	copy(out, c.turns)
	return out
}

// LastError returns the most recent user-facing error, or "".
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Sending reports whether a send is in flight.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendInFlight
}

// SetSession switches the controller to an externally supplied session id.
// Any load still in flight for the previous id becomes stale and its
// results are discarded on arrival.
func (c *Controller) SetSession(sid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sid == sid {
		return
	}
	c.loadGen++
	c.sid = sid
	c.turns = nil
	c.nudged = false
	c.lastErr = ""
}

// SetContext attaches execution context (direction title, today's action,
// check-in tone) to subsequent sends.
func (c *Controller) SetContext(execCtx models.ChatContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execCtx = execCtx
}

// NewSID synthesizes a collision-resistant session id.
func NewSID() string {
	return fmt.Sprintf("chat_%d_%s", time.Now().UnixMilli(), strings.SplitN(uuid.NewString(), "-", 2)[0])
}

// Load fetches the conversation history for the current session, retrying
// on the fixed schedule. Each attempt warms the backend with a best-effort
// health probe first. The last error is surfaced after the schedule is
// exhausted; a session switch or a send mid-flight discards results
// silently.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	sid := c.sid
	gen := c.loadGen
	c.mu.Unlock()

	if sid == "" {
		return nil
	}

	var lastErr error
	for _, delay := range loadSchedule {
		if delay > 0 {
			if err := c.sleep(ctx, delay); err != nil {
				return err
			}
		}
		if c.stale(gen) {
			return nil
		}

		c.wake(ctx)

		raw, err := c.api.Get(ctx, "/memory/chat?sid="+url.QueryEscape(sid))
		if c.stale(gen) {
			return nil
		}
		if err != nil {
			lastErr = err
			c.log.Debug().Str("sid", sid).Err(err).Msg("history load attempt failed")
			if !retryableLoad(err) {
				break
			}
			continue
		}

		turns := NormalizeRaw(raw)
		c.mu.Lock()
		if c.loadGen == gen {
			if turns == nil {
				c.turns = []models.ChatTurn{}
			} else {
				c.turns = turns
			}
			c.lastErr = ""
		}
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	if c.loadGen == gen && lastErr != nil {
		c.lastErr = lastErr.Error()
	}
	c.mu.Unlock()
	return lastErr
}

// retryableLoad: transient transport failures and server-side errors are
// retried (cold starts surface as both); 4xx rejections are not.
func retryableLoad(err error) bool {
	if api.IsTransient(err) {
		return true
	}
	var he *api.HTTPError
	if errors.As(err, &he) {
		return he.Status >= 500
	}
	return false
}

func (c *Controller) stale(gen int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadGen != gen
}

// wake pings /health so a cold backend starts spinning up before the real
// fetch. Failure here is ignored; it is warming, not a precondition.
func (c *Controller) wake(ctx context.Context) {
	if _, err := c.api.Get(ctx, "/health"); err != nil {
		c.log.Debug().Err(err).Msg("health probe failed")
	}
}

// Send dispatches one user message. Whitespace-only input is a no-op with
// no observable effect; a send racing another send is dropped. The user's
// turn is appended optimistically before the network call and is never
// rolled back: on failure only the assistant side is a canned error turn.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	if c.sendInFlight {
		c.mu.Unlock()
		return nil
	}
	c.sendInFlight = true

	// A send supersedes any history load still in flight: the load's result
	// would replace the turns wholesale and wipe the optimistic append.
	c.loadGen++

	created := false
	if c.sid == "" {
		c.sid = NewSID()
		created = true
	}
	sid := c.sid
	execCtx := c.execCtx

	c.turns = append(c.turns, models.ChatTurn{Role: models.RoleUser, Content: text})
	c.lastErr = ""
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.sendInFlight = false
		c.mu.Unlock()
	}()

	// Make the new session id visible before the backend is involved.
	if created && c.OnSessionCreated != nil {
		c.OnSessionCreated(sid)
	}

	category := DetectCategory(text)
	execCtx.Category = string(category)

	raw, err := c.api.Post(ctx, "/memory/chat", models.ChatRequest{
		SID:                sid,
		Message:            text,
		SystemInstructions: SystemPrompt + "\n\n" + ResponseContract(category),
		Context:            &execCtx,
	})
	if err != nil {
		c.mu.Lock()
		c.turns = append(c.turns, models.ChatTurn{Role: models.RoleAssistant, Content: failureReply})
		c.lastErr = err.Error()
		c.mu.Unlock()
		c.log.Warn().Str("sid", sid).Err(err).Msg("send failed")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if full := NormalizeRaw(raw); full != nil {
		c.turns = full
		return nil
	}

	reply := LatestAssistantTextRaw(raw)
	if reply == "" {
		reply = placeholderReply
	}
	c.turns = append(c.turns, models.ChatTurn{Role: models.RoleAssistant, Content: reply})

	if !c.nudged && (execCtx.TodayAction != "" || execCtx.Direction != "") {
		c.turns = append(c.turns, models.ChatTurn{Role: models.RoleAssistant, Content: anchorNudge(execCtx)})
		c.nudged = true
	}
	return nil
}

// anchorNudge is the one-time follow-up tying the conversation back to the
// user's committed action or direction.
func anchorNudge(execCtx models.ChatContext) string {
	if execCtx.TodayAction != "" {
		return fmt.Sprintf("Quick anchor: your one action today is %q. Want me to make it smaller?", execCtx.TodayAction)
	}
	return fmt.Sprintf("Quick anchor: your direction is %q. What's the smallest next step today?", execCtx.Direction)
}

// Clear deletes the conversation remotely and locally and resets the
// one-time nudge state.
func (c *Controller) Clear(ctx context.Context) error {
	c.mu.Lock()
	sid := c.sid
	c.mu.Unlock()
	if sid == "" {
		return nil
	}

	if _, err := c.api.Post(ctx, "/memory/chat/clear", map[string]string{"sid": sid}); err != nil {
		return err
	}

	c.mu.Lock()
	c.turns = nil
	c.nudged = false
	c.lastErr = ""
	c.mu.Unlock()
	return nil
}

// Delete removes a session server-side.
func (c *Controller) Delete(ctx context.Context, sid string) error {
	_, err := c.api.Post(ctx, "/memory/chat/delete", map[string]string{"sid": sid})
	return err
}

// Sessions lists the stored conversations, tolerating both the "items" and
// "sessions" wrapper shapes and sid/id aliasing.
func (c *Controller) Sessions(ctx context.Context) ([]models.SessionSummary, error) {
	raw, err := c.api.Get(ctx, "/memory/sessions")
	if err != nil {
		return nil, err
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, nil
	}

	var entries []interface{}
	switch v := decoded.(type) {
	case []interface{}:
		entries = v
	case map[string]interface{}:
		if inner, ok := v["items"].([]interface{}); ok {
			entries = inner
		} else if inner, ok := v["sessions"].([]interface{}); ok {
			entries = inner
		}
	}

	var out []models.SessionSummary
	for _, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		sum := models.SessionSummary{
			SID:   firstString(m, "sid", "id"),
			Title: firstString(m, "title"),
			Last:  firstString(m, "last"),
		}
		if sum.SID == "" {
			continue
		}
		if sum.Title == "" {
			sum.Title = "New chat"
		}
		if n, ok := m["count"].(float64); ok {
			sum.Count = int(n)
		}
		if ts := firstString(m, "updated_at"); ts != "" {
			if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
				sum.UpdatedAt = parsed
			}
		}
		out = append(out, sum)
	}
	return out, nil
}
