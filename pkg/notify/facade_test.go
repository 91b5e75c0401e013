package notify_test

import (
	"context"
	"errors"
	"html/template"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoxlab/notify/pkg/dedupe"
	"github.com/neoxlab/notify/pkg/notify"
	"github.com/neoxlab/notify/pkg/queue"
)

// recordingSender records every message and reports success unless result is
// overridden.
type recordingSender struct {
	emails   []notify.EmailMessage
	sms      []notify.SMSMessage
	chats    []notify.ChatMessage
	browsers []notify.BrowserMessage
	pushes   []notify.WebPushMessage
	result   func(channel string) notify.Outcome
}

func (s *recordingSender) outcome(channel string) notify.Outcome {
	if s.result != nil {
		return s.result(channel)
	}
	return notify.Sent(channel, "id-"+channel, "", nil)
}

func (s *recordingSender) SendEmail(ctx context.Context, msg notify.EmailMessage) notify.Outcome {
	s.emails = append(s.emails, msg)
	return s.outcome(notify.ChannelEmail)
}

func (s *recordingSender) SendSMS(ctx context.Context, msg notify.SMSMessage) notify.Outcome {
	s.sms = append(s.sms, msg)
	return s.outcome(notify.ChannelSMS)
}

func (s *recordingSender) SendChat(ctx context.Context, msg notify.ChatMessage) notify.Outcome {
	s.chats = append(s.chats, msg)
	return s.outcome(notify.ChannelChat)
}

func (s *recordingSender) SendBrowser(ctx context.Context, msg notify.BrowserMessage) notify.Outcome {
	s.browsers = append(s.browsers, msg)
	return s.outcome(notify.ChannelBrowser)
}

func (s *recordingSender) SendPush(ctx context.Context, msg notify.WebPushMessage) notify.Outcome {
	s.pushes = append(s.pushes, msg)
	return s.outcome(notify.ChannelPush)
}

// panicSender blows up on every channel.
type panicSender struct{ recordingSender }

func (panicSender) SendEmail(ctx context.Context, msg notify.EmailMessage) notify.Outcome {
	panic("wire fault")
}

// jobRecorder captures jobs created through a real Enqueuer.
type jobRecorder struct {
	jobs []*queue.Job
	err  error
}

func (r *jobRecorder) CreateJob(ctx context.Context, job *queue.Job) error {
	if r.err != nil {
		return r.err
	}
	r.jobs = append(r.jobs, job)
	return nil
}

func newGateway(t *testing.T, repo *jobRecorder) *queue.Enqueuer {
	t.Helper()
	enq, err := queue.NewEnqueuer(repo)
	require.NoError(t, err)
	return enq
}

// brokenDedupe fails every lookup. It intentionally implements only the base
// repository interface.
type brokenDedupe struct{}

func (brokenDedupe) Remember(ctx context.Context, key string, ttlSeconds int) error {
	return errors.New("ledger down")
}

func (brokenDedupe) Exists(ctx context.Context, key string) (bool, error) {
	return false, errors.New("ledger down")
}

type recordingPublisher struct {
	outcomes []notify.Outcome
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, out notify.Outcome) error {
	p.outcomes = append(p.outcomes, out)
	return p.err
}

type panicLogger struct{}

func (panicLogger) Log(ctx context.Context, out notify.Outcome) { panic("log sink gone") }

var validSub = notify.Subscription{
	Endpoint: "https://push.example.com/sub/abc",
	Keys:     notify.SubscriptionKeys{P256dh: "p", Auth: "a"},
}

func TestNewNotifier(t *testing.T) {
	t.Parallel()

	_, err := notify.NewNotifier(nil)
	assert.ErrorIs(t, err, notify.ErrSenderNil)
}

func TestNotifyDirectSend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sender := &recordingSender{}
	n, err := notify.NewNotifier(sender)
	require.NoError(t, err)

	t.Run("email", func(t *testing.T) {
		meta := notify.Metadata{{Key: "campaign", Value: "welcome"}}
		dctx := notify.NewContext(notify.WithCorrelationID("corr-1"))

		out := n.NotifyEmail(ctx, "Hi", "body", "to@example.com", false, notify.EmailOptions{}, meta, dctx)

		require.Len(t, sender.emails, 1)
		assert.Equal(t, "to@example.com", sender.emails[0].To)
		assert.Equal(t, notify.StatusSent, out.Status)
		assert.Equal(t, "id-email", out.ID)

		v, _ := out.Metadata.Get("campaign")
		assert.Equal(t, "welcome", v)
		v, _ = out.Metadata.Get("correlationId")
		assert.Equal(t, "corr-1", v)
	})

	t.Run("sms", func(t *testing.T) {
		out := n.NotifySMS(ctx, "ping", "+15551234", nil, nil)
		require.Len(t, sender.sms, 1)
		assert.Equal(t, "+15551234", sender.sms[0].To)
		assert.Equal(t, notify.StatusSent, out.Status)
	})

	t.Run("chat", func(t *testing.T) {
		out := n.NotifyChat(ctx, "slack", "deployed", "CI", map[string]any{"channel": "#ops"}, nil, nil)
		require.Len(t, sender.chats, 1)
		require.NotNil(t, sender.chats[0].Slack)
		assert.Equal(t, "#ops", sender.chats[0].Slack.Channel)
		assert.Equal(t, notify.StatusSent, out.Status)
	})

	t.Run("browser", func(t *testing.T) {
		out := n.NotifyBrowser(ctx, "orders/42", map[string]any{"state": "paid"}, nil, nil)
		require.Len(t, sender.browsers, 1)
		assert.Equal(t, "orders/42", sender.browsers[0].Topic)
		assert.Equal(t, notify.StatusSent, out.Status)
	})

	t.Run("push", func(t *testing.T) {
		out := n.NotifyPush(ctx, validSub, map[string]any{"title": "Hi"}, nil, nil, nil)
		require.Len(t, sender.pushes, 1)
		assert.Equal(t, validSub.Endpoint, sender.pushes[0].Endpoint)
		assert.Equal(t, notify.ChannelPush, out.Channel)
	})

	t.Run("desktop is an alias of push", func(t *testing.T) {
		push := n.NotifyPush(ctx, validSub, map[string]any{"title": "Hi"}, nil, nil, nil)
		desk := n.NotifyDesktop(ctx, validSub, map[string]any{"title": "Hi"}, nil, nil, nil)
		require.Len(t, sender.pushes, 3)

		// Identical in every field except the uuid.
		assert.Equal(t, push.Channel, desk.Channel)
		assert.Equal(t, notify.ChannelPush, desk.Channel)
		assert.Equal(t, push.Status, desk.Status)
		assert.Equal(t, push.ID, desk.ID)
		assert.Equal(t, push.Message, desk.Message)
		assert.Equal(t, push.Metadata, desk.Metadata)
		assert.NotEqual(t, push.UUID, desk.UUID)
	})
}

func TestNotifyDedupe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("second dispatch is a noop", func(t *testing.T) {
		t.Parallel()

		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender, notify.WithDedupe(dedupe.NewMemory()))
		require.NoError(t, err)

		first := n.NotifySMS(ctx, "ping", "+15551234", nil, notify.ContextFor("order:42"))
		assert.Equal(t, notify.StatusSent, first.Status)

		second := n.NotifySMS(ctx, "ping", "+15551234", nil, notify.ContextFor("order:42"))
		assert.Equal(t, notify.StatusQueued, second.Status)
		assert.Equal(t, "noop", second.Message)
		v, _ := second.Metadata.Get("reason")
		assert.Equal(t, "dedup-hit", v)
		v, _ = second.Metadata.Get("dedupeKey")
		assert.Equal(t, "order:42", v)

		assert.Len(t, sender.sms, 1)
	})

	t.Run("no repository means no gate", func(t *testing.T) {
		t.Parallel()

		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender)
		require.NoError(t, err)

		n.NotifySMS(ctx, "ping", "+15551234", nil, notify.ContextFor("order:42"))
		n.NotifySMS(ctx, "ping", "+15551234", nil, notify.ContextFor("order:42"))
		assert.Len(t, sender.sms, 2)
	})

	t.Run("ledger failure fails the dispatch", func(t *testing.T) {
		t.Parallel()

		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender, notify.WithDedupe(brokenDedupe{}))
		require.NoError(t, err)

		out := n.NotifySMS(ctx, "ping", "+15551234", nil, notify.ContextFor("order:42"))
		assert.Equal(t, notify.StatusFailed, out.Status)
		assert.Contains(t, out.Message, "ledger down")
		assert.Empty(t, sender.sms)
	})
}

func TestNotifyEmailTemplate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("renders body and forces html", func(t *testing.T) {
		t.Parallel()

		tpl := template.Must(template.New("welcome").Parse("<h1>Hello {{.name}}</h1>"))
		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender,
			notify.WithTemplateRenderer(notify.NewHTMLTemplateRenderer(tpl)),
		)
		require.NoError(t, err)

		opts := notify.EmailOptions{Template: "welcome", TemplateVars: map[string]any{"name": "Ann"}}
		out := n.NotifyEmail(ctx, "Hi", "ignored", "to@example.com", false, opts, nil, nil)

		assert.Equal(t, notify.StatusSent, out.Status)
		require.Len(t, sender.emails, 1)
		assert.Equal(t, "<h1>Hello Ann</h1>", sender.emails[0].Body)
		assert.True(t, sender.emails[0].IsHTML)
	})

	t.Run("no renderer configured", func(t *testing.T) {
		t.Parallel()

		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender)
		require.NoError(t, err)

		opts := notify.EmailOptions{Template: "welcome"}
		out := n.NotifyEmail(ctx, "Hi", "b", "to@example.com", false, opts, nil, nil)

		assert.Equal(t, notify.StatusFailed, out.Status)
		assert.Contains(t, out.Message, "not available")
		assert.Empty(t, sender.emails)
	})

	t.Run("unknown template", func(t *testing.T) {
		t.Parallel()

		tpl := template.Must(template.New("welcome").Parse("x"))
		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender,
			notify.WithTemplateRenderer(notify.NewHTMLTemplateRenderer(tpl)),
		)
		require.NoError(t, err)

		out := n.NotifyEmail(ctx, "Hi", "b", "to@example.com", false,
			notify.EmailOptions{Template: "missing"}, nil, nil)
		assert.Equal(t, notify.StatusFailed, out.Status)
		assert.Empty(t, sender.emails)
	})
}

func TestNotifyDeferred(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("email deferral enqueues an envelope", func(t *testing.T) {
		t.Parallel()

		repo := &jobRecorder{}
		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender, notify.WithQueueGateway(newGateway(t, repo)))
		require.NoError(t, err)

		deferAt := time.Now().Add(10 * time.Minute)
		dctx := notify.NewContext(notify.WithDeferAt(deferAt))

		out := n.NotifyEmail(ctx, "Hi", "body", "to@example.com", false, notify.EmailOptions{}, nil, dctx)

		assert.Equal(t, notify.StatusQueued, out.Status)
		assert.Equal(t, "scheduled", out.Message)
		v, ok := out.Metadata.Get("deferAt")
		require.True(t, ok)
		assert.Equal(t, deferAt.Format(time.RFC3339), v)
		assert.False(t, out.Metadata.Has("transport"))

		assert.Empty(t, sender.emails)
		require.Len(t, repo.jobs, 1)
		job := repo.jobs[0]
		assert.Equal(t, "notify.DeferredEnvelope", job.Name)
		assert.Equal(t, queue.DefaultRoute, job.Route)
		assert.WithinDuration(t, deferAt, job.ScheduledAt, 2*time.Second)
	})

	t.Run("deferral with forced route", func(t *testing.T) {
		t.Parallel()

		repo := &jobRecorder{}
		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender, notify.WithQueueGateway(newGateway(t, repo)))
		require.NoError(t, err)

		dctx := notify.NewContext(
			notify.WithDeferAt(time.Now().Add(time.Hour)),
			notify.WithViaTransport("mailing"),
		)
		out := n.NotifySMS(ctx, "ping", "+15551234", nil, dctx)

		assert.Equal(t, notify.StatusQueued, out.Status)
		v, _ := out.Metadata.Get("transport")
		assert.Equal(t, "mailing", v)
		require.Len(t, repo.jobs, 1)
		assert.Equal(t, "mailing", repo.jobs[0].Route)
	})

	t.Run("past defer time sends as soon as possible", func(t *testing.T) {
		t.Parallel()

		repo := &jobRecorder{}
		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender, notify.WithQueueGateway(newGateway(t, repo)))
		require.NoError(t, err)

		dctx := notify.NewContext(notify.WithDeferAt(time.Now().Add(-time.Hour)))
		out := n.NotifySMS(ctx, "ping", "+15551234", nil, dctx)

		assert.Equal(t, notify.StatusQueued, out.Status)
		require.Len(t, repo.jobs, 1)
		assert.WithinDuration(t, time.Now(), repo.jobs[0].ScheduledAt, 2*time.Second)
	})

	t.Run("no gateway configured", func(t *testing.T) {
		t.Parallel()

		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender)
		require.NoError(t, err)

		dctx := notify.NewContext(notify.WithDeferAt(time.Now().Add(time.Hour)))
		out := n.NotifySMS(ctx, "ping", "+15551234", nil, dctx)

		assert.Equal(t, notify.StatusFailed, out.Status)
		assert.Equal(t, "Deferred send requires a queue. Queue gateway not available", out.Message)
		assert.Empty(t, sender.sms)
	})

	t.Run("enqueue failure fails the dispatch", func(t *testing.T) {
		t.Parallel()

		repo := &jobRecorder{err: errors.New("broker gone")}
		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender, notify.WithQueueGateway(newGateway(t, repo)))
		require.NoError(t, err)

		dctx := notify.NewContext(notify.WithDeferAt(time.Now().Add(time.Hour)))
		out := n.NotifySMS(ctx, "ping", "+15551234", nil, dctx)

		assert.Equal(t, notify.StatusFailed, out.Status)
		assert.Contains(t, out.Message, "broker gone")
	})
}

func TestNotifyForcedTransport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("email rides a dedicated envelope", func(t *testing.T) {
		t.Parallel()

		repo := &jobRecorder{}
		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender, notify.WithQueueGateway(newGateway(t, repo)))
		require.NoError(t, err)

		dctx := notify.NewContext(notify.WithViaTransport("mailing"))
		out := n.NotifyEmail(ctx, "Hi", "body", "to@example.com", true, notify.EmailOptions{}, nil, dctx)

		assert.Equal(t, notify.StatusQueued, out.Status)
		assert.Equal(t, "forced-transport", out.Message)
		v, _ := out.Metadata.Get("transport")
		assert.Equal(t, "mailing", v)

		assert.Empty(t, sender.emails)
		require.Len(t, repo.jobs, 1)
		assert.Equal(t, "notify.OutboundEmail", repo.jobs[0].Name)
		assert.Equal(t, "mailing", repo.jobs[0].Route)
	})

	t.Run("sync route reports sent", func(t *testing.T) {
		t.Parallel()

		repo := &jobRecorder{}
		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender, notify.WithQueueGateway(newGateway(t, repo)))
		require.NoError(t, err)

		dctx := notify.NewContext(notify.WithViaTransport(notify.TransportSync))
		out := n.NotifySMS(ctx, "ping", "+15551234", nil, dctx)

		assert.Equal(t, notify.StatusSent, out.Status)
		assert.Empty(t, out.Message)
		require.Len(t, repo.jobs, 1)
		assert.Equal(t, notify.TransportSync, repo.jobs[0].Route)
	})

	t.Run("no gateway configured", func(t *testing.T) {
		t.Parallel()

		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender)
		require.NoError(t, err)

		dctx := notify.NewContext(notify.WithViaTransport("mailing"))
		out := n.NotifySMS(ctx, "ping", "+15551234", nil, dctx)

		assert.Equal(t, notify.StatusFailed, out.Status)
		assert.Equal(t, "Forcing transport requires a queue. Queue gateway not available", out.Message)
		assert.Empty(t, sender.sms)
	})

	t.Run("push ignores forced transport", func(t *testing.T) {
		t.Parallel()

		repo := &jobRecorder{}
		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender, notify.WithQueueGateway(newGateway(t, repo)))
		require.NoError(t, err)

		dctx := notify.NewContext(notify.WithViaTransport("mailing"))
		out := n.NotifyPush(ctx, validSub, map[string]any{"t": 1}, nil, nil, dctx)

		// Delivered directly; the routing directive applies to push only
		// together with deferral.
		assert.Equal(t, notify.StatusSent, out.Status)
		assert.Len(t, sender.pushes, 1)
		assert.Empty(t, repo.jobs)
	})
}

func TestNotifyPushValidation(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	n, err := notify.NewNotifier(sender)
	require.NoError(t, err)

	out := n.NotifyPush(context.Background(), notify.Subscription{}, nil, nil, nil, nil)
	assert.Equal(t, notify.StatusFailed, out.Status)
	assert.Contains(t, out.Message, "endpoint")
	assert.Empty(t, sender.pushes)
}

func TestNotifyPanicBarrier(t *testing.T) {
	t.Parallel()

	n, err := notify.NewNotifier(&panicSender{})
	require.NoError(t, err)

	out := n.NotifyEmail(context.Background(), "Hi", "b", "to@example.com", false,
		notify.EmailOptions{}, notify.Metadata{{Key: "k", Value: "v"}}, nil)

	assert.Equal(t, notify.StatusFailed, out.Status)
	assert.Contains(t, out.Message, "wire fault")
	v, _ := out.Metadata.Get("k")
	assert.Equal(t, "v", v)
}

func TestNotifyMirrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("status publisher sees the finalized outcome", func(t *testing.T) {
		t.Parallel()

		pub := &recordingPublisher{}
		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender, notify.WithStatusPublisher(pub))
		require.NoError(t, err)

		out := n.NotifySMS(ctx, "ping", "+15551234", nil, nil)
		require.Len(t, pub.outcomes, 1)
		assert.Equal(t, out, pub.outcomes[0])
	})

	t.Run("mirror failures never change the outcome", func(t *testing.T) {
		t.Parallel()

		pub := &recordingPublisher{err: errors.New("stream closed")}
		sender := &recordingSender{}
		n, err := notify.NewNotifier(sender,
			notify.WithStatusPublisher(pub),
			notify.WithNotificationLogger(panicLogger{}),
		)
		require.NoError(t, err)

		out := n.NotifySMS(ctx, "ping", "+15551234", nil, nil)
		assert.Equal(t, notify.StatusSent, out.Status)
		assert.Len(t, pub.outcomes, 1)
	})
}
