package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoxlab/notify/pkg/notify"
	"github.com/neoxlab/notify/pkg/transport/slack"
)

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := slack.New(slack.Config{})
	assert.ErrorIs(t, err, slack.ErrInvalidConfig)
}

func TestSendChat(t *testing.T) {
	t.Parallel()

	t.Run("posts webhook payload", func(t *testing.T) {
		t.Parallel()

		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte("ok"))
		}))
		defer srv.Close()

		c, err := slack.New(slack.Config{
			WebhookURL: srv.URL,
			Channel:    "#general",
			Username:   "notify-bot",
		}, slack.WithHTTPClient(srv.Client()))
		require.NoError(t, err)

		id, err := c.SendChat(context.Background(), notify.ChatMessage{
			Transport: "slack",
			Body:      "deploy finished",
			Subject:   "CI",
			Slack:     &notify.SlackOptions{Channel: "#deploys", IconEmoji: ":rocket:"},
		})
		require.NoError(t, err)
		assert.Empty(t, id)

		assert.Equal(t, "*CI*\ndeploy finished", got["text"])
		assert.Equal(t, "#deploys", got["channel"])
		assert.Equal(t, "notify-bot", got["username"])
		assert.Equal(t, ":rocket:", got["icon_emoji"])
	})

	t.Run("non-2xx is an error with detail", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid_payload", http.StatusBadRequest)
		}))
		defer srv.Close()

		c, err := slack.New(slack.Config{WebhookURL: srv.URL}, slack.WithHTTPClient(srv.Client()))
		require.NoError(t, err)

		_, err = c.SendChat(context.Background(), notify.ChatMessage{Body: "hi"})
		require.ErrorIs(t, err, slack.ErrSendFailed)
		assert.Contains(t, err.Error(), "invalid_payload")
	})
}
