package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpostbuild/internal/config"
	pberrors "git.home.luguber.info/inful/docpostbuild/internal/errors"
	"git.home.luguber.info/inful/docpostbuild/internal/searchindex"
)

// Requires a JetStream-enabled server, e.g. `nats-server -js`.
func natsTestConfig(t *testing.T) config.NATSPublish {
	t.Helper()
	url := os.Getenv("DOCPOSTBUILD_TEST_NATS_URL")
	if url == "" {
		t.Skip("DOCPOSTBUILD_TEST_NATS_URL not set")
	}
	return config.NATSPublish{
		URL:     url,
		Bucket:  fmt.Sprintf("docpostbuild-test-%d", time.Now().UnixNano()),
		Subject: "docpostbuild.test.updated",
		Timeout: 5 * time.Second,
	}
}

func TestNATSPublisher(t *testing.T) {
	cfg := natsTestConfig(t)

	sub, err := nats.Connect(cfg.URL)
	require.NoError(t, err)
	t.Cleanup(sub.Close)
	events, err := sub.SubscribeSync(cfg.Subject)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	p := NewNATSPublisher(cfg, WithNATSLogger(slog.New(slog.DiscardHandler)))
	t.Cleanup(func() { _ = p.Close() })
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, testArtifact(), testMeta))
	entry, err := p.kv.Get(ctx, "docs-guide")
	require.NoError(t, err)
	var e Entry
	require.NoError(t, json.Unmarshal(entry.Value(), &e))
	assert.Equal(t, "/docs/guide", e.URL)

	msg, err := events.NextMsg(5 * time.Second)
	require.NoError(t, err)
	var ev UpdatedEvent
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, UpdatedEventType, ev.Type)
	assert.Equal(t, 3, ev.Pages)

	smaller := &searchindex.Artifact{Records: testArtifact().Records[:1]}
	require.NoError(t, p.Publish(ctx, smaller, testMeta))
	msg, err = events.NextMsg(5 * time.Second)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, 1, ev.Pages)
	assert.Equal(t, 2, ev.Removed)
}

func TestNATSPublisherUnreachableServerIsRetryable(t *testing.T) {
	p := NewNATSPublisher(config.NATSPublish{
		URL:     "nats://127.0.0.1:1",
		Bucket:  "docpostbuild-unreachable",
		Subject: "docpostbuild.test.updated",
		Timeout: time.Second,
	})
	t.Cleanup(func() { _ = p.Close() })

	err := p.Publish(context.Background(), testArtifact(), testMeta)
	require.Error(t, err)
	assert.True(t, pberrors.IsRetryable(err))
	assert.True(t, pberrors.IsCategory(err, pberrors.CategoryNetwork))
}
