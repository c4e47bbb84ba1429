package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovia/notifykit/pkg/logger"
)

func TestError(t *testing.T) {
	err := errors.New("provider unavailable")

	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestErrors(t *testing.T) {
	err1 := errors.New("first endpoint failed")
	err2 := errors.New("second endpoint failed")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	empty := logger.Errors(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestDomainAttrs(t *testing.T) {
	assert.Equal(t, "notification_id", logger.NotificationID("n-1").Key)
	assert.Equal(t, "channel", logger.Channel("email").Key)
	assert.Equal(t, "channel_name", logger.ChannelName("primary-postmark").Key)
	assert.Equal(t, "provider", logger.Provider("twilio").Key)
	assert.Equal(t, "template", logger.Template("welcome").Key)
	assert.Equal(t, "endpoint", logger.Endpoint("https://partner.example/hook").Key)
	assert.Equal(t, "attempt", logger.Attempt(2).Key)
	assert.Equal(t, "status", logger.Status("sent").Key)

	assert.True(t, logger.NotificationID(nil).Equal(slog.Attr{}))
	assert.True(t, logger.UserID(nil).Equal(slog.Attr{}))
}
