package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/metar-entity-sync/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafkago.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func testEntity() domain.StationEntity {
	vis := 0.5
	station := domain.Station{ID: "KPWM", Name: "Portland International Jetport", Lat: 43.6462, Lon: -70.3093}
	obs := domain.Observation{StationID: "KPWM", VisibilitySM: &vis}
	return domain.Synthesize(station, obs, time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC), time.Hour)
}

func TestSerializeToMessage(t *testing.T) {
	entity := testEntity()

	msg, err := serializeToMessage(entity)
	require.NoError(t, err)

	assert.Equal(t, []byte("weather-kpwm"), msg.Key)
	assert.Contains(t, string(msg.Value), `"flight_category":"LIFR"`)
	assert.Contains(t, string(msg.Value), `"entity_id":"weather-kpwm"`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "flight_category", msg.Headers[0].Key)
	assert.Equal(t, []byte("LIFR"), msg.Headers[0].Value)
	assert.Equal(t, "disposition", msg.Headers[1].Key)
	assert.Equal(t, []byte("HOSTILE"), msg.Headers[1].Value)
	assert.Equal(t, "created_time", msg.Headers[2].Key)
	assert.Equal(t, []byte("2024-04-26T15:10:00Z"), msg.Headers[2].Value)
}

func TestWriter_Publish(t *testing.T) {
	fw := &fakeWriter{}
	w := &Writer{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, w.Publish(context.Background(), testEntity()))
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, []byte("weather-kpwm"), fw.msgs[0].Key)
}

func TestWriter_Publish_Error(t *testing.T) {
	fw := &fakeWriter{err: errors.New("leader not available")}
	w := &Writer{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := w.Publish(context.Background(), testEntity())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weather-kpwm")
}
