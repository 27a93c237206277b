package bithumb

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"
)

// This test uses go-vcr to record/replay a real candles call. It skips
// by default if the cassette is absent and RECORD_CASSETTES != 1.
func TestClient_GetCandles_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "bithumb_candles.yaml")
	if _, err := os.Stat(cassette); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s", cassette)
		}
		err := os.MkdirAll(filepath.Dir(cassette), 0o755)
		assert.NoError(t, err, "mkdir cassettes dir should succeed")
	}

	r, err := recorder.New(cassette)
	assert.NoError(t, err, "recorder.New should not error")
	assert.NotNil(t, r, "recorder should not be nil")
	defer func() { _ = r.Stop() }()

	creds := Credentials{
		AccessKey: envOr("BITHUMB_ACCESS_KEY", "replay-access"),
		SecretKey: envOr("BITHUMB_SECRET_KEY", "replay-secret"),
	}
	client, err := NewClient(creds, WithHTTPClient(&http.Client{Transport: r}))
	assert.NoError(t, err)

	candles, err := client.GetCandles(context.Background(), "KRW-BTC", 5)
	assert.NoError(t, err, "GetCandles should not error")
	assert.Len(t, candles, 5)
	if len(candles) >= 2 {
		assert.LessOrEqual(t, candles[0].Timestamp, candles[1].Timestamp)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
