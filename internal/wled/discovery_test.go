package wled

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanSubnetFindsController(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/info" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"ver":"0.14.0","name":"Desk","leds":{"count":256}}`))
	}))
	defer server.Close()

	_, portStr, err := net.SplitHostPort(server.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	var calls, last int
	devices, err := scanSubnet(context.Background(), "127.0.0", port, func(current, total int) {
		calls++
		last = current
		assert.Equal(t, 254, total)
	})
	require.NoError(t, err)

	assert.Equal(t, 254, calls)
	assert.Equal(t, 254, last)
	require.Len(t, devices, 1)
	assert.Equal(t, "127.0.0.1", devices[0].IP)
	assert.Equal(t, "Desk", devices[0].Name)
	assert.Equal(t, "0.14.0", devices[0].Version)
	assert.Equal(t, 256, devices[0].LEDs)
}

func TestScanSubnetCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scanSubnet(ctx, "127.0.0", 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
