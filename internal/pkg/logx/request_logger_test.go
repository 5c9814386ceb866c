package logx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ipv4 with port", in: "203.0.113.42:5555", want: "203.0.113.0"},
		{name: "ipv4 bare", in: "198.51.100.7", want: "198.51.100.0"},
		{name: "loopback", in: "127.0.0.1:80", want: "127.0.0.1"},
		{name: "ipv6", in: "[2001:db8:1:2:3:4:5:6]:443", want: "2001:db8:1:2::"},
		{name: "garbage", in: "not-an-ip", want: "unknown_ip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, anonymizeIP(tt.in))
		})
	}
}

func TestIsUpgrade(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.False(t, isUpgrade(r))

	r.Header.Set("Upgrade", "WebSocket")
	assert.True(t, isUpgrade(r))
}
