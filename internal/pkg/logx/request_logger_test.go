package logx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskIP(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want string
	}{
		{"ipv4 with port", "203.0.113.77:54321", "203.0.113.0"},
		{"ipv4 bare", "198.51.100.9", "198.51.100.0"},
		{"ipv6 with port", "[2001:db8:1:2:3:4:5:6]:443", "2001:db8:1:2::"},
		{"loopback", "127.0.0.1:8080", "127.0.0.1"},
		{"ipv6 loopback", "[::1]:8080", "127.0.0.1"},
		{"garbage", "not-an-address", "unknown_ip"},
		{"empty", "", "unknown_ip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskIP(tt.addr))
		})
	}
}
