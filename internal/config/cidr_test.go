package config

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSubnet(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		subnet  string
		wantErr bool
	}{
		{name: "default subnet", subnet: "10.100.0.0/16"},
		{name: "small subnet", subnet: "192.168.50.0/29"},
		{name: "host bits set", subnet: "10.100.0.1/16"},
		{name: "not a cidr", subnet: "not-a-cidr", wantErr: true},
		{name: "bare address", subnet: "10.100.0.0", wantErr: true},
		{name: "empty", subnet: "", wantErr: true},
		{name: "ipv6", subnet: "fd00::/64", wantErr: true},
		{name: "too small", subnet: "10.0.0.0/31", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateSubnet(tt.subnet)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidSubnet)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGateway(t *testing.T) {
	t.Parallel()

	gw, err := Gateway("10.100.0.0/16")
	require.NoError(t, err)
	assert.Equal(t, "10.100.0.1", gw)

	gw, err = Gateway("172.30.8.0/24")
	require.NoError(t, err)
	assert.Equal(t, "172.30.8.1", gw)

	_, err = Gateway("not-a-cidr")
	assert.ErrorIs(t, err, ErrInvalidSubnet)
}

func TestCIDRHost(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		prefix   string
		hostnum  int
		expected string
		wantErr  bool
	}{
		{name: "first host", prefix: "10.0.0.0/16", hostnum: 1, expected: "10.0.0.1"},
		{name: "crosses octet", prefix: "10.0.0.0/16", hostnum: 256, expected: "10.0.1.0"},
		{name: "negative counts from end", prefix: "10.0.0.0/24", hostnum: -2, expected: "10.0.0.254"},
		{name: "out of range", prefix: "10.0.0.0/24", hostnum: 256, wantErr: true},
		{name: "negative out of range", prefix: "10.0.0.0/24", hostnum: -257, wantErr: true},
		{name: "ipv6", prefix: "2001:db8::/64", hostnum: 1, wantErr: true},
		{name: "invalid", prefix: "nope", hostnum: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := CIDRHost(tt.prefix, tt.hostnum)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUintFromIP(t *testing.T) {
	t.Parallel()
	assert.Equal(t, uint64(3232235777), uintFromIP(net.IP{192, 168, 1, 1}))
	assert.Equal(t, uint64(3232235777), uintFromIP(net.ParseIP("192.168.1.1")))
	assert.Equal(t, uint64(0), uintFromIP(net.ParseIP("2001:db8::1")))
	assert.Equal(t, "255.255.255.255", ipFromUint(4294967295).String())
}
