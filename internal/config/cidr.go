package config

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
)

// ErrInvalidSubnet is wrapped by every subnet validation failure.
var ErrInvalidSubnet = errors.New("invalid subnet")

// ValidateSubnet checks that subnet is an IPv4 CIDR with room for a gateway
// and at least one node.
func ValidateSubnet(subnet string) error {
	if subnet == "" {
		return fmt.Errorf("%w: subnet is empty", ErrInvalidSubnet)
	}

	_, network, err := net.ParseCIDR(subnet)
	if err != nil {
		return fmt.Errorf("%w: %q is not a CIDR", ErrInvalidSubnet, subnet)
	}
	if network.IP.To4() == nil {
		return fmt.Errorf("%w: only IPv4 subnets are supported, got %s", ErrInvalidSubnet, subnet)
	}

	ones, _ := network.Mask.Size()
	if ones > 30 {
		return fmt.Errorf("%w: /%d leaves no room for nodes", ErrInvalidSubnet, ones)
	}
	return nil
}

// Gateway returns the gateway address docker assigns to the network: the
// first host address of the subnet.
func Gateway(subnet string) (string, error) {
	if err := ValidateSubnet(subnet); err != nil {
		return "", err
	}
	return CIDRHost(subnet, 1)
}

// CIDRHost calculates a full host IP address for a given network address and host number.
// This mimics the behavior of Terraform's cidrhost function.
//
// Parameters:
//   - prefix: The network prefix (e.g., "10.0.0.0/16")
//   - hostnum: The host number to calculate. Can be negative to count from the end
//
// Note: Only IPv4 addresses are supported. IPv6 addresses will return an error.
func CIDRHost(prefix string, hostnum int) (string, error) {
	_, network, err := net.ParseCIDR(prefix)
	if err != nil {
		return "", fmt.Errorf("invalid CIDR prefix: %w", err)
	}

	if network.IP.To4() == nil {
		return "", fmt.Errorf("only IPv4 addresses are supported, got IPv6: %s", prefix)
	}

	maskSize, totalBits := network.Mask.Size()
	maxHosts := uint64(1) << (totalBits - maskSize)

	var offset uint64
	if hostnum < 0 {
		absHostNum := uint64(-hostnum)
		if absHostNum > maxHosts {
			return "", fmt.Errorf("host number %d exceeds max hosts %d", hostnum, maxHosts)
		}
		offset = maxHosts - absHostNum
	} else {
		offset = uint64(hostnum)
		if offset >= maxHosts {
			return "", fmt.Errorf("host number %d exceeds max hosts %d", hostnum, maxHosts)
		}
	}

	return ipFromUint(uintFromIP(network.IP) + offset).String(), nil
}

// uintFromIP converts an IPv4 address to uint64. Pure IPv6 addresses yield 0.
func uintFromIP(ip net.IP) uint64 {
	ip4 := ip.To4()
	if ip4 == nil {
		return 0
	}
	return uint64(binary.BigEndian.Uint32(ip4))
}

func ipFromUint(val uint64) net.IP {
	ip := make(net.IP, 4)
	// #nosec G115
	binary.BigEndian.PutUint32(ip, uint32(val))
	return ip
}
