package domain

import (
	"fmt"
	"net"

	"github.com/apparentlymart/go-cidr/cidr"
)

// subnetNewBits is how far the subnet prefix extends beyond the VPC
// prefix: a /16 VPC yields /24 subnets.
const subnetNewBits = 8

// SubnetCIDRs carves count consecutive sub-ranges out of the VPC block,
// in index order, so a given VPC CIDR always yields the same subnet
// layout across runs.
func SubnetCIDRs(vpcCIDR string, count int) ([]string, error) {
	_, network, err := net.ParseCIDR(vpcCIDR)
	if err != nil {
		return nil, fmt.Errorf("parse vpc cidr %q: %w", vpcCIDR, err)
	}
	ones, bits := network.Mask.Size()
	if ones+subnetNewBits > bits {
		return nil, fmt.Errorf("vpc cidr %s leaves no room for /%d subnets", vpcCIDR, ones+subnetNewBits)
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		sub, err := cidr.Subnet(network, subnetNewBits, i)
		if err != nil {
			return nil, fmt.Errorf("derive subnet %d of %s: %w", i, vpcCIDR, err)
		}
		out = append(out, sub.String())
	}
	return out, nil
}

// ValidCIDR reports whether s parses as an IPv4 CIDR block.
func ValidCIDR(s string) bool {
	ip, _, err := net.ParseCIDR(s)
	if err != nil {
		return false
	}
	return ip.To4() != nil
}
