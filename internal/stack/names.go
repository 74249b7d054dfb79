package stack

import "fmt"

// names derives every resource's external identity from the stack name.
// The derived names double as Name tags for network resources and as
// native identifiers for database resources, so lookups and creates
// agree on identity.
type names struct {
	stack string
}

func (n names) VPC() string {
	return n.stack + "-vpc"
}

// Subnet is 1-based: <stack>-subnet-1, <stack>-subnet-2.
func (n names) Subnet(i int) string {
	return fmt.Sprintf("%s-subnet-%d", n.stack, i+1)
}

func (n names) Subnets(count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = n.Subnet(i)
	}
	return out
}

func (n names) InternetGateway() string {
	return n.stack + "-igw"
}

func (n names) RouteTable() string {
	return n.stack + "-rtb"
}

func (n names) SecurityGroup() string {
	return n.stack + "-sg"
}

func (n names) SubnetGroup() string {
	return n.stack + "-subnets"
}

func (n names) Cluster() string {
	return n.stack + "-cluster"
}

// Instance is 1-based: <stack>-cluster-1, <stack>-cluster-2.
func (n names) Instance(i int) string {
	return fmt.Sprintf("%s-cluster-%d", n.stack, i+1)
}

func (n names) Instances(count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = n.Instance(i)
	}
	return out
}
