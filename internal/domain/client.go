package domain

import "context"

// CloudAPI is the provider surface the stack engine drives. Find lookups
// resolve by the resource's external identity (the Name tag for network
// resources, the native identifier for database resources) and return
// nil without error when nothing matches; more than one match per
// identity is an *AmbiguousLookupError. Subnets and instances are set
// resources: their lookups return every live member of the set.
// Get lookups resolve by provider ID and share the nil-when-absent
// convention.
type CloudAPI interface {
	CallerIdentity(ctx context.Context) (*CallerIdentity, error)
	AvailabilityZones(ctx context.Context) ([]AvailabilityZone, error)

	FindVPC(ctx context.Context, name string) (*VPCData, error)
	FindSubnets(ctx context.Context, names []string) ([]SubnetData, error)
	FindInternetGateway(ctx context.Context, name string) (*InternetGatewayData, error)
	FindRouteTable(ctx context.Context, name string) (*RouteTableData, error)
	FindSecurityGroup(ctx context.Context, name string) (*SecurityGroupData, error)
	FindSubnetGroup(ctx context.Context, name string) (*SubnetGroupData, error)
	FindCluster(ctx context.Context, id string) (*ClusterData, error)
	FindInstances(ctx context.Context, clusterID string) ([]InstanceData, error)

	GetVPC(ctx context.Context, id string) (*VPCData, error)
	GetSubnet(ctx context.Context, id string) (*SubnetData, error)
	GetInternetGateway(ctx context.Context, id string) (*InternetGatewayData, error)
	GetRouteTable(ctx context.Context, id string) (*RouteTableData, error)
	GetSecurityGroup(ctx context.Context, id string) (*SecurityGroupData, error)

	CreateVPC(ctx context.Context, spec VPCSpec) (*VPCData, error)
	CreateSubnet(ctx context.Context, spec SubnetSpec) (*SubnetData, error)
	CreateInternetGateway(ctx context.Context, spec InternetGatewaySpec) (*InternetGatewayData, error)
	CreateRouteTable(ctx context.Context, spec RouteTableSpec) (*RouteTableData, error)
	CreateDefaultRoute(ctx context.Context, routeTableID, gatewayID string) error
	AssociateRouteTable(ctx context.Context, routeTableID, subnetID string) (string, error)
	CreateSecurityGroup(ctx context.Context, spec SecurityGroupSpec) (*SecurityGroupData, error)
	AuthorizeIngress(ctx context.Context, rule SecurityGroupRuleSpec) error
	AuthorizeEgressAll(ctx context.Context, groupID string) error
	CreateSubnetGroup(ctx context.Context, spec SubnetGroupSpec) (*SubnetGroupData, error)
	CreateCluster(ctx context.Context, spec ClusterSpec) (*ClusterData, error)
	CreateInstance(ctx context.Context, spec InstanceSpec) (*InstanceData, error)

	DeleteInstance(ctx context.Context, id string) error
	DeleteCluster(ctx context.Context, id string) error
	DeleteSubnetGroup(ctx context.Context, name string) error
	DeleteSecurityGroup(ctx context.Context, id string) error
	DisassociateRouteTable(ctx context.Context, associationID string) error
	DeleteRouteTable(ctx context.Context, id string) error
	DetachInternetGateway(ctx context.Context, id, vpcID string) error
	DeleteInternetGateway(ctx context.Context, id string) error
	DeleteSubnet(ctx context.Context, id string) error
	DeleteVPC(ctx context.Context, id string) error

	WaitClusterAvailable(ctx context.Context, id string) error
	WaitInstanceAvailable(ctx context.Context, id string) error
	WaitClusterDeleted(ctx context.Context, id string) error
	WaitInstancesDeleted(ctx context.Context, clusterID string) error
}
