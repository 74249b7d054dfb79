package domain

// Port is the wire port document database clusters listen on.
const Port = 27017

// SubnetCount is the number of subnets the network tier carries. Two
// distinct availability zones is the floor a cluster subnet group accepts.
const SubnetCount = 2

// AnywhereCIDR matches every IPv4 address. It is the default route
// destination and the permissive ingress default.
const AnywhereCIDR = "0.0.0.0/0"

// Engine is the engine marker the provider expects on cluster and
// instance creation.
const Engine = "docdb"

// Resource kinds as they appear in plans, state files, and logs.
const (
	KindVPC             = "vpc"
	KindSubnet          = "subnet"
	KindInternetGateway = "internet-gateway"
	KindRouteTable      = "route-table"
	KindSecurityGroup   = "security-group"
	KindSubnetGroup     = "db-subnet-group"
	KindCluster         = "db-cluster"
	KindInstance        = "db-instance"
)

// Tag keys stamped on every resource the stack creates. TagStack carries
// the stack name and is what destroy checks before deleting anything.
const (
	TagName      = "Name"
	TagStack     = "plinth:stack"
	TagManagedBy = "plinth:managed-by"
)

// ManagedByValue is the value recorded under TagManagedBy.
const ManagedByValue = "plinth"

type VPCData struct {
	ID        string
	CIDRBlock string
	State     string
	Tags      map[string]string
}

type SubnetData struct {
	ID               string
	VPCID            string
	CIDRBlock        string
	AvailabilityZone string
	State            string
	Tags             map[string]string
}

type InternetGatewayData struct {
	ID             string
	AttachedVPCIDs []string
	Tags           map[string]string
}

type RouteTableData struct {
	ID           string
	VPCID        string
	Routes       []Route
	Associations []RouteTableAssociation
	Tags         map[string]string
}

type Route struct {
	DestinationCIDR string
	GatewayID       string
	State           string
}

type RouteTableAssociation struct {
	ID       string
	SubnetID string
	Main     bool
}

type SecurityGroupData struct {
	ID            string
	Name          string
	VPCID         string
	Description   string
	InboundRules  []SecurityGroupRule
	OutboundRules []SecurityGroupRule
	Tags          map[string]string
}

type SecurityGroupRule struct {
	Protocol   string
	FromPort   int
	ToPort     int
	CIDRBlocks []string
}

type SubnetGroupData struct {
	Name      string
	VPCID     string
	SubnetIDs []string
	Status    string
}

type ClusterData struct {
	ID                  string
	Status              string
	Endpoint            string
	ReaderEndpoint      string
	Port                int
	MasterUsername      string
	BackupRetentionDays int
	BackupWindow        string
	SubnetGroup         string
	SecurityGroupIDs    []string
	AvailabilityZones   []string
	EngineVersion       string
}

type InstanceData struct {
	ID               string
	ClusterID        string
	Class            string
	Status           string
	AvailabilityZone string
	Endpoint         string
}

type AvailabilityZone struct {
	Name string
	ID   string
}

type CallerIdentity struct {
	Account string
	ARN     string
	UserID  string
}

// Outputs is what a deployed stack exposes to callers. Credentials are
// deliberately absent.
type Outputs struct {
	Endpoint       string `json:"endpoint"`
	ReaderEndpoint string `json:"readerEndpoint,omitempty"`
	Port           int    `json:"port"`
	ClusterStatus  string `json:"clusterStatus"`
}

type VPCSpec struct {
	CIDRBlock string
	Tags      map[string]string
}

type SubnetSpec struct {
	VPCID            string
	CIDRBlock        string
	AvailabilityZone string
	Tags             map[string]string
}

type InternetGatewaySpec struct {
	VPCID string
	Tags  map[string]string
}

type RouteTableSpec struct {
	VPCID string
	Tags  map[string]string
}

type SecurityGroupSpec struct {
	Name        string
	Description string
	VPCID       string
	Tags        map[string]string
}

type SecurityGroupRuleSpec struct {
	GroupID  string
	Protocol string
	FromPort int
	ToPort   int
	CIDR     string
}

type SubnetGroupSpec struct {
	Name        string
	Description string
	SubnetIDs   []string
	Tags        map[string]string
}

// ClusterSpec carries the plaintext master password across the create
// boundary and nowhere else. It must never be logged or serialized.
type ClusterSpec struct {
	ID                  string
	MasterUsername      string
	MasterPassword      string
	BackupRetentionDays int
	BackupWindow        string
	Port                int
	SubnetGroup         string
	SecurityGroupIDs    []string
	Tags                map[string]string
}

type InstanceSpec struct {
	ID        string
	ClusterID string
	Class     string
	Tags      map[string]string
}
