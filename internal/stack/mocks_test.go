package stack

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aws/smithy-go"

	"github.com/eleven-am/plinth/internal/domain"
)

// mockCloud is a map-backed CloudAPI that mimics the provider's identity
// rules: network resources tolerate duplicate Name tags and get fresh
// IDs, while security group names (per VPC), subnet group names, cluster
// and instance identifiers are unique and collide with AlreadyExists
// style errors. Every call is appended to ops so tests can assert
// ordering, and failOn injects an error for a named operation.
type mockCloud struct {
	mu sync.Mutex

	identity *domain.CallerIdentity
	zones    []domain.AvailabilityZone

	vpcs         map[string]*domain.VPCData
	subnets      map[string]*domain.SubnetData
	gateways     map[string]*domain.InternetGatewayData
	routeTables  map[string]*domain.RouteTableData
	groups       map[string]*domain.SecurityGroupData
	subnetGroups map[string]*domain.SubnetGroupData
	clusters     map[string]*domain.ClusterData
	instances    map[string]*domain.InstanceData

	ingressRules []domain.SecurityGroupRuleSpec
	egressGroups []string
	clusterSpecs []domain.ClusterSpec

	ops    []string
	failOn map[string]error
	seq    int
}

func newMockCloud() *mockCloud {
	return &mockCloud{
		identity: &domain.CallerIdentity{
			Account: "123456789012",
			ARN:     "arn:aws:iam::123456789012:user/tester",
			UserID:  "AIDAEXAMPLE",
		},
		zones: []domain.AvailabilityZone{
			{Name: "us-east-1a", ID: "use1-az1"},
			{Name: "us-east-1b", ID: "use1-az2"},
			{Name: "us-east-1c", ID: "use1-az3"},
		},
		vpcs:         make(map[string]*domain.VPCData),
		subnets:      make(map[string]*domain.SubnetData),
		gateways:     make(map[string]*domain.InternetGatewayData),
		routeTables:  make(map[string]*domain.RouteTableData),
		groups:       make(map[string]*domain.SecurityGroupData),
		subnetGroups: make(map[string]*domain.SubnetGroupData),
		clusters:     make(map[string]*domain.ClusterData),
		instances:    make(map[string]*domain.InstanceData),
		failOn:       make(map[string]error),
	}
}

// record appends the operation and returns the injected failure, if any.
// Callers must hold mu.
func (m *mockCloud) record(op string) error {
	m.ops = append(m.ops, op)
	return m.failOn[op]
}

func (m *mockCloud) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%03d", prefix, m.seq)
}

func (m *mockCloud) opsSnapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ops...)
}

func apiErr(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

func (m *mockCloud) CallerIdentity(ctx context.Context) (*domain.CallerIdentity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CallerIdentity"); err != nil {
		return nil, err
	}
	return m.identity, nil
}

func (m *mockCloud) AvailabilityZones(ctx context.Context) ([]domain.AvailabilityZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AvailabilityZones"); err != nil {
		return nil, err
	}
	return m.zones, nil
}

func (m *mockCloud) FindVPC(ctx context.Context, name string) (*domain.VPCData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FindVPC"); err != nil {
		return nil, err
	}

	var matches []*domain.VPCData
	for _, vpc := range m.vpcs {
		if vpc.Tags[domain.TagName] == name {
			matches = append(matches, vpc)
		}
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, vpc := range matches {
			ids[i] = vpc.ID
		}
		sort.Strings(ids)
		return nil, &domain.AmbiguousLookupError{Kind: domain.KindVPC, Name: name, IDs: ids}
	}
}

func (m *mockCloud) FindSubnets(ctx context.Context, names []string) ([]domain.SubnetData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FindSubnets"); err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	var matches []domain.SubnetData
	for _, sn := range m.subnets {
		if wanted[sn.Tags[domain.TagName]] {
			matches = append(matches, *sn)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Tags[domain.TagName] < matches[j].Tags[domain.TagName]
	})
	if len(matches) > len(names) {
		ids := make([]string, len(matches))
		for i, sn := range matches {
			ids[i] = sn.ID
		}
		return nil, &domain.AmbiguousLookupError{Kind: domain.KindSubnet, Name: fmt.Sprint(names), IDs: ids}
	}
	return matches, nil
}

func (m *mockCloud) FindInternetGateway(ctx context.Context, name string) (*domain.InternetGatewayData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FindInternetGateway"); err != nil {
		return nil, err
	}
	for _, igw := range m.gateways {
		if igw.Tags[domain.TagName] == name {
			return igw, nil
		}
	}
	return nil, nil
}

func (m *mockCloud) FindRouteTable(ctx context.Context, name string) (*domain.RouteTableData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FindRouteTable"); err != nil {
		return nil, err
	}
	for _, rt := range m.routeTables {
		if rt.Tags[domain.TagName] == name {
			return rt, nil
		}
	}
	return nil, nil
}

func (m *mockCloud) FindSecurityGroup(ctx context.Context, name string) (*domain.SecurityGroupData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FindSecurityGroup"); err != nil {
		return nil, err
	}
	for _, sg := range m.groups {
		if sg.Tags[domain.TagName] == name {
			return sg, nil
		}
	}
	return nil, nil
}

func (m *mockCloud) FindSubnetGroup(ctx context.Context, name string) (*domain.SubnetGroupData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FindSubnetGroup"); err != nil {
		return nil, err
	}
	if group, ok := m.subnetGroups[name]; ok {
		return group, nil
	}
	return nil, nil
}

func (m *mockCloud) FindCluster(ctx context.Context, id string) (*domain.ClusterData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FindCluster"); err != nil {
		return nil, err
	}
	if cluster, ok := m.clusters[id]; ok {
		return cluster, nil
	}
	return nil, nil
}

func (m *mockCloud) FindInstances(ctx context.Context, clusterID string) ([]domain.InstanceData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FindInstances"); err != nil {
		return nil, err
	}
	var out []domain.InstanceData
	for _, inst := range m.instances {
		if inst.ClusterID == clusterID {
			out = append(out, *inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCloud) GetVPC(ctx context.Context, id string) (*domain.VPCData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetVPC"); err != nil {
		return nil, err
	}
	return m.vpcs[id], nil
}

func (m *mockCloud) GetSubnet(ctx context.Context, id string) (*domain.SubnetData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetSubnet"); err != nil {
		return nil, err
	}
	return m.subnets[id], nil
}

func (m *mockCloud) GetInternetGateway(ctx context.Context, id string) (*domain.InternetGatewayData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetInternetGateway"); err != nil {
		return nil, err
	}
	return m.gateways[id], nil
}

func (m *mockCloud) GetRouteTable(ctx context.Context, id string) (*domain.RouteTableData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetRouteTable"); err != nil {
		return nil, err
	}
	return m.routeTables[id], nil
}

func (m *mockCloud) GetSecurityGroup(ctx context.Context, id string) (*domain.SecurityGroupData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetSecurityGroup"); err != nil {
		return nil, err
	}
	return m.groups[id], nil
}

func (m *mockCloud) CreateVPC(ctx context.Context, spec domain.VPCSpec) (*domain.VPCData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateVPC"); err != nil {
		return nil, err
	}
	vpc := &domain.VPCData{
		ID:        m.nextID("vpc"),
		CIDRBlock: spec.CIDRBlock,
		State:     "available",
		Tags:      spec.Tags,
	}
	m.vpcs[vpc.ID] = vpc
	return vpc, nil
}

func (m *mockCloud) CreateSubnet(ctx context.Context, spec domain.SubnetSpec) (*domain.SubnetData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateSubnet"); err != nil {
		return nil, err
	}
	if m.vpcs[spec.VPCID] == nil {
		return nil, apiErr("InvalidVpcID.NotFound")
	}
	subnet := &domain.SubnetData{
		ID:               m.nextID("subnet"),
		VPCID:            spec.VPCID,
		CIDRBlock:        spec.CIDRBlock,
		AvailabilityZone: spec.AvailabilityZone,
		State:            "available",
		Tags:             spec.Tags,
	}
	m.subnets[subnet.ID] = subnet
	return subnet, nil
}

func (m *mockCloud) CreateInternetGateway(ctx context.Context, spec domain.InternetGatewaySpec) (*domain.InternetGatewayData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateInternetGateway"); err != nil {
		return nil, err
	}
	igw := &domain.InternetGatewayData{
		ID:             m.nextID("igw"),
		AttachedVPCIDs: []string{spec.VPCID},
		Tags:           spec.Tags,
	}
	m.gateways[igw.ID] = igw
	return igw, nil
}

func (m *mockCloud) CreateRouteTable(ctx context.Context, spec domain.RouteTableSpec) (*domain.RouteTableData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateRouteTable"); err != nil {
		return nil, err
	}
	rt := &domain.RouteTableData{
		ID:    m.nextID("rtb"),
		VPCID: spec.VPCID,
		Tags:  spec.Tags,
	}
	m.routeTables[rt.ID] = rt
	return rt, nil
}

func (m *mockCloud) CreateDefaultRoute(ctx context.Context, routeTableID, gatewayID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateDefaultRoute"); err != nil {
		return err
	}
	rt := m.routeTables[routeTableID]
	if rt == nil {
		return apiErr("InvalidRouteTableID.NotFound")
	}
	rt.Routes = append(rt.Routes, domain.Route{
		DestinationCIDR: domain.AnywhereCIDR,
		GatewayID:       gatewayID,
		State:           "active",
	})
	return nil
}

func (m *mockCloud) AssociateRouteTable(ctx context.Context, routeTableID, subnetID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AssociateRouteTable"); err != nil {
		return "", err
	}
	rt := m.routeTables[routeTableID]
	if rt == nil {
		return "", apiErr("InvalidRouteTableID.NotFound")
	}
	assocID := m.nextID("rtbassoc")
	rt.Associations = append(rt.Associations, domain.RouteTableAssociation{
		ID:       assocID,
		SubnetID: subnetID,
	})
	return assocID, nil
}

func (m *mockCloud) CreateSecurityGroup(ctx context.Context, spec domain.SecurityGroupSpec) (*domain.SecurityGroupData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateSecurityGroup"); err != nil {
		return nil, err
	}
	for _, sg := range m.groups {
		if sg.Name == spec.Name && sg.VPCID == spec.VPCID {
			return nil, apiErr("InvalidGroup.Duplicate")
		}
	}
	sg := &domain.SecurityGroupData{
		ID:          m.nextID("sg"),
		Name:        spec.Name,
		VPCID:       spec.VPCID,
		Description: spec.Description,
		Tags:        spec.Tags,
	}
	m.groups[sg.ID] = sg
	return sg, nil
}

func (m *mockCloud) AuthorizeIngress(ctx context.Context, rule domain.SecurityGroupRuleSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AuthorizeIngress"); err != nil {
		return err
	}
	sg := m.groups[rule.GroupID]
	if sg == nil {
		return apiErr("InvalidGroup.NotFound")
	}
	sg.InboundRules = append(sg.InboundRules, domain.SecurityGroupRule{
		Protocol:   rule.Protocol,
		FromPort:   rule.FromPort,
		ToPort:     rule.ToPort,
		CIDRBlocks: []string{rule.CIDR},
	})
	m.ingressRules = append(m.ingressRules, rule)
	return nil
}

func (m *mockCloud) AuthorizeEgressAll(ctx context.Context, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("AuthorizeEgressAll"); err != nil {
		return err
	}
	sg := m.groups[groupID]
	if sg == nil {
		return apiErr("InvalidGroup.NotFound")
	}
	sg.OutboundRules = append(sg.OutboundRules, domain.SecurityGroupRule{
		Protocol:   "-1",
		CIDRBlocks: []string{domain.AnywhereCIDR},
	})
	m.egressGroups = append(m.egressGroups, groupID)
	return nil
}

func (m *mockCloud) CreateSubnetGroup(ctx context.Context, spec domain.SubnetGroupSpec) (*domain.SubnetGroupData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateSubnetGroup"); err != nil {
		return nil, err
	}
	if _, ok := m.subnetGroups[spec.Name]; ok {
		return nil, apiErr("DBSubnetGroupAlreadyExists")
	}
	vpcID := ""
	for _, id := range spec.SubnetIDs {
		if sn := m.subnets[id]; sn != nil {
			vpcID = sn.VPCID
		}
	}
	group := &domain.SubnetGroupData{
		Name:      spec.Name,
		VPCID:     vpcID,
		SubnetIDs: append([]string(nil), spec.SubnetIDs...),
		Status:    "Complete",
	}
	m.subnetGroups[group.Name] = group
	return group, nil
}

func (m *mockCloud) CreateCluster(ctx context.Context, spec domain.ClusterSpec) (*domain.ClusterData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateCluster"); err != nil {
		return nil, err
	}
	if _, ok := m.clusters[spec.ID]; ok {
		return nil, apiErr("DBClusterAlreadyExistsFault")
	}
	m.clusterSpecs = append(m.clusterSpecs, spec)
	cluster := &domain.ClusterData{
		ID:                  spec.ID,
		Status:              "creating",
		Endpoint:            spec.ID + ".cluster-mock0001.us-east-1.docdb.amazonaws.com",
		ReaderEndpoint:      spec.ID + ".cluster-ro-mock0001.us-east-1.docdb.amazonaws.com",
		Port:                spec.Port,
		MasterUsername:      spec.MasterUsername,
		BackupRetentionDays: spec.BackupRetentionDays,
		BackupWindow:        spec.BackupWindow,
		SubnetGroup:         spec.SubnetGroup,
		SecurityGroupIDs:    append([]string(nil), spec.SecurityGroupIDs...),
	}
	m.clusters[cluster.ID] = cluster
	return cluster, nil
}

func (m *mockCloud) CreateInstance(ctx context.Context, spec domain.InstanceSpec) (*domain.InstanceData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateInstance"); err != nil {
		return nil, err
	}
	if _, ok := m.instances[spec.ID]; ok {
		return nil, apiErr("DBInstanceAlreadyExists")
	}
	if m.clusters[spec.ClusterID] == nil {
		return nil, apiErr("DBClusterNotFoundFault")
	}
	inst := &domain.InstanceData{
		ID:        spec.ID,
		ClusterID: spec.ClusterID,
		Class:     spec.Class,
		Status:    "creating",
	}
	m.instances[inst.ID] = inst
	return inst, nil
}

func (m *mockCloud) DeleteInstance(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteInstance"); err != nil {
		return err
	}
	delete(m.instances, id)
	return nil
}

func (m *mockCloud) DeleteCluster(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteCluster"); err != nil {
		return err
	}
	delete(m.clusters, id)
	return nil
}

func (m *mockCloud) DeleteSubnetGroup(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteSubnetGroup"); err != nil {
		return err
	}
	delete(m.subnetGroups, name)
	return nil
}

func (m *mockCloud) DeleteSecurityGroup(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteSecurityGroup"); err != nil {
		return err
	}
	delete(m.groups, id)
	return nil
}

func (m *mockCloud) DisassociateRouteTable(ctx context.Context, associationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DisassociateRouteTable"); err != nil {
		return err
	}
	for _, rt := range m.routeTables {
		for i, assoc := range rt.Associations {
			if assoc.ID == associationID {
				rt.Associations = append(rt.Associations[:i], rt.Associations[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (m *mockCloud) DeleteRouteTable(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteRouteTable"); err != nil {
		return err
	}
	delete(m.routeTables, id)
	return nil
}

func (m *mockCloud) DetachInternetGateway(ctx context.Context, id, vpcID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DetachInternetGateway"); err != nil {
		return err
	}
	igw := m.gateways[id]
	if igw == nil {
		return nil
	}
	var attached []string
	for _, v := range igw.AttachedVPCIDs {
		if v != vpcID {
			attached = append(attached, v)
		}
	}
	igw.AttachedVPCIDs = attached
	return nil
}

func (m *mockCloud) DeleteInternetGateway(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteInternetGateway"); err != nil {
		return err
	}
	delete(m.gateways, id)
	return nil
}

func (m *mockCloud) DeleteSubnet(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteSubnet"); err != nil {
		return err
	}
	delete(m.subnets, id)
	return nil
}

func (m *mockCloud) DeleteVPC(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteVPC"); err != nil {
		return err
	}
	delete(m.vpcs, id)
	return nil
}

// WaitClusterAvailable flips the cluster to available, standing in for
// the provider finishing provisioning.
func (m *mockCloud) WaitClusterAvailable(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("WaitClusterAvailable"); err != nil {
		return err
	}
	cluster := m.clusters[id]
	if cluster == nil {
		return fmt.Errorf("db cluster %s disappeared while waiting", id)
	}
	cluster.Status = "available"
	return nil
}

func (m *mockCloud) WaitInstanceAvailable(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("WaitInstanceAvailable"); err != nil {
		return err
	}
	inst := m.instances[id]
	if inst == nil {
		return fmt.Errorf("db instance %s disappeared while waiting", id)
	}
	inst.Status = "available"
	return nil
}

func (m *mockCloud) WaitClusterDeleted(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("WaitClusterDeleted"); err != nil {
		return err
	}
	if _, ok := m.clusters[id]; ok {
		return fmt.Errorf("db cluster %s still present", id)
	}
	return nil
}

func (m *mockCloud) WaitInstancesDeleted(ctx context.Context, clusterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("WaitInstancesDeleted"); err != nil {
		return err
	}
	for _, inst := range m.instances {
		if inst.ClusterID == clusterID {
			return fmt.Errorf("db instance %s still present", inst.ID)
		}
	}
	return nil
}
