package aws

import (
	docdbtypes "github.com/aws/aws-sdk-go-v2/service/docdb/types"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/eleven-am/plinth/internal/domain"
)

func toVPCData(vpc *ec2types.Vpc) *domain.VPCData {
	return &domain.VPCData{
		ID:        derefString(vpc.VpcId),
		CIDRBlock: derefString(vpc.CidrBlock),
		State:     string(vpc.State),
		Tags:      tagMap(vpc.Tags),
	}
}

func toSubnetData(subnet *ec2types.Subnet) *domain.SubnetData {
	return &domain.SubnetData{
		ID:               derefString(subnet.SubnetId),
		VPCID:            derefString(subnet.VpcId),
		CIDRBlock:        derefString(subnet.CidrBlock),
		AvailabilityZone: derefString(subnet.AvailabilityZone),
		State:            string(subnet.State),
		Tags:             tagMap(subnet.Tags),
	}
}

func toInternetGatewayData(igw *ec2types.InternetGateway) *domain.InternetGatewayData {
	var attached []string
	for _, att := range igw.Attachments {
		if att.VpcId != nil {
			attached = append(attached, *att.VpcId)
		}
	}
	return &domain.InternetGatewayData{
		ID:             derefString(igw.InternetGatewayId),
		AttachedVPCIDs: attached,
		Tags:           tagMap(igw.Tags),
	}
}

func toRouteTableData(rt *ec2types.RouteTable) *domain.RouteTableData {
	var routes []domain.Route
	for _, r := range rt.Routes {
		routes = append(routes, domain.Route{
			DestinationCIDR: derefString(r.DestinationCidrBlock),
			GatewayID:       derefString(r.GatewayId),
			State:           string(r.State),
		})
	}
	var assocs []domain.RouteTableAssociation
	for _, a := range rt.Associations {
		assocs = append(assocs, domain.RouteTableAssociation{
			ID:       derefString(a.RouteTableAssociationId),
			SubnetID: derefString(a.SubnetId),
			Main:     a.Main != nil && *a.Main,
		})
	}
	return &domain.RouteTableData{
		ID:           derefString(rt.RouteTableId),
		VPCID:        derefString(rt.VpcId),
		Routes:       routes,
		Associations: assocs,
		Tags:         tagMap(rt.Tags),
	}
}

func toSecurityGroupData(sg *ec2types.SecurityGroup) *domain.SecurityGroupData {
	return &domain.SecurityGroupData{
		ID:            derefString(sg.GroupId),
		Name:          derefString(sg.GroupName),
		VPCID:         derefString(sg.VpcId),
		Description:   derefString(sg.Description),
		InboundRules:  toSecurityGroupRules(sg.IpPermissions),
		OutboundRules: toSecurityGroupRules(sg.IpPermissionsEgress),
		Tags:          tagMap(sg.Tags),
	}
}

func toSecurityGroupRules(perms []ec2types.IpPermission) []domain.SecurityGroupRule {
	var rules []domain.SecurityGroupRule
	for _, perm := range perms {
		var cidrs []string
		for _, r := range perm.IpRanges {
			if r.CidrIp != nil {
				cidrs = append(cidrs, *r.CidrIp)
			}
		}
		rules = append(rules, domain.SecurityGroupRule{
			Protocol:   derefString(perm.IpProtocol),
			FromPort:   int(derefInt32(perm.FromPort)),
			ToPort:     int(derefInt32(perm.ToPort)),
			CIDRBlocks: cidrs,
		})
	}
	return rules
}

func toSubnetGroupData(group *docdbtypes.DBSubnetGroup) *domain.SubnetGroupData {
	var subnetIDs []string
	for _, sn := range group.Subnets {
		if sn.SubnetIdentifier != nil {
			subnetIDs = append(subnetIDs, *sn.SubnetIdentifier)
		}
	}
	return &domain.SubnetGroupData{
		Name:      derefString(group.DBSubnetGroupName),
		VPCID:     derefString(group.VpcId),
		SubnetIDs: subnetIDs,
		Status:    derefString(group.SubnetGroupStatus),
	}
}

func toClusterData(cluster *docdbtypes.DBCluster) *domain.ClusterData {
	var sgIDs []string
	for _, m := range cluster.VpcSecurityGroups {
		if m.VpcSecurityGroupId != nil {
			sgIDs = append(sgIDs, *m.VpcSecurityGroupId)
		}
	}
	return &domain.ClusterData{
		ID:                  derefString(cluster.DBClusterIdentifier),
		Status:              derefString(cluster.Status),
		Endpoint:            derefString(cluster.Endpoint),
		ReaderEndpoint:      derefString(cluster.ReaderEndpoint),
		Port:                int(derefInt32(cluster.Port)),
		MasterUsername:      derefString(cluster.MasterUsername),
		BackupRetentionDays: int(derefInt32(cluster.BackupRetentionPeriod)),
		BackupWindow:        derefString(cluster.PreferredBackupWindow),
		SubnetGroup:         derefString(cluster.DBSubnetGroup),
		SecurityGroupIDs:    sgIDs,
		AvailabilityZones:   cluster.AvailabilityZones,
		EngineVersion:       derefString(cluster.EngineVersion),
	}
}

func toInstanceData(instance *docdbtypes.DBInstance) *domain.InstanceData {
	endpoint := ""
	if instance.Endpoint != nil {
		endpoint = derefString(instance.Endpoint.Address)
	}
	return &domain.InstanceData{
		ID:               derefString(instance.DBInstanceIdentifier),
		ClusterID:        derefString(instance.DBClusterIdentifier),
		Class:            derefString(instance.DBInstanceClass),
		Status:           derefString(instance.DBInstanceStatus),
		AvailabilityZone: derefString(instance.AvailabilityZone),
		Endpoint:         endpoint,
	}
}

func tagMap(tags []ec2types.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		if t.Key != nil {
			m[*t.Key] = derefString(t.Value)
		}
	}
	return m
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt32(i *int32) int32 {
	if i == nil {
		return 0
	}
	return *i
}
