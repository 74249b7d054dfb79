package aws

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/eleven-am/plinth/internal/domain"
)

// AvailabilityZones lists the zones usable for subnet placement in the
// client's region, sorted by name so placement is stable across runs.
func (c *Client) AvailabilityZones(ctx context.Context) ([]domain.AvailabilityZone, error) {
	key := c.cacheKey("azs", c.region)
	if v, ok := c.cache.get(key); ok {
		return v.([]domain.AvailabilityZone), nil
	}
	out, err := c.ec2Client.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("state"), Values: []string{"available"}},
			{Name: aws.String("zone-type"), Values: []string{"availability-zone"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("describe availability zones: %w", err)
	}
	zones := make([]domain.AvailabilityZone, 0, len(out.AvailabilityZones))
	for _, az := range out.AvailabilityZones {
		zones = append(zones, domain.AvailabilityZone{
			Name: derefString(az.ZoneName),
			ID:   derefString(az.ZoneId),
		})
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].Name < zones[j].Name })
	c.cache.set(key, zones)
	return zones, nil
}

func nameTagFilter(names ...string) ec2types.Filter {
	return ec2types.Filter{Name: aws.String("tag:" + domain.TagName), Values: names}
}

func (c *Client) FindVPC(ctx context.Context, name string) (*domain.VPCData, error) {
	input := &ec2.DescribeVpcsInput{Filters: []ec2types.Filter{nameTagFilter(name)}}
	paginator := ec2.NewDescribeVpcsPaginator(c.ec2Client, input)
	vpcs, err := CollectPages(
		ctx,
		paginator.HasMorePages,
		func(ctx context.Context) (*ec2.DescribeVpcsOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *ec2.DescribeVpcsOutput) []ec2types.Vpc {
			return out.Vpcs
		},
	)
	if err != nil {
		return nil, fmt.Errorf("find vpc by tag %s: %w", name, err)
	}
	if len(vpcs) == 0 {
		return nil, nil
	}
	if len(vpcs) > 1 {
		ids := make([]string, 0, len(vpcs))
		for _, v := range vpcs {
			ids = append(ids, derefString(v.VpcId))
		}
		return nil, &domain.AmbiguousLookupError{Kind: domain.KindVPC, Name: name, IDs: ids}
	}
	return toVPCData(&vpcs[0]), nil
}

// FindSubnets resolves the subnet set by Name tag; a single call matches
// any of the given names. More matches than names means at least one Name
// tag is shared by several live subnets, which no guard can resolve.
func (c *Client) FindSubnets(ctx context.Context, names []string) ([]domain.SubnetData, error) {
	input := &ec2.DescribeSubnetsInput{Filters: []ec2types.Filter{nameTagFilter(names...)}}
	paginator := ec2.NewDescribeSubnetsPaginator(c.ec2Client, input)
	subnets, err := CollectPages(
		ctx,
		paginator.HasMorePages,
		func(ctx context.Context) (*ec2.DescribeSubnetsOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *ec2.DescribeSubnetsOutput) []ec2types.Subnet {
			return out.Subnets
		},
	)
	if err != nil {
		return nil, fmt.Errorf("find subnets by tag %s: %w", strings.Join(names, ", "), err)
	}
	if len(subnets) > len(names) {
		ids := make([]string, 0, len(subnets))
		for _, sn := range subnets {
			ids = append(ids, derefString(sn.SubnetId))
		}
		return nil, &domain.AmbiguousLookupError{Kind: domain.KindSubnet, Name: strings.Join(names, ","), IDs: ids}
	}
	result := make([]domain.SubnetData, 0, len(subnets))
	for i := range subnets {
		result = append(result, *toSubnetData(&subnets[i]))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Tags[domain.TagName] < result[j].Tags[domain.TagName] })
	return result, nil
}

func (c *Client) FindInternetGateway(ctx context.Context, name string) (*domain.InternetGatewayData, error) {
	input := &ec2.DescribeInternetGatewaysInput{Filters: []ec2types.Filter{nameTagFilter(name)}}
	paginator := ec2.NewDescribeInternetGatewaysPaginator(c.ec2Client, input)
	igws, err := CollectPages(
		ctx,
		paginator.HasMorePages,
		func(ctx context.Context) (*ec2.DescribeInternetGatewaysOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *ec2.DescribeInternetGatewaysOutput) []ec2types.InternetGateway {
			return out.InternetGateways
		},
	)
	if err != nil {
		return nil, fmt.Errorf("find internet gateway by tag %s: %w", name, err)
	}
	if len(igws) == 0 {
		return nil, nil
	}
	if len(igws) > 1 {
		ids := make([]string, 0, len(igws))
		for _, g := range igws {
			ids = append(ids, derefString(g.InternetGatewayId))
		}
		return nil, &domain.AmbiguousLookupError{Kind: domain.KindInternetGateway, Name: name, IDs: ids}
	}
	return toInternetGatewayData(&igws[0]), nil
}

func (c *Client) FindRouteTable(ctx context.Context, name string) (*domain.RouteTableData, error) {
	input := &ec2.DescribeRouteTablesInput{Filters: []ec2types.Filter{nameTagFilter(name)}}
	paginator := ec2.NewDescribeRouteTablesPaginator(c.ec2Client, input)
	tables, err := CollectPages(
		ctx,
		paginator.HasMorePages,
		func(ctx context.Context) (*ec2.DescribeRouteTablesOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *ec2.DescribeRouteTablesOutput) []ec2types.RouteTable {
			return out.RouteTables
		},
	)
	if err != nil {
		return nil, fmt.Errorf("find route table by tag %s: %w", name, err)
	}
	if len(tables) == 0 {
		return nil, nil
	}
	if len(tables) > 1 {
		ids := make([]string, 0, len(tables))
		for _, rt := range tables {
			ids = append(ids, derefString(rt.RouteTableId))
		}
		return nil, &domain.AmbiguousLookupError{Kind: domain.KindRouteTable, Name: name, IDs: ids}
	}
	return toRouteTableData(&tables[0]), nil
}

func (c *Client) FindSecurityGroup(ctx context.Context, name string) (*domain.SecurityGroupData, error) {
	input := &ec2.DescribeSecurityGroupsInput{Filters: []ec2types.Filter{nameTagFilter(name)}}
	paginator := ec2.NewDescribeSecurityGroupsPaginator(c.ec2Client, input)
	groups, err := CollectPages(
		ctx,
		paginator.HasMorePages,
		func(ctx context.Context) (*ec2.DescribeSecurityGroupsOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *ec2.DescribeSecurityGroupsOutput) []ec2types.SecurityGroup {
			return out.SecurityGroups
		},
	)
	if err != nil {
		return nil, fmt.Errorf("find security group by tag %s: %w", name, err)
	}
	if len(groups) == 0 {
		return nil, nil
	}
	if len(groups) > 1 {
		ids := make([]string, 0, len(groups))
		for _, sg := range groups {
			ids = append(ids, derefString(sg.GroupId))
		}
		return nil, &domain.AmbiguousLookupError{Kind: domain.KindSecurityGroup, Name: name, IDs: ids}
	}
	return toSecurityGroupData(&groups[0]), nil
}

func (c *Client) GetVPC(ctx context.Context, id string) (*domain.VPCData, error) {
	out, err := c.ec2Client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{VpcIds: []string{id}})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("describe vpc %s: %w", id, err)
	}
	if len(out.Vpcs) == 0 {
		return nil, nil
	}
	return toVPCData(&out.Vpcs[0]), nil
}

func (c *Client) GetSubnet(ctx context.Context, id string) (*domain.SubnetData, error) {
	out, err := c.ec2Client.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{SubnetIds: []string{id}})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("describe subnet %s: %w", id, err)
	}
	if len(out.Subnets) == 0 {
		return nil, nil
	}
	return toSubnetData(&out.Subnets[0]), nil
}

func (c *Client) GetInternetGateway(ctx context.Context, id string) (*domain.InternetGatewayData, error) {
	out, err := c.ec2Client.DescribeInternetGateways(ctx, &ec2.DescribeInternetGatewaysInput{
		InternetGatewayIds: []string{id},
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("describe internet gateway %s: %w", id, err)
	}
	if len(out.InternetGateways) == 0 {
		return nil, nil
	}
	return toInternetGatewayData(&out.InternetGateways[0]), nil
}

func (c *Client) GetRouteTable(ctx context.Context, id string) (*domain.RouteTableData, error) {
	out, err := c.ec2Client.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		RouteTableIds: []string{id},
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("describe route table %s: %w", id, err)
	}
	if len(out.RouteTables) == 0 {
		return nil, nil
	}
	return toRouteTableData(&out.RouteTables[0]), nil
}

func (c *Client) GetSecurityGroup(ctx context.Context, id string) (*domain.SecurityGroupData, error) {
	out, err := c.ec2Client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		GroupIds: []string{id},
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("describe security group %s: %w", id, err)
	}
	if len(out.SecurityGroups) == 0 {
		return nil, nil
	}
	return toSecurityGroupData(&out.SecurityGroups[0]), nil
}

func (c *Client) CreateVPC(ctx context.Context, spec domain.VPCSpec) (*domain.VPCData, error) {
	out, err := c.ec2Client.CreateVpc(ctx, &ec2.CreateVpcInput{
		CidrBlock:         aws.String(spec.CIDRBlock),
		TagSpecifications: ec2Tags(ec2types.ResourceTypeVpc, spec.Tags),
	})
	if err != nil {
		return nil, fmt.Errorf("create vpc: %w", err)
	}
	return toVPCData(out.Vpc), nil
}

func (c *Client) CreateSubnet(ctx context.Context, spec domain.SubnetSpec) (*domain.SubnetData, error) {
	out, err := c.ec2Client.CreateSubnet(ctx, &ec2.CreateSubnetInput{
		VpcId:             aws.String(spec.VPCID),
		CidrBlock:         aws.String(spec.CIDRBlock),
		AvailabilityZone:  aws.String(spec.AvailabilityZone),
		TagSpecifications: ec2Tags(ec2types.ResourceTypeSubnet, spec.Tags),
	})
	if err != nil {
		return nil, fmt.Errorf("create subnet %s: %w", spec.CIDRBlock, err)
	}
	return toSubnetData(out.Subnet), nil
}

// CreateInternetGateway creates the gateway and attaches it to the VPC in
// one step; a gateway is useless to the stack until attached.
func (c *Client) CreateInternetGateway(ctx context.Context, spec domain.InternetGatewaySpec) (*domain.InternetGatewayData, error) {
	out, err := c.ec2Client.CreateInternetGateway(ctx, &ec2.CreateInternetGatewayInput{
		TagSpecifications: ec2Tags(ec2types.ResourceTypeInternetGateway, spec.Tags),
	})
	if err != nil {
		return nil, fmt.Errorf("create internet gateway: %w", err)
	}
	id := derefString(out.InternetGateway.InternetGatewayId)
	_, err = c.ec2Client.AttachInternetGateway(ctx, &ec2.AttachInternetGatewayInput{
		InternetGatewayId: aws.String(id),
		VpcId:             aws.String(spec.VPCID),
	})
	if err != nil {
		return nil, fmt.Errorf("attach internet gateway %s to vpc %s: %w", id, spec.VPCID, err)
	}
	data := toInternetGatewayData(out.InternetGateway)
	data.AttachedVPCIDs = []string{spec.VPCID}
	return data, nil
}

func (c *Client) CreateRouteTable(ctx context.Context, spec domain.RouteTableSpec) (*domain.RouteTableData, error) {
	out, err := c.ec2Client.CreateRouteTable(ctx, &ec2.CreateRouteTableInput{
		VpcId:             aws.String(spec.VPCID),
		TagSpecifications: ec2Tags(ec2types.ResourceTypeRouteTable, spec.Tags),
	})
	if err != nil {
		return nil, fmt.Errorf("create route table: %w", err)
	}
	return toRouteTableData(out.RouteTable), nil
}

// CreateDefaultRoute points unmatched outbound traffic at the internet
// gateway. A route for 0.0.0.0/0 that already exists is left alone.
func (c *Client) CreateDefaultRoute(ctx context.Context, routeTableID, gatewayID string) error {
	_, err := c.ec2Client.CreateRoute(ctx, &ec2.CreateRouteInput{
		RouteTableId:         aws.String(routeTableID),
		DestinationCidrBlock: aws.String(domain.AnywhereCIDR),
		GatewayId:            aws.String(gatewayID),
	})
	if err != nil && !IsDuplicate(err) {
		return fmt.Errorf("create default route in %s: %w", routeTableID, err)
	}
	return nil
}

func (c *Client) AssociateRouteTable(ctx context.Context, routeTableID, subnetID string) (string, error) {
	out, err := c.ec2Client.AssociateRouteTable(ctx, &ec2.AssociateRouteTableInput{
		RouteTableId: aws.String(routeTableID),
		SubnetId:     aws.String(subnetID),
	})
	if err != nil {
		return "", fmt.Errorf("associate route table %s with subnet %s: %w", routeTableID, subnetID, err)
	}
	return derefString(out.AssociationId), nil
}

func (c *Client) CreateSecurityGroup(ctx context.Context, spec domain.SecurityGroupSpec) (*domain.SecurityGroupData, error) {
	out, err := c.ec2Client.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:         aws.String(spec.Name),
		Description:       aws.String(spec.Description),
		VpcId:             aws.String(spec.VPCID),
		TagSpecifications: ec2Tags(ec2types.ResourceTypeSecurityGroup, spec.Tags),
	})
	if err != nil {
		return nil, fmt.Errorf("create security group %s: %w", spec.Name, err)
	}
	return &domain.SecurityGroupData{
		ID:          derefString(out.GroupId),
		Name:        spec.Name,
		VPCID:       spec.VPCID,
		Description: spec.Description,
		Tags:        spec.Tags,
	}, nil
}

func (c *Client) AuthorizeIngress(ctx context.Context, rule domain.SecurityGroupRuleSpec) error {
	_, err := c.ec2Client.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId: aws.String(rule.GroupID),
		IpPermissions: []ec2types.IpPermission{
			{
				IpProtocol: aws.String(rule.Protocol),
				FromPort:   aws.Int32(int32(rule.FromPort)),
				ToPort:     aws.Int32(int32(rule.ToPort)),
				IpRanges:   []ec2types.IpRange{{CidrIp: aws.String(rule.CIDR)}},
			},
		},
	})
	if err != nil && !IsDuplicate(err) {
		return fmt.Errorf("authorize ingress on %s: %w", rule.GroupID, err)
	}
	return nil
}

// AuthorizeEgressAll permits all outbound traffic. New groups already
// carry that rule, so the duplicate rejection is the common case and is
// tolerated.
func (c *Client) AuthorizeEgressAll(ctx context.Context, groupID string) error {
	_, err := c.ec2Client.AuthorizeSecurityGroupEgress(ctx, &ec2.AuthorizeSecurityGroupEgressInput{
		GroupId: aws.String(groupID),
		IpPermissions: []ec2types.IpPermission{
			{
				IpProtocol: aws.String("-1"),
				IpRanges:   []ec2types.IpRange{{CidrIp: aws.String(domain.AnywhereCIDR)}},
			},
		},
	})
	if err != nil && !IsDuplicate(err) {
		return fmt.Errorf("authorize egress on %s: %w", groupID, err)
	}
	return nil
}

func (c *Client) DeleteSecurityGroup(ctx context.Context, id string) error {
	_, err := c.ec2Client.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
		GroupId: aws.String(id),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete security group %s: %w", id, err)
	}
	return nil
}

func (c *Client) DisassociateRouteTable(ctx context.Context, associationID string) error {
	_, err := c.ec2Client.DisassociateRouteTable(ctx, &ec2.DisassociateRouteTableInput{
		AssociationId: aws.String(associationID),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("disassociate route table association %s: %w", associationID, err)
	}
	return nil
}

func (c *Client) DeleteRouteTable(ctx context.Context, id string) error {
	_, err := c.ec2Client.DeleteRouteTable(ctx, &ec2.DeleteRouteTableInput{
		RouteTableId: aws.String(id),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete route table %s: %w", id, err)
	}
	return nil
}

func (c *Client) DetachInternetGateway(ctx context.Context, id, vpcID string) error {
	_, err := c.ec2Client.DetachInternetGateway(ctx, &ec2.DetachInternetGatewayInput{
		InternetGatewayId: aws.String(id),
		VpcId:             aws.String(vpcID),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("detach internet gateway %s from vpc %s: %w", id, vpcID, err)
	}
	return nil
}

func (c *Client) DeleteInternetGateway(ctx context.Context, id string) error {
	_, err := c.ec2Client.DeleteInternetGateway(ctx, &ec2.DeleteInternetGatewayInput{
		InternetGatewayId: aws.String(id),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete internet gateway %s: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteSubnet(ctx context.Context, id string) error {
	_, err := c.ec2Client.DeleteSubnet(ctx, &ec2.DeleteSubnetInput{
		SubnetId: aws.String(id),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete subnet %s: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteVPC(ctx context.Context, id string) error {
	_, err := c.ec2Client.DeleteVpc(ctx, &ec2.DeleteVpcInput{
		VpcId: aws.String(id),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete vpc %s: %w", id, err)
	}
	return nil
}

func ec2Tags(resourceType ec2types.ResourceType, tags map[string]string) []ec2types.TagSpecification {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ec2tags := make([]ec2types.Tag, 0, len(tags))
	for _, k := range keys {
		ec2tags = append(ec2tags, ec2types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return []ec2types.TagSpecification{{ResourceType: resourceType, Tags: ec2tags}}
}
