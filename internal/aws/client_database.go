package aws

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/docdb"
	docdbtypes "github.com/aws/aws-sdk-go-v2/service/docdb/types"

	"github.com/eleven-am/plinth/internal/domain"
)

// Database resources are looked up by their native identifier rather
// than a tag: the identifier is provider-unique, so absence arrives as a
// NotFound fault instead of an empty page and ambiguity cannot occur.

func (c *Client) FindSubnetGroup(ctx context.Context, name string) (*domain.SubnetGroupData, error) {
	out, err := c.docdbClient.DescribeDBSubnetGroups(ctx, &docdb.DescribeDBSubnetGroupsInput{
		DBSubnetGroupName: aws.String(name),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("describe db subnet group %s: %w", name, err)
	}
	if len(out.DBSubnetGroups) == 0 {
		return nil, nil
	}
	return toSubnetGroupData(&out.DBSubnetGroups[0]), nil
}

func (c *Client) FindCluster(ctx context.Context, id string) (*domain.ClusterData, error) {
	out, err := c.docdbClient.DescribeDBClusters(ctx, &docdb.DescribeDBClustersInput{
		DBClusterIdentifier: aws.String(id),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("describe db cluster %s: %w", id, err)
	}
	if len(out.DBClusters) == 0 {
		return nil, nil
	}
	return toClusterData(&out.DBClusters[0]), nil
}

// FindInstances lists every instance attached to the cluster, the unit
// the instance guard evaluates.
func (c *Client) FindInstances(ctx context.Context, clusterID string) ([]domain.InstanceData, error) {
	input := &docdb.DescribeDBInstancesInput{
		Filters: []docdbtypes.Filter{
			{Name: aws.String("db-cluster-id"), Values: []string{clusterID}},
		},
	}
	paginator := docdb.NewDescribeDBInstancesPaginator(c.docdbClient, input)
	instances, err := CollectPages(
		ctx,
		paginator.HasMorePages,
		func(ctx context.Context) (*docdb.DescribeDBInstancesOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *docdb.DescribeDBInstancesOutput) []docdbtypes.DBInstance {
			return out.DBInstances
		},
	)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("describe db instances for cluster %s: %w", clusterID, err)
	}
	result := make([]domain.InstanceData, 0, len(instances))
	for i := range instances {
		result = append(result, *toInstanceData(&instances[i]))
	}
	return result, nil
}

// findInstance resolves a single instance by identifier; the instance
// waiters poll it.
func (c *Client) findInstance(ctx context.Context, id string) (*domain.InstanceData, error) {
	out, err := c.docdbClient.DescribeDBInstances(ctx, &docdb.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(id),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("describe db instance %s: %w", id, err)
	}
	if len(out.DBInstances) == 0 {
		return nil, nil
	}
	return toInstanceData(&out.DBInstances[0]), nil
}

func (c *Client) CreateSubnetGroup(ctx context.Context, spec domain.SubnetGroupSpec) (*domain.SubnetGroupData, error) {
	out, err := c.docdbClient.CreateDBSubnetGroup(ctx, &docdb.CreateDBSubnetGroupInput{
		DBSubnetGroupName:        aws.String(spec.Name),
		DBSubnetGroupDescription: aws.String(spec.Description),
		SubnetIds:                spec.SubnetIDs,
		Tags:                     docdbTags(spec.Tags),
	})
	if err != nil {
		return nil, fmt.Errorf("create db subnet group %s: %w", spec.Name, err)
	}
	return toSubnetGroupData(out.DBSubnetGroup), nil
}

func (c *Client) CreateCluster(ctx context.Context, spec domain.ClusterSpec) (*domain.ClusterData, error) {
	out, err := c.docdbClient.CreateDBCluster(ctx, &docdb.CreateDBClusterInput{
		DBClusterIdentifier:   aws.String(spec.ID),
		Engine:                aws.String(domain.Engine),
		MasterUsername:        aws.String(spec.MasterUsername),
		MasterUserPassword:    aws.String(spec.MasterPassword),
		BackupRetentionPeriod: aws.Int32(int32(spec.BackupRetentionDays)),
		PreferredBackupWindow: aws.String(spec.BackupWindow),
		Port:                  aws.Int32(int32(spec.Port)),
		DBSubnetGroupName:     aws.String(spec.SubnetGroup),
		VpcSecurityGroupIds:   spec.SecurityGroupIDs,
		Tags:                  docdbTags(spec.Tags),
	})
	if err != nil {
		return nil, fmt.Errorf("create db cluster %s: %w", spec.ID, err)
	}
	return toClusterData(out.DBCluster), nil
}

func (c *Client) CreateInstance(ctx context.Context, spec domain.InstanceSpec) (*domain.InstanceData, error) {
	out, err := c.docdbClient.CreateDBInstance(ctx, &docdb.CreateDBInstanceInput{
		DBInstanceIdentifier: aws.String(spec.ID),
		DBClusterIdentifier:  aws.String(spec.ClusterID),
		DBInstanceClass:      aws.String(spec.Class),
		Engine:               aws.String(domain.Engine),
		Tags:                 docdbTags(spec.Tags),
	})
	if err != nil {
		return nil, fmt.Errorf("create db instance %s: %w", spec.ID, err)
	}
	return toInstanceData(out.DBInstance), nil
}

func (c *Client) DeleteInstance(ctx context.Context, id string) error {
	_, err := c.docdbClient.DeleteDBInstance(ctx, &docdb.DeleteDBInstanceInput{
		DBInstanceIdentifier: aws.String(id),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete db instance %s: %w", id, err)
	}
	return nil
}

// DeleteCluster skips the final snapshot: destroy means gone, and backup
// retention already covers the recovery window before the delete.
func (c *Client) DeleteCluster(ctx context.Context, id string) error {
	_, err := c.docdbClient.DeleteDBCluster(ctx, &docdb.DeleteDBClusterInput{
		DBClusterIdentifier: aws.String(id),
		SkipFinalSnapshot:   aws.Bool(true),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete db cluster %s: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteSubnetGroup(ctx context.Context, name string) error {
	_, err := c.docdbClient.DeleteDBSubnetGroup(ctx, &docdb.DeleteDBSubnetGroupInput{
		DBSubnetGroupName: aws.String(name),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete db subnet group %s: %w", name, err)
	}
	return nil
}

func docdbTags(tags map[string]string) []docdbtypes.Tag {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]docdbtypes.Tag, 0, len(tags))
	for _, k := range keys {
		out = append(out, docdbtypes.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}
