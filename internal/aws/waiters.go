package aws

import (
	"context"
	"fmt"
	"time"
)

// The DocumentDB API exposes no native waiters, so readiness is polled
// off the Describe calls. "available" and "deleted" are terminal for a
// healthy run; anything else keeps polling until the deadline.

const statusAvailable = "available"

func (c *Client) WaitClusterAvailable(ctx context.Context, id string) error {
	return waitFor(ctx, fmt.Sprintf("db cluster %s available", id), c.waitInterval, c.waitTimeout,
		func(ctx context.Context) (bool, error) {
			cluster, err := c.FindCluster(ctx, id)
			if err != nil {
				return false, err
			}
			if cluster == nil {
				return false, fmt.Errorf("db cluster %s disappeared while waiting", id)
			}
			return cluster.Status == statusAvailable, nil
		})
}

func (c *Client) WaitInstanceAvailable(ctx context.Context, id string) error {
	return waitFor(ctx, fmt.Sprintf("db instance %s available", id), c.waitInterval, c.waitTimeout,
		func(ctx context.Context) (bool, error) {
			instance, err := c.findInstance(ctx, id)
			if err != nil {
				return false, err
			}
			if instance == nil {
				return false, fmt.Errorf("db instance %s disappeared while waiting", id)
			}
			return instance.Status == statusAvailable, nil
		})
}

func (c *Client) WaitClusterDeleted(ctx context.Context, id string) error {
	return waitFor(ctx, fmt.Sprintf("db cluster %s deleted", id), c.waitInterval, c.waitTimeout,
		func(ctx context.Context) (bool, error) {
			cluster, err := c.FindCluster(ctx, id)
			if err != nil {
				return false, err
			}
			return cluster == nil, nil
		})
}

func (c *Client) WaitInstancesDeleted(ctx context.Context, clusterID string) error {
	return waitFor(ctx, fmt.Sprintf("db instances of cluster %s deleted", clusterID), c.waitInterval, c.waitTimeout,
		func(ctx context.Context) (bool, error) {
			instances, err := c.FindInstances(ctx, clusterID)
			if err != nil {
				return false, err
			}
			return len(instances) == 0, nil
		})
}

// waitFor polls until done, the deadline passes, or the context ends.
// The first poll runs immediately so an already-settled resource returns
// without sleeping.
func waitFor(ctx context.Context, desc string, interval, timeout time.Duration, poll func(context.Context) (bool, error)) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		done, err := poll(ctx)
		if err != nil {
			return fmt.Errorf("wait for %s: %w", desc, err)
		}
		if done {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("wait for %s: timed out after %s", desc, timeout)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for %s: %w", desc, ctx.Err())
		case <-ticker.C:
		}
	}
}
