// Package aws implements the provider client behind domain.CloudAPI:
// tag-filtered lookups, tag-at-birth creates, deletes, and status polling
// against EC2 and DocumentDB.
package aws

import (
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/ratelimit"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/docdb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type Client struct {
	ec2Client   *ec2.Client
	docdbClient *docdb.Client
	stsClient   *sts.Client
	region      string
	cache       *ttlCache

	waitInterval time.Duration
	waitTimeout  time.Duration
}

func newRetryer() aws.Retryer {
	return retry.NewStandard(func(o *retry.StandardOptions) {
		o.MaxAttempts = 5
		o.MaxBackoff = 30 * time.Second
		o.Backoff = retry.NewExponentialJitterBackoff(o.MaxBackoff)
		o.RateLimiter = ratelimit.None
	})
}

func NewClient(cfg aws.Config) *Client {
	retryer := newRetryer()
	return &Client{
		ec2Client:    ec2.NewFromConfig(cfg, func(o *ec2.Options) { o.Retryer = retryer }),
		docdbClient:  docdb.NewFromConfig(cfg, func(o *docdb.Options) { o.Retryer = retryer }),
		stsClient:    sts.NewFromConfig(cfg, func(o *sts.Options) { o.Retryer = retryer }),
		region:       cfg.Region,
		cache:        newTTLCache(5 * time.Minute),
		waitInterval: 15 * time.Second,
		waitTimeout:  40 * time.Minute,
	}
}

func (c *Client) cacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}
