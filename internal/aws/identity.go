package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/eleven-am/plinth/internal/domain"
)

// CallerIdentity resolves who the ambient credentials belong to. Apply
// logs the account up front so a stack never lands in the wrong account
// silently; the result is cached for the run.
func (c *Client) CallerIdentity(ctx context.Context) (*domain.CallerIdentity, error) {
	key := c.cacheKey("caller-identity", c.region)
	if v, ok := c.cache.get(key); ok {
		return v.(*domain.CallerIdentity), nil
	}
	out, err := c.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("get caller identity: %w", err)
	}
	ident := &domain.CallerIdentity{
		Account: derefString(out.Account),
		ARN:     derefString(out.Arn),
		UserID:  derefString(out.UserId),
	}
	c.cache.set(key, ident)
	return ident, nil
}
