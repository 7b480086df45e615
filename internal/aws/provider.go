package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"go.uber.org/zap"

	"github.com/guimove/binfit/internal/logging"
	"github.com/guimove/binfit/internal/model"
)

const credentialCheckTimeout = 3 * time.Second

var (
	ErrAWSCredentials      = errors.New("AWS credentials not found; set AWS_PROFILE, run 'aws sso login', or configure ~/.aws/credentials")
	ErrUnknownInstanceType = errors.New("unknown instance type")
	ErrNoPrice             = errors.New("no on-demand price found")
)

// CapacityResolver turns an instance type into a bin capacity.
type CapacityResolver interface {
	Resolve(ctx context.Context, instanceType string, dim model.Dimension) (*model.InstanceCapacity, error)
}

// ec2API is the subset of the EC2 client used here.
type ec2API interface {
	DescribeInstanceTypes(ctx context.Context, params *ec2.DescribeInstanceTypesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceTypesOutput, error)
}

// pricingAPI is the subset of the Price List client used here.
type pricingAPI interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

// Options configures NewProvider.
type Options struct {
	Region   string
	CacheDir string // empty disables caching
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// Provider resolves instance capacity and price through the AWS APIs.
type Provider struct {
	ec2Client     ec2API
	pricingClient pricingAPI
	region        string
	cache         *FileCache
	logger        *zap.Logger
}

// NewProvider creates a provider using the default AWS SDK config chain.
// IMDS is disabled so local runs do not stall on the metadata endpoint.
func NewProvider(ctx context.Context, opts Options) (*Provider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithEC2IMDSClientEnableState(imds.ClientDisabled),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAWSCredentials, err)
	}

	credCtx, cancel := context.WithTimeout(ctx, credentialCheckTimeout)
	defer cancel()
	if _, err := cfg.Credentials.Retrieve(credCtx); err != nil {
		return nil, ErrAWSCredentials
	}

	// The Price List API is only served from us-east-1.
	pricingCfg := cfg.Copy()
	pricingCfg.Region = "us-east-1"

	var cache *FileCache
	if opts.CacheDir != "" {
		cache = NewFileCache(opts.CacheDir, opts.CacheTTL)
	}

	return newProvider(ec2.NewFromConfig(cfg), pricing.NewFromConfig(pricingCfg), opts.Region, cache, opts.Logger), nil
}

func newProvider(ec2Client ec2API, pricingClient pricingAPI, region string, cache *FileCache, logger *zap.Logger) *Provider {
	return &Provider{
		ec2Client:     ec2Client,
		pricingClient: pricingClient,
		region:        region,
		cache:         cache,
		logger:        logging.OrNop(logger),
	}
}

// Region returns the AWS region.
func (p *Provider) Region() string {
	return p.region
}

// Resolve returns the allocatable capacity of instanceType in dimension dim.
// A missing price is logged and left at zero rather than failing.
// Only fully priced results are cached.
func (p *Provider) Resolve(ctx context.Context, instanceType string, dim model.Dimension) (*model.InstanceCapacity, error) {
	key := cacheKey("capacity", p.region, instanceType)

	var ic model.InstanceCapacity
	if p.cache != nil && p.cache.Get(key, &ic) {
		p.logger.Debug("instance capacity from cache", zap.String("instance_type", instanceType))
		ic.Dimension = dim
		return &ic, nil
	}

	described, err := p.describeInstanceType(ctx, instanceType)
	if err != nil {
		return nil, err
	}
	ic = *described

	price, priceErr := p.OnDemandPrice(ctx, instanceType)
	if priceErr != nil {
		p.logger.Warn("on-demand price unavailable; costs will be omitted",
			zap.String("instance_type", instanceType),
			zap.String("region", p.region),
			zap.Error(priceErr))
	}
	ic.PricePerHour = price

	// A priceless entry is not cached so the next call retries the lookup.
	if p.cache != nil && priceErr == nil {
		if err := p.cache.Set(key, ic); err != nil {
			p.logger.Warn("caching instance capacity", zap.Error(err))
		}
	}

	ic.Dimension = dim
	return &ic, nil
}
