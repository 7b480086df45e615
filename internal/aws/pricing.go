package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	pricingtypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
)

// priceListProduct maps the parts of a Price List document we read.
type priceListProduct struct {
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				Unit         string            `json:"unit"`
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// OnDemandPrice returns the hourly Linux on-demand price of an instance type
// in the provider's region.
func (p *Provider) OnDemandPrice(ctx context.Context, instanceType string) (float64, error) {
	key := cacheKey("price", p.region, instanceType)
	var cached float64
	if p.cache != nil && p.cache.Get(key, &cached) {
		return cached, nil
	}

	out, err := p.pricingClient.GetProducts(ctx, &pricing.GetProductsInput{
		ServiceCode: aws.String("AmazonEC2"),
		Filters: []pricingtypes.Filter{
			termMatch("instanceType", instanceType),
			termMatch("regionCode", p.region),
			termMatch("operatingSystem", "Linux"),
			termMatch("tenancy", "Shared"),
			termMatch("preInstalledSw", "NA"),
			termMatch("capacitystatus", "Used"),
		},
		MaxResults: aws.Int32(10),
	})
	if err != nil {
		return 0, fmt.Errorf("querying price list: %w", err)
	}

	for _, doc := range out.PriceList {
		price, ok, err := parseOnDemandPrice(doc)
		if err != nil {
			return 0, err
		}
		if ok {
			if p.cache != nil {
				_ = p.cache.Set(key, price)
			}
			return price, nil
		}
	}
	return 0, fmt.Errorf("%w for %s in %s", ErrNoPrice, instanceType, p.region)
}

func termMatch(field, value string) pricingtypes.Filter {
	return pricingtypes.Filter{
		Type:  pricingtypes.FilterTypeTermMatch,
		Field: aws.String(field),
		Value: aws.String(value),
	}
}

// parseOnDemandPrice extracts the first non-zero hourly USD price.
func parseOnDemandPrice(doc string) (float64, bool, error) {
	var product priceListProduct
	if err := json.Unmarshal([]byte(doc), &product); err != nil {
		return 0, false, fmt.Errorf("decoding price list entry: %w", err)
	}
	for _, term := range product.Terms.OnDemand {
		for _, dim := range term.PriceDimensions {
			if dim.Unit != "Hrs" {
				continue
			}
			usd, ok := dim.PricePerUnit["USD"]
			if !ok {
				continue
			}
			price, err := strconv.ParseFloat(usd, 64)
			if err != nil {
				return 0, false, fmt.Errorf("parsing price %q: %w", usd, err)
			}
			if price > 0 {
				return price, true, nil
			}
		}
	}
	return 0, false, nil
}
