package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	"github.com/guimove/binfit/internal/model"
)

// evictionHardMiB is the kubelet memory.available eviction threshold on EKS AMIs.
const evictionHardMiB = 100

// describeInstanceType fetches the hardware shape of one instance type.
func (p *Provider) describeInstanceType(ctx context.Context, instanceType string) (*model.InstanceCapacity, error) {
	out, err := p.ec2Client.DescribeInstanceTypes(ctx, &ec2.DescribeInstanceTypesInput{
		InstanceTypes: []ec2types.InstanceType{ec2types.InstanceType(instanceType)},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidInstanceType" {
			return nil, fmt.Errorf("%w: %s", ErrUnknownInstanceType, instanceType)
		}
		return nil, fmt.Errorf("describing instance type %s: %w", instanceType, err)
	}
	if len(out.InstanceTypes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstanceType, instanceType)
	}

	ic := convertInstanceType(out.InstanceTypes[0])
	ic.Region = p.region
	return &ic, nil
}

// convertInstanceType maps an EC2 InstanceTypeInfo to allocatable capacity.
func convertInstanceType(it ec2types.InstanceTypeInfo) model.InstanceCapacity {
	ic := model.InstanceCapacity{InstanceType: string(it.InstanceType)}

	if it.VCpuInfo != nil && it.VCpuInfo.DefaultVCpus != nil {
		ic.VCPUs = *it.VCpuInfo.DefaultVCpus
	}
	if it.MemoryInfo != nil && it.MemoryInfo.SizeInMiB != nil {
		ic.MemoryMiB = *it.MemoryInfo.SizeInMiB
	}

	var enis, ipsPerENI int32
	if it.NetworkInfo != nil {
		if it.NetworkInfo.MaximumNetworkInterfaces != nil {
			enis = *it.NetworkInfo.MaximumNetworkInterfaces
		}
		if it.NetworkInfo.Ipv4AddressesPerInterface != nil {
			ipsPerENI = *it.NetworkInfo.Ipv4AddressesPerInterface
		}
	}
	ic.MaxPods = MaxPods(enis, ipsPerENI)

	ic.AllocatableCPUMillis = AllocatableCPUMillis(ic.VCPUs)
	ic.AllocatableMemoryMiB = AllocatableMemoryMiB(ic.MemoryMiB, ic.MaxPods)
	return ic
}

// MaxPods is the EKS VPC CNI pod limit: ENIs * (IPs per ENI - 1) + 2,
// capped at 110 when the network shape is unknown.
func MaxPods(enis, ipsPerENI int32) int32 {
	if enis <= 0 || ipsPerENI <= 1 {
		return 110
	}
	return enis*(ipsPerENI-1) + 2
}

// AllocatableCPUMillis applies the EKS kubelet CPU reservation: 6% of the
// first core, 1% of the second, 0.5% of the next two and 0.25% of the rest.
// The reservation is rounded up to a whole millicore.
func AllocatableCPUMillis(vcpus int32) int64 {
	if vcpus <= 0 {
		return 0
	}
	n := int64(vcpus)

	// tenths of a millicore
	reserved := int64(600)
	if n > 1 {
		reserved += 100
	}
	if n > 2 {
		reserved += 50 * min(n-2, 2)
	}
	if n > 4 {
		reserved += 25 * (n - 4)
	}
	return n*1000 - (reserved+9)/10
}

// AllocatableMemoryMiB applies the EKS kubelet memory reservation
// (255MiB + 11MiB per schedulable pod) and the hard eviction threshold.
func AllocatableMemoryMiB(memoryMiB int64, maxPods int32) int64 {
	reserved := 255 + 11*int64(maxPods) + evictionHardMiB
	return max(memoryMiB-reserved, 0)
}
