// Package metrics publishes checkout outcome counters to CloudWatch.
// Emission is best effort and never affects request handling.
package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/craftkart/checkout/internal/aws"
)

// Checkout outcomes.
const (
	OutcomeSucceeded         = "succeeded"
	OutcomeValidationFailed  = "validation_failed"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeEmptyCart         = "empty_cart"
	OutcomePersistenceFailed = "persistence_failed"
	OutcomeDuplicate         = "duplicate"
)

// Recorder emits metric data points under a fixed namespace.
type Recorder struct {
	client    aws.CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

func NewRecorder(client aws.CloudWatchAPI, namespace string) *Recorder {
	return &Recorder{
		client:    client,
		namespace: namespace,
		nowFunc:   time.Now,
	}
}

// CheckoutOutcome counts one checkout attempt by outcome.
func (r *Recorder) CheckoutOutcome(ctx context.Context, outcome string) {
	if r == nil || r.client == nil {
		return
	}
	now := r.nowFunc().UTC()
	one := 1.0
	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &r.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString("Checkout"),
				Timestamp:  &now,
				Value:      &one,
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: awsString("outcome"), Value: &outcome},
				},
			},
		},
	})
	if err != nil {
		log.Printf("metrics: put checkout outcome=%s: %v", outcome, err)
	}
}

func awsString(s string) *string { return &s }
