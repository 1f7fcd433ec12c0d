package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	mu     sync.Mutex
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakePutter) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func (f *fakePutter) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, in := range f.inputs {
		out = append(out, aws.ToString(in.MetricData[0].MetricName))
	}
	return out
}

func TestNewClient_DisabledOutsideProduction(t *testing.T) {
	c, err := NewClient(context.Background(), "development", false)
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	// no-ops rather than panics on a nil AWS client
	c.RecordAPIRequest("/api/suggest", 200, time.Millisecond)
	c.RecordExpansion(3, 1, 5, time.Millisecond)
	c.RecordParseFailure("parse_error")

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
}

func TestPutMetric(t *testing.T) {
	fake := &fakePutter{}
	c := &Client{client: fake, enabled: true, environment: "test"}

	err := c.putMetric(context.Background(), "Suggestions", 7, types.StandardUnitCount, []types.Dimension{c.environmentDimension()})
	require.NoError(t, err)

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, namespace, aws.ToString(in.Namespace))
	assert.Equal(t, 7.0, aws.ToFloat64(in.MetricData[0].Value))
	assert.Equal(t, "test", aws.ToString(in.MetricData[0].Dimensions[0].Value))

	fake.err = errors.New("throttled")
	assert.Error(t, c.putMetric(context.Background(), "Suggestions", 1, types.StandardUnitCount, nil))
}

func TestRecordExpansion_SendsThreeMetrics(t *testing.T) {
	fake := &fakePutter{}
	c := &Client{client: fake, enabled: true, environment: "test"}

	c.RecordExpansion(4, 2, 11, 3*time.Millisecond)

	assert.Eventually(t, func() bool { return len(fake.names()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"ProgressionSlots", "Suggestions", "ExpansionDuration"}, fake.names())
}
