package charts

import (
	"bytes"
	"testing"

	"subtrack/internal/insights"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G'}

func TestRenderDistribution_Empty(t *testing.T) {
	png, err := RenderDistribution(nil, "USD")
	if err != nil {
		t.Fatalf("RenderDistribution(nil) = %v, want no error", err)
	}
	if png != nil {
		t.Errorf("empty distribution rendered %d bytes, want nil", len(png))
	}
}

func TestRenderDistribution(t *testing.T) {
	buckets := []insights.Bucket{
		{Category: "Food", Total: 75},
		{Category: insights.SubscriptionsBucket, Total: 30},
	}
	png, err := RenderDistribution(buckets, "USD")
	if err != nil {
		t.Fatalf("RenderDistribution: %v", err)
	}
	if !bytes.HasPrefix(png, pngSignature) {
		t.Errorf("output is not a PNG (first bytes %v)", png[:min(4, len(png))])
	}
}
