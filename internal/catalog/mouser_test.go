package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcline/partscope/internal/config"
	"github.com/arcline/partscope/internal/model"
	"github.com/arcline/partscope/pkg/mouser"
)

type fakeMouserClient struct {
	parts []mouser.Part
	err   error
}

func (f *fakeMouserClient) SearchByPartNumber(context.Context, string) ([]mouser.Part, error) {
	return f.parts, f.err
}

func mouserPart(mpn string, attrs ...mouser.Attribute) mouser.Part {
	return mouser.Part{
		ManufacturerPartNumber: mpn,
		ProductDetailURL:       "https://www.mouser.com/ProductDetail/" + mpn,
		ProductAttributes:      attrs,
	}
}

func TestMouserSource_FetchVerbatimNames(t *testing.T) {
	t.Parallel()

	src := NewMouserSourceWithClient(&fakeMouserClient{parts: []mouser.Part{
		mouserPart("4414F",
			mouser.Attribute{AttributeName: "Rated Voltage", AttributeValue: "24 VDC"},
			mouser.Attribute{AttributeName: "Airflow", AttributeValue: "100 CFM"},
		),
	}})

	part, err := src.Fetch(context.Background(), "4414F")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rated Voltage", "Airflow"}, part.Attributes.Names())
	assert.Equal(t, "https://www.mouser.com/ProductDetail/4414F", part.ProductURL)
}

func TestMouserSource_PrefersExactMPNMatch(t *testing.T) {
	t.Parallel()

	src := NewMouserSourceWithClient(&fakeMouserClient{parts: []mouser.Part{
		mouserPart("4414FN", mouser.Attribute{AttributeName: "Rated Voltage", AttributeValue: "12 VDC"}),
		mouserPart("4414f", mouser.Attribute{AttributeName: "Rated Voltage", AttributeValue: "24 VDC"}),
	}})

	part, err := src.Fetch(context.Background(), "4414F")
	require.NoError(t, err)

	v, ok := part.Attributes.Get("Rated Voltage")
	require.True(t, ok)
	assert.Equal(t, "24 VDC", v)
}

func TestMouserSource_FirstHitWhenNoExactMatch(t *testing.T) {
	t.Parallel()

	src := NewMouserSourceWithClient(&fakeMouserClient{parts: []mouser.Part{
		mouserPart("4414FN", mouser.Attribute{AttributeName: "RPM", AttributeValue: "3100"}),
		mouserPart("4414FM", mouser.Attribute{AttributeName: "RPM", AttributeValue: "2800"}),
	}})

	part, err := src.Fetch(context.Background(), "4414F")
	require.NoError(t, err)

	v, _ := part.Attributes.Get("RPM")
	assert.Equal(t, "3100", v)
}

func TestMouserSource_NoHitsIsEmptyNotError(t *testing.T) {
	t.Parallel()

	src := NewMouserSourceWithClient(&fakeMouserClient{})

	part, err := src.Fetch(context.Background(), "NOPE-123")
	require.NoError(t, err)
	assert.True(t, part.Attributes.Empty())
}

func TestMouserSource_PlaceholderValuesSkipped(t *testing.T) {
	t.Parallel()

	src := NewMouserSourceWithClient(&fakeMouserClient{parts: []mouser.Part{
		mouserPart("4414F",
			mouser.Attribute{AttributeName: "Bearing Type", AttributeValue: "Ball"},
			mouser.Attribute{AttributeName: "Depth", AttributeValue: "N/A"},
			mouser.Attribute{AttributeName: "Weight", AttributeValue: "-"},
		),
	}})

	part, err := src.Fetch(context.Background(), "4414F")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearing Type"}, part.Attributes.Names())
}

func TestMouserSource_Classification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		reason model.FailureReason
	}{
		{"bad key", &mouser.APIError{StatusCode: 401, Body: "Invalid apiKey"}, model.ReasonAuthError},
		{"rate limited", &mouser.APIError{StatusCode: 429}, model.ReasonRateLimited},
		{"server error", &mouser.APIError{StatusCode: 503}, model.ReasonNetworkError},
		{"transport", errors.New("dial tcp: i/o timeout"), model.ReasonNetworkError},
		{"bad payload", errors.New("mouser: unmarshal response: unexpected end of JSON input"), model.ReasonMalformedResponse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			src := NewMouserSourceWithClient(&fakeMouserClient{err: tc.err})
			_, err := src.Fetch(context.Background(), "4414F")
			require.Error(t, err)

			var cerr *Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tc.reason, cerr.Reason)
			assert.Equal(t, "mouser", cerr.Provider)
		})
	}
}

func TestNewMouserSource_Unconfigured(t *testing.T) {
	t.Parallel()

	src := NewMouserSource(config.MouserConfig{})
	assert.False(t, src.Configured())
}

func TestIsPlaceholder(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"", "-", "—", "N/A", "n/a", "na", "None", "null", "  "} {
		assert.True(t, IsPlaceholder(v), "value %q", v)
	}
	for _, v := range []string{"0", "Ball", "100 CFM", "2 Wire Leads"} {
		assert.False(t, IsPlaceholder(v), "value %q", v)
	}
}
