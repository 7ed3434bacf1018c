package payments

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenshop/api/pkg/models"
)

func TestBuildManifest_RoundTrip(t *testing.T) {
	lines := []models.PricedLine{
		{ProductID: 1, Quantity: 2, UnitPrice: 49.99, DiscountPercent: 10, Title: "Widget"},
		{ProductID: 2, Quantity: 1, UnitPrice: 15, Title: "Gadget"},
	}

	encoded, err := BuildManifest(lines).Encode()
	require.NoError(t, err)

	decoded, err := DecodeManifest(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	assert.Equal(t, int64(1), decoded[0].ProductID)
	assert.Equal(t, 2, decoded[0].Quantity)
	assert.Equal(t, 49.99, decoded[0].Price)
	assert.Equal(t, 10.0, decoded[0].Discount)
	assert.Equal(t, "Widget", decoded[0].Title)
}

func TestBuildManifest_TruncatesTitles(t *testing.T) {
	lines := []models.PricedLine{
		{ProductID: 1, Quantity: 1, Title: "An exceedingly verbose product title"},
	}

	manifest := BuildManifest(lines)

	assert.Equal(t, "An exceeding", manifest[0].Title)
	assert.Len(t, manifest[0].Title, 12)
}

func TestBuildManifest_TruncatesOnRuneBoundary(t *testing.T) {
	title := "Chaise à Bébé Pliante"
	lines := []models.PricedLine{
		{ProductID: 1, Quantity: 1, Title: title},
	}

	manifest := BuildManifest(lines)

	got := manifest[0].Title
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasPrefix(title, got))
	assert.Equal(t, "Chaise à B", got)
}

func TestEncode_TooLarge(t *testing.T) {
	var manifest Manifest
	for i := 0; i < 30; i++ {
		manifest = append(manifest, ManifestItem{
			ProductID: int64(1000 + i),
			Quantity:  3,
			Price:     199.99,
			Discount:  12.5,
			Title:     strings.Repeat("x", 12),
		})
	}

	_, err := manifest.Encode()
	assert.ErrorIs(t, err, ErrManifestTooLarge)
	assert.Equal(t, "cart too large to encode", err.Error())
}

func TestDecodeManifest_Empty(t *testing.T) {
	_, err := DecodeManifest("[]")
	assert.Error(t, err)

	_, err = DecodeManifest("")
	assert.Error(t, err)

	_, err = DecodeManifest("not json")
	assert.Error(t, err)
}

func TestManifestItem_EffectivePrice(t *testing.T) {
	item := ManifestItem{Price: 100, Discount: 20}
	assert.InDelta(t, 80.0, item.EffectivePrice(), 1e-9)

	noDiscount := ManifestItem{Price: 49.99}
	assert.Equal(t, 49.99, noDiscount.EffectivePrice())
}

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{0, 0},
		{1, 100},
		{123.00, 12300},
		{19.99, 1999},
		{1.125, 113},
		{1.114, 111},
		{0.1 + 0.2, 30},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%v", tc.amount), func(t *testing.T) {
			assert.Equal(t, tc.want, ToMinorUnits(tc.amount))
		})
	}
}
