package payments

import (
	"encoding/json"
	"errors"
	"math"
	"unicode/utf8"

	"github.com/lumenshop/api/pkg/models"
)

// The provider caps total metadata size, and the item manifest shares that
// budget with the pricing fields. The encoded manifest must stay under
// this many bytes.
const MaxManifestBytes = 500

// manifestTitleLen bounds each entry's title snapshot. Titles exist only
// so a human can read the session in the provider dashboard; the full
// title is re-read from the catalog at finalization.
const manifestTitleLen = 12

var ErrManifestTooLarge = errors.New("cart too large to encode")

// ManifestItem is one cart line in the compact wire encoding. Single-letter
// keys keep the serialized form small.
type ManifestItem struct {
	ProductID int64   `json:"i"`
	Quantity  int     `json:"q"`
	Price     float64 `json:"p"`
	Discount  float64 `json:"d"`
	Title     string  `json:"t"`
}

// Manifest carries order intent through the payment provider's session
// metadata. Entry order is cart insertion order.
type Manifest []ManifestItem

// BuildManifest converts priced cart lines into manifest entries,
// truncating titles to the encoding budget.
func BuildManifest(lines []models.PricedLine) Manifest {
	manifest := make(Manifest, len(lines))
	for i, line := range lines {
		manifest[i] = ManifestItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
			Discount:  line.DiscountPercent,
			Title:     truncate(line.Title, manifestTitleLen),
		}
	}
	return manifest
}

// Encode serializes the manifest, failing explicitly when the cart cannot
// fit the provider's metadata ceiling.
func (m Manifest) Encode() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	if len(data) > MaxManifestBytes {
		return "", ErrManifestTooLarge
	}
	return string(data), nil
}

func DecodeManifest(encoded string) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal([]byte(encoded), &m); err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, errors.New("empty item manifest")
	}
	return m, nil
}

// EffectivePrice re-derives the discounted unit price exactly as the
// pricing engine computed it before the session round-trip.
func (item ManifestItem) EffectivePrice() float64 {
	return item.Price * (1 - item.Discount/100)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ToMinorUnits rounds a monetary amount to integer minor currency units,
// half up. This is the only rounding step in the pipeline; everything
// upstream carries full float precision.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Floor(amount*100 + 0.5))
}
