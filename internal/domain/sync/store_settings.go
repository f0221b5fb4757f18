package sync

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// StoreSettings — per-store sync configuration, versioned
// ---------------------------------------------------------------------------

// StoreSettingsVersion is the current settings schema version.
// Bump only for additive evolution; Normalize must keep accepting older shapes.
const StoreSettingsVersion = 1

const (
	// MaxStockSafetyQty is the upper clamp for the stock safety buffer
	MaxStockSafetyQty = 1_000_000
	// MaxPricePercent bounds the default percent adjustment in either direction
	MaxPricePercent = 1000
)

// StockSource selects where the externally advertised stock comes from
type StockSource string

const (
	// StockSourceProduct reads stock from the product record itself
	StockSourceProduct StockSource = "product"
	// StockSourceDeposit reads stock from a specific stock location
	StockSourceDeposit StockSource = "deposit"
)

// IsValid returns true if the stock source is valid
func (s StockSource) IsValid() bool {
	return s == StockSourceProduct || s == StockSourceDeposit
}

// String returns the string representation of StockSource
func (s StockSource) String() string {
	return string(s)
}

// PriceSource selects where the externally advertised price comes from
type PriceSource string

const (
	// PriceSourceProduct reads the price from the product record itself
	PriceSourceProduct PriceSource = "product"
	// PriceSourcePriceTable reads the price from a configured price table
	PriceSourcePriceTable PriceSource = "price_table"
)

// IsValid returns true if the price source is valid
func (s PriceSource) IsValid() bool {
	return s == PriceSourceProduct || s == PriceSourcePriceTable
}

// String returns the string representation of PriceSource
func (s PriceSource) String() string {
	return string(s)
}

// StoreSettings is the normalized, schema-valid sync configuration for one store.
// Always fully populated; Normalize never fails, malformed input degrades to defaults.
type StoreSettings struct {
	Version             int         `json:"version"`
	StockSource         StockSource `json:"stock_source"`
	DepositoID          string      `json:"deposito_id,omitempty"`
	StockSafetyQty      float64     `json:"stock_safety_qty"`
	PriceSource         PriceSource `json:"price_source"`
	BaseTabelaPrecoID   string      `json:"base_tabela_preco_id,omitempty"`
	PricePercentDefault float64     `json:"price_percent_default"`

	// configured records whether the raw input carried any non-default signal,
	// so callers can tell "deliberately all defaults" from "never configured"
	configured bool
}

// DefaultStoreSettings returns the all-defaults settings object
func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		Version:     StoreSettingsVersion,
		StockSource: StockSourceProduct,
		PriceSource: PriceSourceProduct,
	}
}

// HasSignal returns true if the settings carried at least one non-default
// value when normalized: a deposit id, a price-table id, a non-zero safety
// quantity, or a non-zero percent adjustment.
func (s StoreSettings) HasSignal() bool {
	return s.configured
}

// NormalizeStoreSettings validates an arbitrary untyped settings object and
// returns a fully populated StoreSettings. The raw shape may come from storage
// written by older code, so nothing about it is trusted: fields are clamped,
// missing enums are inferred from related ids, and unknown or malformed input
// degrades to defaults rather than failing.
func NormalizeStoreSettings(raw map[string]any) StoreSettings {
	out := DefaultStoreSettings()
	if len(raw) == 0 {
		return out
	}

	out.DepositoID = normalizeOpaqueID(raw["deposito_id"])
	out.BaseTabelaPrecoID = normalizeOpaqueID(raw["base_tabela_preco_id"])

	if qty, ok := toFiniteFloat(raw["stock_safety_qty"]); ok {
		out.StockSafetyQty = clampFloat(qty, 0, MaxStockSafetyQty)
	}
	if pct, ok := toFiniteFloat(raw["price_percent_default"]); ok {
		out.PricePercentDefault = clampFloat(pct, -MaxPricePercent, MaxPricePercent)
	}

	// Explicit source wins over inference from id presence.
	if src, ok := parseStockSource(raw["stock_source"]); ok {
		out.StockSource = src
	} else if out.DepositoID != "" {
		out.StockSource = StockSourceDeposit
	}
	if src, ok := parsePriceSource(raw["price_source"]); ok {
		out.PriceSource = src
	} else if out.BaseTabelaPrecoID != "" {
		out.PriceSource = PriceSourcePriceTable
	}

	// A deposit source without a deposit id cannot be honored.
	if out.StockSource == StockSourceDeposit && out.DepositoID == "" {
		out.StockSource = StockSourceProduct
	}
	if out.PriceSource == PriceSourcePriceTable && out.BaseTabelaPrecoID == "" {
		out.PriceSource = PriceSourceProduct
	}

	out.configured = out.DepositoID != "" ||
		out.BaseTabelaPrecoID != "" ||
		out.StockSafetyQty != 0 ||
		out.PricePercentDefault != 0

	return out
}

// DeriveFromLegacyConfig projects the older, flatter config shape embedded in
// a generic integration-connection record into the normalized structure.
func DeriveFromLegacyConfig(config map[string]any) StoreSettings {
	if len(config) == 0 {
		return DefaultStoreSettings()
	}
	projected := map[string]any{
		"stock_source":          config["stock_source"],
		"deposito_id":           config["deposito_id"],
		"stock_safety_qty":      config["stock_safety_qty"],
		"price_source":          config["price_source"],
		"base_tabela_preco_id":  config["base_tabela_preco_id"],
		"price_percent_default": config["price_percent_default"],
	}
	return NormalizeStoreSettings(projected)
}

// PickStoreSettings resolves the effective settings for a store. The
// store-level settings object wins only when it carries at least one
// non-default signal; otherwise the legacy embedded config is the source of
// truth. Newly configured stores are never silently overridden by stale
// legacy config, and stores provisioned before StoreSettings existed keep
// working unmodified.
func PickStoreSettings(storeSettings, legacyConfig map[string]any) StoreSettings {
	settings := NormalizeStoreSettings(storeSettings)
	if settings.HasSignal() {
		return settings
	}
	return DeriveFromLegacyConfig(legacyConfig)
}

// ---------------------------------------------------------------------------
// Stock / price derivation primitives
// ---------------------------------------------------------------------------

// EffectiveStock returns the stock quantity to advertise externally:
// max(0, trunc(rawStock - safetyQty)) when safetyQty > 0, else
// max(0, trunc(rawStock)). Never negative for any finite input.
func EffectiveStock(rawStock, safetyQty float64) int64 {
	if math.IsNaN(rawStock) || math.IsInf(rawStock, 0) {
		return 0
	}
	effective := rawStock
	if safetyQty > 0 && !math.IsNaN(safetyQty) && !math.IsInf(safetyQty, 0) {
		effective = rawStock - safetyQty
	}
	if effective <= 0 {
		return 0
	}
	return int64(math.Trunc(effective))
}

// ApplyPercentAdjustment returns basePrice * (1 + percent/100). When percent
// is zero or non-finite the base price is returned unchanged. Deterministic,
// so price differences stay reproducible for auditing.
func ApplyPercentAdjustment(basePrice decimal.Decimal, percent float64) decimal.Decimal {
	if percent == 0 || math.IsNaN(percent) || math.IsInf(percent, 0) {
		return basePrice
	}
	factor := decimal.NewFromFloat(1 + percent/100)
	return basePrice.Mul(factor)
}

// ---------------------------------------------------------------------------
// Untyped input helpers
// ---------------------------------------------------------------------------

// normalizeOpaqueID accepts a raw id value and keeps it only when it looks
// like a real UUID-sized identifier. Shorter strings are legacy placeholder
// values and are dropped.
func normalizeOpaqueID(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if len(s) < 32 {
		return ""
	}
	return s
}

func parseStockSource(v any) (StockSource, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit", "deposito":
		return StockSourceDeposit, true
	case "product", "produto":
		return StockSourceProduct, true
	}
	return "", false
}

func parsePriceSource(v any) (PriceSource, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "price_table", "tabela_preco", "tabela", "table":
		return PriceSourcePriceTable, true
	case "product", "produto":
		return PriceSourceProduct, true
	}
	return "", false
}

// toFiniteFloat coerces the numeric shapes stored configs actually contain
// (JSON numbers, ints, numeric strings) into a finite float64.
func toFiniteFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
