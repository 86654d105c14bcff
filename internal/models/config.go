package models

import (
	"encoding/json"
	"fmt"
)

// SplitMode selects how a one_bill tab divides its total.
// Only equal splitting is implemented; other modes are rejected at the
// store boundary rather than guessed at.
type SplitMode string

const SplitModeEqual SplitMode = "equal"

// OneBillConfig configures a one_bill tab.
type OneBillConfig struct {
	SplitMode SplitMode `json:"split_mode"`
}

// TripConfig configures a trip tab.
type TripConfig struct {
	ReceiptRequired bool `json:"receipt_required"`
}

// TabConfig is a tagged variant keyed by the tab's type: exactly one of
// OneBill or Trip is set, and it must agree with Tab.Type. The zero value
// means "use the type's default".
type TabConfig struct {
	OneBill *OneBillConfig `json:"one_bill,omitempty"`
	Trip    *TripConfig    `json:"trip,omitempty"`
}

// DefaultTabConfig returns the default config for a tab type:
// equal split for one_bill, receipts required for trip.
func DefaultTabConfig(typ TabType) TabConfig {
	switch typ {
	case TabTypeOneBill:
		return TabConfig{OneBill: &OneBillConfig{SplitMode: SplitModeEqual}}
	case TabTypeTrip:
		return TabConfig{Trip: &TripConfig{ReceiptRequired: true}}
	}
	return TabConfig{}
}

// IsZero reports whether no variant is set.
func (c TabConfig) IsZero() bool {
	return c.OneBill == nil && c.Trip == nil
}

// Validate checks that the config variant matches the tab type and that
// its contents are supported.
func (c TabConfig) Validate(typ TabType) error {
	switch typ {
	case TabTypeOneBill:
		if c.OneBill == nil || c.Trip != nil {
			return fmt.Errorf("one_bill tab requires a one_bill config")
		}
		if c.OneBill.SplitMode != SplitModeEqual {
			return fmt.Errorf("unsupported split_mode %q", c.OneBill.SplitMode)
		}
	case TabTypeTrip:
		if c.Trip == nil || c.OneBill != nil {
			return fmt.Errorf("trip tab requires a trip config")
		}
	default:
		return fmt.Errorf("unknown tab type %q", typ)
	}
	return nil
}

// MarshalBlob encodes the active variant as the flat JSON object the
// boundary exchanges ({"split_mode": ...} or {"receipt_required": ...}).
func (c TabConfig) MarshalBlob() ([]byte, error) {
	switch {
	case c.OneBill != nil:
		return json.Marshal(c.OneBill)
	case c.Trip != nil:
		return json.Marshal(c.Trip)
	}
	return []byte("{}"), nil
}

// UnmarshalBlob decodes a stored JSON blob into the variant selected by typ.
func UnmarshalBlob(typ TabType, blob []byte) (TabConfig, error) {
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	var c TabConfig
	switch typ {
	case TabTypeOneBill:
		c.OneBill = &OneBillConfig{}
		if err := json.Unmarshal(blob, c.OneBill); err != nil {
			return TabConfig{}, fmt.Errorf("decode one_bill config: %w", err)
		}
	case TabTypeTrip:
		c.Trip = &TripConfig{}
		if err := json.Unmarshal(blob, c.Trip); err != nil {
			return TabConfig{}, fmt.Errorf("decode trip config: %w", err)
		}
	default:
		return TabConfig{}, fmt.Errorf("unknown tab type %q", typ)
	}
	return c, nil
}
