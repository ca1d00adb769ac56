package types

import "fmt"

// MeterKey identifies one physical meter in the dataset.
// It is the key a canonical frame is persisted under.
type MeterKey struct {
	Building int `json:"building"`
	Meter    int `json:"meter"`
}

func NewMeterKey(building, meter int) (MeterKey, error) {
	key := MeterKey{Building: building, Meter: meter}
	if err := key.Validate(); err != nil {
		return MeterKey{}, err
	}
	return key, nil
}

// Both numbers must be positive
func (k MeterKey) Validate() error {
	if k.Building <= 0 {
		return fmt.Errorf("%w: building number must be positive, got %d", ErrConfiguration, k.Building)
	}
	if k.Meter <= 0 {
		return fmt.Errorf("%w: meter number must be positive, got %d", ErrConfiguration, k.Meter)
	}
	return nil
}

func (k MeterKey) String() string {
	return fmt.Sprintf("building=%d, meter=%d", k.Building, k.Meter)
}
