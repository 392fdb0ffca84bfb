package plant

import "errors"

var (
	// ErrConfiguration indicates an invalid parameter detected at
	// construction time (non-positive capacity, COC <= 1, missing or
	// malformed performance curve). No solve is attempted after it.
	ErrConfiguration = errors.New("plant: invalid configuration")

	// ErrDomain indicates a value left its valid numeric range during a
	// solve (CapFT <= 0, COP <= 0, negative heat flow or mass flow).
	// The solve aborts; results are never clamped to look plausible.
	ErrDomain = errors.New("plant: outside model domain")
)
