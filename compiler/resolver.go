package compiler

import (
	"fmt"
	"slices"

	"github.com/xicodomingues/francinette/types"
)

// Resolve computes the functions to exercise. Without an override the target
// is declared ∩ implemented and everything else declared is missing. With an
// override the target is the override itself and missing is informational.
func Resolve(declared, implemented, override []string) (types.FunctionSet, error) {
	set := types.FunctionSet{
		Declared:    slices.Clone(declared),
		Implemented: slices.Clone(implemented),
	}

	if len(override) > 0 {
		set.Override = true
		for _, fn := range override {
			if !slices.Contains(declared, fn) {
				return types.FunctionSet{}, fmt.Errorf("unknown function %q (bonus functions need --bonus)", fn)
			}
			if !slices.Contains(set.Target, fn) {
				set.Target = append(set.Target, fn)
			}
		}
	} else {
		for _, fn := range declared {
			if slices.Contains(implemented, fn) {
				set.Target = append(set.Target, fn)
			}
		}
	}

	for _, fn := range declared {
		if !slices.Contains(set.Target, fn) {
			set.Missing = append(set.Missing, fn)
		}
	}
	return set, nil
}
