package primitives

import (
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateFactorLevels checks that a levels dataset is 1-dimensional,
// string-typed, and (when requireUnique is true) free of duplicates,
// mirroring validate_factor_levels. Duplicates are checked in memory.
func ValidateFactorLevels(ds hdf5x.Dataset, requireUnique bool, blockSize int) error {
	if ds.Class() != hdf5x.ClassString {
		return types.NewError(types.ErrKindValue, "expected a string dataset for the levels")
	}
	if len(ds.Dims()) != 1 {
		return types.NewError(types.ErrKindValue, "levels dataset should be one-dimensional")
	}

	seen := make(map[string]bool)
	var dupValue string
	var dupFound bool
	err := ds.IterateString(blockSize, func(block []hdf5x.NullableString) error {
		for _, v := range block {
			if v.Null {
				return types.NewError(types.ErrKindValue, "levels should not contain missing values")
			}
			if requireUnique {
				if seen[v.Value] {
					dupValue, dupFound = v.Value, true
					return errStopScan
				}
				seen[v.Value] = true
			}
		}
		return nil
	})
	if err != nil && err != errStopScan {
		return err
	}
	if dupFound {
		return types.NewError(types.ErrKindValue, "levels should be unique, got duplicate '%s'", dupValue)
	}
	return nil
}

// ValidateFactorCodes checks that every non-placeholder code in ds is
// within [0, numLevels), mirroring validate_factor_codes.
func ValidateFactorCodes(ds hdf5x.Dataset, numLevels int, hasPlaceholder bool, placeholder int64, blockSize int) error {
	if ds.Class() != hdf5x.ClassInteger {
		return types.NewError(types.ErrKindValue, "expected an integer dataset for the codes")
	}

	var bad int64
	var found bool
	err := ds.IterateInt(blockSize, func(block []int64) error {
		for _, v := range block {
			if hasPlaceholder && v == placeholder {
				continue
			}
			if v < 0 || v >= int64(numLevels) {
				bad, found = v, true
				return errStopScan
			}
		}
		return nil
	})
	if err != nil && err != errStopScan {
		return err
	}
	if found {
		return types.NewError(types.ErrKindValue, "code '%d' out of range of the levels", bad)
	}
	return nil
}
