package primitives

import (
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateNames checks that a names dataset, if present, is string-typed,
// one-dimensional, has exactly expectedLength elements, and contains no
// missing entries, mirroring validate_names.
func ValidateNames(ds hdf5x.Dataset, expectedLength int64, blockSize int) error {
	if ds.Class() != hdf5x.ClassString {
		return types.NewError(types.ErrKindValue, "'names' dataset should be string-typed")
	}
	if len(ds.Dims()) != 1 {
		return types.NewError(types.ErrKindValue, "'names' dataset should be one-dimensional")
	}
	if ds.Len() != expectedLength {
		return types.NewError(types.ErrKindValue, "'names' dataset should have length %d, got %d", expectedLength, ds.Len())
	}
	err := ds.IterateString(blockSize, func(block []hdf5x.NullableString) error {
		for _, v := range block {
			if v.Null {
				return types.NewError(types.ErrKindValue, "'names' should not contain missing values")
			}
		}
		return nil
	})
	return err
}
