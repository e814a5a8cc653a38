package experiment

import (
	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/metadata"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateSingleCellExperiment implements the single_cell_experiment
// validator: a ranged summarized experiment plus optional
// `reduced_dimensions/` and `alternative_experiments/` named-entry
// subdirectories.
func ValidateSingleCellExperiment(path string, md types.ObjectMetadata, opts types.Options) error {
	_, err := validateSingleCellCore(path, md, opts, "single_cell_experiment")
	return err
}

// HeightSingleCellExperiment returns dimensions[0].
func HeightSingleCellExperiment(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	dims, err := readDimensions(md, "single_cell_experiment")
	if err != nil {
		return 0, err
	}
	return dims[0], nil
}

// DimensionsSingleCellExperiment returns the declared [nrow, ncol].
func DimensionsSingleCellExperiment(path string, md types.ObjectMetadata, opts types.Options) ([]int64, error) {
	return readDimensions(md, "single_cell_experiment")
}

func validateSingleCellCore(path string, md types.ObjectMetadata, opts types.Options, typedKey string) ([]int64, error) {
	dims, err := validateRangedCore(path, md, opts, typedKey)
	if err != nil {
		return nil, err
	}
	ncol := dims[1]

	if dir, ok := dirExists(path, "reduced_dimensions"); ok {
		if _, err := validateNamedEntries(dir, func(i int, rdPath string) error {
			if err := dispatch.Validate(rdPath, opts); err != nil {
				return err
			}
			rdDims, err := dispatch.Dimensions(rdPath, opts)
			if err != nil {
				return err
			}
			if len(rdDims) < 1 {
				return types.NewError(types.ErrKindValue, "reduced_dimensions/%d should have at least one dimension", i)
			}
			if rdDims[0] != ncol {
				return types.NewError(types.ErrKindValue, "reduced_dimensions/%d should have the same number of rows as the columns of its parent", i)
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if dir, ok := dirExists(path, "alternative_experiments"); ok {
		if _, err := validateNamedEntries(dir, func(i int, aePath string) error {
			aeMD, err := metadata.Read(aePath)
			if err != nil {
				return err
			}
			if !opts.Registry.SatisfiesInterface(aeMD.Type, types.InterfaceSummarizedExperiment) {
				return types.NewError(types.ErrKindValue, "alternative_experiments/%d should satisfy the 'SUMMARIZED_EXPERIMENT' interface", i)
			}
			if err := dispatch.Validate(aePath, opts); err != nil {
				return err
			}
			aeDims, err := dispatch.Dimensions(aePath, opts)
			if err != nil {
				return err
			}
			if len(aeDims) < 2 || aeDims[1] != ncol {
				return types.NewError(types.ErrKindValue, "alternative_experiments/%d should have the same number of columns as its parent", i)
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}

	return dims, nil
}
