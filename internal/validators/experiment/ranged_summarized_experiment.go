package experiment

import (
	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/metadata"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateRangedSummarizedExperiment implements the
// ranged_summarized_experiment validator: a summarized
// experiment plus an optional `row_ranges/` that is either a
// genomic_ranges or a genomic_ranges_list, with length equal to nrow.
func ValidateRangedSummarizedExperiment(path string, md types.ObjectMetadata, opts types.Options) error {
	_, err := validateRangedCore(path, md, opts, "ranged_summarized_experiment")
	return err
}

// HeightRangedSummarizedExperiment returns dimensions[0].
func HeightRangedSummarizedExperiment(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	dims, err := readDimensions(md, "ranged_summarized_experiment")
	if err != nil {
		return 0, err
	}
	return dims[0], nil
}

// DimensionsRangedSummarizedExperiment returns the declared [nrow, ncol].
func DimensionsRangedSummarizedExperiment(path string, md types.ObjectMetadata, opts types.Options) ([]int64, error) {
	return readDimensions(md, "ranged_summarized_experiment")
}

func validateRangedCore(path string, md types.ObjectMetadata, opts types.Options, typedKey string) ([]int64, error) {
	dims, err := validateSummarizedExperimentCore(path, md, opts, typedKey)
	if err != nil {
		return nil, err
	}
	nrow := dims[0]

	if dir, ok := dirExists(path, "row_ranges"); ok {
		rowMD, err := metadata.Read(dir)
		if err != nil {
			return nil, err
		}
		reg := opts.Registry
		if !reg.DerivedFrom(rowMD.Type, "genomic_ranges") && !reg.DerivedFrom(rowMD.Type, "genomic_ranges_list") {
			return nil, types.NewError(types.ErrKindValue, "'row_ranges' should contain a 'genomic_ranges' or 'genomic_ranges_list' object")
		}
		if err := dispatch.Validate(dir, opts); err != nil {
			return nil, err
		}
		h, err := dispatch.Height(dir, opts)
		if err != nil {
			return nil, err
		}
		if h != nrow {
			return nil, types.NewError(types.ErrKindValue, "'row_ranges' should have length equal to the number of rows of its parent")
		}
	}

	return dims, nil
}
