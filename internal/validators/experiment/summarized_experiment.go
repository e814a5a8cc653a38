package experiment

import (
	"path/filepath"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateSummarizedExperiment implements the summarized_experiment
// validator.
func ValidateSummarizedExperiment(path string, md types.ObjectMetadata, opts types.Options) error {
	_, err := validateSummarizedExperimentCore(path, md, opts, "summarized_experiment")
	return err
}

// HeightSummarizedExperiment returns dimensions[0].
func HeightSummarizedExperiment(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	dims, err := readDimensions(md, "summarized_experiment")
	if err != nil {
		return 0, err
	}
	return dims[0], nil
}

// DimensionsSummarizedExperiment returns the declared [nrow, ncol].
func DimensionsSummarizedExperiment(path string, md types.ObjectMetadata, opts types.Options) ([]int64, error) {
	return readDimensions(md, "summarized_experiment")
}

func readDimensions(md types.ObjectMetadata, typeName string) ([]int64, error) {
	obj, err := md.TypedObject(typeName)
	if err != nil {
		return nil, err
	}
	v, ok := obj.Field("dimensions")
	if !ok {
		return nil, types.NewError(types.ErrKindStructure, "expected a 'dimensions' property")
	}
	if v.Kind() != types.JsonArray {
		return nil, types.NewError(types.ErrKindValue, "'dimensions' should be an array")
	}
	if v.Len() != 2 {
		return nil, types.NewError(types.ErrKindValue, "'dimensions' should be an array of length 2")
	}
	dims := make([]int64, 2)
	for i := 0; i < 2; i++ {
		el, _ := v.Index(i)
		n, ok := el.Int()
		if !ok {
			return nil, types.NewError(types.ErrKindValue, "'dimensions' should be an array of numbers")
		}
		if n < 0 {
			return nil, types.NewError(types.ErrKindValue, "'dimensions' should contain non-negative integers")
		}
		dims[i] = int64(n)
	}
	return dims, nil
}

// validateSummarizedExperimentCore validates the common summarized_experiment
// shape under typedKey (the metadata key the caller's own object type nests
// its "version"/"dimensions" fields under) and returns the declared
// dimensions, so RangedSummarizedExperiment/SingleCellExperiment/... can
// layer additional checks without re-deriving the shared ones.
func validateSummarizedExperimentCore(path string, md types.ObjectMetadata, opts types.Options, typedKey string) ([]int64, error) {
	opts = opts.WithDefaults()

	obj, err := md.TypedObject(typedKey)
	if err != nil {
		return nil, err
	}
	verStr, err := types.StringField(obj, "version", typedKey)
	if err != nil {
		return nil, err
	}
	v, err := primitives.ParseVersion(verStr)
	if err != nil {
		return nil, err
	}
	if v.Major != 1 {
		return nil, types.NewError(types.ErrKindVersion, "unsupported %s version %d", typedKey, v.Major)
	}

	dims, err := readDimensions(md, typedKey)
	if err != nil {
		return nil, err
	}
	nrow, ncol := dims[0], dims[1]

	assaysDir := filepath.Join(path, "assays")
	numAssays, err := validateNamedEntries(assaysDir, func(i int, assayPath string) error {
		if err := dispatch.Validate(assayPath, opts); err != nil {
			return err
		}
		assayDims, err := dispatch.Dimensions(assayPath, opts)
		if err != nil {
			return err
		}
		if len(assayDims) < 2 {
			return types.NewError(types.ErrKindValue, "assays/%d should have two or more dimensions", i)
		}
		if assayDims[0] != nrow {
			return types.NewError(types.ErrKindValue, "assays/%d should have the same number of rows as its parent", i)
		}
		if assayDims[1] != ncol {
			return types.NewError(types.ErrKindValue, "assays/%d should have the same number of columns as its parent", i)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	_ = numAssays

	if dir, ok := dirExists(path, "row_data"); ok {
		if err := validateChildOfInterface(dir, types.InterfaceDataFrame, opts); err != nil {
			return nil, err
		}
		h, err := dispatch.Height(dir, opts)
		if err != nil {
			return nil, err
		}
		if h != nrow {
			return nil, types.NewError(types.ErrKindValue, "'row_data' should have the same number of rows as its parent")
		}
	}
	if dir, ok := dirExists(path, "column_data"); ok {
		if err := validateChildOfInterface(dir, types.InterfaceDataFrame, opts); err != nil {
			return nil, err
		}
		h, err := dispatch.Height(dir, opts)
		if err != nil {
			return nil, err
		}
		if h != ncol {
			return nil, types.NewError(types.ErrKindValue, "'column_data' should have the same number of rows as its parent's number of columns")
		}
	}
	if dir, ok := dirExists(path, "other_data"); ok {
		if err := validateChildOfInterface(dir, types.InterfaceSimpleList, opts); err != nil {
			return nil, err
		}
	}

	return dims, nil
}
