package experiment

import (
	"path/filepath"
	"strconv"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/metadata"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateMultiSampleDataset implements the multi_sample_dataset
// validator: a sample table plus zero or more experiments,
// each with a sample_map.h5 dataset recording which sample each
// experiment's columns belong to.
func ValidateMultiSampleDataset(path string, md types.ObjectMetadata, opts types.Options) error {
	opts = opts.WithDefaults()

	obj, err := md.TypedObject("multi_sample_dataset")
	if err != nil {
		return err
	}
	verStr, err := types.StringField(obj, "version", "multi_sample_dataset")
	if err != nil {
		return err
	}
	v, err := primitives.ParseVersion(verStr)
	if err != nil {
		return err
	}
	if v.Major != 1 {
		return types.NewError(types.ErrKindVersion, "unsupported multi_sample_dataset version %d", v.Major)
	}

	sampleDataDir := filepath.Join(path, "sample_data")
	if err := validateChildOfInterface(sampleDataDir, types.InterfaceDataFrame, opts); err != nil {
		return err
	}
	numSamples, err := dispatch.Height(sampleDataDir, opts)
	if err != nil {
		return err
	}

	var experimentNcols []int64
	if dir, ok := dirExists(path, "experiments"); ok {
		n, err := validateNamedEntries(dir, func(i int, expPath string) error {
			expMD, err := metadata.Read(expPath)
			if err != nil {
				return err
			}
			if !opts.Registry.SatisfiesInterface(expMD.Type, types.InterfaceSummarizedExperiment) {
				return types.NewError(types.ErrKindValue, "experiments/%d should satisfy the 'SUMMARIZED_EXPERIMENT' interface", i)
			}
			if err := dispatch.Validate(expPath, opts); err != nil {
				return err
			}
			dims, err := dispatch.Dimensions(expPath, opts)
			if err != nil {
				return err
			}
			if len(dims) < 2 {
				return types.NewError(types.ErrKindValue, "experiments/%d should have at least two dimensions", i)
			}
			experimentNcols = append(experimentNcols, dims[1])
			return nil
		})
		if err != nil {
			return err
		}
		_ = n
	}

	f, g, err := hdf5x.OpenPayload(path, "sample_map.h5", "multi_sample_dataset")
	if err != nil {
		return err
	}
	defer f.Close()

	seenNames := map[string]bool{}
	for name := range mapSet(g.Names()) {
		seenNames[name] = true
	}
	if len(seenNames) != len(experimentNcols) {
		return types.NewError(types.ErrKindStructure, "'sample_map.h5' contains more objects present than expected")
	}
	for e, ncol := range experimentNcols {
		key := strconv.Itoa(e)
		if !seenNames[key] {
			return types.NewError(types.ErrKindStructure, "'sample_map.h5' is missing an entry for experiment %d", e)
		}
		ds, err := hdf5x.RequireDataset(g, key)
		if err != nil {
			return err
		}
		if !ds.FitsUnsignedInt(64) {
			return types.NewError(types.ErrKindValue, "sample_map entry %d should fit in a 64-bit unsigned integer", e)
		}
		if ds.Len() != ncol {
			return types.NewError(types.ErrKindValue, "sample_map entry %d should equal the number of columns of experiment %d", e, e)
		}
		if err := ds.IterateInt(opts.HDF5BufferSize, func(block []int64) error {
			for _, v := range block {
				if v < 0 || v >= numSamples {
					return types.NewError(types.ErrKindValue, "sample_map entry %d has an index out of bounds (less than the number of samples)", e)
				}
			}
			return nil
		}); err != nil {
			return err
		}
	}

	if dir, ok := dirExists(path, "other_data"); ok {
		if err := validateChildOfInterface(dir, types.InterfaceSimpleList, opts); err != nil {
			return err
		}
	}

	return nil
}

// HeightMultiSampleDataset returns the number of samples.
func HeightMultiSampleDataset(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	sampleDataDir := filepath.Join(path, "sample_data")
	return dispatch.Height(sampleDataDir, opts)
}

func mapSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}
