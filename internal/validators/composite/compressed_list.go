// Package composite implements the composite container validators:
// compressed lists, bumpy arrays, and data-frame factors, each
// wrapping a single concatenated child object plus partition metadata.
package composite

import (
	"path/filepath"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateAtomicVectorList implements the atomic_vector_list validator.
func ValidateAtomicVectorList(path string, md types.ObjectMetadata, opts types.Options) error {
	_, err := validateCompressedList(path, md, opts, "atomic_vector_list", "atomic_vector", "")
	return err
}

// HeightAtomicVectorList returns the partition count.
func HeightAtomicVectorList(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	return compressedListHeight(path, "atomic_vector_list")
}

// ValidateDataFrameList implements the data_frame_list validator.
func ValidateDataFrameList(path string, md types.ObjectMetadata, opts types.Options) error {
	_, err := validateCompressedList(path, md, opts, "data_frame_list", "", types.InterfaceDataFrame)
	return err
}

// HeightDataFrameList returns the partition count.
func HeightDataFrameList(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	return compressedListHeight(path, "data_frame_list")
}

// ValidateSequenceStringSetList implements the sequence_string_set_list
// validator: a CompressedList over a concatenated sequence_string_set of
// any sequence type (used by vcf_experiment's non-expanded structural-free
// alternative alleles, where vcf_experiment itself requires DNA).
func ValidateSequenceStringSetList(path string, md types.ObjectMetadata, opts types.Options) error {
	_, err := validateCompressedList(path, md, opts, "sequence_string_set_list", "sequence_string_set", "")
	return err
}

// HeightSequenceStringSetList returns the partition count.
func HeightSequenceStringSetList(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	return compressedListHeight(path, "sequence_string_set_list")
}

// ValidateGenomicRangesList implements the genomic_ranges_list validator.
func ValidateGenomicRangesList(path string, md types.ObjectMetadata, opts types.Options) error {
	_, err := validateCompressedList(path, md, opts, "genomic_ranges_list", "genomic_ranges", "")
	return err
}

// HeightGenomicRangesList returns the partition count.
func HeightGenomicRangesList(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	return compressedListHeight(path, "genomic_ranges_list")
}

func compressedListHeight(path, typeName string) (int64, error) {
	f, g, err := hdf5x.OpenPayload(path, "partitions.h5", typeName)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	lengths, err := hdf5x.RequireDataset(g, "lengths")
	if err != nil {
		return 0, err
	}
	return lengths.Len(), nil
}

// validateCompressedList implements the shared contract for the CompressedList
// object types, differing only in the declared child type or interface.
// It returns the number of partitions (the list's height).
func validateCompressedList(path string, md types.ObjectMetadata, opts types.Options, typeName, wantChildType, wantChildIface string) (int64, error) {
	opts = opts.WithDefaults()

	f, g, err := hdf5x.OpenPayload(path, "partitions.h5", typeName)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	ver, err := primitives.FetchStringAttr(g, "version")
	if err != nil {
		return 0, err
	}
	v, err := primitives.ParseVersion(ver)
	if err != nil {
		return 0, err
	}
	if v.Major != 1 {
		return 0, types.NewError(types.ErrKindVersion, "unsupported %s version %d", typeName, v.Major)
	}

	lengths, err := hdf5x.RequireDataset(g, "lengths")
	if err != nil {
		return 0, err
	}
	if len(lengths.Dims()) != 1 {
		return 0, types.NewError(types.ErrKindValue, "'lengths' dataset should be one-dimensional")
	}
	if !lengths.FitsUnsignedInt(64) {
		return 0, types.NewError(types.ErrKindValue, "'lengths' dataset should be an unsigned integer type")
	}
	numPartitions := lengths.Len()

	var total int64
	if err := lengths.IterateInt(opts.HDF5BufferSize, func(block []int64) error {
		for _, v := range block {
			if v < 0 {
				return types.NewError(types.ErrKindValue, "'lengths' entries must be non-negative")
			}
			total += v
		}
		return nil
	}); err != nil {
		return 0, err
	}

	if names, ok := g.Dataset("names"); ok {
		if err := primitives.ValidateNames(names, numPartitions, opts.HDF5BufferSize); err != nil {
			return 0, err
		}
	}

	childPath := filepath.Join(path, "concatenated")
	if err := dispatch.ValidateChild(childPath, wantChildType, wantChildIface, opts); err != nil {
		return 0, err
	}
	childHeight, err := dispatch.Height(childPath, opts)
	if err != nil {
		return 0, err
	}
	if childHeight != total {
		return 0, types.NewError(types.ErrKindValue, "concatenated child has height %d but partition lengths sum to %d", childHeight, total)
	}

	if err := validateSiblingAnnotations(path, numPartitions, opts); err != nil {
		return 0, err
	}

	return numPartitions, nil
}

// validateSiblingAnnotations validates the optional element_annotations/
// (DATA_FRAME, length = numEntries) and other_annotations/ (SIMPLE_LIST)
// directories shared by CompressedList, BumpyArray, and DataFrameFactor.
func validateSiblingAnnotations(path string, numEntries int64, opts types.Options) error {
	if dir, ok := dirExists(path, "element_annotations"); ok {
		if err := dispatch.ValidateChild(dir, "", types.InterfaceDataFrame, opts); err != nil {
			return err
		}
		h, err := dispatch.Height(dir, opts)
		if err != nil {
			return err
		}
		if h != numEntries {
			return types.NewError(types.ErrKindValue, "element_annotations should have %d rows, got %d", numEntries, h)
		}
	}
	if dir, ok := dirExists(path, "other_annotations"); ok {
		if err := dispatch.ValidateChild(dir, "", types.InterfaceSimpleList, opts); err != nil {
			return err
		}
	}
	return nil
}
