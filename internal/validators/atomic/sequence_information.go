package atomic

import (
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateSequenceInformation implements the sequence_information
// validator: per-sequence unique name, optional (placeholder-able)
// length and circular flag, and a genome string, stored in
// info.h5/sequence_information. Length and circular use the same
// type-matched missing-value-placeholder convention as every other
// numeric dataset in the format, which is how genomic_ranges distinguishes
// "sequence length unknown" from a declared zero length.
func ValidateSequenceInformation(path string, md types.ObjectMetadata, opts types.Options) error {
	f, g, err := hdf5x.OpenPayload(path, "info.h5", "sequence_information")
	if err != nil {
		return err
	}
	defer f.Close()
	return ValidateSequenceInformationGroup(g, opts)
}

// HeightSequenceInformation returns the number of sequences.
func HeightSequenceInformation(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	f, g, err := hdf5x.OpenPayload(path, "info.h5", "sequence_information")
	if err != nil {
		return 0, err
	}
	defer f.Close()
	ds, err := hdf5x.RequireDataset(g, "name")
	if err != nil {
		return 0, err
	}
	return ds.Len(), nil
}

func placeholderInt(ds hdf5x.Dataset) (bool, int64) {
	a, ok := ds.Attr("missing-value-placeholder")
	if !ok {
		return false, 0
	}
	v, ok := a.AsInt()
	if !ok {
		return false, 0
	}
	return true, v
}

// elementAt reads the i'th element of a 1-D integer dataset by scanning
// in bounded blocks, keeping to the bounded-scan discipline rather
// than materializing the whole dataset for a single lookup.
func elementAt(ds hdf5x.Dataset, i int, blockSize int) (int64, error) {
	var value int64
	var found bool
	idx := 0
	err := ds.IterateInt(blockSize, func(block []int64) error {
		for _, v := range block {
			if idx == i {
				value, found = v, true
				return errStop
			}
			idx++
		}
		return nil
	})
	if err != nil && err != errStop {
		return 0, err
	}
	if !found {
		return 0, types.NewError(types.ErrKindValue, "index %d out of range", i)
	}
	return value, nil
}

// SequenceLength reports whether sequence i has a known (non-placeholder)
// length and, if so, its value. Used by ValidateGenomicRanges to
// decide whether to enforce the end-of-sequence bound.
func SequenceLength(g hdf5x.Group, i int, opts types.Options) (known bool, length int64, err error) {
	ds, err := hdf5x.RequireDataset(g, "length")
	if err != nil {
		return false, 0, err
	}
	hasPH, phVal := placeholderInt(ds)
	value, err := elementAt(ds, i, opts.WithDefaults().HDF5BufferSize)
	if err != nil {
		return false, 0, err
	}
	if hasPH && value == phVal {
		return false, 0, nil
	}
	return true, value, nil
}

// SequenceCircular reports whether sequence i is known to be circular. A
// missing `circular` value (via placeholder) is treated as "not
// circular".
func SequenceCircular(g hdf5x.Group, i int, opts types.Options) (bool, error) {
	ds, err := hdf5x.RequireDataset(g, "circular")
	if err != nil {
		return false, err
	}
	hasPH, phVal := placeholderInt(ds)
	value, err := elementAt(ds, i, opts.WithDefaults().HDF5BufferSize)
	if err != nil {
		return false, err
	}
	if hasPH && value == phVal {
		return false, nil
	}
	return value != 0, nil
}

// ValidateSequenceInformationGroup is the core sequence_information
// contract.
func ValidateSequenceInformationGroup(g hdf5x.Group, opts types.Options) error {
	opts = opts.WithDefaults()

	ver, err := primitives.FetchStringAttr(g, "version")
	if err != nil {
		return err
	}
	v, err := primitives.ParseVersion(ver)
	if err != nil {
		return err
	}
	if v.Major != 1 {
		return types.NewError(types.ErrKindVersion, "unsupported sequence_information version %d", v.Major)
	}

	name, err := hdf5x.RequireDataset(g, "name")
	if err != nil {
		return err
	}
	if err := primitives.ValidateFactorLevels(name, true, opts.HDF5BufferSize); err != nil {
		return types.WrapError(types.ErrKindValue, err, "sequence names must be unique")
	}

	length, err := hdf5x.RequireDataset(g, "length")
	if err != nil {
		return err
	}
	if !length.FitsUnsignedInt(32) {
		return types.NewError(types.ErrKindValue, "sequence lengths must fit in an unsigned 32-bit integer")
	}
	var negative bool
	if err := length.IterateInt(opts.HDF5BufferSize, func(block []int64) error {
		for _, v := range block {
			if v < 0 {
				negative = true
				return errStop
			}
		}
		return nil
	}); err != nil && err != errStop {
		return err
	}
	if negative {
		return types.NewError(types.ErrKindValue, "sequence lengths must be non-negative")
	}
	if length.Len() != name.Len() {
		return types.NewError(types.ErrKindValue, "'length' should have the same length as 'name'")
	}

	circular, err := hdf5x.RequireDataset(g, "circular")
	if err != nil {
		return err
	}
	if circular.Len() != name.Len() {
		return types.NewError(types.ErrKindValue, "'circular' should have the same length as 'name'")
	}

	genome, err := hdf5x.RequireDataset(g, "genome")
	if err != nil {
		return err
	}
	if genome.Len() != name.Len() {
		return types.NewError(types.ErrKindValue, "'genome' should have the same length as 'name'")
	}

	return nil
}
