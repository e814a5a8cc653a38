package atomic

import (
	"path/filepath"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateGenomicRanges implements the genomic_ranges validator:
// parallel sequence/start/width/strand/name datasets, cross-checked
// against a sibling sequence_information/ object, plus optional
// range_annotations/ (DATA_FRAME) and other_annotations/ (SIMPLE_LIST)
// siblings.
func ValidateGenomicRanges(path string, md types.ObjectMetadata, opts types.Options) error {
	opts = opts.WithDefaults()

	seqInfoPath := filepath.Join(path, "sequence_information")
	if err := dispatch.ValidateChild(seqInfoPath, "sequence_information", "", opts); err != nil {
		return err
	}
	seqInfoFile, seqInfoGroup, err := hdf5x.OpenPayload(seqInfoPath, "info.h5", "sequence_information")
	if err != nil {
		return err
	}
	defer seqInfoFile.Close()
	nameDS, err := hdf5x.RequireDataset(seqInfoGroup, "name")
	if err != nil {
		return err
	}
	numSequences := int(nameDS.Len())

	f, g, err := hdf5x.OpenPayload(path, "ranges.h5", "genomic_ranges")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := validateGenomicRangesGroup(g, seqInfoGroup, numSequences, opts); err != nil {
		return err
	}

	if rangeAnn, ok := dirExists(path, "range_annotations"); ok {
		h, err := dispatch.Height(rangeAnn, opts)
		if err != nil {
			return types.WrapError(types.ErrKindDispatch, err, "range_annotations must satisfy the %s interface", types.InterfaceDataFrame)
		}
		if err := dispatch.ValidateChild(rangeAnn, "", types.InterfaceDataFrame, opts); err != nil {
			return err
		}
		want, err := HeightGenomicRanges(path, md, opts)
		if err != nil {
			return err
		}
		if h != want {
			return types.NewError(types.ErrKindValue, "range_annotations should have %d rows, got %d", want, h)
		}
	}
	if otherAnn, ok := dirExists(path, "other_annotations"); ok {
		if err := dispatch.ValidateChild(otherAnn, "", types.InterfaceSimpleList, opts); err != nil {
			return err
		}
	}

	return nil
}

// HeightGenomicRanges returns the length of the `sequence` dataset.
func HeightGenomicRanges(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	f, g, err := hdf5x.OpenPayload(path, "ranges.h5", "genomic_ranges")
	if err != nil {
		return 0, err
	}
	defer f.Close()
	ds, err := hdf5x.RequireDataset(g, "sequence")
	if err != nil {
		return 0, err
	}
	return ds.Len(), nil
}

func dirExists(parent, name string) (string, bool) {
	full := filepath.Join(parent, name)
	info, err := statDir(full)
	if err != nil || !info {
		return "", false
	}
	return full, true
}

func validateGenomicRangesGroup(g, seqInfo hdf5x.Group, numSequences int, opts types.Options) error {
	ver, err := primitives.FetchStringAttr(g, "version")
	if err != nil {
		return err
	}
	v, err := primitives.ParseVersion(ver)
	if err != nil {
		return err
	}
	if v.Major != 1 {
		return types.NewError(types.ErrKindVersion, "unsupported genomic_ranges version %d", v.Major)
	}

	seq, err := hdf5x.RequireDataset(g, "sequence")
	if err != nil {
		return err
	}
	start, err := hdf5x.RequireDataset(g, "start")
	if err != nil {
		return err
	}
	width, err := hdf5x.RequireDataset(g, "width")
	if err != nil {
		return err
	}
	strand, err := hdf5x.RequireDataset(g, "strand")
	if err != nil {
		return err
	}
	n := seq.Len()
	for label, ds := range map[string]hdf5x.Dataset{"start": start, "width": width, "strand": strand} {
		if ds.Len() != n {
			return types.NewError(types.ErrKindValue, "'%s' should have the same length as 'sequence', got %d vs %d", label, ds.Len(), n)
		}
	}
	if !width.FitsUnsignedInt(64) {
		return types.NewError(types.ErrKindValue, "'width' must fit in an unsigned 64-bit integer")
	}

	var seqs, starts, widths, strands []int64
	if err := seq.IterateInt(opts.HDF5BufferSize, func(b []int64) error { seqs = append(seqs, b...); return nil }); err != nil {
		return err
	}
	if err := start.IterateInt(opts.HDF5BufferSize, func(b []int64) error { starts = append(starts, b...); return nil }); err != nil {
		return err
	}
	if err := width.IterateInt(opts.HDF5BufferSize, func(b []int64) error { widths = append(widths, b...); return nil }); err != nil {
		return err
	}
	if err := strand.IterateInt(opts.HDF5BufferSize, func(b []int64) error { strands = append(strands, b...); return nil }); err != nil {
		return err
	}

	lengthCache := make(map[int]int64)
	knownCache := make(map[int]bool)
	circularCache := make(map[int]bool)

	for i := 0; i < int(n); i++ {
		sidx := int(seqs[i])
		if sidx < 0 || sidx >= numSequences {
			return types.NewError(types.ErrKindValue, "sequence index %d at position %d is out of range", sidx, i)
		}
		if strands[i] != -1 && strands[i] != 0 && strands[i] != 1 {
			return types.NewError(types.ErrKindValue, "strand value %d at position %d is not one of -1, 0, +1", strands[i], i)
		}
		end, ok := addOverflowSafeInt64(starts[i], widths[i])
		if !ok {
			return types.NewError(types.ErrKindValue, "start+width at position %d overflows a signed 64-bit integer", i)
		}
		_ = end

		known, ok := knownCache[sidx]
		var length int64
		var circular bool
		if !ok {
			var err error
			known, length, err = SequenceLength(seqInfo, sidx, opts)
			if err != nil {
				return err
			}
			circular, err = SequenceCircular(seqInfo, sidx, opts)
			if err != nil {
				return err
			}
			knownCache[sidx], lengthCache[sidx], circularCache[sidx] = known, length, circular
		} else {
			length, circular = lengthCache[sidx], circularCache[sidx]
		}

		if known && !circular {
			if starts[i] < 1 {
				return types.NewError(types.ErrKindValue, "start position %d at position %d must be at least 1", starts[i], i)
			}
			if starts[i]+widths[i]-1 > length {
				return types.NewError(types.ErrKindValue, "end position at position %d is beyond sequence length %d", i, length)
			}
		}
	}

	if name, ok := g.Dataset("name"); ok {
		if err := primitives.ValidateNames(name, n, opts.HDF5BufferSize); err != nil {
			return err
		}
	}

	return nil
}

func addOverflowSafeInt64(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}
