package atomic

import (
	"path/filepath"
	"strconv"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateDataFrame implements the data_frame validator.
// Column order and names come from `column_names`; each column's storage
// slot in `data/<index>` is either a typed dataset (carrying its own
// "type" attribute, the same convention atomic_vector/dense_array use)
// or, for factors, a subgroup with a "type"="factor" attribute. A column
// index absent from `data/` is an "other" column, backed instead by
// `other_columns/<index>/` as a nested Object. There is no CSV-backed
// column storage - see DESIGN.md.
func ValidateDataFrame(path string, md types.ObjectMetadata, opts types.Options) error {
	opts = opts.WithDefaults()

	f, g, err := hdf5x.OpenPayload(path, "basic_columns.h5", "data_frame")
	if err != nil {
		return err
	}
	defer f.Close()

	rowCount, columnNames, err := validateDataFrameHeader(g)
	if err != nil {
		return err
	}

	dataGroup, err := hdf5x.RequireGroup(g, "data")
	if err != nil {
		return err
	}

	otherIndices := map[int]bool{}
	for c := range columnNames {
		key := strconv.Itoa(c)
		if err := validateDataFrameColumn(dataGroup, key, rowCount, opts); err != nil {
			if _, isMissing := err.(missingColumnError); isMissing {
				otherIndices[c] = true
				continue
			}
			return types.WrapError(types.ErrKindValue, err, "column '%s' (index %d)", columnNames[c], c)
		}
	}

	// data/ must contain exactly the non-other columns and nothing more.
	for _, name := range dataGroup.Names() {
		idx, err := strconv.Atoi(name)
		if err != nil || idx < 0 || idx >= len(columnNames) || otherIndices[idx] {
			return types.NewError(types.ErrKindValue, "'data' group contains an unexpected entry '%s'", name)
		}
	}

	if len(otherIndices) > 0 {
		otherDir := filepath.Join(path, "other_columns")
		if ok, _ := statDir(otherDir); !ok {
			return types.NewError(types.ErrKindStructure, "expected an 'other_columns' directory for the 'other'-typed columns")
		}
		for idx := range otherIndices {
			childPath := filepath.Join(otherDir, strconv.Itoa(idx))
			if err := dispatch.Validate(childPath, opts); err != nil {
				return err
			}
			h, err := dispatch.Height(childPath, opts)
			if err != nil {
				return err
			}
			if h != rowCount {
				return types.NewError(types.ErrKindValue, "other column %d should have %d rows, got %d", idx, rowCount, h)
			}
		}
	}

	return nil
}

// HeightDataFrame returns the declared row count.
func HeightDataFrame(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	f, g, err := hdf5x.OpenPayload(path, "basic_columns.h5", "data_frame")
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return primitives.FetchIntAttr(g, "row-count")
}

// DimensionsDataFrame returns [row-count, #columns].
func DimensionsDataFrame(path string, md types.ObjectMetadata, opts types.Options) ([]int64, error) {
	f, g, err := hdf5x.OpenPayload(path, "basic_columns.h5", "data_frame")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rowCount, columnNames, err := validateDataFrameHeader(g)
	if err != nil {
		return nil, err
	}
	return []int64{rowCount, int64(len(columnNames))}, nil
}

func validateDataFrameHeader(g hdf5x.Group) (int64, []string, error) {
	ver, err := primitives.FetchStringAttr(g, "version")
	if err != nil {
		return 0, nil, err
	}
	v, err := primitives.ParseVersion(ver)
	if err != nil {
		return 0, nil, err
	}
	if v.Major != 1 {
		return 0, nil, types.NewError(types.ErrKindVersion, "unsupported data_frame version %d", v.Major)
	}

	rowCount, err := primitives.FetchIntAttr(g, "row-count")
	if err != nil {
		return 0, nil, err
	}
	if rowCount < 0 {
		return 0, nil, types.NewError(types.ErrKindValue, "'row-count' must be non-negative")
	}

	namesDS, err := hdf5x.RequireDataset(g, "column_names")
	if err != nil {
		return 0, nil, err
	}
	var names []string
	seen := make(map[string]bool)
	if err := namesDS.IterateString(10000, func(block []hdf5x.NullableString) error {
		for _, v := range block {
			if v.Null || v.Value == "" {
				return types.NewError(types.ErrKindValue, "column names must be non-empty")
			}
			if seen[v.Value] {
				return types.NewError(types.ErrKindValue, "duplicate column name '%s'", v.Value)
			}
			seen[v.Value] = true
			names = append(names, v.Value)
		}
		return nil
	}); err != nil {
		return 0, nil, err
	}

	if rowNames, ok := g.Dataset("row_names"); ok {
		if err := primitives.ValidateNames(rowNames, rowCount, 10000); err != nil {
			return 0, nil, types.WrapError(types.ErrKindValue, err, "row_names")
		}
	}

	return rowCount, names, nil
}

type missingColumnError struct{}

func (missingColumnError) Error() string { return "column has no data/ entry" }

func validateDataFrameColumn(dataGroup hdf5x.Group, key string, rowCount int64, opts types.Options) error {
	if ds, ok := dataGroup.Dataset(key); ok {
		return validateBasicColumn(ds, rowCount, opts)
	}
	if sub, ok := dataGroup.Group(key); ok {
		return validateFactorColumn(sub, rowCount, opts)
	}
	return missingColumnError{}
}

func validateBasicColumn(ds hdf5x.Dataset, rowCount int64, opts types.Options) error {
	if ds.Len() != rowCount {
		return types.NewError(types.ErrKindValue, "expected %d rows, got %d", rowCount, ds.Len())
	}
	typeStr, err := fetchDatasetTypeAttr(ds)
	if err != nil {
		return err
	}
	elemType, err := ParseElementType(typeStr, true)
	if err != nil {
		return err
	}
	if elemType == String {
		hasPH, phStr, _, _, err := ResolvePlaceholder(ds, elemType)
		if err != nil {
			return err
		}
		formatStr, _ := primitives.DatasetStringAttr(ds, "format")
		format, err := primitives.ParseStringFormat(formatStr)
		if err != nil {
			return err
		}
		return ValidateStringValues(ds, format, hasPH, phStr, opts.HDF5BufferSize)
	}
	if err := ValidateNumericClass(ds, elemType); err != nil {
		return err
	}
	_, _, _, _, err = ResolvePlaceholder(ds, elemType)
	return err
}

func fetchDatasetTypeAttr(ds hdf5x.Dataset) (string, error) {
	s, ok := primitives.DatasetStringAttr(ds, "type")
	if !ok {
		return "", types.NewError(types.ErrKindValue, "expected a 'type' attribute on the column dataset")
	}
	return s, nil
}

func validateFactorColumn(g hdf5x.Group, rowCount int64, opts types.Options) error {
	typeStr, err := primitives.FetchStringAttr(g, "type")
	if err != nil {
		return err
	}
	if typeStr != "factor" {
		return types.NewError(types.ErrKindValue, "expected column subgroup 'type' attribute to be 'factor', got '%s'", typeStr)
	}

	levels, err := hdf5x.RequireDataset(g, "levels")
	if err != nil {
		return err
	}
	if err := primitives.ValidateFactorLevels(levels, true, opts.HDF5BufferSize); err != nil {
		return err
	}

	codes, err := hdf5x.RequireDataset(g, "codes")
	if err != nil {
		return err
	}
	if codes.Len() != rowCount {
		return types.NewError(types.ErrKindValue, "expected %d rows, got %d", rowCount, codes.Len())
	}
	if !codes.FitsSignedInt(32) {
		return types.NewError(types.ErrKindValue, "codes must fit in a signed 32-bit integer")
	}
	hasPH, phVal := placeholderInt(codes)
	if err := primitives.ValidateFactorCodes(codes, int(levels.Len()), hasPH, phVal, opts.HDF5BufferSize); err != nil {
		return err
	}

	_, err = primitives.CheckOrderedAttribute(g)
	return err
}
