package atomic

import (
	"path/filepath"
	"strconv"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/gzutil"
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/jsonval"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateSimpleList implements the simple_list validator. The
// "list serialization" external collaborator is represented here
// by a small in-package walker rather than a pluggable interface: both
// supported encodings use the same convention an "external" reference
// node as `{"type": "external", "index": N}` (json.gz) or a subgroup
// carrying a string `type` attribute of `external` (hdf5), and the list's
// resolved length is the element count of its top-level array/group.
// Every external reference consumed must be backed by a same-indexed
// subdirectory in other_contents/.
func ValidateSimpleList(path string, md types.ObjectMetadata, opts types.Options) error {
	opts = opts.WithDefaults()

	formatStr := "hdf5"
	if obj, err := md.TypedObject("simple_list"); err == nil {
		if f, ok := types.OptionalStringField(obj, "format"); ok {
			formatStr = f
		}
	}

	var refCount, length int
	var declaredLength int64
	var hasDeclaredLength bool

	switch formatStr {
	case "json.gz":
		n, l, err := scanJSONList(path)
		if err != nil {
			return err
		}
		refCount, length = n, l
	case "hdf5":
		n, l, err := scanHDF5List(path, opts)
		if err != nil {
			return err
		}
		refCount, length = n, l
	default:
		return types.NewError(types.ErrKindValue, "unknown simple_list format '%s'", formatStr)
	}

	if obj, err := md.TypedObject("simple_list"); err == nil {
		if v, ok := obj.Field("length"); ok {
			n, ok := v.Int()
			if !ok {
				return types.NewError(types.ErrKindValue, "'length' metadata should be a number")
			}
			declaredLength, hasDeclaredLength = int64(n), true
		}
	}
	if hasDeclaredLength && declaredLength != int64(length) {
		return types.NewError(types.ErrKindValue, "declared length %d does not match resolved length %d", declaredLength, length)
	}

	otherDir := filepath.Join(path, "other_contents")
	numOther := 0
	if ok, _ := statDir(otherDir); ok {
		n, err := validateIndexedChildren(otherDir, opts)
		if err != nil {
			return err
		}
		numOther = n
	}
	if numOther != refCount {
		return types.NewError(types.ErrKindValue, "list consumes %d external reference(s) but 'other_contents' has %d", refCount, numOther)
	}

	return nil
}

// HeightSimpleList returns the resolved list length.
func HeightSimpleList(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	opts = opts.WithDefaults()
	formatStr := "hdf5"
	if obj, err := md.TypedObject("simple_list"); err == nil {
		if f, ok := types.OptionalStringField(obj, "format"); ok {
			formatStr = f
		}
	}
	switch formatStr {
	case "json.gz":
		_, l, err := scanJSONList(path)
		return int64(l), err
	default:
		_, l, err := scanHDF5List(path, opts)
		return int64(l), err
	}
}

// validateIndexedChildren validates that dir contains exactly the
// subdirectories "0".."n-1" (no gaps), each a valid Object, and returns
// n.
func validateIndexedChildren(dir string, opts types.Options) (int, error) {
	entries, err := readDirNames(dir)
	if err != nil {
		return 0, types.WrapError(types.ErrKindStructure, err, "could not list '%s'", dir)
	}
	n := len(entries)
	seen := make([]bool, n)
	for _, name := range entries {
		idx, err := strconv.Atoi(name)
		if err != nil || idx < 0 || idx >= n {
			return 0, types.NewError(types.ErrKindValue, "'%s' contains an unexpected entry '%s'", dir, name)
		}
		seen[idx] = true
	}
	for i, ok := range seen {
		if !ok {
			return 0, types.NewError(types.ErrKindValue, "'%s' is missing index %d", dir, i)
		}
	}
	for i := 0; i < n; i++ {
		if err := dispatch.Validate(filepath.Join(dir, strconv.Itoa(i)), opts); err != nil {
			return 0, err
		}
	}
	return n, nil
}

func scanJSONList(path string) (refCount, length int, err error) {
	full := filepath.Join(path, "list_contents.json.gz")
	rc, err := gzutil.OpenGzip(full)
	if err != nil {
		return 0, 0, types.WrapError(types.ErrKindStructure, err, "could not open '%s'", full)
	}
	defer rc.Close()
	data, err := readAll(rc)
	if err != nil {
		return 0, 0, types.WrapError(types.ErrKindPropagated, err, "could not read '%s'", full)
	}
	root, err := jsonval.Parse(data)
	if err != nil {
		return 0, 0, types.WrapError(types.ErrKindPropagated, err, "invalid JSON in '%s'", full)
	}
	if root.Kind() != jsonval.KindArray {
		return 0, 0, types.NewError(types.ErrKindStructure, "list_contents.json.gz should contain a JSON array")
	}
	n := root.Len()
	refs := 0
	for i := 0; i < n; i++ {
		el, _ := root.Index(i)
		refs += countJSONExternalRefs(el)
	}
	return refs, n, nil
}

func countJSONExternalRefs(v jsonval.Value) int {
	switch v.Kind() {
	case jsonval.KindObject:
		count := 0
		if t, ok := v.Field("type"); ok {
			if s, ok := t.String(); ok && s == "external" {
				count++
			}
		}
		for _, key := range v.Keys() {
			child, _ := v.Field(key)
			count += countJSONExternalRefs(child)
		}
		return count
	case jsonval.KindArray:
		count := 0
		for i := 0; i < v.Len(); i++ {
			el, _ := v.Index(i)
			count += countJSONExternalRefs(el)
		}
		return count
	default:
		return 0
	}
}

func scanHDF5List(path string, opts types.Options) (refCount, length int, err error) {
	f, g, err := hdf5x.OpenPayload(path, "list_contents.h5", "simple_list")
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	names := g.Names()
	return countHDF5ExternalRefs(g, names), len(names), nil
}

func countHDF5ExternalRefs(g hdf5x.Group, names []string) int {
	count := 0
	for _, name := range names {
		if sub, ok := g.Group(name); ok {
			if typeStr, err := primitives.OptionalStringAttr(sub, "type", ""); err == nil && typeStr == "external" {
				count++
				continue
			}
			count += countHDF5ExternalRefs(sub, sub.Names())
		}
	}
	return count
}
