package experiment

import (
	"path/filepath"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/metadata"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateVcfExperiment implements the vcf_experiment validator
//: a ranged summarized experiment (with row_ranges required to
// be a bare genomic_ranges) plus a reference/alternative allele pair and
// per-variant fixed metadata.
func ValidateVcfExperiment(path string, md types.ObjectMetadata, opts types.Options) error {
	dims, err := validateVcfRangedCore(path, md, opts)
	if err != nil {
		return err
	}
	nrow := dims[0]

	obj, err := md.TypedObject("vcf_experiment")
	if err != nil {
		return err
	}
	verStr, err := types.StringField(obj, "version", "vcf_experiment")
	if err != nil {
		return err
	}
	v, err := primitives.ParseVersion(verStr)
	if err != nil {
		return err
	}
	if v.Major != 1 {
		return types.NewError(types.ErrKindVersion, "unsupported vcf_experiment version %d", v.Major)
	}

	rrDir := filepath.Join(path, "row_ranges")
	rrMD, err := metadata.Read(rrDir)
	if err != nil {
		return err
	}
	if rrMD.Type != "genomic_ranges" {
		return types.NewError(types.ErrKindValue, "'row_ranges' should contain a 'genomic_ranges' object")
	}

	alleleDir := filepath.Join(path, "alleles")
	if err := validateReferenceAllele(filepath.Join(alleleDir, "reference"), nrow, opts); err != nil {
		return err
	}
	expanded := types.OptionalBoolField(obj, "expanded", false)
	structural := types.OptionalBoolField(obj, "structural", false)
	if err := validateAlternativeAllele(filepath.Join(alleleDir, "alternative"), nrow, expanded, structural, opts); err != nil {
		return err
	}

	f, g, err := hdf5x.OpenPayload(path, "variants.h5", "vcf_experiment")
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := hdf5x.RequireGroup(g, "fixed"); err != nil {
		return err
	}

	return nil
}

// HeightVcfExperiment returns dimensions[0].
func HeightVcfExperiment(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	dims, err := readDimensions(md, "vcf_experiment")
	if err != nil {
		return 0, err
	}
	return dims[0], nil
}

// DimensionsVcfExperiment returns the declared [nrow, ncol].
func DimensionsVcfExperiment(path string, md types.ObjectMetadata, opts types.Options) ([]int64, error) {
	return readDimensions(md, "vcf_experiment")
}

func validateVcfRangedCore(path string, md types.ObjectMetadata, opts types.Options) ([]int64, error) {
	return validateRangedCore(path, md, opts, "vcf_experiment")
}

func validateReferenceAllele(refDir string, nrow int64, opts types.Options) error {
	refMD, err := metadata.Read(refDir)
	if err != nil {
		return err
	}
	if refMD.Type != "sequence_string_set" {
		return types.NewError(types.ErrKindValue, "'alleles/reference' should contain a 'sequence_string_set' object")
	}
	if err := dispatch.Validate(refDir, opts); err != nil {
		return types.WrapError(types.ErrKindPropagated, err, "failed to validate reference alleles in '%s'", refDir)
	}

	seqObj, err := refMD.TypedObject("sequence_string_set")
	if err != nil {
		return err
	}
	seqType, err := types.StringField(seqObj, "sequence_type", "sequence_string_set")
	if err != nil {
		return err
	}
	if seqType != "DNA" {
		return types.NewError(types.ErrKindValue, "'%s' should contain DNA sequences", refDir)
	}

	h, err := dispatch.Height(refDir, opts)
	if err != nil {
		return err
	}
	if h != nrow {
		return types.NewError(types.ErrKindValue, "'%s' should have length equal to the number of rows of the 'vcf_experiment'", refDir)
	}
	return nil
}

func validateAlternativeAllele(altDir string, nrow int64, expanded, structural bool, opts types.Options) error {
	altMD, err := metadata.Read(altDir)
	if err != nil {
		return err
	}

	var wantType string
	switch {
	case expanded && structural:
		wantType = "atomic_vector"
	case expanded && !structural:
		wantType = "sequence_string_set"
	case !expanded && structural:
		wantType = "atomic_vector_list"
	default:
		wantType = "sequence_string_set_list"
	}
	if altMD.Type != wantType {
		return types.NewError(types.ErrKindValue, "'%s' should be a '%s' object", altDir, wantType)
	}

	if err := dispatch.Validate(altDir, opts); err != nil {
		return types.WrapError(types.ErrKindPropagated, err, "failed to validate alternative alleles in '%s'", altDir)
	}
	h, err := dispatch.Height(altDir, opts)
	if err != nil {
		return err
	}
	if h != nrow {
		return types.NewError(types.ErrKindValue, "'%s' should have length equal to the number of rows of the 'vcf_experiment'", altDir)
	}

	if structural {
		contentsDir := altDir
		if !expanded {
			contentsDir = filepath.Join(altDir, "concatenated")
		}
		f, g, err := hdf5x.OpenPayload(contentsDir, "contents.h5", "atomic_vector")
		if err != nil {
			return err
		}
		defer f.Close()
		typeStr, err := primitives.FetchStringAttr(g, "type")
		if err != nil {
			return err
		}
		if typeStr != "string" {
			return types.NewError(types.ErrKindValue, "expected alternative alleles to be stored as strings in '%s'", altDir)
		}
		return nil
	}

	var seqMeta types.ObjectMetadata
	if expanded {
		seqMeta = altMD
	} else {
		seqMeta, err = metadata.Read(filepath.Join(altDir, "concatenated"))
		if err != nil {
			return err
		}
	}
	seqObj, err := seqMeta.TypedObject("sequence_string_set")
	if err != nil {
		return err
	}
	seqType, err := types.StringField(seqObj, "sequence_type", "sequence_string_set")
	if err != nil {
		return err
	}
	if seqType != "DNA" {
		return types.NewError(types.ErrKindValue, "'%s' should contain DNA sequences", altDir)
	}
	return nil
}
