// Package registry assembles the default dispatch tables: every built-in
// object type's validate/height/dimensions functions, the derivation
// relation among the experiment types, and the interface-satisfaction
// table. The tables are built once and treated as read-only
// configuration; user extensions live in a separate overlay merged in by
// the public takane package.
package registry

import (
	"github.com/takane-go/takane/internal/validators/atomic"
	"github.com/takane-go/takane/internal/validators/composite"
	"github.com/takane-go/takane/internal/validators/delayed"
	"github.com/takane-go/takane/internal/validators/experiment"
	"github.com/takane-go/takane/internal/validators/opaque"
	"github.com/takane-go/takane/pkg/types"
)

// Default builds a fresh Registry seeded with all built-in types.
func Default() *types.Registry {
	r := types.NewRegistry()

	r.RegisterValidate("atomic_vector", atomic.ValidateAtomicVector)
	r.RegisterHeight("atomic_vector", atomic.HeightAtomicVector)

	r.RegisterValidate("string_factor", atomic.ValidateStringFactor)
	r.RegisterHeight("string_factor", atomic.HeightStringFactor)

	r.RegisterValidate("sequence_information", atomic.ValidateSequenceInformation)
	r.RegisterHeight("sequence_information", atomic.HeightSequenceInformation)

	r.RegisterValidate("dense_array", atomic.ValidateDenseArray)
	r.RegisterHeight("dense_array", atomic.HeightDenseArray)
	r.RegisterDimensions("dense_array", atomic.DimensionsDenseArray)

	r.RegisterValidate("compressed_sparse_matrix", atomic.ValidateCompressedSparseMatrix)
	r.RegisterHeight("compressed_sparse_matrix", atomic.HeightCompressedSparseMatrix)
	r.RegisterDimensions("compressed_sparse_matrix", atomic.DimensionsCompressedSparseMatrix)

	r.RegisterValidate("genomic_ranges", atomic.ValidateGenomicRanges)
	r.RegisterHeight("genomic_ranges", atomic.HeightGenomicRanges)

	r.RegisterValidate("data_frame", atomic.ValidateDataFrame)
	r.RegisterHeight("data_frame", atomic.HeightDataFrame)
	r.RegisterDimensions("data_frame", atomic.DimensionsDataFrame)

	r.RegisterValidate("simple_list", atomic.ValidateSimpleList)
	r.RegisterHeight("simple_list", atomic.HeightSimpleList)

	r.RegisterValidate("sequence_string_set", atomic.ValidateSequenceStringSet)
	r.RegisterHeight("sequence_string_set", atomic.HeightSequenceStringSet)

	r.RegisterValidate("atomic_vector_list", composite.ValidateAtomicVectorList)
	r.RegisterHeight("atomic_vector_list", composite.HeightAtomicVectorList)

	r.RegisterValidate("data_frame_list", composite.ValidateDataFrameList)
	r.RegisterHeight("data_frame_list", composite.HeightDataFrameList)

	r.RegisterValidate("genomic_ranges_list", composite.ValidateGenomicRangesList)
	r.RegisterHeight("genomic_ranges_list", composite.HeightGenomicRangesList)

	r.RegisterValidate("sequence_string_set_list", composite.ValidateSequenceStringSetList)
	r.RegisterHeight("sequence_string_set_list", composite.HeightSequenceStringSetList)

	r.RegisterValidate("bumpy_atomic_array", composite.ValidateBumpyAtomicArray)
	r.RegisterHeight("bumpy_atomic_array", composite.HeightBumpyAtomicArray)
	r.RegisterDimensions("bumpy_atomic_array", composite.DimensionsBumpyAtomicArray)

	r.RegisterValidate("bumpy_data_frame_array", composite.ValidateBumpyDataFrameArray)
	r.RegisterHeight("bumpy_data_frame_array", composite.HeightBumpyDataFrameArray)
	r.RegisterDimensions("bumpy_data_frame_array", composite.DimensionsBumpyDataFrameArray)

	r.RegisterValidate("data_frame_factor", composite.ValidateDataFrameFactor)
	r.RegisterHeight("data_frame_factor", composite.HeightDataFrameFactor)

	r.RegisterValidate("summarized_experiment", experiment.ValidateSummarizedExperiment)
	r.RegisterHeight("summarized_experiment", experiment.HeightSummarizedExperiment)
	r.RegisterDimensions("summarized_experiment", experiment.DimensionsSummarizedExperiment)

	r.RegisterValidate("ranged_summarized_experiment", experiment.ValidateRangedSummarizedExperiment)
	r.RegisterHeight("ranged_summarized_experiment", experiment.HeightRangedSummarizedExperiment)
	r.RegisterDimensions("ranged_summarized_experiment", experiment.DimensionsRangedSummarizedExperiment)

	r.RegisterValidate("single_cell_experiment", experiment.ValidateSingleCellExperiment)
	r.RegisterHeight("single_cell_experiment", experiment.HeightSingleCellExperiment)
	r.RegisterDimensions("single_cell_experiment", experiment.DimensionsSingleCellExperiment)

	r.RegisterValidate("spatial_experiment", experiment.ValidateSpatialExperiment)
	r.RegisterHeight("spatial_experiment", experiment.HeightSpatialExperiment)
	r.RegisterDimensions("spatial_experiment", experiment.DimensionsSpatialExperiment)

	r.RegisterValidate("vcf_experiment", experiment.ValidateVcfExperiment)
	r.RegisterHeight("vcf_experiment", experiment.HeightVcfExperiment)
	r.RegisterDimensions("vcf_experiment", experiment.DimensionsVcfExperiment)

	r.RegisterValidate("multi_sample_dataset", experiment.ValidateMultiSampleDataset)
	r.RegisterHeight("multi_sample_dataset", experiment.HeightMultiSampleDataset)

	r.RegisterValidate("delayed_array", delayed.ValidateDelayedArray)
	r.RegisterHeight("delayed_array", delayed.HeightDelayedArray)
	r.RegisterDimensions("delayed_array", delayed.DimensionsDelayedArray)

	r.RegisterValidate("bam_file", opaque.ValidateBAM)
	r.RegisterValidate("bcf_file", opaque.ValidateBCF)
	r.RegisterValidate("bed_file", opaque.ValidateBED)
	r.RegisterValidate("bigbed_file", opaque.ValidateBigBed)
	r.RegisterValidate("bigwig_file", opaque.ValidateBigWig)
	r.RegisterValidate("fasta_file", opaque.ValidateFASTA)
	r.RegisterValidate("fastq_file", opaque.ValidateFASTQ)
	r.RegisterValidate("gff_file", opaque.ValidateGFF)
	r.RegisterValidate("gmt_file", opaque.ValidateGMT)
	r.RegisterValidate("image_file", opaque.ValidateImage)
	r.RegisterValidate("rds_file", opaque.ValidateRDS)

	// The derivation relation is stored pre-closed: every transitive pair
	// is registered directly, so lookups need no graph walk.
	r.RegisterDerivation("summarized_experiment", "ranged_summarized_experiment")
	r.RegisterDerivation("summarized_experiment", "single_cell_experiment")
	r.RegisterDerivation("summarized_experiment", "spatial_experiment")
	r.RegisterDerivation("summarized_experiment", "vcf_experiment")
	r.RegisterDerivation("ranged_summarized_experiment", "single_cell_experiment")
	r.RegisterDerivation("ranged_summarized_experiment", "spatial_experiment")
	r.RegisterDerivation("ranged_summarized_experiment", "vcf_experiment")
	r.RegisterDerivation("single_cell_experiment", "spatial_experiment")

	r.RegisterInterface(types.InterfaceDataFrame, "data_frame")
	r.RegisterInterface(types.InterfaceSimpleList, "simple_list")
	r.RegisterInterface(types.InterfaceSummarizedExperiment, "summarized_experiment")

	return r
}
