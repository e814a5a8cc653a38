package types

// StrictCheck is a user-supplied deep checker for an opaque payload format,
// invoked after the built-in magic-number/structural pass succeeds. Any
// error it returns is propagated unmodified (wrapped, but never replaced)
// to the caller, per the PropagatedError category.
type StrictCheck func(payloadPath string, metadata ObjectMetadata) error

// DelayedArrayOptions configures the pluggable chihaya-style delayed
// operation graph sub-validator. ArrayValidators is keyed by the
// delayed-operation array-type string (e.g. "custom takane seed array");
// a registered function is invoked with the seed's directory path and the
// declared shape/type the graph expects it to have.
type DelayedArrayOptions struct {
	ArrayValidators map[string]func(path string, dims []int64, elemType string, opts Options) error
}

// Options carries the runtime knobs recognized by the validator: buffer
// sizing for bounded HDF5 scans, the parallel-read performance hint, and
// optional strict-check callbacks for opaque payload formats.
type Options struct {
	// ParallelReads is the parallel-read performance hint. It is carried
	// through every recursive call, but no validator consults it: FASTA/FASTQ
	// payloads are decompressed and parsed sequentially whatever its value,
	// so it changes neither outcomes nor error messages.
	ParallelReads bool

	// HDF5BufferSize bounds how many elements are materialized per block
	// when scanning an HDF5 dataset. Zero selects the default (10000).
	HDF5BufferSize int

	DelayedArrayOptions DelayedArrayOptions

	// Registry is the dispatch table consulted by Validate/Height/
	// Dimensions for this call and every recursive call it makes into
	// embedded objects. The public takane package populates this before
	// handing Options to the dispatcher; it is nil only if a caller
	// constructs Options directly and bypasses the takane package, which
	// the internal dispatcher treats as a DispatchError.
	Registry *Registry

	// AnyDuplicatedRowsCheck is the pluggable hook data_frame_factor uses to
	// check its levels data frame for duplicated rows. A nil hook means the
	// check is not applicable and is skipped.
	AnyDuplicatedRowsCheck func(levelsPath string) (bool, error)

	BAMStrictCheck     StrictCheck
	BCFStrictCheck     StrictCheck
	BEDStrictCheck     StrictCheck
	BigBedStrictCheck  StrictCheck
	BigWigStrictCheck  StrictCheck
	FASTAStrictCheck   StrictCheck
	FASTQStrictCheck   StrictCheck
	GFFStrictCheck      StrictCheck
	GMTStrictCheck      StrictCheck
	ImageStrictCheck    StrictCheck
	RDSStrictCheck      StrictCheck
}

// WithDefaults returns a copy of o with zero-valued knobs replaced by their
// documented defaults.
func (o Options) WithDefaults() Options {
	if o.HDF5BufferSize <= 0 {
		o.HDF5BufferSize = 10000
	}
	return o
}

// DefaultOptions returns the documented default Options: parallel reads
// enabled, a 10000-element HDF5 scan buffer, and no strict checks.
func DefaultOptions() Options {
	return Options{ParallelReads: true, HDF5BufferSize: 10000}
}
