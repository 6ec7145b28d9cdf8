package eapi

// Feature is one of the closed enumeration of EAPI behavioural switches
// named in spec.md §4.5. Each EAPI states its feature set explicitly,
// rather than inheriting a predecessor's, per the "flat registry" design
// note in spec.md §9.
type Feature string

const (
	FeatureSlotDeps              Feature = "slot-deps"
	FeatureBlockers              Feature = "blockers"
	FeatureUseDeps               Feature = "use-deps"
	FeatureUseDepDefaults        Feature = "use-dep-defaults"
	FeatureSubslots              Feature = "subslots"
	FeatureSlotOperators         Feature = "slot-operators"
	FeatureRepoIDs               Feature = "repo-ids"
	FeatureSrcURIRenames         Feature = "src-uri-renames"
	FeatureRequiredUseOneOf      Feature = "required-use-one-of"
	FeatureUnpackCaseInsensitive Feature = "unpack-case-insensitive"
	FeatureUnpackExtendedPath    Feature = "unpack-extended-path"
	FeatureDosymRelative         Feature = "dosym-relative"
	FeatureNonfatalDie           Feature = "nonfatal-die"
	FeatureConsistentFileOpts    Feature = "consistent-file-opts"
	FeatureParallelTests         Feature = "parallel-tests"
)

// allFeatures lists every known feature, used to validate YAML data at
// load time so a typo in eapis.yaml is a load-time error, not a silent
// always-false feature check.
var allFeatures = map[Feature]bool{
	FeatureSlotDeps:              true,
	FeatureBlockers:              true,
	FeatureUseDeps:               true,
	FeatureUseDepDefaults:        true,
	FeatureSubslots:              true,
	FeatureSlotOperators:         true,
	FeatureRepoIDs:               true,
	FeatureSrcURIRenames:         true,
	FeatureRequiredUseOneOf:      true,
	FeatureUnpackCaseInsensitive: true,
	FeatureUnpackExtendedPath:    true,
	FeatureDosymRelative:         true,
	FeatureNonfatalDie:           true,
	FeatureConsistentFileOpts:    true,
	FeatureParallelTests:         true,
}
