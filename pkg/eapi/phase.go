package eapi

// Phase names one of the ordered build steps in spec.md §4.9. Not every
// EAPI defines every phase.
type Phase string

const (
	PhasePkgPretend    Phase = "pkg_pretend"
	PhasePkgSetup      Phase = "pkg_setup"
	PhaseSrcUnpack     Phase = "src_unpack"
	PhaseSrcPrepare    Phase = "src_prepare"
	PhaseSrcConfigure  Phase = "src_configure"
	PhaseSrcCompile    Phase = "src_compile"
	PhaseSrcTest       Phase = "src_test"
	PhaseSrcInstall    Phase = "src_install"
	PhasePkgPreinst    Phase = "pkg_preinst"
	PhasePkgPostinst   Phase = "pkg_postinst"
	PhasePkgPrerm      Phase = "pkg_prerm"
	PhasePkgPostrm     Phase = "pkg_postrm"
	PhasePkgConfig     Phase = "pkg_config"
	PhasePkgInfo       Phase = "pkg_info"
	PhasePkgNofetch    Phase = "pkg_nofetch"
)
