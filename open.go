package avcodec

// opener opens a native context with one of the two open calls.
type opener interface {
	open(lib Caller, ctx ContextRecord, codec CodecRecord) int32
	function() string
	variant() Variant
}

func newOpener(caps Capabilities) opener {
	if caps.Open2 {
		return open2{}
	}
	return openLegacy{}
}

// openLegacy calls avcodec_open.
type openLegacy struct{}

func (openLegacy) open(lib Caller, ctx ContextRecord, codec CodecRecord) int32 {
	return lib.Open(ctx, codec)
}

func (openLegacy) function() string { return "avcodec_open" }
func (openLegacy) variant() Variant { return VariantLegacy }

// open2 calls avcodec_open2 without an options dictionary.
type open2 struct{}

func (open2) open(lib Caller, ctx ContextRecord, codec CodecRecord) int32 {
	return lib.Open2(ctx, codec)
}

func (open2) function() string { return FuncOpen2 }
func (open2) variant() Variant { return VariantModern }
