package mark

type (
	// Option is a function for selecting the payload codec.
	// It allows choosing whether to use error correction codes (ECC) and which type.
	Option func(*markFactory)

	markFactory struct {
		c Codec
	}
)

// WithoutECC is an option that does not use error correction codes.
// The payload is embedded as-is.
func WithoutECC() Option {
	return func(mf *markFactory) {
		mf.c = withoutecc{}
	}
}

// WithGolay is an option that uses the binary Golay(23,12) code for error
// correction. Every 12 payload bits become a 23-bit code word and up to 3
// flipped bits per code word are corrected on extraction.
func WithGolay() Option {
	return func(mf *markFactory) {
		mf.c = golayCodec{}
	}
}
