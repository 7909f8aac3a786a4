package mark

import "errors"

var (
	ErrCorrupted = errors.New("encoded payload is corrupted")
)

// Codec transforms a payload before embedding and restores it after extraction.
type Codec interface {
	// Encode returns the bytes that are written into the image.
	Encode(payload []byte) ([]byte, error)
	// Decode restores the payload from extracted bytes.
	Decode(data []byte) ([]byte, error)
	// EncodedLen returns len(Encode(p)) for a payload of n bytes.
	EncodedLen(n int) int
	// Name identifies the codec in logs and reports.
	Name() string
}

// New returns the codec selected by opts. Without options the payload is
// embedded as-is.
func New(opts ...Option) Codec {
	mf := markFactory{c: withoutecc{}}
	for _, opt := range opts {
		opt(&mf)
	}
	return mf.c
}

// MaxPayload returns the largest payload length n with c.EncodedLen(n) <= limit,
// or -1 when even an empty payload does not fit.
func MaxPayload(c Codec, limit int) int {
	if c.EncodedLen(0) > limit {
		return -1
	}
	lo, hi := 0, limit
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if c.EncodedLen(mid) <= limit {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
