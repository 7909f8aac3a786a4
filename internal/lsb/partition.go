package lsb

// span is a half-open index range [start, end).
type span struct {
	start, end int
}

// partition splits [0, n) into at most workers contiguous, non-empty spans of
// near equal size. workers < 1 is treated as 1.
func partition(n, workers int) []span {
	if n <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	spans := make([]span, 0, workers)
	size, rest := n/workers, n%workers
	start := 0
	for i := range workers {
		end := start + size
		if i < rest {
			end++
		}
		spans = append(spans, span{start, end})
		start = end
	}
	return spans
}
