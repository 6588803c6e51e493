package parallel

import (
	"runtime"
	"sync"
)

// Range is a half-open row range [Start, End).
type Range struct {
	Start int
	End   int
}

// Split divides items into at most n contiguous ranges of near-equal size.
// Ranges never overlap and cover [0, items) in order.
func Split(items, n int) []Range {
	if items <= 0 || n <= 0 {
		return nil
	}
	if n > items {
		n = items
	}
	chunkSize := (items + n - 1) / n

	ranges := make([]Range, 0, n)
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges
}

// Parallelize divides items across the available CPU cores and executes fn
// for each range (start, end) concurrently.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, r := range Split(items, runtime.NumCPU()) {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(r.Start, r.End)
	}
	wg.Wait()
}

// ParallelizeWithThreshold parallelizes only when items exceeds the
// threshold; below it, fn runs sequentially over the whole range.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}

	Parallelize(items, fn)
}

// MapReduce runs fn over each of the given ranges concurrently and reduces
// the partial results in range order. The first error aborts the reduction.
func MapReduce[T any](ranges []Range, fn func(r Range) (T, error), reduce func(acc, partial T) T) (T, error) {
	var zero T
	if len(ranges) == 0 {
		return zero, nil
	}

	partials := make([]T, len(ranges))
	errs := make([]error, len(ranges))

	var wg sync.WaitGroup
	for i, r := range ranges {
		wg.Add(1)
		go func(i int, r Range) {
			defer wg.Done()
			partials[i], errs[i] = fn(r)
		}(i, r)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return zero, err
		}
	}

	acc := partials[0]
	for _, p := range partials[1:] {
		acc = reduce(acc, p)
	}
	return acc, nil
}
