package kaprekar

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/kaprekar-explorer/pkg/collections"
)

// digitSlicePool recycles the small []Digit buffers used by DigitsOf and
// Step so the hot tracer loop doesn't allocate per call.
var digitSlicePool = collections.NewSlicePool[Digit](16)

// DigitsOf splits num into exactly digits base-b digits, most significant
// first, zero-padded. It returns ErrOutOfRange if num needs more than
// digits digits to represent in the given base.
func DigitsOf(num Value, digits int, base int) ([]Digit, error) {
	bufPtr := digitSlicePool.Get()
	buf := (*bufPtr)[:0]

	b := uint64(base)
	n := num
	for n > 0 {
		buf = append(buf, Digit(n%b))
		n /= b
	}
	if len(buf) > digits {
		*bufPtr = buf[:0]
		digitSlicePool.Put(bufPtr)
		return nil, fmt.Errorf("%w: %d needs more than %d digits in base %d", ErrOutOfRange, num, digits, base)
	}

	out := make([]Digit, digits)
	// buf holds digits least-significant-first; reverse into out, which is
	// already zero-padded on the left by virtue of make's zero value.
	for i, d := range buf {
		out[digits-1-i] = d
	}

	*bufPtr = buf[:0]
	digitSlicePool.Put(bufPtr)
	return out, nil
}

// FromDigits combines digits (most significant first) into a value in the
// given base.
func FromDigits(digits []Digit, base int) Value {
	var result Value
	b := Value(base)
	for _, d := range digits {
		result = result*b + Value(d)
	}
	return result
}

// Step performs one iteration of the Kaprekar routine: split num into
// digits, form the descending and ascending rearrangements, and return
// their difference.
func Step(num Value, digits int, base int) (Value, error) {
	ds, err := DigitsOf(num, digits, base)
	if err != nil {
		return 0, err
	}

	descPtr := digitSlicePool.Get()
	desc := append((*descPtr)[:0], ds...)
	sort.Slice(desc, func(i, j int) bool { return desc[i] > desc[j] })
	maxVal := FromDigits(desc, base)
	*descPtr = desc[:0]
	digitSlicePool.Put(descPtr)

	ascPtr := digitSlicePool.Get()
	asc := append((*ascPtr)[:0], ds...)
	sort.Slice(asc, func(i, j int) bool { return asc[i] < asc[j] })
	minVal := FromDigits(asc, base)
	*ascPtr = asc[:0]
	digitSlicePool.Put(ascPtr)

	return maxVal - minVal, nil
}

// MultisetCount returns C(base+digits-1, digits), the number of distinct
// digit multisets for the given pair, without enumerating them.
func MultisetCount(digits int, base int) (uint64, error) {
	c := binomial(base+digits-1, digits)
	if !c.IsUint64() {
		return 0, fmt.Errorf("%w: multiset count for base=%d digits=%d", ErrOverflow, base, digits)
	}
	return c.Uint64(), nil
}

// Multiset is one equivalence class: a non-decreasing tuple of digits and
// the number of distinct digit-strings (permutations) sharing that
// multiset.
type Multiset struct {
	Digits []Digit
	Count  uint64
}

// MultisetIterator walks digit multisets for a (base, digits) pair over a
// contiguous index range, with O(base+digits) random-access Skip — it
// never has to materialize or scan past the multisets it skips.
type MultisetIterator struct {
	base, digits int
	idx, end     uint64
}

// Multisets returns an iterator over every multiset for the pair.
func Multisets(digits int, base int) (*MultisetIterator, error) {
	total, err := MultisetCount(digits, base)
	if err != nil {
		return nil, err
	}
	return MultisetsRange(digits, base, 0, total)
}

// MultisetsRange returns an iterator over the contiguous index range
// [start, end) of multisets for the pair, in the same lexicographic order
// Python's itertools.combinations_with_replacement(range(base), digits)
// produces.
func MultisetsRange(digits int, base int, start, end uint64) (*MultisetIterator, error) {
	total, err := MultisetCount(digits, base)
	if err != nil {
		return nil, err
	}
	if start > end || end > total {
		return nil, fmt.Errorf("kaprekar: multiset range [%d,%d) out of bounds (total %d)", start, end, total)
	}
	return &MultisetIterator{base: base, digits: digits, idx: start, end: end}, nil
}

// Skip advances the iterator by n positions without generating the
// intervening multisets.
func (it *MultisetIterator) Skip(n uint64) {
	it.idx += n
}

// Len returns the number of multisets remaining in the iterator.
func (it *MultisetIterator) Len() uint64 {
	if it.idx >= it.end {
		return 0
	}
	return it.end - it.idx
}

// Next returns the multiset at the current index and advances, or ok=false
// once the range is exhausted.
func (it *MultisetIterator) Next() (Multiset, bool) {
	if it.idx >= it.end {
		return Multiset{}, false
	}
	combo := unrankMultiset(it.base, it.digits, it.idx)
	count := multinomialCount(it.digits, combo)
	it.idx++
	return Multiset{Digits: combo, Count: count}, true
}

// unrankMultiset reconstructs the idx-th (0-based) digit multiset in the
// same order as Python's combinations_with_replacement(range(base),
// digits). It does so via the classic bijection to ordinary combinations:
// choosing `digits` values with repetition from `base` options in lex
// order corresponds to choosing `digits` values without repetition from
// {0,...,base+digits-2} in lex order, then subtracting the position index
// from each chosen value.
func unrankMultiset(base, digits int, idx uint64) []Digit {
	n := base + digits - 1
	rank := new(big.Int).SetUint64(idx)
	combo := unrankCombination(n, digits, rank)
	out := make([]Digit, digits)
	for i, c := range combo {
		out[i] = Digit(c - i)
	}
	return out
}

// unrankCombination returns the rank-th (0-based, lexicographic) r-element
// combination of {0,...,n-1}. Each outer step picks the next element by
// walking candidates forward from the previous pick, so work performed
// across all r steps is bounded by n, not by rank.
func unrankCombination(n, r int, rank *big.Int) []int {
	out := make([]int, 0, r)
	remainingRank := new(big.Int).Set(rank)
	x := 0
	for picked := 0; picked < r; picked++ {
		remainingR := r - picked
		for ; x < n; x++ {
			cnt := binomial(n-x-1, remainingR-1)
			if remainingRank.Cmp(cnt) < 0 {
				out = append(out, x)
				x++
				break
			}
			remainingRank.Sub(remainingRank, cnt)
		}
	}
	return out
}

// binomial computes C(n, k) as a big.Int, returning 0 for invalid inputs.
func binomial(n, k int) *big.Int {
	if k < 0 || n < 0 || k > n {
		return big.NewInt(0)
	}
	if k > n-k {
		k = n - k
	}
	result := big.NewInt(1)
	num := big.NewInt(0)
	den := big.NewInt(0)
	for i := 0; i < k; i++ {
		num.SetInt64(int64(n - i))
		result.Mul(result, num)
		den.SetInt64(int64(i + 1))
		result.Div(result, den)
	}
	return result
}

// multinomialCount returns digits! / prod(freq!) for the given sorted
// digit tuple, the number of distinct digit-strings sharing this
// multiset.
func multinomialCount(digits int, combo []Digit) uint64 {
	freq := make(map[Digit]int, digits)
	for _, d := range combo {
		freq[d]++
	}
	result := factorial(digits)
	for _, f := range freq {
		result.Quo(result, factorial(f))
	}
	return result.Uint64()
}

func factorial(n int) *big.Int {
	result := big.NewInt(1)
	for i := 2; i <= n; i++ {
		result.Mul(result, big.NewInt(int64(i)))
	}
	return result
}
