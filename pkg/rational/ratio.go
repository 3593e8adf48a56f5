package rational

import (
	"fmt"
	"strconv"
)

// Ratio is a numerator/denominator pair that is not necessarily in lowest
// terms. It records intermediate results before normalization and fractions
// expressed over a chosen denominator, such as LCD equivalents. Den is
// positive for every Ratio the package returns.
type Ratio struct {
	Num int64 `json:"num" yaml:"num"`
	Den int64 `json:"den" yaml:"den"`
}

// Value normalizes r through Make.
func (r Ratio) Value() (Value, error) {
	return Make(r.Num, r.Den)
}

// IsReduced reports whether r is already in canonical form.
func (r Ratio) IsReduced() bool {
	v, err := r.Value()
	return err == nil && v.Num() == r.Num && v.Den() == r.Den
}

// String formats r as "num/den", keeping the denominator even when it is 1.
func (r Ratio) String() string {
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10) + "/1"
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}
