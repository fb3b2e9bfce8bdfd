package page

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// MaxLimit is the largest page the exchange serves.
const MaxLimit = 100

// ErrNoBound is returned when Args sets none of before, after and limit.
var ErrNoBound = errors.New("page args: one of before, after or limit is required")

// Args selects a page of a list endpoint. A nil *Args means "first page,
// default size"; a non-nil Args must bound the page.
type Args struct {
	Before int64
	After  int64
	Limit  int
}

// Validate checks that at least one bound is given.
func (a Args) Validate() error {
	if a.Before == 0 && a.After == 0 && a.Limit == 0 {
		return ErrNoBound
	}
	if a.Before < 0 || a.After < 0 {
		return fmt.Errorf("page args: negative cursor (before=%d, after=%d)", a.Before, a.After)
	}
	if a.Limit < 0 || a.Limit > MaxLimit {
		return fmt.Errorf("page args: limit %d out of range 1..%d", a.Limit, MaxLimit)
	}
	return nil
}

// Values encodes the set bounds as query values.
func (a Args) Values() url.Values {
	v := url.Values{}
	if a.Before != 0 {
		v.Set("before", strconv.FormatInt(a.Before, 10))
	}
	if a.After != 0 {
		v.Set("after", strconv.FormatInt(a.After, 10))
	}
	if a.Limit != 0 {
		v.Set("limit", strconv.Itoa(a.Limit))
	}
	return v
}

// Encode validates a (if non-nil) and merges it into q.
func Encode(a *Args, q url.Values) error {
	if a == nil {
		return nil
	}
	if err := a.Validate(); err != nil {
		return err
	}
	for k, vs := range a.Values() {
		q[k] = vs
	}
	return nil
}

// Cursor is the pagination state returned with a page, taken from the
// CB-BEFORE and CB-AFTER headers. Empty fields mean there is no page in
// that direction.
type Cursor struct {
	Before string
	After  string
}

// Next returns Args for the page after this one, false if there is none.
func (c Cursor) Next(limit int) (Args, bool) {
	if c.After == "" {
		return Args{}, false
	}
	after, err := strconv.ParseInt(c.After, 10, 64)
	if err != nil {
		return Args{}, false
	}
	return Args{After: after, Limit: limit}, true
}

// Prev returns Args for the page before this one, false if there is none.
func (c Cursor) Prev(limit int) (Args, bool) {
	if c.Before == "" {
		return Args{}, false
	}
	before, err := strconv.ParseInt(c.Before, 10, 64)
	if err != nil {
		return Args{}, false
	}
	return Args{Before: before, Limit: limit}, true
}
