package ogg

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// StreamFilter reduces a physical page sequence to one logical stream by
// returning only pages with a matching serial number.
type StreamFilter struct {
	src        PageReader
	serial     uint32
	haveSerial bool
	strict     bool

	// OnForeign, if set, is called for every page skipped because it
	// belongs to another logical stream. It is not called in strict mode.
	OnForeign func(*Page)
}

// NewStreamFilter creates a filter that locks onto the serial number of the
// first page it sees. In strict mode a page from any other stream fails with
// ErrForeignPage; otherwise such pages are skipped.
func NewStreamFilter(src PageReader, strict bool) *StreamFilter {
	return &StreamFilter{src: src, strict: strict}
}

// NewStreamFilterSerial creates a filter for an explicit serial number.
func NewStreamFilterSerial(src PageReader, strict bool, serial uint32) *StreamFilter {
	return &StreamFilter{src: src, strict: strict, serial: serial, haveSerial: true}
}

// Serial returns the serial number being selected, if known yet.
func (f *StreamFilter) Serial() (uint32, bool) {
	return f.serial, f.haveSerial
}

// Next returns the next page of the selected logical stream.
func (f *StreamFilter) Next() (*Page, error) {
	for {
		page, err := f.src.Next()
		if err != nil {
			return nil, err
		}

		if !f.haveSerial {
			f.serial = page.Serial
			f.haveSerial = true
			return page, nil
		}
		if page.Serial == f.serial {
			return page, nil
		}
		if f.strict {
			return nil, withOffset(page.Offset, fmt.Errorf("%w: serial %d, expected %d",
				ErrForeignPage, page.Serial, f.serial))
		}
		if f.OnForeign != nil {
			f.OnForeign(page)
		}
	}
}

// Warning is a set of non-fatal stream problems found by a Validator.
type Warning uint8

// Warning kinds.
const (
	WarnMissingFirst    Warning = 1 << iota // first page not flagged first
	WarnMissingLast                         // stream ended without a page flagged last
	WarnUnexpectedFirst                     // non-first page flagged first
	WarnAfterLast                           // page found after the one flagged last
	WarnOutOfSequence                       // sequence number not contiguous
)

var warningErrors = []struct {
	w   Warning
	err error
}{
	{WarnMissingFirst, ErrMissingFirst},
	{WarnMissingLast, ErrMissingLast},
	{WarnUnexpectedFirst, ErrUnexpectedFirst},
	{WarnAfterLast, ErrAfterLast},
	{WarnOutOfSequence, ErrOutOfSequence},
}

// Has reports whether all warnings in x are set in w.
func (w Warning) Has(x Warning) bool {
	return w&x == x
}

func (w Warning) String() string {
	if w == 0 {
		return "none"
	}
	var parts []string
	for _, we := range warningErrors {
		if w.Has(we.w) {
			parts = append(parts, strings.TrimPrefix(we.err.Error(), "ogg: "))
		}
	}
	return strings.Join(parts, "; ")
}

// WarningError is returned when a WarningPolicy rejects a set of warnings.
type WarningError struct {
	Warnings Warning
	// Page the warnings pertain to; nil for WarnMissingLast.
	Page *Page
}

func (e *WarningError) Error() string {
	msg := "ogg: stream warning: " + e.Warnings.String()
	if e.Page != nil && e.Page.Offset >= 0 {
		msg += fmt.Sprintf(" (page %d at byte %d)", e.Page.Sequence, e.Page.Offset)
	}
	return msg
}

// Is matches the sentinel error of every warning in the set.
func (e *WarningError) Is(target error) bool {
	for _, we := range warningErrors {
		if e.Warnings.Has(we.w) && errors.Is(we.err, target) {
			return true
		}
	}
	return false
}

// WarningPolicy decides whether a set of warnings can be ignored.
// p is the page the warnings pertain to, or nil at end of stream.
// Returning false aborts parsing with a *WarningError.
type WarningPolicy func(w Warning, p *Page) bool

// FailOnWarnings is the default policy: no warning is ignored.
func FailOnWarnings(Warning, *Page) bool { return false }

// IgnoreWarnings ignores every warning.
func IgnoreWarnings(Warning, *Page) bool { return true }

// Validator checks the sequencing and flag invariants of a logical stream.
type Validator struct {
	src         PageReader
	policy      WarningPolicy
	first       bool
	sawLast     bool
	expectedSeq uint32
	done        bool
}

// NewValidator wraps a logical stream starting at its first page.
// A nil policy is FailOnWarnings.
func NewValidator(src PageReader, policy WarningPolicy) *Validator {
	if policy == nil {
		policy = FailOnWarnings
	}
	return &Validator{src: src, policy: policy, first: true}
}

// NewValidatorAt wraps a logical stream whose iteration starts mid-stream.
// nextSequence is the sequence number expected on the first page read.
func NewValidatorAt(src PageReader, policy WarningPolicy, nextSequence uint32) *Validator {
	v := NewValidator(src, policy)
	v.first = false
	v.expectedSeq = nextSequence
	return v
}

// Next returns the next page after checking it.
func (v *Validator) Next() (*Page, error) {
	var w Warning

	page, err := v.src.Next()
	if err != nil && err != io.EOF {
		return nil, err
	}

	if page != nil {
		if v.first {
			v.first = false
			if !page.IsFirst() {
				w |= WarnMissingFirst
			}
		} else {
			if page.IsFirst() {
				w |= WarnUnexpectedFirst
			}
			if page.Sequence != v.expectedSeq {
				w |= WarnOutOfSequence
			}
		}
		v.expectedSeq = page.Sequence + 1

		if page.IsLast() {
			v.sawLast = true
		} else if v.sawLast {
			w |= WarnAfterLast
		}
	} else if !v.sawLast && !v.done {
		w |= WarnMissingLast
	}
	if page == nil {
		v.done = true
	}

	if w != 0 && !v.policy(w, page) {
		return nil, &WarningError{Warnings: w, Page: page}
	}
	return page, err
}
