package scraper

import (
	"errors"
	"fmt"

	"github.com/aluiziolira/go-scrape-parts/browser"
	"github.com/aluiziolira/go-scrape-parts/parser"
)

// Fault labels used in metrics and run statistics.
const (
	faultStructuralMismatch = "structural_mismatch"
	faultNavigationTimeout  = "navigation_timeout"
	faultOther              = "other"
)

// ErrStructuralMismatch indicates a page whose detail and marker collections
// cannot be paired. The page contributes no items.
type ErrStructuralMismatch struct {
	URL   string
	Group string
	Err   *parser.MismatchError
}

func (e ErrStructuralMismatch) Error() string {
	return fmt.Errorf("structural_mismatch at %s for part group %q: %w", e.URL, e.Group, e.Err).Error()
}

func (e ErrStructuralMismatch) Unwrap() error {
	return e.Err
}

// ErrNavigationTimeout indicates an expected element never attached to a
// page. Only that page's step is skipped.
type ErrNavigationTimeout struct {
	Err error
}

func (e ErrNavigationTimeout) Error() string {
	return fmt.Errorf("navigation_timeout: %w", e.Err).Error()
}

func (e ErrNavigationTimeout) Unwrap() error {
	return e.Err
}

// pageScoped converts recoverable page faults into their typed errors and
// reports whether err is one. Anything else aborts the run.
func pageScoped(err error) (error, bool) {
	if err == nil {
		return nil, false
	}
	var mismatch ErrStructuralMismatch
	if errors.As(err, &mismatch) {
		return err, true
	}
	var timeout ErrNavigationTimeout
	if errors.As(err, &timeout) {
		return err, true
	}
	if browser.IsWaitTimeout(err) {
		return ErrNavigationTimeout{Err: err}, true
	}
	return err, false
}

func faultLabel(err error) string {
	var mismatch ErrStructuralMismatch
	if errors.As(err, &mismatch) {
		return faultStructuralMismatch
	}
	var timeout ErrNavigationTimeout
	if errors.As(err, &timeout) || browser.IsWaitTimeout(err) {
		return faultNavigationTimeout
	}
	return faultOther
}
