package parser

import (
	"fmt"

	"github.com/aluiziolira/go-scrape-parts/browser"
)

// MismatchError reports detail and marker collections of different sizes.
type MismatchError struct {
	Details int
	Markers int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("part detail element count (%d) does not match part number element count (%d)", e.Details, e.Markers)
}

// Validate reports whether details and markers can be paired by position.
// Only the counts are compared; query order is trusted for pairing.
func Validate(details, markers []browser.Element) bool {
	return len(details) == len(markers)
}

// CheckPair is Validate returning a MismatchError on failure.
func CheckPair(details, markers []browser.Element) error {
	if !Validate(details, markers) {
		return &MismatchError{Details: len(details), Markers: len(markers)}
	}
	return nil
}
