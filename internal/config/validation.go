package config

import (
	"fmt"

	rwerrors "github.com/rewind-labs/rewind/pkg/rewind/v1/errors"
	hist "github.com/rewind-labs/rewind/pkg/rewind/v1/history"
)

// ValidateSessionStructure performs a logical validation of the parsed Session
// struct. It checks cross-field consistency rules that cannot be fully
// expressed in JSON Schema alone and returns all errors found.
func ValidateSessionStructure(s *Session) []error {
	var errs []error

	if s.History != nil {
		h := s.History
		if h.MaxHistory < 0 {
			errs = append(errs, rwerrors.NewValidationError("history: 'maxHistory' cannot be negative", nil))
		}
		if h.InitialPosition < 0 {
			errs = append(errs, rwerrors.NewValidationError("history: 'initialPosition' cannot be negative", nil))
		}
		if h.InitialPosition > len(h.InitialPatches) {
			errs = append(errs, rwerrors.NewValidationError(fmt.Sprintf("history: 'initialPosition' (%d) exceeds the number of 'initialPatches' (%d)", h.InitialPosition, len(h.InitialPatches)), nil))
		}
		for i, cs := range h.InitialPatches {
			for _, p := range append(append([]hist.Patch{}, cs.Forward...), cs.Inverse...) {
				if p.Key == "" {
					errs = append(errs, rwerrors.NewValidationError(fmt.Sprintf("history: initialPatches[%d] contains a patch with an empty key", i), nil))
				}
				if p.Op != hist.PatchSet && p.Op != hist.PatchDelete {
					errs = append(errs, rwerrors.NewValidationError(fmt.Sprintf("history: initialPatches[%d] contains invalid patch op '%s'", i, p.Op), nil))
				}
			}
		}
	}

	for i, step := range s.Updates {
		actions := 0
		if step.Set != nil {
			actions++
		}
		if step.Replace != nil {
			actions++
		}
		if actions != 1 {
			errs = append(errs, rwerrors.NewValidationError(fmt.Sprintf("updates[%d]: exactly one of 'set' or 'replace' must be specified", i), nil))
		}
	}

	for i, step := range s.Navigation {
		actions := 0
		if step.Back != nil {
			actions++
			if *step.Back < 1 {
				errs = append(errs, rwerrors.NewValidationError(fmt.Sprintf("navigation[%d]: 'back' must be at least 1", i), nil))
			}
		}
		if step.Forward != nil {
			actions++
			if *step.Forward < 1 {
				errs = append(errs, rwerrors.NewValidationError(fmt.Sprintf("navigation[%d]: 'forward' must be at least 1", i), nil))
			}
		}
		if step.Go != nil {
			actions++
			if *step.Go < 0 {
				errs = append(errs, rwerrors.NewValidationError(fmt.Sprintf("navigation[%d]: 'go' cannot be negative", i), nil))
			}
		}
		if step.Reset {
			actions++
		}
		if step.Archive {
			actions++
		}
		if actions != 1 {
			errs = append(errs, rwerrors.NewValidationError(fmt.Sprintf("navigation[%d]: exactly one of 'back', 'forward', 'go', 'reset' or 'archive' must be specified", i), nil))
		}
	}

	return errs
}
