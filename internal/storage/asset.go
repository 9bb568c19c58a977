package storage

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/pixil98/go-errors"
)

// CurrentVersion is written into every asset this package saves.
const CurrentVersion = 1

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type ValidatingSpec interface {
	Validate() error
}

// Asset is the on-disk envelope for one fixture record.
type Asset[T ValidatingSpec] struct {
	Version    uint   `json:"version"`
	Identifier string `json:"id"`
	Spec       T      `json:"spec"`
}

func (a *Asset[T]) Validate() error {
	el := errors.NewErrorList()

	if a.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	} else if a.Version > CurrentVersion {
		el.Add(fmt.Errorf("unsupported version %d", a.Version))
	}

	if a.Identifier == "" {
		el.Add(fmt.Errorf("id must be set"))
	} else if !identifierPattern.MatchString(a.Identifier) {
		el.Add(fmt.Errorf("id %q may only contain letters, digits, '-' and '_'", a.Identifier))
	}

	if v := reflect.ValueOf(a.Spec); !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		el.Add(fmt.Errorf("spec must be set"))
	} else {
		el.Add(a.Spec.Validate())
	}

	return el.Err()
}
