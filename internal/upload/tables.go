// Package upload handles bulk CSV updates: the table allow-list, the local
// preview and the hand-off of the whole file to the backend.
package upload

import (
	"errors"
	"fmt"
)

// Tables is the fixed set of backend tables a CSV may target. "alumini" is
// the backend's own spelling and is accepted alongside "alumni".
var Tables = []string{
	"student",
	"course",
	"department",
	"alumni",
	"alumini",
	"designation",
	"employee",
	"employment_history",
	"additional_roles",
	"externship_info",
}

// ErrUnknownTable is returned for a table outside Tables.
var ErrUnknownTable = errors.New("unknown upload table")

// ValidTable reports whether name is in the allow-list.
func ValidTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

func checkTable(name string) error {
	if !ValidTable(name) {
		return fmt.Errorf("%w %q", ErrUnknownTable, name)
	}
	return nil
}
