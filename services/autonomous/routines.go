package autonomous

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// DefaultRoutine is the routine run when none is selected.
const DefaultRoutine = "default"

// Routines are the registered routines by name.
type Routines map[string]Routine

// Register adds r, replacing any routine of the same name.
func (rs Routines) Register(r Routine) error {
	if r.Name == "" {
		return errors.New("routine needs a name")
	}
	rs[r.Name] = r
	return nil
}

// Lookup returns the named routine.
func (rs Routines) Lookup(name string) (Routine, error) {
	if name == "" {
		name = DefaultRoutine
	}
	r, ok := rs[name]
	if !ok {
		return Routine{}, errors.Errorf("no routine named %q, have %v", name, rs.Names())
	}
	return r, nil
}

// Names returns the registered routine names, sorted.
func (rs Routines) Names() []string {
	names := lo.Keys(rs)
	sort.Strings(names)
	return names
}

// Default returns the built-in routines. "default" drives forward at 25 with the intake running
// for eight seconds; "none" does nothing.
func Default() Routines {
	return Routines{
		DefaultRoutine: {
			Name: DefaultRoutine,
			Steps: []Step{
				IntakeStep{Speed: 100},
				TimedDriveStep{Left: 25, Right: 25, Duration: 8 * time.Second},
			},
		},
		"none": {Name: "none"},
	}
}
