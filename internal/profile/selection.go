package profile

import (
	"fmt"

	"github.com/cleared-dev/stmtconv/internal/codes"
)

// State is the stage of profile selection for a run.
type State int

const (
	NoBankSelected State = iota
	BankSelected
	ProfileLoaded
)

func (s State) String() string {
	switch s {
	case NoBankSelected:
		return "no bank selected"
	case BankSelected:
		return "bank selected"
	case ProfileLoaded:
		return "profile loaded"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ConfigurationError means a run cannot start with the chosen setup.
type ConfigurationError struct {
	Profile string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Profile == "" {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration for %s: %s", e.Profile, e.Reason)
}

// Loaded is a profile together with the code table it runs against.
// Both are read-only for the duration of a run.
type Loaded struct {
	Profile *Profile
	Codes   *codes.Table
}

// Selection walks NoBankSelected -> BankSelected -> ProfileLoaded.
// Selecting another bank at any point goes back to BankSelected.
type Selection struct {
	registry *Registry
	state    State
	profile  *Profile
	loaded   Loaded
}

// NewSelection starts a selection over the profiles in reg.
func NewSelection(reg *Registry) *Selection {
	return &Selection{registry: reg}
}

// State returns the current state.
func (s *Selection) State() State {
	return s.state
}

// Select chooses a bank. An unknown name leaves the state unchanged.
func (s *Selection) Select(name string) error {
	p := s.registry.Get(name)
	if p == nil {
		return &ConfigurationError{Reason: fmt.Sprintf("unknown bank %q (available: %v)", name, s.registry.Names())}
	}
	s.profile = p
	s.loaded = Loaded{}
	s.state = BankSelected
	return nil
}

// Load resolves the selected profile against a code table, which may be
// nil for profiles that do not require one. Profiles that do not use a
// table get none, whatever was passed.
func (s *Selection) Load(table *codes.Table) (Loaded, error) {
	if s.state == NoBankSelected {
		return Loaded{}, &ConfigurationError{Reason: "no bank selected"}
	}
	if s.profile.RequiresLookup && table == nil {
		return Loaded{}, &ConfigurationError{
			Profile: s.profile.Name,
			Reason:  "a master code file is required",
		}
	}
	if !s.profile.UsesLookup() {
		table = nil
	}
	s.loaded = Loaded{Profile: s.profile, Codes: table}
	s.state = ProfileLoaded
	return s.loaded, nil
}

// Loaded returns the loaded profile once the selection is complete.
func (s *Selection) Loaded() (Loaded, bool) {
	return s.loaded, s.state == ProfileLoaded
}
