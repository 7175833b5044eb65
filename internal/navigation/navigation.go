// Package navigation models the dashboard's view state as a value and the
// transitions between screens as a reducer.
package navigation

import (
	"errors"
	"fmt"
)

var (
	ErrMissingProperty = errors.New("screen requires a property")
	ErrUnknownScreen   = errors.New("unknown screen")
	ErrUnknownAction   = errors.New("unknown navigation action")
)

// Screen names one view of the dashboard.
type Screen string

const (
	ScreenDashboard  Screen = "dashboard"
	ScreenProperties Screen = "properties"
	ScreenProperty   Screen = "property"
	ScreenLetter     Screen = "letter"
	ScreenLeases     Screen = "leases"
	ScreenExpenses   Screen = "expenses"
	ScreenTax        Screen = "tax"
	ScreenAlerts     Screen = "alerts"
	ScreenMessages   Screen = "messages"
	ScreenProfile    Screen = "profile"
	ScreenListing    Screen = "listing"
)

// Valid reports whether s is a known screen.
func (s Screen) Valid() bool {
	switch s {
	case ScreenDashboard, ScreenProperties, ScreenProperty, ScreenLetter, ScreenLeases,
		ScreenExpenses, ScreenTax, ScreenAlerts, ScreenMessages, ScreenProfile, ScreenListing:
		return true
	}
	return false
}

// NeedsProperty reports whether the screen is about one selected property.
func (s Screen) NeedsProperty() bool {
	return s == ScreenProperty || s == ScreenLetter || s == ScreenListing
}

// State is the complete view state. The zero value is not valid; use Initial.
type State struct {
	Screen     Screen `json:"screen"`
	PropertyID string `json:"propertyId,omitempty"`
	InitialTab string `json:"initialTab,omitempty"`
}

// Initial returns the state the app starts in.
func Initial() State {
	return State{Screen: ScreenDashboard}
}

// Action is a navigation event. It is either Navigate or Back.
type Action interface {
	apply(State) State
}

// Navigate moves to a screen. An empty PropertyID keeps the current selection;
// InitialTab always replaces the previous one.
type Navigate struct {
	Screen     Screen
	PropertyID string
	InitialTab string
}

func (n Navigate) apply(s State) State {
	if n.PropertyID != "" {
		s.PropertyID = n.PropertyID
	}
	s.InitialTab = n.InitialTab
	s.Screen = n.Screen
	return s
}

// Back returns to the parent screen.
type Back struct{}

func (Back) apply(s State) State {
	switch s.Screen {
	case ScreenLetter:
		s.Screen = ScreenProperty
	case ScreenProperty:
		return State{Screen: ScreenProperties}
	default:
		s.Screen = ScreenDashboard
	}
	return s
}

// Reduce applies action to state. A screen that needs a property but has
// none falls back to the dashboard and reports ErrMissingProperty.
func Reduce(state State, action Action) (State, error) {
	if action == nil {
		return state, ErrUnknownAction
	}
	if n, ok := action.(Navigate); ok && !n.Screen.Valid() {
		return state, fmt.Errorf("%w: %q", ErrUnknownScreen, n.Screen)
	}
	if state.Screen == "" {
		state = Initial()
	}

	next := action.apply(state)
	if next.Screen.NeedsProperty() && next.PropertyID == "" {
		return State{Screen: ScreenDashboard}, fmt.Errorf("%s: %w", next.Screen, ErrMissingProperty)
	}
	return next, nil
}

// Request is the wire form of a transition: the current state plus an action.
type Request struct {
	State      State  `json:"state"`
	Action     string `json:"action"`
	Screen     Screen `json:"screen,omitempty"`
	PropertyID string `json:"propertyId,omitempty"`
	InitialTab string `json:"initialTab,omitempty"`
}

// ToAction converts the wire action name ("navigate" or "back").
func (r Request) ToAction() (Action, error) {
	switch r.Action {
	case "navigate":
		return Navigate{Screen: r.Screen, PropertyID: r.PropertyID, InitialTab: r.InitialTab}, nil
	case "back":
		return Back{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, r.Action)
	}
}
