package navigation

import (
	"errors"
	"testing"
)

func TestReduceNavigate(t *testing.T) {
	tests := []struct {
		name   string
		state  State
		action Navigate
		want   State
	}{
		{
			name:   "Select property with tab",
			state:  Initial(),
			action: Navigate{Screen: ScreenProperty, PropertyID: "kallio-1", InitialTab: "lease"},
			want:   State{Screen: ScreenProperty, PropertyID: "kallio-1", InitialTab: "lease"},
		},
		{
			name:   "Letter keeps the selected property",
			state:  State{Screen: ScreenProperty, PropertyID: "kallio-1", InitialTab: "lease"},
			action: Navigate{Screen: ScreenLetter},
			want:   State{Screen: ScreenLetter, PropertyID: "kallio-1"},
		},
		{
			name:   "New id replaces the selection",
			state:  State{Screen: ScreenProperty, PropertyID: "kallio-1"},
			action: Navigate{Screen: ScreenProperty, PropertyID: "vallila-1"},
			want:   State{Screen: ScreenProperty, PropertyID: "vallila-1"},
		},
		{
			name:   "Top level screen keeps selection",
			state:  State{Screen: ScreenProperty, PropertyID: "kallio-1"},
			action: Navigate{Screen: ScreenTax},
			want:   State{Screen: ScreenTax, PropertyID: "kallio-1"},
		},
		{
			name:   "Zero state starts at dashboard",
			state:  State{},
			action: Navigate{Screen: ScreenExpenses},
			want:   State{Screen: ScreenExpenses},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reduce(tt.state, tt.action)
			if err != nil {
				t.Fatalf("Reduce() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Reduce() = %+v, expected %+v", got, tt.want)
			}
		})
	}
}

func TestReduceBack(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  State
	}{
		{"Letter to property", State{Screen: ScreenLetter, PropertyID: "kallio-1"}, State{Screen: ScreenProperty, PropertyID: "kallio-1"}},
		{"Property to list", State{Screen: ScreenProperty, PropertyID: "kallio-1", InitialTab: "lease"}, State{Screen: ScreenProperties}},
		{"Tax to dashboard", State{Screen: ScreenTax}, State{Screen: ScreenDashboard}},
		{"Dashboard stays", State{Screen: ScreenDashboard}, State{Screen: ScreenDashboard}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reduce(tt.state, Back{})
			if err != nil {
				t.Fatalf("Reduce() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Reduce() = %+v, expected %+v", got, tt.want)
			}
		})
	}
}

func TestReduceMissingProperty(t *testing.T) {
	for _, screen := range []Screen{ScreenProperty, ScreenLetter, ScreenListing} {
		t.Run(string(screen), func(t *testing.T) {
			got, err := Reduce(Initial(), Navigate{Screen: screen})
			if !errors.Is(err, ErrMissingProperty) {
				t.Errorf("Reduce() error = %v, expected ErrMissingProperty", err)
			}
			if got != Initial() {
				t.Errorf("Reduce() = %+v, expected fallback to dashboard", got)
			}
		})
	}
}

func TestReduceRejects(t *testing.T) {
	state := State{Screen: ScreenTax}
	got, err := Reduce(state, Navigate{Screen: "settings"})
	if !errors.Is(err, ErrUnknownScreen) {
		t.Errorf("Reduce() error = %v, expected ErrUnknownScreen", err)
	}
	if got != state {
		t.Errorf("state should be unchanged on error, got %+v", got)
	}

	if _, err := Reduce(state, nil); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Reduce(nil) error = %v, expected ErrUnknownAction", err)
	}
}

func TestRequestToAction(t *testing.T) {
	a, err := Request{Action: "navigate", Screen: ScreenLetter, PropertyID: "p"}.ToAction()
	if err != nil {
		t.Fatalf("ToAction() error = %v", err)
	}
	if n, ok := a.(Navigate); !ok || n.Screen != ScreenLetter || n.PropertyID != "p" {
		t.Errorf("unexpected action %+v", a)
	}

	if a, _ := (Request{Action: "back"}).ToAction(); a != (Back{}) {
		t.Errorf("expected Back action, got %+v", a)
	}
	if _, err := (Request{Action: "jump"}).ToAction(); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("ToAction() error = %v, expected ErrUnknownAction", err)
	}
}
