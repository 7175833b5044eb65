// Package listing describes the re-letting pipeline of a property: its
// steps, the candidate shortlist and the showing calendar.
package listing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/pkg/constants"
	"github.com/shopspring/decimal"
)

var ErrNoListing = errors.New("property has no listing")

// Step is one stage of the letting pipeline.
type Step struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var steps = []Step{
	{Key: "ilmoitus", Label: "Ilmoitus"},
	{Key: "hakijat", Label: "Yhteydenotot"},
	{Key: "naytot", Label: "Näytöt"},
	{Key: "valinta", Label: "Valinta"},
	{Key: "sopimus", Label: "Sopimus"},
}

// finalStep is reached by signing, never selected directly.
const finalStep = "sopimus"

// Steps returns the pipeline in order.
func Steps() []Step {
	return append([]Step(nil), steps...)
}

// ActiveStepIndex returns the position of key in the pipeline, or -1.
func ActiveStepIndex(key string) int {
	for i, s := range steps {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// Selectable reports whether a tab can be opened directly.
func Selectable(key string) bool {
	return ActiveStepIndex(key) >= 0 && key != finalStep
}

// StepState is how a step is drawn relative to the active one.
type StepState string

const (
	StepCompleted StepState = "completed"
	StepActive    StepState = "active"
	StepFuture    StepState = "future"
)

// StepView is a pipeline step with its state.
type StepView struct {
	Step
	State StepState `json:"state"`
}

// Progress returns each step's state and how far along the pipeline the
// active step is, in percent of the distance between the first and last step.
func Progress(active string) ([]StepView, int) {
	idx := ActiveStepIndex(active)
	out := make([]StepView, 0, len(steps))
	for i, s := range steps {
		state := StepFuture
		switch {
		case i < idx:
			state = StepCompleted
		case i == idx:
			state = StepActive
		}
		out = append(out, StepView{Step: s, State: state})
	}
	if idx < 0 {
		idx = 0
	}
	return out, idx * 100 / (len(steps) - 1)
}

// ScoreBand groups candidate scores for display.
type ScoreBand string

const (
	BandHigh   ScoreBand = "high"
	BandMedium ScoreBand = "medium"
	BandLow    ScoreBand = "low"
)

// Band classifies a score: 80 and up is high, 60 and up medium.
func Band(score int) ScoreBand {
	switch {
	case score >= 80:
		return BandHigh
	case score >= 60:
		return BandMedium
	default:
		return BandLow
	}
}

// incomeRatioTarget is the income to rent multiple considered comfortable.
var incomeRatioTarget = decimal.NewFromInt(3)

// Entry is a shortlisted candidate with the figures used to compare them.
type Entry struct {
	ledger.Candidate
	IncomeRatio      decimal.Decimal `json:"incomeRatio"`
	MeetsIncomeRatio bool            `json:"meetsIncomeRatio"`
	Band             ScoreBand       `json:"band"`
}

// Shortlist keeps candidates scoring at least 78, best first. Ties keep their
// ledger order. The income ratio is against rent.
func Shortlist(candidates []ledger.Candidate, rent decimal.Decimal) []Entry {
	var kept []ledger.Candidate
	for _, c := range candidates {
		if c.Score >= constants.ShortlistMinimumScore {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })

	out := make([]Entry, 0, len(kept))
	for _, c := range kept {
		ratio := decimal.Zero
		if rent.IsPositive() {
			ratio = c.Income.Div(rent).Round(1)
		}
		out = append(out, Entry{
			Candidate:        c,
			IncomeRatio:      ratio,
			MeetsIncomeRatio: ratio.GreaterThanOrEqual(incomeRatioTarget),
			Band:             Band(c.Score),
		})
	}
	return out
}

// Showing statuses in calendar order.
const (
	ShowingCompleted = "completed"
	ShowingUpcoming  = "upcoming"
	ShowingConfirmed = "confirmed"
)

// ShowingGroup is the showings sharing one status.
type ShowingGroup struct {
	Status   string           `json:"status"`
	Showings []ledger.Showing `json:"showings"`
}

// GroupShowings groups showings by status: completed, upcoming, confirmed,
// then any other status in order of first appearance. Within a group the
// showings are sorted by date and time.
func GroupShowings(showings []ledger.Showing) []ShowingGroup {
	order := []string{ShowingCompleted, ShowingUpcoming, ShowingConfirmed}
	groups := make(map[string][]ledger.Showing)
	for _, s := range showings {
		if _, seen := groups[s.Status]; !seen && s.Status != ShowingCompleted && s.Status != ShowingUpcoming && s.Status != ShowingConfirmed {
			order = append(order, s.Status)
		}
		groups[s.Status] = append(groups[s.Status], s)
	}

	var out []ShowingGroup
	for _, status := range order {
		group, ok := groups[status]
		if !ok {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			if !group[i].Date.Equal(group[j].Date) {
				return group[i].Date.Before(group[j].Date)
			}
			return group[i].Time < group[j].Time
		})
		out = append(out, ShowingGroup{Status: status, Showings: group})
	}
	return out
}

// View is the complete listing screen of a property.
type View struct {
	PropertyID string          `json:"propertyId"`
	Address    string          `json:"address"`
	Stage      string          `json:"stage"`
	Steps      []StepView      `json:"steps"`
	Progress   int             `json:"progress"`
	Candidates int             `json:"candidates"`
	Shortlist  []Entry         `json:"shortlist"`
	Showings   []ShowingGroup  `json:"showings"`
	Rent       decimal.Decimal `json:"rent"`
}

// Build assembles the listing view. tab overrides the stored stage when it
// names a selectable step.
func Build(l *ledger.Ledger, propertyID, tab string) (View, error) {
	p, ok := l.Property(propertyID)
	if !ok {
		return View{}, fmt.Errorf("listing %q: %w", propertyID, ledger.ErrUnknownPropertyReference)
	}
	lst, ok := l.ListingFor(propertyID)
	if !ok {
		return View{}, fmt.Errorf("%s: %w", propertyID, ErrNoListing)
	}

	stage := lst.Stage
	if Selectable(tab) {
		stage = tab
	}
	stepViews, progress := Progress(stage)

	return View{
		PropertyID: p.ID,
		Address:    p.Address,
		Stage:      stage,
		Steps:      stepViews,
		Progress:   progress,
		Candidates: len(lst.Candidates),
		Shortlist:  Shortlist(lst.Candidates, p.CurrentRent),
		Showings:   GroupShowings(lst.Showings),
		Rent:       p.CurrentRent,
	}, nil
}
