package insights

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rahul/pathwise/internal/goal"
)

const (
	minutesPerHour = 60
	// Planning assumes an eight hour working day.
	minutesPerDay = 8 * minutesPerHour
)

var quantityRe = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// Insights bundles the per-goal figures shown next to a plan.
type Insights struct {
	Progress          float64               `json:"progressPercentage"`
	StepsRemaining    int                   `json:"stepsRemaining"`
	RemainingMinutes  float64               `json:"remainingMinutes"`
	TimeRemaining     string                `json:"timeRemaining"`
	PriorityBreakdown map[goal.Priority]int `json:"priorityBreakdown"`
	NextStep          *goal.Step            `json:"nextStep"`
}

// For computes the insights of one goal.
func For(g *goal.Goal) Insights {
	remaining := RemainingMinutes(g)
	return Insights{
		Progress:          Progress(g),
		StepsRemaining:    len(g.Steps) - g.CompletedSteps(),
		RemainingMinutes:  remaining,
		TimeRemaining:     FormatRemaining(remaining),
		PriorityBreakdown: PriorityBreakdown(g),
		NextStep:          NextStep(g),
	}
}

// NextStep recommends the incomplete step with the highest priority, the
// lowest order winning ties. It returns nil when nothing is left.
func NextStep(g *goal.Goal) *goal.Step {
	var pending []*goal.Step
	for i := range g.Steps {
		if !g.Steps[i].Completed {
			pending = append(pending, &g.Steps[i])
		}
	}
	if len(pending) == 0 {
		return nil
	}

	sort.SliceStable(pending, func(i, j int) bool {
		ri, rj := pending[i].Priority.Rank(), pending[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return pending[i].Order < pending[j].Order
	})
	return pending[0]
}

// DurationMinutes converts a free-text estimate such as "2 hours" into
// minutes. Text without an hour, minute or day unit counts as zero.
func DurationMinutes(duration string) float64 {
	d := strings.ToLower(duration)

	var factor float64
	switch {
	case strings.Contains(d, "hour"):
		factor = minutesPerHour
	case strings.Contains(d, "minute"):
		factor = 1
	case strings.Contains(d, "day"):
		factor = minutesPerDay
	default:
		return 0
	}

	m := quantityRe.FindString(d)
	if m == "" {
		return 0
	}
	q, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return q * factor
}

// RemainingMinutes sums the estimates of all incomplete steps.
func RemainingMinutes(g *goal.Goal) float64 {
	var total float64
	for _, s := range g.Steps {
		if !s.Completed {
			total += DurationMinutes(s.Duration)
		}
	}
	return total
}

// FormatRemaining renders a minute count the way the dashboard shows it.
func FormatRemaining(minutes float64) string {
	switch {
	case minutes == 0:
		return "Complete!"
	case minutes < minutesPerHour:
		return fmt.Sprintf("%d minutes", round(minutes))
	case minutes < minutesPerDay:
		return fmt.Sprintf("%d hours", round(minutes/minutesPerHour))
	default:
		return fmt.Sprintf("%d days", round(minutes/minutesPerDay))
	}
}

// PriorityBreakdown counts incomplete steps per priority.
func PriorityBreakdown(g *goal.Goal) map[goal.Priority]int {
	out := make(map[goal.Priority]int)
	for _, s := range g.Steps {
		if !s.Completed {
			out[s.Priority]++
		}
	}
	return out
}

func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
