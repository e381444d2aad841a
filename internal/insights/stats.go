package insights

import (
	"math"

	"github.com/rahul/pathwise/internal/goal"
)

// Stats summarizes one owner's goals.
type Stats struct {
	TotalTasks            int `json:"totalTasks"`
	CompletedTasks        int `json:"completedTasks"`
	ActiveTasks           int `json:"activeTasks"`
	TotalSubtasks         int `json:"totalSubtasks"`
	CompletedSubtasks     int `json:"completedSubtasks"`
	CompletionRate        int `json:"completionRate"`
	SubtaskCompletionRate int `json:"subtaskCompletionRate"`
}

// Summarize computes Stats over the full goal collection.
func Summarize(goals []goal.Goal) Stats {
	var s Stats
	s.TotalTasks = len(goals)
	for i := range goals {
		if goals[i].Completed {
			s.CompletedTasks++
		}
		s.TotalSubtasks += len(goals[i].Steps)
		s.CompletedSubtasks += goals[i].CompletedSteps()
	}
	s.ActiveTasks = s.TotalTasks - s.CompletedTasks
	s.CompletionRate = percent(s.CompletedTasks, s.TotalTasks)
	s.SubtaskCompletionRate = percent(s.CompletedSubtasks, s.TotalSubtasks)
	return s
}

// percent rounds half up; a zero denominator yields 0.
func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(part)/float64(total)*100 + 0.5))
}

// Progress is the unrounded share of completed steps, 0 for an empty plan.
func Progress(g *goal.Goal) float64 {
	if len(g.Steps) == 0 {
		return 0
	}
	return float64(g.CompletedSteps()) / float64(len(g.Steps)) * 100
}
