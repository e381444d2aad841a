package planner

import "github.com/rahul/pathwise/internal/goal"

var fallbackPlan = []goal.StepDraft{
	{
		Title:       "Research and Planning",
		Description: "Research the topic and create a learning plan",
		Duration:    "1 hour",
		Priority:    goal.PriorityHigh,
		Order:       1,
	},
	{
		Title:       "Learn Fundamentals",
		Description: "Study the basic concepts and principles",
		Duration:    "3 hours",
		Priority:    goal.PriorityHigh,
		Order:       2,
	},
	{
		Title:       "Practice Exercises",
		Description: "Complete hands-on exercises and examples",
		Duration:    "2 hours",
		Priority:    goal.PriorityMedium,
		Order:       3,
	},
	{
		Title:       "Build a Project",
		Description: "Apply knowledge by building a practical project",
		Duration:    "4 hours",
		Priority:    goal.PriorityMedium,
		Order:       4,
	},
	{
		Title:       "Review and Refine",
		Description: "Review what you've learned and identify areas for improvement",
		Duration:    "1 hour",
		Priority:    goal.PriorityLow,
		Order:       5,
	},
}

// Fallback returns a fresh copy of the generic five step plan.
func Fallback() []goal.StepDraft {
	out := make([]goal.StepDraft, len(fallbackPlan))
	copy(out, fallbackPlan)
	return out
}
