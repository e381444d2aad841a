package planner

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const goalPlaceholder = "{{goal}}"

const defaultPlanPrompt = `Generate a detailed step-by-step learning plan for: "{{goal}}"

Please provide a structured response with required number of subtasks which cover all the topics about that course. For each subtask, include:
- title: A clear, concise title (max 50 characters)
- description: Detailed explanation of what to do (100-200 characters)
- duration: Estimated time needed (e.g., "2 hours", "30 minutes", "1 day")
- priority: Either "High", "Medium", or "Low"
- order: Sequential number starting from 1

Format your response as a JSON array of objects with these exact keys: title, description, duration, priority, order.

Example format:
[
  {
    "title": "Learn the basics",
    "description": "Start with fundamental concepts and core principles",
    "duration": "2 hours",
    "priority": "High",
    "order": 1
  }
]

Make sure the plan is practical, actionable, and progressive from beginner to more advanced concepts.`

// PromptManager resolves the plan prompt template. A plan.md file in
// Directory overrides the built-in template.
type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// Template returns the raw template with the goal placeholder intact.
func (pm *PromptManager) Template() (string, error) {
	if pm == nil || pm.Directory == "" {
		return defaultPlanPrompt, nil
	}

	path := filepath.Join(pm.Directory, "plan.md")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultPlanPrompt, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read plan prompt: %v", err)
	}
	if !strings.Contains(string(data), goalPlaceholder) {
		log.Printf("Warning: %s has no %s placeholder, the goal will be appended", path, goalPlaceholder)
		return string(data) + "\n\nGoal: \"" + goalPlaceholder + "\"", nil
	}
	return string(data), nil
}

// PlanPrompt renders the template for one goal.
func (pm *PromptManager) PlanPrompt(goalText string) (string, error) {
	tmpl, err := pm.Template()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(tmpl, goalPlaceholder, goalText), nil
}
