package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rahul/pathwise/internal/goal"
	"github.com/rahul/pathwise/internal/insights"
	"github.com/rahul/pathwise/internal/tracker"
)

const ownerPrefix = "tg:"

const helpText = `I turn a learning goal into a step-by-step plan.

/new <goal> - plan a new goal
/goals - list your goals
/goal <n> - show the steps of goal n
/done <n> <m> - toggle step m of goal n
/edit <n> <title> - rename goal n
/delete <n> - delete goal n
/stats - your overall progress`

type TelegramGateway struct {
	Bot     *tgbotapi.BotAPI
	Tracker Tracker
}

func NewTelegramGateway(token string, t Tracker) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:     bot,
		Tracker: t,
	}, nil
}

// OwnerID is the tracker owner of a Telegram chat.
func OwnerID(chatID int64) string {
	return ownerPrefix + strconv.FormatInt(chatID, 10)
}

// ChatID reverses OwnerID. It reports false for owners of other gateways.
func ChatID(ownerID string) (int64, bool) {
	if !strings.HasPrefix(ownerID, ownerPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(ownerID, ownerPrefix), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)

		response := tg.Handle(context.Background(), update.Message.Chat.ID, update.Message.Text)
		msg := tgbotapi.NewMessage(update.Message.Chat.ID, response)
		if _, err := tg.Bot.Send(msg); err != nil {
			log.Printf("Error replying to chat %d: %v", update.Message.Chat.ID, err)
		}
	}
	return nil
}

func (tg *TelegramGateway) Send(ownerID string, text string) error {
	id, ok := ChatID(ownerID)
	if !ok {
		return fmt.Errorf("invalid chat owner: %s", ownerID)
	}

	msg := tgbotapi.NewMessage(id, text)
	_, err := tg.Bot.Send(msg)
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}

// Handle runs one chat command and returns the reply.
func (tg *TelegramGateway) Handle(ctx context.Context, chatID int64, text string) string {
	sess := tracker.Session{OwnerID: OwnerID(chatID)}
	cmd, args := splitCommand(text)

	var (
		reply string
		err   error
	)
	switch cmd {
	case "/start", "/help", "":
		return helpText
	case "/new":
		reply, err = tg.cmdNew(ctx, sess, args)
	case "/goals":
		reply, err = tg.cmdGoals(ctx, sess)
	case "/goal":
		reply, err = tg.cmdGoal(ctx, sess, args)
	case "/done":
		reply, err = tg.cmdDone(ctx, sess, args)
	case "/edit":
		reply, err = tg.cmdEdit(ctx, sess, args)
	case "/delete":
		reply, err = tg.cmdDelete(ctx, sess, args)
	case "/stats":
		reply, err = tg.cmdStats(ctx, sess)
	default:
		return "Unknown command. Send /help to see what I can do."
	}
	if err != nil {
		return chatError(err)
	}
	return reply
}

// splitCommand separates "/cmd@bot rest" into "/cmd" and "rest". Plain text
// yields an empty command.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd, rest, _ := strings.Cut(text, " ")
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}

func chatError(err error) string {
	var verr *goal.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, goal.ErrNotFound):
		return "I couldn't find that. Send /goals to see your list."
	default:
		log.Printf("Telegram command failed: %v", err)
		return "Something went wrong, please try again."
	}
}

// errBadIndex is reported for list positions that are not numbers.
var errBadIndex = &goal.ValidationError{Field: "index", Message: "Please give the number shown in /goals."}

// goalAt resolves a 1-based position in the newest-first goal list.
func (tg *TelegramGateway) goalAt(ctx context.Context, sess tracker.Session, arg string) (*goal.Goal, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return nil, errBadIndex
	}
	goals, err := tg.Tracker.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	if n > len(goals) {
		return nil, &goal.NotFoundError{Kind: "Task", ID: arg}
	}
	return &goals[n-1], nil
}

// orderedSteps is the display order used by /goal and /done.
func orderedSteps(g *goal.Goal) []goal.Step {
	steps := append([]goal.Step(nil), g.Steps...)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })
	return steps
}

func (tg *TelegramGateway) cmdNew(ctx context.Context, sess tracker.Session, args string) (string, error) {
	if args == "" {
		return "Tell me what you want to learn, e.g. /new Learn Python", nil
	}
	g, err := tg.Tracker.Create(ctx, sess, args, "")
	if err != nil {
		return "", err
	}
	return "Here is your plan for \"" + g.Title + "\":\n\n" + formatSteps(g), nil
}

func (tg *TelegramGateway) cmdGoals(ctx context.Context, sess tracker.Session) (string, error) {
	goals, err := tg.Tracker.List(ctx, sess)
	if err != nil {
		return "", err
	}
	if len(goals) == 0 {
		return "No goals yet. Start one with /new <goal>.", nil
	}

	var b strings.Builder
	for i := range goals {
		g := &goals[i]
		mark := " "
		if g.Completed {
			mark = "✓"
		}
		fmt.Fprintf(&b, "%d. [%s] %s - %.0f%% (%d/%d)\n", i+1, mark, g.Title, insights.Progress(g), g.CompletedSteps(), len(g.Steps))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (tg *TelegramGateway) cmdGoal(ctx context.Context, sess tracker.Session, args string) (string, error) {
	g, err := tg.goalAt(ctx, sess, args)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(g.Title + "\n")
	if g.Description != "" {
		b.WriteString(g.Description + "\n")
	}
	b.WriteString("\n" + formatSteps(g) + "\n\n")
	b.WriteString(formatInsights(g))
	return b.String(), nil
}

func (tg *TelegramGateway) cmdDone(ctx context.Context, sess tracker.Session, args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "Usage: /done <goal number> <step number>", nil
	}
	g, err := tg.goalAt(ctx, sess, fields[0])
	if err != nil {
		return "", err
	}
	m, err := strconv.Atoi(fields[1])
	steps := orderedSteps(g)
	if err != nil || m < 1 || m > len(steps) {
		return "", &goal.NotFoundError{Kind: "Subtask", ID: fields[1]}
	}
	step := steps[m-1]

	updated, done, err := tg.Tracker.ToggleStep(ctx, sess, g.ID, step.ID)
	if err != nil {
		return "", err
	}
	if updated.Completed {
		return fmt.Sprintf("🎉 Goal completed! You finished all %d steps of \"%s\".", len(updated.Steps), updated.Title), nil
	}
	state := "reopened"
	if done {
		state = "done"
	}
	return fmt.Sprintf("Step \"%s\" %s. Progress %.0f%%.\n%s", step.Title, state, insights.Progress(updated), formatInsights(updated)), nil
}

func (tg *TelegramGateway) cmdEdit(ctx context.Context, sess tracker.Session, args string) (string, error) {
	pos, title, _ := strings.Cut(args, " ")
	g, err := tg.goalAt(ctx, sess, pos)
	if err != nil {
		return "", err
	}
	updated, err := tg.Tracker.Edit(ctx, sess, g.ID, title, g.Description)
	if err != nil {
		return "", err
	}
	return "Renamed to \"" + updated.Title + "\".", nil
}

func (tg *TelegramGateway) cmdDelete(ctx context.Context, sess tracker.Session, args string) (string, error) {
	g, err := tg.goalAt(ctx, sess, args)
	if err != nil {
		return "", err
	}
	if err := tg.Tracker.Delete(ctx, sess, g.ID); err != nil {
		return "", err
	}
	return "Deleted \"" + g.Title + "\".", nil
}

func (tg *TelegramGateway) cmdStats(ctx context.Context, sess tracker.Session) (string, error) {
	s, err := tg.Tracker.Stats(ctx, sess)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Goals: %d total, %d completed, %d active (%d%%)\nSteps: %d of %d done (%d%%)",
		s.TotalTasks, s.CompletedTasks, s.ActiveTasks, s.CompletionRate,
		s.CompletedSubtasks, s.TotalSubtasks, s.SubtaskCompletionRate), nil
}

func formatSteps(g *goal.Goal) string {
	var b strings.Builder
	for i, st := range orderedSteps(g) {
		mark := " "
		if st.Completed {
			mark = "x"
		}
		fmt.Fprintf(&b, "%d. [%s] %s (%s, %s)\n", i+1, mark, st.Title, st.Duration, st.Priority)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatInsights(g *goal.Goal) string {
	in := insights.For(g)
	if in.NextStep == nil {
		return "Time remaining: " + in.TimeRemaining
	}
	return fmt.Sprintf("Recommended next: %s\nTime remaining: %s", in.NextStep.Title, in.TimeRemaining)
}
