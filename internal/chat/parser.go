package chat

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"taskchat/internal/timeparse"
)

// Action is the classified intent of a free-text message. Function is empty
// for conversational replies; Arguments carry whatever the matched rule
// extracted. Executing the action is the caller's job, never the parser's.
type Action struct {
	Function  string         `json:"function,omitempty"`
	Arguments map[string]any `json:"arguments,omitzero"`
	Reply     string         `json:"reply,omitempty"`
}

const (
	promptReply = "Hi! I didn't catch that. Please type something."

	helpMenu = "Hi! \U0001F60A I can help you manage tasks:\n" +
		"1. Add task\n" +
		"2. View tasks\n" +
		"3. Complete task\n" +
		"4. Delete task\n" +
		"5. Undo last delete\n" +
		"6. Reset all tasks"

	fallbackReply = "I can help with 'add task', 'view tasks', 'complete task', " +
		"'delete task', 'undo delete', 'reset tasks'."
)

// Parser classifies messages against an ordered rule list. ExtractTime is
// optional; without it reminders simply come back null.
type Parser struct {
	ExtractTime timeparse.Extractor
	Now         func() time.Time
}

func New() *Parser {
	return &Parser{ExtractTime: timeparse.Extract, Now: time.Now}
}

// rule pairs a pattern with an action builder. Rules are not mutually
// exclusive; the first match wins, so order matters.
type rule struct {
	re    *regexp.Regexp
	build func(m []string, reminder *string) Action
}

var rules = []rule{
	{
		re: regexp.MustCompile(`(?i)^add task (.+)`),
		build: func(m []string, reminder *string) Action {
			args := map[string]any{
				"description": strings.TrimSpace(m[1]),
				"reminder":    nil,
			}
			if reminder != nil {
				args["reminder"] = *reminder
			}
			return Action{Function: "addTask", Arguments: args}
		},
	},
	{
		re: regexp.MustCompile(`(?i)view tasks`),
		build: func(m []string, reminder *string) Action {
			return Action{Function: "viewTasks", Arguments: map[string]any{}}
		},
	},
	{
		re: regexp.MustCompile(`(?i)^complete task (\d+)`),
		build: func(m []string, reminder *string) Action {
			n, _ := strconv.Atoi(m[1])
			return Action{Function: "completeTask", Arguments: map[string]any{"task_number": n}}
		},
	},
	{
		re: regexp.MustCompile(`(?i)^delete task (\d+)`),
		build: func(m []string, reminder *string) Action {
			n, _ := strconv.Atoi(m[1])
			return Action{Function: "deleteTask", Arguments: map[string]any{"task_number": n}}
		},
	},
	{
		re: regexp.MustCompile(`(?i)undo delete`),
		build: func(m []string, reminder *string) Action {
			return Action{Function: "undoDelete", Arguments: map[string]any{}}
		},
	},
	{
		re: regexp.MustCompile(`(?i)reset tasks`),
		build: func(m []string, reminder *string) Action {
			return Action{Function: "resetAll", Arguments: map[string]any{}}
		},
	},
}

// Parse maps a message to an Action. The time extraction runs against the
// whole message before rule dispatch; only addTask consumes the result.
// task_number in complete/delete is the display position the user sees in
// the UI, not a database id — resolution stays with the caller.
func (p *Parser) Parse(message string) Action {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return Action{Reply: promptReply}
	}

	switch strings.ToLower(msg) {
	case "hi", "hello", "hey":
		return Action{Reply: helpMenu}
	}

	var reminder *string
	if p.ExtractTime != nil {
		now := time.Now()
		if p.Now != nil {
			now = p.Now()
		}
		if ts, ok := p.ExtractTime(msg, now); ok {
			s := ts.Format("2006-01-02T15:04:05")
			reminder = &s
		}
	}

	for _, r := range rules {
		if m := r.re.FindStringSubmatch(msg); m != nil {
			return r.build(m, reminder)
		}
	}

	return Action{Reply: fallbackReply}
}
