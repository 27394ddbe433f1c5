// Package codec encodes a task's structured attributes (priority, labels,
// story points, assignee) into the peer system's single free-text content
// string, and decodes them back out. The micro-syntax is order-independent
// on decode; encode appends tokens in a fixed order so previously-encoded
// content round-trips byte-stable.
//
// Token forms:
//
//	@critical|@high|@medium|@low   priority (case-insensitive)
//	#label                         labels (word characters)
//	5pts / 5pt                     story points
//	for:alice                      assignee (word characters)
package codec

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/codyrobertson/critical-claude-sub003/internal/peer"
	"github.com/codyrobertson/critical-claude-sub003/internal/task"
)

var (
	priorityRe = regexp.MustCompile(`(?i)@(critical|high|medium|low)\b`)
	labelRe    = regexp.MustCompile(`#(\w+)`)
	pointsRe   = regexp.MustCompile(`\b(\d+)pts?\b`)
	assigneeRe = regexp.MustCompile(`\bfor:(\w+)`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// titleSeparator splits title from description in decoded content. The
// split is lossy if the original title legitimately contains it; there is
// no recovery rule, only the AmbiguousSplit flag.
const titleSeparator = " - "

// Decoded holds the structured fields recovered from a content string.
// Any subset of tokens may be absent; the Has* flags distinguish "absent"
// from zero values.
type Decoded struct {
	Title       string
	Description string
	Priority    task.Priority
	HasPriority bool
	Labels      []string
	StoryPoints int
	HasPoints   bool
	Assignee    string

	// AmbiguousSplit is set when the cleaned text contains more than one
	// title separator, so the title/description split may be wrong.
	// Callers log this as a warning; decoding never aborts.
	AmbiguousSplit bool
}

// Encode renders the task's text and structured fields as a single content
// string: "title - description" followed by @priority, points, labels and
// assignee tokens in that fixed order. Labels are sorted for determinism.
func Encode(t task.Task) string {
	var sb strings.Builder
	sb.WriteString(t.Title)
	if t.Description != "" {
		sb.WriteString(titleSeparator)
		sb.WriteString(t.Description)
	}

	if t.Priority.Valid() {
		sb.WriteString(" @")
		sb.WriteString(string(t.Priority))
	}
	if t.StoryPoints > 0 {
		sb.WriteString(fmt.Sprintf(" %dpts", t.StoryPoints))
	}

	labels := append([]string(nil), t.Labels...)
	sort.Strings(labels)
	for _, label := range labels {
		sb.WriteString(" #")
		sb.WriteString(label)
	}

	if t.Assignee != "" {
		sb.WriteString(" for:")
		sb.WriteString(t.Assignee)
	}

	return sb.String()
}

// Decode extracts the structured tokens from a content string, strips
// them, and splits the remaining text into title and description on the
// first title separator. Decode is tolerant: any subset of tokens may be
// missing and unmatched text is preserved.
func Decode(content string) Decoded {
	var d Decoded

	text := content

	if m := priorityRe.FindStringSubmatch(text); m != nil {
		d.Priority = task.Priority(strings.ToLower(m[1]))
		d.HasPriority = true
		text = priorityRe.ReplaceAllString(text, "")
	}

	for _, m := range labelRe.FindAllStringSubmatch(text, -1) {
		d.Labels = append(d.Labels, m[1])
	}
	text = labelRe.ReplaceAllString(text, "")

	if m := pointsRe.FindStringSubmatch(text); m != nil {
		if pts, err := strconv.Atoi(m[1]); err == nil {
			d.StoryPoints = pts
			d.HasPoints = true
		}
		text = pointsRe.ReplaceAllString(text, "")
	}

	if m := assigneeRe.FindStringSubmatch(text); m != nil {
		d.Assignee = m[1]
		text = assigneeRe.ReplaceAllString(text, "")
	}

	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))

	if strings.Count(text, titleSeparator) > 1 {
		d.AmbiguousSplit = true
	}

	if idx := strings.Index(text, titleSeparator); idx >= 0 {
		d.Title = strings.TrimSpace(text[:idx])
		d.Description = strings.TrimSpace(text[idx+len(titleSeparator):])
	} else {
		d.Title = text
	}

	return d
}

// statusToPeer downgrades local statuses onto the peer's three-level
// scale. Blocked tasks are not distinguishable to the peer.
var statusToPeer = map[task.Status]peer.Status{
	task.StatusTodo:            peer.StatusPending,
	task.StatusDimmed:          peer.StatusPending,
	task.StatusArchivedDimmed:  peer.StatusPending,
	task.StatusInProgress:      peer.StatusInProgress,
	task.StatusFocused:         peer.StatusInProgress,
	task.StatusBlocked:         peer.StatusInProgress,
	task.StatusArchivedBlocked: peer.StatusInProgress,
	task.StatusDone:            peer.StatusCompleted,
	task.StatusArchivedDone:    peer.StatusCompleted,
}

// statusFromPeer maps peer statuses back to local ones. The mapping is
// necessarily lossy: focused and blocked can never be derived from peer
// data alone, only preserved locally by the merge rule in the resolver.
var statusFromPeer = map[peer.Status]task.Status{
	peer.StatusPending:    task.StatusTodo,
	peer.StatusInProgress: task.StatusInProgress,
	peer.StatusCompleted:  task.StatusDone,
}

// StatusToPeer returns the peer-visible status for a local status.
func StatusToPeer(s task.Status) peer.Status {
	if mapped, ok := statusToPeer[s]; ok {
		return mapped
	}
	return peer.StatusPending
}

// StatusFromPeer returns the local status a peer status maps to.
func StatusFromPeer(s peer.Status) task.Status {
	if mapped, ok := statusFromPeer[s]; ok {
		return mapped
	}
	return task.StatusTodo
}

// PriorityToPeer downgrades a local priority; the peer has no critical level.
func PriorityToPeer(p task.Priority) peer.Priority {
	switch p {
	case task.PriorityCritical, task.PriorityHigh:
		return peer.PriorityHigh
	case task.PriorityLow:
		return peer.PriorityLow
	default:
		return peer.PriorityMedium
	}
}

// PriorityFromPeer maps a peer priority to a local one.
func PriorityFromPeer(p peer.Priority) task.Priority {
	switch p {
	case peer.PriorityHigh:
		return task.PriorityHigh
	case peer.PriorityLow:
		return task.PriorityLow
	default:
		return task.PriorityMedium
	}
}

// ToTodo converts a local task to its peer representation, embedding the
// structured fields in the content string.
func ToTodo(t task.Task) peer.Todo {
	return peer.Todo{
		ID:       t.ID,
		Content:  Encode(t),
		Status:   StatusToPeer(t.Status),
		Priority: PriorityToPeer(t.Priority),
	}
}

// ToTask builds a new local task from a peer todo, decoding the content
// string and stamping a creation record attributed to the sync source.
// The task keeps the todo's id so the link survives future passes.
func ToTask(todo peer.Todo, changedBy string) task.Task {
	d := Decode(todo.Content)

	priority := PriorityFromPeer(todo.Priority)
	if d.HasPriority {
		priority = d.Priority
	}

	t := task.New(d.Title, d.Description, priority, changedBy)
	t.ID = todo.ID
	t.Labels = d.Labels
	t.Assignee = d.Assignee
	if d.HasPoints {
		t.StoryPoints = d.StoryPoints
	}

	if status := StatusFromPeer(todo.Status); status != task.StatusTodo {
		moved, err := task.Transition(t, task.TransitionRequest{
			To:        status,
			ChangedBy: changedBy,
			Reason:    "adopted from peer todo",
		})
		if err == nil {
			t = moved
		}
	}

	return t
}
