package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/dadmor/campaignforge/internal/wizard"
)

// Theme holds the color scheme for the wizard display.
type Theme struct {
	Title   lipgloss.Color
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Title:   lipgloss.Color("#AF87FF"), // violet
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Title).Bold(true)
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// finishFunc persists a completed wizard run and returns a summary line.
type finishFunc func(ctx context.Context, data map[string]any) (string, error)

// advanceDoneMsg carries the result of a step advance.
type advanceDoneMsg struct {
	nextRoute string
	err       error
}

// finishDoneMsg carries the result of the terminal save.
type finishDoneMsg struct {
	summary string
	err     error
}

// fieldInput is one rendered form field.
type fieldInput struct {
	key      string
	field    wizard.Field
	required bool
	readOnly bool
	input    textinput.Model
}

// wizardModel is the bubbletea model driving one wizard flow.
type wizardModel struct {
	engine    *wizard.Engine
	processID string
	flow      wizard.Flow
	finish    finishFunc
	theme     Theme

	stepIdx int
	session *wizard.StepSession
	fields  []fieldInput
	focus   int

	width     int
	loading   bool
	finishing bool
	errText   string
	summary   string
	done      bool
	quitting  bool
}

func newWizardModel(engine *wizard.Engine, processID string, finish finishFunc) (*wizardModel, error) {
	flow, ok := engine.Flow(processID)
	if !ok {
		return nil, fmt.Errorf("unknown process %q", processID)
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		width = w
	}

	m := &wizardModel{
		engine:    engine,
		processID: processID,
		flow:      flow,
		finish:    finish,
		theme:     defaultTheme,
		width:     width,
	}
	if err := m.enterStep(0); err != nil {
		return nil, err
	}
	return m, nil
}

// enterStep activates a flow step and builds its form fields.
func (m *wizardModel) enterStep(idx int) error {
	sess, err := m.engine.EnterStep(m.processID, m.flow.Steps[idx].Key)
	if err != nil {
		return err
	}
	m.stepIdx = idx
	m.session = sess
	m.errText = ""

	schema := sess.Schema()
	data := sess.Data()

	m.fields = m.fields[:0]
	for _, key := range fieldOrder(schema) {
		field := schema.Fields[key]
		fi := fieldInput{
			key:      key,
			field:    field,
			required: contains(schema.Required, key),
			readOnly: field.ReadOnly,
		}
		if !field.ReadOnly {
			ti := textinput.New()
			ti.Placeholder = placeholderFor(field)
			ti.CharLimit = 2000
			if field.Type == wizard.FieldPassword {
				ti.EchoMode = textinput.EchoPassword
			}
			if v := displayValue(data[key]); v != "" {
				ti.SetValue(v)
			}
			fi.input = ti
		}
		m.fields = append(m.fields, fi)
	}

	m.focus = -1
	for i, fi := range m.fields {
		if !fi.readOnly {
			m.focus = i
			break
		}
	}
	m.applyFocus()
	return nil
}

func (m *wizardModel) applyFocus() {
	for i := range m.fields {
		if m.fields[i].readOnly {
			continue
		}
		if i == m.focus {
			m.fields[i].input.Focus()
		} else {
			m.fields[i].input.Blur()
		}
	}
}

// moveFocus advances focus over editable fields; dir is +1 or -1.
// Returns false when focus would leave the form in the given direction.
func (m *wizardModel) moveFocus(dir int) bool {
	for i := m.focus + dir; i >= 0 && i < len(m.fields); i += dir {
		if !m.fields[i].readOnly {
			m.focus = i
			m.applyFocus()
			return true
		}
	}
	return false
}

// Init returns the initial command.
func (m *wizardModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and returns the updated model.
func (m *wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 20 {
			m.width = msg.Width
		}
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		if m.loading || m.finishing {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.moveFocus(1)
			return m, nil
		case "shift+tab", "up":
			m.moveFocus(-1)
			return m, nil
		case "enter":
			// Enter moves through the form; on the last editable field
			// it submits the step.
			if m.moveFocus(1) {
				return m, nil
			}
			return m.submit()
		}

	case advanceDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		next := m.stepIndexByRoute(msg.nextRoute)
		if next < 0 {
			// Past the last step: persist.
			m.finishing = true
			return m, m.finishCmd()
		}
		if err := m.enterStep(next); err != nil {
			m.errText = err.Error()
		}
		return m, nil

	case finishDoneMsg:
		m.finishing = false
		m.done = true
		if msg.err != nil {
			m.errText = msg.err.Error()
		} else {
			m.summary = msg.summary
		}
		return m, tea.Quit
	}

	// Everything else feeds the focused input.
	if m.focus >= 0 && m.focus < len(m.fields) && !m.fields[m.focus].readOnly {
		var cmd tea.Cmd
		m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// submit merges the form into the step and advances.
func (m *wizardModel) submit() (tea.Model, tea.Cmd) {
	edits := make(map[string]any)
	for _, fi := range m.fields {
		if fi.readOnly {
			continue
		}
		value := strings.TrimSpace(fi.input.Value())
		if fi.field.Type == wizard.FieldNumber {
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				edits[fi.key] = n
			} else {
				edits[fi.key] = value
			}
			continue
		}
		edits[fi.key] = value
	}

	m.loading = true
	m.errText = ""
	sess := m.session
	return m, func() tea.Msg {
		nextRoute, err := sess.Advance(context.Background(), edits)
		return advanceDoneMsg{nextRoute: nextRoute, err: err}
	}
}

func (m *wizardModel) finishCmd() tea.Cmd {
	data := m.engine.Store().Data(m.processID)
	finish := m.finish
	processID := m.processID
	engine := m.engine
	return func() tea.Msg {
		summary, err := finish(context.Background(), data)
		if err == nil {
			_ = engine.DiscardDraft(context.Background(), processID)
		}
		return finishDoneMsg{summary: summary, err: err}
	}
}

func (m *wizardModel) stepIndexByRoute(route string) int {
	for i, s := range m.flow.Steps {
		if s.Route == route {
			return i
		}
	}
	return -1
}

// View renders the wizard screen.
func (m *wizardModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m *wizardModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	var b strings.Builder
	schema := m.session.Schema()

	b.WriteString(m.theme.titleStyle().Render(m.flow.Process.Title))
	b.WriteString("\n")
	b.WriteString(m.theme.statusStyle().Render(
		fmt.Sprintf("Step %d/%d: %s", m.stepIdx+1, len(m.flow.Steps), schema.Title)))
	b.WriteString("\n\n")

	for i, fi := range m.fields {
		label := fi.field.Title
		if fi.required {
			label += " *"
		}
		b.WriteString(label)
		b.WriteString("\n")

		if fi.readOnly {
			value := displayValue(m.session.Data()[fi.key])
			if value == "" {
				value = "-"
			}
			b.WriteString("  " + truncateLine(value, m.width-4))
		} else {
			b.WriteString("  " + fi.input.View())
			if len(fi.field.Options) > 0 && i == m.focus {
				b.WriteString("\n  " + m.theme.hintStyle().Render("Options: "+optionHint(fi.field.Options)))
			}
		}
		b.WriteString("\n\n")
	}

	if m.loading {
		b.WriteString(m.theme.statusStyle().Render("Running AI operation, please wait...") + "\n")
	}
	if m.finishing {
		b.WriteString(m.theme.statusStyle().Render("Saving...") + "\n")
	}
	if m.errText != "" {
		b.WriteString(m.theme.errorStyle().Render("✗ "+m.errText) + "\n")
	}

	b.WriteString("\n" + m.theme.hintStyle().Render("enter: next · tab/↑↓: move · esc: abort"))
	b.WriteString("\n")
	return b.String()
}

func (m *wizardModel) finalView() string {
	if m.errText != "" {
		return m.theme.errorStyle().Render("✗ "+m.errText) + "\n"
	}
	return m.theme.successStyle().Render("✓ "+m.summary) + "\n"
}

// runWizardUI drives one wizard flow interactively.
func runWizardUI(engine *wizard.Engine, processID string, finish finishFunc) error {
	model, err := newWizardModel(engine, processID, finish)
	if err != nil {
		return err
	}
	defer engine.LeaveStep(processID)

	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("wizard UI error: %w", err)
	}

	if m, ok := final.(*wizardModel); ok {
		if m.quitting {
			fmt.Println("Aborted. Progress is kept for the next run.")
			return nil
		}
		if m.done && m.errText != "" {
			return fmt.Errorf("%s", m.errText)
		}
		if m.done {
			fmt.Println(m.summary)
		}
	}
	return nil
}

// fieldOrder renders required fields first, the rest alphabetically.
func fieldOrder(schema wizard.Step) []string {
	ordered := make([]string, 0, len(schema.Fields))
	seen := make(map[string]bool, len(schema.Fields))
	for _, key := range schema.Required {
		if _, ok := schema.Fields[key]; ok && !seen[key] {
			ordered = append(ordered, key)
			seen[key] = true
		}
	}
	rest := make([]string, 0, len(schema.Fields))
	for key := range schema.Fields {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func placeholderFor(field wizard.Field) string {
	if field.Placeholder != "" {
		return field.Placeholder
	}
	if len(field.Options) > 0 {
		return optionHint(field.Options)
	}
	return ""
}

func optionHint(options []wizard.Option) string {
	values := make([]string, 0, len(options))
	for _, o := range options {
		values = append(values, o.Value)
	}
	return strings.Join(values, " / ")
}

func displayValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func truncateLine(s string, max int) string {
	if max < 10 {
		max = 10
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
