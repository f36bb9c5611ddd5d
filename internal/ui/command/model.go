package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/plant-care/internal/theme"
)

// Name identifies a palette command.
type Name string

const (
	Dark      Name = "dark"
	Light     Name = "light"
	Sort      Name = "sort"
	Mine      Name = "mine"
	All       Name = "all"
	Dashboard Name = "dashboard"
	Add       Name = "add"
	Login     Name = "login"
	Logout    Name = "logout"
	Refresh   Name = "refresh"
	Check     Name = "check"
	Recent    Name = "recent"
	Settings  Name = "settings"
	Quit      Name = "quit"
)

var descriptions = map[Name]string{
	Dark:      "switch to the dark palette",
	Light:     "switch to the light palette",
	Sort:      "sort by next_watering|care_level|plant_name|last_watered",
	Mine:      "show only my plants",
	All:       "show every plant",
	Dashboard: "open the dashboard",
	Add:       "add a plant",
	Login:     "sign in or register",
	Logout:    "sign out",
	Refresh:   "sync plants now",
	Check:     "run the watering check now",
	Recent:    "recently viewed plants (recent clear forgets them)",
	Settings:  "edit the configuration",
	Quit:      "quit",
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Name Name
	Args []string
}

// ErrorMsg is emitted when the typed command cannot be parsed.
type ErrorMsg struct {
	Err error
}

// Parse splits a palette line into a command and its arguments. A leading
// colon is optional and matching is case-insensitive.
func Parse(line string) (CommandMsg, error) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), ":"))
	if len(fields) == 0 {
		return CommandMsg{}, fmt.Errorf("empty command")
	}
	name := Name(strings.ToLower(fields[0]))
	if name == "q" {
		name = Quit
	}
	if _, ok := descriptions[name]; !ok {
		return CommandMsg{}, fmt.Errorf("unknown command %q", fields[0])
	}
	if name == Sort && len(fields) < 2 {
		return CommandMsg{}, fmt.Errorf("sort needs a mode")
	}
	return CommandMsg{Name: name, Args: fields[1:]}, nil
}

// Describe returns the one-line description of n.
func Describe(n Name) string { return descriptions[n] }

// Suggest returns the commands starting with prefix, sorted.
func Suggest(prefix string) []Name {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	var out []Name
	for n := range descriptions {
		if strings.HasPrefix(string(n), prefix) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if line == "" {
				return m, nil
			}
			parsed, err := Parse(line)
			if err != nil {
				return m, func() tea.Msg { return ErrorMsg{Err: err} }
			}
			return m, func() tea.Msg { return parsed }
		case "tab":
			if s := Suggest(m.input.Value()); len(s) == 1 {
				m.input.SetValue(string(s[0]) + " ")
				m.input.CursorEnd()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()

	var lines []string
	for _, n := range Suggest(firstWord(m.input.Value())) {
		lines = append(lines, theme.LabelStyle.Render(string(n))+" "+theme.HelpStyle.Render(descriptions[n]))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, input, "", strings.Join(lines, "\n"))

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
