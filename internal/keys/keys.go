package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding the plant views react to. Views read the
// bindings they need; the help overlay renders FullHelp.
type KeyMap struct {
	Down    key.Binding
	Up      key.Binding
	Select  key.Binding
	Back    key.Binding
	Quit    key.Binding
	Search  key.Binding
	Command key.Binding
	Help    key.Binding
	Refresh key.Binding

	// View switches. Dashboard, AllPlants and MyPlants follow the
	// navigation order of the header.
	Dashboard key.Binding
	AllPlants key.Binding
	MyPlants  key.Binding
	Login     key.Binding
	Settings  key.Binding
	Recent    key.Binding

	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Water  key.Binding

	CycleSort  key.Binding
	ToggleDark key.Binding
}

// bind builds a binding whose help label is the first key unless label
// is set.
func bind(desc, label string, keys ...string) key.Binding {
	if label == "" {
		label = keys[0]
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down:    bind("down", "j/↓", "j", "down"),
		Up:      bind("up", "k/↑", "k", "up"),
		Select:  bind("open detail", "", "enter"),
		Back:    bind("back", "", "esc"),
		Quit:    bind("quit", "", "q"),
		Search:  bind("filter plants", "", "/"),
		Command: bind("command palette", "", ":"),
		Help:    bind("toggle help", "", "?"),
		Refresh: bind("sync now", "", "r"),

		Dashboard: bind("dashboard", "", "1"),
		AllPlants: bind("all plants", "", "2"),
		MyPlants:  bind("my plants", "", "3"),
		Login:     bind("sign in/out", "", "L"),
		Settings:  bind("settings", "", "s"),
		Recent:    bind("recently viewed", "", "R"),

		Add:    bind("add plant", "", "n"),
		Edit:   bind("edit plant", "", "e"),
		Delete: bind("delete plant", "", "d"),
		Water:  bind("watered today", "", "w"),

		CycleSort:  bind("cycle sort", "", "tab"),
		ToggleDark: bind("toggle dark mode", "", "D"),
	}
}

// ShortHelp returns the bindings shown in the compact help line.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Water, k.Back, k.Help, k.Quit}
}

// FullHelp groups the bindings into columns for the help overlay.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Search, k.Command, k.Help, k.Refresh},
		{k.Dashboard, k.AllPlants, k.MyPlants, k.Login, k.Settings, k.Recent},
		{k.Add, k.Edit, k.Delete, k.Water},
		{k.CycleSort, k.ToggleDark},
	}
}
