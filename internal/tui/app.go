package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/edgedock/internal/config"
	"github.com/1broseidon/edgedock/internal/ipc"
)

// statusInterval is how often the daemon status is polled.
const statusInterval = 500 * time.Millisecond

type statusTickMsg struct{}

// statusMsg carries a polled status; nil means the daemon is unreachable.
type statusMsg struct {
	status *ipc.StatusData
}

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	result     *config.LoadResult
	loadErr    error
	client     DaemonClient

	keys keyMap
	help help.Model

	// Tab navigation
	activeTab Tab

	// Sub-models
	dockTab     DockTab
	settingsTab SettingsTab

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	// Daemon state
	status *ipc.StatusData

	// Terminal dimensions
	width  int
	height int
}

func newModel(configPath string, client DaemonClient) model {
	keys := defaultKeyMap()
	m := model{
		configPath: configPath,
		client:     client,
		keys:       keys,
		help:       help.New(),
		activeTab:  TabDock,
	}

	m.loadConfig()
	if m.result != nil {
		m.originalConfig = cloneConfig(m.result.Config)
	}

	var cfg *config.Config
	if m.result != nil {
		cfg = m.result.Config
	}
	m.dockTab = NewDockTab(client, keys)
	m.settingsTab = NewSettingsTab(cfg)
	return m
}

func (m *model) loadConfig() {
	var (
		res *config.LoadResult
		err error
	)
	if m.configPath == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(m.configPath)
	}
	if err != nil {
		m.loadErr = err
		return
	}
	m.result = res
}

func (m model) saveConfig(cfg *config.Config) error {
	if m.configPath == "" {
		return cfg.Save()
	}
	return cfg.SaveTo(m.configPath)
}

func (m model) reloadDaemon() func() error {
	if m.status == nil || m.client == nil {
		return nil
	}
	return m.client.Reload
}

func (m model) fetchStatus() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		st, err := client.GetStatus()
		if err != nil {
			return statusMsg{}
		}
		return statusMsg{status: st}
	}
}

func tickStatus() tea.Cmd {
	return tea.Tick(statusInterval, func(time.Time) tea.Msg { return statusTickMsg{} })
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	return max(m.height-4, 1)
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), tickStatus())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusTickMsg:
		return m, tea.Batch(m.fetchStatus(), tickStatus())
	case statusMsg:
		m.status = msg.status
		m.dockTab.SetStatus(msg.status)
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		sub := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.dockTab, _ = m.dockTab.Update(sub)
		m.settingsTab, _ = m.settingsTab.Update(sub)
		return m, nil
	}

	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok {
			if km.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(km, m.result.Config, m.saveConfig, m.reloadDaemon())
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.result.Config)
			}
		}
		return m, nil
	}

	km, isKey := msg.(tea.KeyMsg)

	// ctrl+s opens the save overlay from any context, including form editing
	if isKey && key.Matches(km, m.keys.Save) {
		if m.result != nil && m.result.Config != nil {
			m.saveOverlay.Show(m.originalConfig, m.result.Config)
		}
		return m, nil
	}

	// The settings form consumes keys; only ctrl+c escapes to quit
	if m.activeTab == TabSettings && m.settingsTab.editing {
		if isKey && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.settingsTab, cmd = m.settingsTab.Update(msg)
		return m, cmd
	}

	if isKey {
		switch {
		case key.Matches(km, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(km, m.keys.NextTab):
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case key.Matches(km, m.keys.PrevTab):
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(km, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case km.String() == "1":
			m.activeTab = TabDock
			return m, nil
		case km.String() == "2":
			m.activeTab = TabSettings
			return m, nil
		}
	}

	// Delegate to active tab's sub-model
	var cmd tea.Cmd
	switch m.activeTab {
	case TabDock:
		m.dockTab, cmd = m.dockTab.Update(msg)
	case TabSettings:
		m.settingsTab, cmd = m.settingsTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := lipgloss.NewStyle().Padding(0, 1).Render(m.help.View(m.keys))

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := max(m.height-usedHeight, 1)

	var content string
	switch {
	case m.saveOverlay.Active():
		content = m.saveOverlay.View(m.width, contentHeight)
	case m.activeTab == TabSettings && m.loadErr != nil:
		content = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Padding(0, 2).
			Render("config error: " + m.loadErr.Error())
	case m.activeTab == TabSettings:
		content = m.settingsTab.View()
	default:
		content = m.dockTab.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		lipgloss.NewStyle().Height(contentHeight).Render(content),
		helpBar,
	)
}
