// Package ui provides the Bubble Tea TUI for the swap desk.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	advisoryApp "github.com/mevshield/swapdesk/business/advisory/app"
	executionApp "github.com/mevshield/swapdesk/business/execution/app"
	executionDomain "github.com/mevshield/swapdesk/business/execution/domain"
	quotingApp "github.com/mevshield/swapdesk/business/quoting/app"
	quotingDomain "github.com/mevshield/swapdesk/business/quoting/domain"
	"github.com/mevshield/swapdesk/internal/apperror"
	"github.com/mevshield/swapdesk/internal/token"
	"github.com/mevshield/swapdesk/pkg/ui/components"
)

// ConnectionInfo holds a collaborator's connection state.
type ConnectionInfo struct {
	Connected bool
	Detail    string
	LastSeen  time.Time
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome Phase = "welcome" // Initial welcome screen
	PhaseSwap    Phase = "swap"    // Main swap form
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// slippagePresets are the tolerances ctrl+s cycles through, in basis points.
var slippagePresets = []int64{10, 50, 100, 150}

// Deps are the services the TUI drives. All business rules live behind them;
// the model only collects input and formats output.
type Deps struct {
	Controller *quotingApp.QuoteController
	Advisor    *advisoryApp.Engine
	Executor   *executionApp.SwapExecutor
	History    *executionDomain.TradeHistoryLog
	Tokens     *token.Registry

	WalletAddress string
	ChainID       uint64
	SlippageBps   int64
	MEVProtection bool
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	deps Deps
	keys KeyMap

	// Components
	quote      *components.QuoteComponent
	advisories *components.AdvisoriesComponent
	history    *components.HistoryComponent

	// Form state
	amount      textinput.Model
	symbols     []string
	fromIdx     int
	toIdx       int
	slippageIdx int
	mev         bool
	walletOn    bool

	// Quote state
	snapshot quotingApp.Snapshot

	// Result banner
	result        *executionDomain.SwapResult
	resultShownAt time.Time

	// Phase state
	phase        Phase
	welcomeStart time.Time

	// State
	quitting        bool
	showHelp        bool
	width           int
	height          int
	connectionState map[string]*ConnectionInfo
	logs            []string
	errorMsg        string
}

// New creates a new TUI model.
func New(deps Deps) Model {
	amount := textinput.New()
	amount.Placeholder = "0.0"
	amount.CharLimit = 32
	amount.Width = 20
	amount.Focus()

	slippageIdx := 0
	for i, bps := range slippagePresets {
		if bps == deps.SlippageBps {
			slippageIdx = i
		}
	}

	return Model{
		deps:         deps,
		keys:         DefaultKeyMap(),
		quote:        components.NewQuoteComponent(),
		advisories:   components.NewAdvisoriesComponent(),
		history:      components.NewHistoryComponent(),
		amount:       amount,
		symbols:      symbolList(deps.Tokens),
		toIdx:        1,
		slippageIdx:  slippageIdx,
		mev:          deps.MEVProtection,
		walletOn:     deps.WalletAddress != "",
		phase:        PhaseWelcome,
		welcomeStart: time.Now(),
		connectionState: map[string]*ConnectionInfo{
			"Trading": {Connected: false},
			"Prices":  {Connected: false},
		},
		logs: make([]string, 0, 5),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), textinput.Blink)
}

// tickCmd returns a command that sends a tick every 250ms so the quote age
// and welcome screen stay current.
func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.phase = PhaseSwap
		}
		if fresh := symbolList(m.deps.Tokens); len(fresh) > 0 {
			m.symbols = fresh
			m.clampTokenIndexes()
		}
		m.refreshQuotePanel()
		return m, tickCmd()

	case QuoteMsg:
		m.snapshot = msg.Snapshot
		m.refreshQuotePanel()
		m.refreshAdvisories()

	case ResultMsg:
		result := msg.Result
		m.result = &result
		m.resultShownAt = time.Now()
		m.history.Update(tradeRows(m.deps.History.List()))
		if result.Succeeded() {
			m.amount.SetValue("")
		}
		shownAt := m.resultShownAt
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return resultExpiredMsg{shownAt: shownAt}
		})

	case resultExpiredMsg:
		// Only clear the banner this timer was armed for.
		if m.result != nil && msg.shownAt.Equal(m.resultShownAt) {
			m.result = nil
		}

	case ConnectionStatusMsg:
		m.connectionState[msg.Name] = &ConnectionInfo{
			Connected: msg.Connected,
			Detail:    msg.Detail,
			LastSeen:  time.Now(),
		}

	case ErrorMsg:
		m.errorMsg = msg.Error.Error()
		m.logs = addLog(m.logs, "error", msg.Error.Error())

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	// During welcome phase, any other key skips to the form.
	if m.phase == PhaseWelcome {
		m.phase = PhaseSwap
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.FromNext):
		if len(m.symbols) > 0 {
			step := 1
			if msg.String() == "left" {
				step = len(m.symbols) - 1
			}
			m.fromIdx = (m.fromIdx + step) % len(m.symbols)
			m.pushParams()
		}
		return m, nil

	case key.Matches(msg, m.keys.ToNext):
		if len(m.symbols) > 0 {
			step := 1
			if msg.String() == "up" {
				step = len(m.symbols) - 1
			}
			m.toIdx = (m.toIdx + step) % len(m.symbols)
			m.pushParams()
		}
		return m, nil

	case key.Matches(msg, m.keys.Flip):
		m.fromIdx, m.toIdx = m.toIdx, m.fromIdx
		m.pushParams()
		return m, nil

	case key.Matches(msg, m.keys.Slippage):
		m.slippageIdx = (m.slippageIdx + 1) % len(slippagePresets)
		m.pushParams()
		return m, nil

	case key.Matches(msg, m.keys.MEV):
		m.mev = !m.mev
		m.pushParams()
		return m, nil

	case key.Matches(msg, m.keys.Wallet):
		m.walletOn = !m.walletOn
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.amount.SetValue("")
		m.errorMsg = ""
		m.pushParams()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		return m, m.executeCmd()
	}

	// Everything else edits the amount field.
	before := m.amount.Value()
	var cmd tea.Cmd
	m.amount, cmd = m.amount.Update(msg)
	if m.amount.Value() != before {
		m.pushParams()
	}
	return m, cmd
}

// params assembles the current form into swap parameters.
func (m Model) params() quotingDomain.SwapParameters {
	return quotingDomain.SwapParameters{
		FromSymbol:    m.symbolAt(m.fromIdx),
		ToSymbol:      m.symbolAt(m.toIdx),
		Amount:        strings.TrimSpace(m.amount.Value()),
		SlippageBps:   slippagePresets[m.slippageIdx],
		ChainID:       m.deps.ChainID,
		Recipient:     m.deps.WalletAddress,
		MEVProtection: m.mev,
	}
}

// pushParams hands the form to the controller. The controller's observer
// feeds resulting snapshots back in as QuoteMsg values.
func (m *Model) pushParams() {
	m.deps.Controller.SetParams(m.params())
}

// executeCmd runs the swap off the UI goroutine and reports the result.
func (m Model) executeCmd() tea.Cmd {
	params := m.params()
	quote := m.deps.Controller.Quote()
	walletOn := m.walletOn
	executor := m.deps.Executor

	return func() tea.Msg {
		result := executor.Execute(context.Background(), params, quote, walletOn)
		return ResultMsg{Result: result}
	}
}

func (m *Model) refreshQuotePanel() {
	snap := m.snapshot

	switch snap.State {
	case quotingApp.StateReady:
		if snap.Quote != nil {
			q := *snap.Quote
			m.quote.SetQuote(components.QuoteView{
				FromSymbol:      q.FromSymbol,
				ToSymbol:        q.ToSymbol,
				FromAmount:      q.FromAmount,
				ToAmount:        q.ToAmount,
				Rate:            q.Rate,
				MinimumReceived: q.MinimumReceived(snap.Params.SlippageBps),
				PriceImpactPct:  q.PriceImpactPct,
				NetworkFeeUSD:   q.NetworkFeeUSD,
				GasSavingsUSD:   q.GasSavingsUSD,
				Protocol:        q.Protocol,
				Fallback:        q.IsFallback(),
				Age:             q.Age(),
				SlippageBps:     snap.Params.SlippageBps,
			})
		}
	case quotingApp.StateDebouncing, quotingApp.StateFetching:
		m.quote.SetState(string(snap.State))
	default:
		m.quote.SetState("idle")
		m.quote.SetHint(idleHint(snap.Params))
	}
}

func (m *Model) refreshAdvisories() {
	snap := m.snapshot
	if snap.State != quotingApp.StateReady || snap.Quote == nil {
		m.advisories.Clear()
		return
	}

	items := m.deps.Advisor.Evaluate(snap.Quote, snap.Params, m.mev, time.Now().Hour())
	rows := make([]components.AdvisoryRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, components.AdvisoryRow{
			Impact: string(item.Impact),
			Title:  item.Title,
			Body:   item.Body,
		})
	}
	m.advisories.Update(rows)
}

// idleHint explains why no quote is showing, in the same words the executor
// would use to reject the swap.
func idleHint(params quotingDomain.SwapParameters) string {
	if err := params.Validate(); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return appErr.Message
		}
		return err.Error()
	}
	return "Enter an amount to get a quote"
}

func (m Model) symbolAt(idx int) string {
	if len(m.symbols) == 0 {
		return ""
	}
	return m.symbols[idx%len(m.symbols)]
}

func (m *Model) clampTokenIndexes() {
	if len(m.symbols) == 0 {
		m.fromIdx, m.toIdx = 0, 0
		return
	}
	m.fromIdx %= len(m.symbols)
	m.toIdx %= len(m.symbols)
}

// symbolList reads the registry's tokens in display order.
func symbolList(registry *token.Registry) []string {
	if registry == nil {
		return nil
	}
	tokens := registry.All()
	symbols := make([]string, 0, len(tokens))
	for _, t := range tokens {
		symbols = append(symbols, t.Symbol)
	}
	return symbols
}

// tradeRows converts history entries to display rows.
func tradeRows(entries []executionDomain.TradeHistoryEntry) []components.TradeRow {
	rows := make([]components.TradeRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, components.TradeRow{
			FromSymbol: e.FromSymbol,
			ToSymbol:   e.ToSymbol,
			FromAmount: e.FromAmount,
			ToAmount:   e.ToAmount,
			Protocol:   e.Protocol,
			ExecutedAt: e.ExecutedAt,
		})
	}
	return rows
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logLine := fmt.Sprintf("[%s] %s: %s", timestamp, level, message)
	logs = append(logs, logLine)
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}
	if m.phase == PhaseWelcome {
		return m.renderWelcomeScreen()
	}

	var b strings.Builder

	title := TitleStyle.Render(" 🛡 SwapDesk ")
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	leftCol := m.renderForm() + "\n\n" + m.quote.View()

	var rightContent strings.Builder
	rightContent.WriteString(m.advisories.View())
	rightContent.WriteString("\n\n")
	rightContent.WriteString(m.history.View())
	rightCol := rightContent.String()

	if m.width > 100 {
		left := BoxStyle.Width(m.width/2 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(BoxStyle.Width(m.width - 4).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(m.width - 4).Render(rightCol))
	}

	b.WriteString("\n\n")

	if banner := m.renderResultBanner(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n\n")
	}

	if m.showHelp {
		b.WriteString(m.renderFullHelp())
	} else {
		b.WriteString(HelpStyle.Render("enter: swap • tab: flip • ctrl+s: slippage • ctrl+p: mev • ctrl+w: wallet • ctrl+h: help • ctrl+c: quit"))
	}

	return b.String()
}

// renderForm renders the swap input form.
func (m Model) renderForm() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	dimStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("SWAP"))
	sb.WriteString("\n\n")

	from := m.symbolAt(m.fromIdx)
	to := m.symbolAt(m.toIdx)
	if from == "" {
		sb.WriteString(dimStyle.Render("  Waiting for portfolio..."))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  From:     %s  %s\n",
		PositiveValue.Render(from), dimStyle.Render("←/→")))
	sb.WriteString(fmt.Sprintf("  To:       %s  %s\n",
		PositiveValue.Render(to), dimStyle.Render("↑/↓")))
	sb.WriteString(fmt.Sprintf("  Amount:   %s\n", m.amount.View()))
	sb.WriteString(fmt.Sprintf("  Slippage: %.2f%%  %s\n",
		float64(slippagePresets[m.slippageIdx])/100, dimStyle.Render("ctrl+s")))

	mevState := NegativeValue.Render("off")
	if m.mev {
		mevState = PositiveValue.Render("on")
	}
	sb.WriteString(fmt.Sprintf("  MEV protection: %s\n", mevState))

	return sb.String()
}

// renderResultBanner renders the success/failure banner after an execution.
func (m Model) renderResultBanner() string {
	if m.result == nil {
		return ""
	}

	if m.result.Succeeded() {
		msg := fmt.Sprintf("  ✓ Swapped %s %s for %s %s",
			m.result.FromAmount.String(), m.result.FromSymbol,
			m.result.ToAmount.Round(6).String(), m.result.ToSymbol)
		if m.result.Confirmation != "" {
			msg += MutedValue.Render("  " + m.result.Confirmation)
		}
		return StatusConnected.Render(msg)
	}

	return NegativeValue.Render("  ✗ Swap failed: " + m.result.FailureReason)
}

func (m Model) renderFullHelp() string {
	var lines []string
	for _, group := range m.keys.FullHelp() {
		var parts []string
		for _, binding := range group {
			parts = append(parts, fmt.Sprintf("%s: %s", binding.Help().Key, binding.Help().Desc))
		}
		lines = append(lines, strings.Join(parts, " • "))
	}
	return HelpStyle.Render(strings.Join(lines, "\n"))
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	greenStyle := lipgloss.NewStyle().Foreground(ColorSecondary)

	elapsed := time.Since(m.welcomeStart)
	dotCount := int(elapsed.Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder
	sb.WriteString("\n\n\n\n")

	logo := `
   ███████╗██╗    ██╗ █████╗ ██████╗ ██████╗ ███████╗███████╗██╗  ██╗
   ██╔════╝██║    ██║██╔══██╗██╔══██╗██╔══██╗██╔════╝██╔════╝██║ ██╔╝
   ███████╗██║ █╗ ██║███████║██████╔╝██║  ██║█████╗  ███████╗█████╔╝
   ╚════██║██║███╗██║██╔══██║██╔═══╝ ██║  ██║██╔══╝  ╚════██║██╔═██╗
   ███████║╚███╔███╔╝██║  ██║██║     ██████╔╝███████╗███████║██║  ██╗
   ╚══════╝ ╚══╝╚══╝ ╚═╝  ╚═╝╚═╝     ╚═════╝ ╚══════╝╚══════╝╚═╝  ╚═╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("              M E V - P R O T E C T E D   S W A P S"))
	sb.WriteString("\n\n\n")
	sb.WriteString(greenStyle.Render(fmt.Sprintf("                  Loading portfolio%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("            Press any key to skip, or wait..."))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	// Wallet
	if m.walletOn && m.deps.WalletAddress != "" {
		short := m.deps.WalletAddress
		if len(short) > 10 {
			short = short[:6] + "…" + short[len(short)-4:]
		}
		parts = append(parts, StatusConnected.Render("● "+short))
	} else {
		parts = append(parts, StatusDisconnected.Render("○ wallet disconnected"))
	}

	// Collaborators
	for _, name := range []string{"Trading", "Prices"} {
		info := m.connectionState[name]
		if info != nil && info.Connected {
			parts = append(parts, StatusConnected.Render("● "+name))
		} else {
			parts = append(parts, StatusDisconnected.Render("○ "+name))
		}
	}

	// Slippage and chain
	parts = append(parts, MutedValue.Render(fmt.Sprintf("chain %d", m.deps.ChainID)))

	if m.errorMsg != "" {
		parts = append(parts, NegativeValue.Render(m.errorMsg))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// Run starts the Bubble Tea program and blocks until it exits.
func Run(deps Deps) error {
	Program = tea.NewProgram(New(deps), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
