package preview

import (
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobwatch/internal/matcher"
	"github.com/amishk599/jobwatch/internal/model"
)

// Lines per listing in the list view (title + subtitle + blank separator).
const listingItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	listingTitleStyle = lipgloss.NewStyle().
				Bold(true)

	listingSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(16)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	noMatchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

type previewModel struct {
	sub           model.Subscription
	newListings   []model.Listing // posted after the watermark
	matched       []model.Listing
	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int // 0=left, 1=right
	leftCursor    int
	rightCursor   int
	width         int
	height        int
	ready         bool

	view           viewState
	detailListing  model.Listing
	detailViewport viewport.Model

	wantQuit bool
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m previewModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		m.wantQuit = false
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == 0 {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m previewModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		openURL(m.detailListing.Link)
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *previewModel) moveCursor(delta int) {
	if m.activePane == 0 {
		m.leftCursor = clamp(m.leftCursor+delta, 0, max(len(m.newListings)-1, 0))
	} else {
		m.rightCursor = clamp(m.rightCursor+delta, 0, max(len(m.matched)-1, 0))
	}
}

func (m *previewModel) ensureCursorVisible() {
	var vp *viewport.Model
	var cursor int
	if m.activePane == 0 {
		vp = &m.leftViewport
		cursor = m.leftCursor
	} else {
		vp = &m.rightViewport
		cursor = m.rightCursor
	}

	cursorTop := cursor * listingItemHeight
	cursorBottom := cursorTop + listingItemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m previewModel) openDetailView() (tea.Model, tea.Cmd) {
	listings := m.activeListings()
	if len(listings) == 0 {
		return m, nil
	}

	m.view = viewDetail
	m.detailListing = listings[m.activeCursor()]
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *previewModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *previewModel) recalcContent() {
	m.leftViewport.SetContent(renderListings(m.newListings, m.leftCursor, m.activePane == 0))
	m.rightViewport.SetContent(renderListings(m.matched, m.rightCursor, m.activePane == 1))
}

func (m previewModel) activeListings() []model.Listing {
	if m.activePane == 0 {
		return m.newListings
	}
	return m.matched
}

func (m previewModel) activeCursor() int {
	if m.activePane == 0 {
		return m.leftCursor
	}
	return m.rightCursor
}

func (m previewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.view == viewDetail {
		return m.viewDetail()
	}

	return m.viewList()
}

func (m previewModel) viewList() string {
	paneWidth := m.leftViewport.Width

	leftHeader := fmt.Sprintf(" New Listings (%d)", len(m.newListings))
	rightHeader := fmt.Sprintf(" Would Notify (%d)", len(m.matched))

	var leftHeaderRendered, rightHeaderRendered string
	var leftBorder, rightBorder lipgloss.Style

	if m.activePane == 0 {
		leftHeaderRendered = activeHeaderStyle.Render(leftHeader)
		rightHeaderRendered = inactiveHeaderStyle.Render(rightHeader)
		leftBorder = activeBorderStyle.Width(paneWidth)
		rightBorder = inactiveBorderStyle.Width(paneWidth)
	} else {
		leftHeaderRendered = inactiveHeaderStyle.Render(leftHeader)
		rightHeaderRendered = activeHeaderStyle.Render(rightHeader)
		leftBorder = inactiveBorderStyle.Width(paneWidth)
		rightBorder = activeBorderStyle.Width(paneWidth)
	}

	leftPane := leftBorder.Render(m.leftViewport.View())
	rightPane := rightBorder.Render(m.rightViewport.View())

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderRendered),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderRendered),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, " ", rightPane)

	statusText := fmt.Sprintf(" %s | since %s | %d new | %d matched    ←/→/Tab switch  ↑/↓ cursor  Enter detail  Esc back  q quit",
		m.sub.Email, watermarkLabel(m.sub), len(m.newListings), len(m.matched))
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m previewModel) viewDetail() string {
	title := detailTitleStyle.Render("Listing Details")

	border := activeBorderStyle.Width(m.width - 2)
	content := border.Render(m.detailViewport.View())

	statusBar := statusBarStyle.Width(m.width).Render(" o open link  esc/backspace back  ↑/↓ scroll  q quit")

	return title + "\n" + content + "\n" + statusBar
}

func (m previewModel) renderDetail() string {
	l := m.detailListing
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Title", l.Title)
	addField("Company", l.Company)
	addField("Location", l.Location)
	addField("Posted", postedLabel(l))
	addField("Link", l.Link)

	b.WriteByte('\n')
	b.WriteString(detailLabelStyle.Render("Criteria"))
	b.WriteByte('\n')
	b.WriteString(renderCriteria(m.sub.Criteria, l))
	return b.String()
}

// renderCriteria lists each criterion with a marker showing whether it
// matches the listing.
func renderCriteria(criteria []model.Criterion, l model.Listing) string {
	if len(criteria) == 0 {
		return noMatchStyle.Render("  (no criteria, never matches)") + "\n"
	}
	var b strings.Builder
	for _, c := range criteria {
		line := fmt.Sprintf("%s contains %q", c.Type, c.Value)
		if matcher.MatchAny([]model.Criterion{c}, l) {
			b.WriteString(matchStyle.Render("  ✓ " + line))
		} else {
			b.WriteString(noMatchStyle.Render("  ✗ " + line))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func renderListings(listings []model.Listing, cursor int, isActive bool) string {
	if len(listings) == 0 {
		return "  (no listings)"
	}

	var b strings.Builder
	for i, l := range listings {
		isSelected := isActive && i == cursor

		titleSt := listingTitleStyle
		subtitleSt := listingSubtitleStyle
		prefix := "  "
		if isSelected {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(l.Title))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · %s", l.Company, l.Location, postedLabel(l))))
		b.WriteByte('\n')

		if i < len(listings)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func postedLabel(l model.Listing) string {
	if l.PostedAt.IsZero() {
		return "n/a"
	}
	return l.PostedAt.Format("2006-01-02")
}

func watermarkLabel(sub model.Subscription) string {
	if sub.LastNotified.IsZero() {
		return "never notified"
	}
	return sub.LastNotified.Format("2006-01-02 15:04")
}

func sortListingsByDate(listings []model.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].PostedAt.After(listings[j].PostedAt)
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	if url == "" {
		return
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// RunPreviewTUI launches the split-pane preview for one subscription: new
// listings on the left, the ones that would be emailed on the right.
// Nothing is sent or written.
// Returns wantQuit=true if the user pressed q/ctrl+c, false if they pressed
// esc to return to the picker.
func RunPreviewTUI(sub model.Subscription, listings []model.Listing) (bool, error) {
	m := newPreviewModel(sub, listings)

	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	final := result.(previewModel)
	return final.wantQuit, nil
}

func newPreviewModel(sub model.Subscription, listings []model.Listing) previewModel {
	fresh := matcher.NewSince(listings, sub.LastNotified)
	matched := matcher.Match(sub, listings)
	sortListingsByDate(fresh)
	sortListingsByDate(matched)

	return previewModel{
		sub:         sub,
		newListings: fresh,
		matched:     matched,
	}
}
