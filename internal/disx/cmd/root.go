// Package cmd implements the disx command tree: an interactive TUI on the
// root command plus non-interactive listing, byte-decoding and streaming
// subcommands.
package cmd

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	pathpkg "path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/term"
	"github.com/ianlancetaylor/demangle"
	"github.com/spf13/cobra"

	"disx/internal/disx/log"
	"disx/internal/disx/styles"
	"disx/internal/elfx"
	"disx/internal/sweep"
	"disx/internal/ui/colorize"
)

type viewMode int

const (
	viewListing viewMode = iota
	viewSymbols
)

type symbolItem struct {
	address    uint64
	original   string
	demangled  string
	filterTerm string
}

func (i symbolItem) Title() string       { return fmt.Sprintf("%x  %s", i.address, i.demangled) }
func (i symbolItem) Description() string { return "" }
func (i symbolItem) FilterValue() string { return i.filterTerm }

// itemDelegate renders one symbol row: gray address, demangled name.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(symbolItem)
	if !ok {
		return
	}

	indicator := " "
	addrStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if index == m.Index() {
		indicator = ">"
		addrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	}

	fmt.Fprintf(w, " %s  %s  %s",
		indicator,
		addrStyle.Render(fmt.Sprintf("%x", i.address)),
		i.demangled)
}

type model struct {
	viewport    viewport.Model
	symbolsList list.Model
	spinner     spinner.Model
	mode        viewMode

	filepath    string
	digest      string
	img         *elfx.Image
	listing     []sweep.Line
	symbolCount int

	loadingImage  bool
	loadingDigest bool
	loadErr       error

	width  int
	height int
}

// Message types
type digestMsg struct {
	digest string
}

type imageMsg struct {
	img   *elfx.Image
	lines []sweep.Line
	syms  []elfx.Sym
	err   error
}

// Commands
func calculateDigestCmd(filepath string) tea.Cmd {
	return func() tea.Msg {
		file, err := os.Open(filepath)
		if err != nil {
			return digestMsg{digest: fmt.Sprintf("error: %v", err)}
		}
		defer file.Close()

		hash := sha256.New()
		if _, err := io.Copy(hash, file); err != nil {
			return digestMsg{digest: fmt.Sprintf("error: %v", err)}
		}
		return digestMsg{digest: fmt.Sprintf("%x", hash.Sum(nil))}
	}
}

func loadImageCmd(filepath string) tea.Cmd {
	return func() tea.Msg {
		img, err := elfx.Open(filepath)
		if err != nil {
			return imageMsg{err: err}
		}
		text, ok := img.TextBytes()
		if !ok {
			img.Close()
			return imageMsg{err: fmt.Errorf("no text section in %s", filepath)}
		}
		return imageMsg{
			img:   img,
			lines: sweep.Scan(text),
			syms:  img.TextSymbols(),
		}
	}
}

func NewModel(filepath string) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	symbolsList := list.New([]list.Item{}, itemDelegate{}, 80, 24)
	symbolsList.SetShowStatusBar(false)
	symbolsList.SetFilteringEnabled(true)
	symbolsList.Title = "Symbols"
	symbolsList.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)
	symbolsList.SetShowHelp(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	m := model{
		viewport:      vp,
		symbolsList:   symbolsList,
		spinner:       s,
		mode:          viewListing,
		filepath:      filepath,
		loadingImage:  true,
		loadingDigest: true,
		width:         80,
		height:        24,
	}
	m.updateContent()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		calculateDigestCmd(m.filepath),
		loadImageCmd(m.filepath),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case digestMsg:
		m.digest = msg.digest
		m.loadingDigest = false
		m.updateContent()
		return m, nil

	case imageMsg:
		m.loadingImage = false
		if msg.err != nil {
			m.loadErr = msg.err
			m.updateContent()
			return m, nil
		}
		m.img = msg.img
		m.listing = msg.lines
		m.symbolCount = len(msg.syms)
		m.updateSymbolsList(msg.syms)
		m.updateContent()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.loadingDigest || m.loadingImage {
			m.updateContent()
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.viewport.SetWidth(msg.Width)
			m.viewport.SetHeight(msg.Height - 2)
			m.symbolsList.SetWidth(msg.Width)
			m.symbolsList.SetHeight(msg.Height - 2)
			m.updateContent()
		}

	case tea.KeyMsg:
		if m.mode == viewSymbols && m.symbolsList.FilterState() == list.Filtering {
			switch msg.String() {
			case "q", "ctrl+c":
				m.closeImage()
				return m, tea.Quit
			}
		} else {
			switch msg.String() {
			case "q", "ctrl+c":
				m.closeImage()
				return m, tea.Quit
			case "l":
				m.mode = viewListing
				return m, nil
			case "s":
				if m.symbolCount > 0 {
					m.mode = viewSymbols
				}
				return m, nil
			case "tab":
				if m.mode == viewListing && m.symbolCount > 0 {
					m.mode = viewSymbols
				} else {
					m.mode = viewListing
				}
				return m, nil
			case "enter":
				if m.mode == viewSymbols {
					if selected := m.symbolsList.SelectedItem(); selected != nil {
						if sym, ok := selected.(symbolItem); ok && m.img != nil {
							if content := m.symbolAssembly(sym); content != "" {
								m.mode = viewListing
								m.viewport.SetContent(content)
								m.viewport.GotoTop()
							}
						}
					}
				}
				return m, nil
			}
		}
	}

	switch m.mode {
	case viewSymbols:
		m.symbolsList, cmd = m.symbolsList.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	var content string
	switch m.mode {
	case viewSymbols:
		content = m.symbolsList.View()
	default:
		content = m.viewport.View()
	}

	var menu string
	switch m.mode {
	case viewSymbols:
		menu = " Enter: view assembly • L: listing • Tab: cycle • Q: quit "
	default:
		if m.symbolCount > 0 {
			menu = " S: symbols • Tab: cycle • Q: quit "
		} else {
			menu = " Q: quit "
		}
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

func (m *model) closeImage() {
	if m.img != nil {
		m.img.Close()
	}
}

// updateContent rebuilds the listing pane: a glamour header followed by
// the colorized sweep of the text section.
func (m *model) updateContent() {
	relPath := m.filepath
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := pathpkg.Rel(cwd, m.filepath); err == nil {
			relPath = rel
		}
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("; %s", relPath))
	if m.digest != "" {
		lines = append(lines, fmt.Sprintf("; %s", m.digest))
	} else if m.loadingDigest {
		lines = append(lines, "; Calculating digest...")
	}
	if m.img != nil {
		lines = append(lines, fmt.Sprintf("; %s  va=%#x  size=%d", m.img.Text.Name, m.img.Text.VA, m.img.Text.Size))
	}
	if m.loadErr != nil {
		lines = append(lines, fmt.Sprintf("; load error: %v", m.loadErr))
	}

	markdown := fmt.Sprintf("# disx\n\n```\n%s\n```", strings.Join(lines, "\n"))
	if m.loadingImage {
		markdown += fmt.Sprintf("\n\n%s Disassembling...", m.spinner.View())
	}

	width := m.width
	if width == 0 {
		width = 80
	}
	renderer := styles.GetMarkdownRenderer(width - 2)
	rendered, _ := renderer.Render(markdown)

	var sb strings.Builder
	sb.WriteString(strings.TrimSuffix(rendered, "\n"))
	if len(m.listing) > 0 {
		sb.WriteString("\n")
		for _, l := range m.listing {
			sb.WriteString(" " + colorize.ColorizeInstructionLine(l.String()) + "\n")
		}
	}
	m.viewport.SetContent(sb.String())
}

func (m *model) updateSymbolsList(syms []elfx.Sym) {
	items := make([]list.Item, 0, len(syms))
	for _, sym := range syms {
		demangled := demangle.Filter(sym.Name)
		if demangled == "" {
			demangled = sym.Name
		}
		items = append(items, symbolItem{
			address:    sym.Addr,
			original:   sym.Name,
			demangled:  demangled,
			filterTerm: fmt.Sprintf("%x %s", sym.Addr, demangled),
		})
	}
	m.symbolsList.SetItems(items)
	m.symbolsList.Title = fmt.Sprintf("Symbols (%d total)", len(syms))
}

// symbolAssembly disassembles from the symbol to its first return.
func (m *model) symbolAssembly(sym symbolItem) string {
	text, ok := m.img.TextBytes()
	if !ok || sym.address < m.img.Text.VA {
		return ""
	}
	start := int(sym.address - m.img.Text.VA)
	if start >= len(text) {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(" ; %s\n", sym.demangled))
	if sym.original != sym.demangled {
		sb.WriteString(fmt.Sprintf(" ; mangled: %s\n", sym.original))
	}
	sb.WriteString(fmt.Sprintf(" ; va %#x\n\n", sym.address))
	for _, l := range sweep.ScanFunc(text, start, 500) {
		sb.WriteString(" " + colorize.ColorizeInstructionLine(l.String()) + "\n")
	}
	return sb.String()
}

var rootCmd = &cobra.Command{
	Use:   "disx [file]",
	Short: "Terminal-based x86-64 disassembler",
	Long: `Disx disassembles the text section of x86-64 ELF binaries with its own
single-instruction decoder. The root command opens an interactive TUI with
listing and symbol views; use the subcommands for non-interactive output.`,
	Example: `
# Explore a binary interactively
disx /path/to/binary

# Plain listing on stdout
disx dump /path/to/binary

# Decode bytes straight from the command line
disx bytes 48 83 c0 01
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		log.Setup(debug)

		path, err := pathpkg.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}

		noTUI, _ := cmd.Flags().GetBool("no-tui")
		if noTUI {
			return runListing(path, false)
		}

		program := tea.NewProgram(
			NewModel(path),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
	rootCmd.Flags().BoolP("no-tui", "n", false, "Print the listing without the TUI")

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(bytesCmd)
	rootCmd.AddCommand(followCmd)
}

func Execute() {
	// --no-tui and piped output both bypass fang's markdown rendering
	noTUI := false
	for _, arg := range os.Args[1:] {
		if arg == "--no-tui" || arg == "-n" {
			noTUI = true
			break
		}
	}
	if !noTUI && !term.IsTerminal(os.Stdout.Fd()) {
		noTUI = true
	}

	if noTUI {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
	} else {
		if err := fang.Execute(
			context.Background(),
			rootCmd,
			fang.WithNotifySignal(os.Interrupt),
		); err != nil {
			os.Exit(1)
		}
	}
}
