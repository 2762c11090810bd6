package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/answer"
	"docqa/internal/domain"
	"docqa/internal/service"
	"docqa/internal/textproc"
)

const (
	noticeUploaded   = "Document %q uploaded and processed successfully! (%d chunks, %d words)"
	noticeFailed     = "Failed to process the document."
	noticeNoDocument = "Please upload a document first."
	noticeHelp       = "/open <file.txt|file.pdf> to upload · /context to show retrieved text · Ctrl+C to quit"
)

// Port is the TUI-facing subset of the question answering service.
type Port interface {
	IngestFile(ctx context.Context, path string) (service.Ingested, error)
	Ask(ctx context.Context, query string) (service.Reply, error)
	Current() (domain.Document, bool)
}

// Tokenizer highlights query words in the retrieved context view.
type Tokenizer interface {
	Tokenize(text string) []string
}

type ingestedMsg struct {
	res service.Ingested
	err error
}

type answeredMsg struct {
	query string
	reply service.Reply
	err   error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx         context.Context
	service     Port
	tokenizer   Tokenizer
	input       textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model
	startupFile string
	busy        bool
	ready       bool
	showContext bool
	document    string
	summary     string
	status      string
	isError     bool
	lastQuery   string
	reply       service.Reply
}

// New creates a new TUI model instance.
func New(ctx context.Context, svc Port, tokenizer Tokenizer) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question based on the document"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	vp := viewport.New(0, 0)
	return Model{
		ctx:       ctx,
		service:   svc,
		tokenizer: tokenizer,
		input:     ti,
		viewport:  vp,
		spinner:   sp,
		status:    noticeHelp,
	}
}

// WithStartupFile makes the program ingest path as soon as it starts.
func (m Model) WithStartupFile(path string) Model {
	if path == "" {
		return m
	}
	m.startupFile = path
	m.busy = true
	m.status = "Processing " + path + "..."
	return m
}

// Upload starts ingesting path in the background.
func (m Model) Upload(path string) (Model, tea.Cmd) {
	m.busy = true
	m.status = "Processing " + path + "..."
	return m, tea.Batch(m.ingest(path), m.spinner.Tick)
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd {
	if m.startupFile != "" {
		return tea.Batch(textinput.Blink, m.ingest(m.startupFile), m.spinner.Tick)
	}
	return textinput.Blink
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 3 + 1 + qh + 1 // header, document, summary; status; spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderBody())
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ingestedMsg:
		m.busy = false
		m.reply = service.Reply{}
		if msg.err != nil {
			m.document, m.summary = "", ""
			m.setStatus(noticeFailed, true)
		} else {
			m.document = msg.res.Document.Name
			m.summary = msg.res.Summary
			m.setStatus(fmt.Sprintf(noticeUploaded, msg.res.Document.Name, msg.res.Chunks, msg.res.VocabSize), false)
		}
		m.viewport.SetContent(m.renderBody())
		return m, nil

	case answeredMsg:
		m.busy = false
		m.lastQuery = msg.query
		m.reply = msg.reply
		switch {
		case errors.Is(msg.err, service.ErrNoDocument):
			m.setStatus(noticeNoDocument, true)
		case errors.Is(msg.err, answer.ErrGeneratorUnavailable):
			m.setStatus("Answer service unavailable.", true)
		case msg.err != nil:
			m.setStatus("Could not generate an answer.", true)
		default:
			m.setStatus(fmt.Sprintf("Answered %q from %d context chunk(s).", msg.query, len(msg.reply.Context)), false)
		}
		m.viewport.SetContent(m.renderBody())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.busy {
				return m, nil
			}
			return m.submit(strings.TrimSpace(m.input.Value()))
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	if line == "" {
		return m, nil
	}
	m.input.SetValue("")

	switch {
	case line == "/quit":
		return m, tea.Quit
	case line == "/context":
		m.showContext = !m.showContext
		m.viewport.SetContent(m.renderBody())
		return m, nil
	case line == "/open" || strings.HasPrefix(line, "/open "):
		path := strings.TrimSpace(strings.TrimPrefix(line, "/open"))
		if path == "" {
			m.setStatus("Usage: /open <file.txt|file.pdf>", true)
			return m, nil
		}
		up, cmd := m.Upload(path)
		return up, cmd
	}

	if _, ok := m.service.Current(); !ok {
		m.setStatus(noticeNoDocument, true)
		return m, nil
	}
	m.busy = true
	m.status = "Thinking..."
	return m, tea.Batch(m.ask(line), m.spinner.Tick)
}

func (m *Model) setStatus(s string, isError bool) {
	m.status = s
	m.isError = isError
}

func (m Model) ingest(path string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.service.IngestFile(m.ctx, path)
		return ingestedMsg{res: res, err: err}
	}
}

func (m Model) ask(query string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.service.Ask(m.ctx, query)
		return answeredMsg{query: query, reply: reply, err: err}
	}
}

// View renders the TUI layout and current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Document Q&A")
	doc := mutedStyle.Render("No document loaded.")
	if m.document != "" {
		doc = "Document: " + m.document
	}
	summary := mutedStyle.Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := okStyle.Render(m.status)
	if m.isError {
		status = errorStyle.Render(m.status)
	}
	if m.busy {
		status = m.spinner.View() + " " + m.status
	}
	body := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + doc + "\n" + summary + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderBody() string {
	if m.reply.Answer == "" {
		return "No answer yet."
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("AI Response:"))
	b.WriteString("\n")
	b.WriteString(m.reply.Answer)
	if m.showContext {
		b.WriteString("\n\n")
		b.WriteString(headerStyle.Render("Retrieved context:"))
		if len(m.reply.Context) == 0 && m.reply.Answer != answer.Fallback {
			b.WriteString("\n" + mutedStyle.Render("No relevant context found."))
		}
		for i, sc := range m.reply.Context {
			title := fmt.Sprintf("Chunk %d (%d/%d)  score=%.3f", sc.Chunk.Index, i+1, len(m.reply.Context), sc.Score)
			b.WriteString("\n" + mutedStyle.Render(title) + "\n")
			b.WriteString(m.highlightBestSentence(sc.Chunk.Content, m.lastQuery))
		}
	}
	return b.String()
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// highlightBestSentence emphasises the sentence sharing most words with query.
func (m Model) highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := textproc.Sentences(text)
	qTokens := make(map[string]struct{})
	for _, t := range m.tokenizer.Tokenize(query) {
		qTokens[t] = struct{}{}
	}
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx, bestScore := 0, -1
	for i, s := range sentences {
		if score := m.overlap(qTokens, s); score > bestScore {
			bestScore, bestIdx = score, i
		}
	}
	sentences[bestIdx] = highlightStyle.Render(sentences[bestIdx])
	return strings.Join(sentences, " ")
}

func (m Model) overlap(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := make(map[string]struct{})
	for _, t := range m.tokenizer.Tokenize(sentence) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
