package tui

import (
	"context"
	"fmt"
	"strings"

	"loan-intake/internal/form"
	"loan-intake/internal/identifier"
	"loan-intake/internal/sanitize"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Field labels shown to the applicant.
const (
	labelName          = "Nome"
	labelPersonKind    = "Tipo de pessoa"
	labelIndividual    = "Pessoa Física"
	labelOrganization  = "Pessoa Jurídica"
	labelAmountDue     = "Valor devido atual"
	labelRequested     = "Valor solicitado"
	labelSubmit        = "Solicitar empréstimo"
	labelSubmitting    = "Enviando..."
	helpText           = "tab/shift+tab: navegar • ←/→: tipo de pessoa • enter: enviar • esc: sair"
)

type focusIndex int

const (
	focusKind focusIndex = iota
	focusDocument
	focusName
	focusRequested
	focusSubmit
	focusCount
)

// draftMsg signals that the controller state changed. The model reads the
// current snapshot when handling it.
type draftMsg struct{}

type submitDoneMsg form.Outcome

// Model is the terminal binding of a form.Controller. It renders the
// controller state and forwards user events to it.
type Model struct {
	ctrl    *form.Controller
	ctx     context.Context
	updates chan struct{}
	cancel  func()

	draft form.Draft
	focus focusIndex

	document  textinput.Model
	name      textinput.Model
	requested textinput.Model
	spinner   spinner.Model
}

// NewModel subscribes to ctrl. Close releases the subscription.
func NewModel(ctx context.Context, ctrl *form.Controller) *Model {
	updates := make(chan struct{}, 1)
	cancel := ctrl.Subscribe(func(form.Draft) {
		select {
		case updates <- struct{}{}:
		default:
			// A wake-up is already pending.
		}
	})

	document := textinput.New()
	document.Placeholder = "somente números"

	name := textinput.New()
	name.Placeholder = "Nome completo"
	name.CharLimit = sanitize.MaxNameLength

	requested := textinput.New()
	requested.Placeholder = "0"
	requested.CharLimit = sanitize.MaxRequestedDigits

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = NoticeStyle.UnsetMarginTop()

	return &Model{
		ctrl:      ctrl,
		ctx:       ctx,
		updates:   updates,
		cancel:    cancel,
		draft:     ctrl.Snapshot(),
		focus:     focusKind,
		document:  document,
		name:      name,
		requested: requested,
		spinner:   sp,
	}
}

// Close stops listening to the controller.
func (m *Model) Close() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForDraft())
}

func (m *Model) waitForDraft() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.updates:
			return draftMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) submit() tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg(m.ctrl.Submit(m.ctx))
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case draftMsg:
		m.sync(m.ctrl.Snapshot())
		return m, m.waitForDraft()

	case submitDoneMsg:
		m.sync(m.ctrl.Snapshot())
		if form.Outcome(msg).Status == form.StatusDecided {
			m.setFocus(focusKind)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, m.forwardToInput(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		return tea.Quit

	case "tab", "down":
		m.setFocus(m.next(1))
		return nil

	case "shift+tab", "up":
		m.setFocus(m.next(-1))
		return nil

	case "enter":
		if m.focus != focusSubmit {
			m.setFocus(m.next(1))
			return nil
		}
		if m.draft.Submitting {
			return nil
		}
		m.draft.Submitting = true
		return tea.Batch(m.submit(), m.spinner.Tick)
	}

	if m.focus == focusKind {
		switch msg.String() {
		case "left", "right", " ", "h", "l":
			m.ctrl.SetPersonKind(toggleKind(m.draft.PersonKind(), msg.String()))
			m.sync(m.ctrl.Snapshot())
		}
		return nil
	}

	return m.updateFocusedInput(msg)
}

func toggleKind(current identifier.Kind, key string) identifier.Kind {
	switch current {
	case identifier.Individual:
		return identifier.Organization
	case identifier.Organization:
		return identifier.Individual
	}
	if key == "left" || key == "h" {
		return identifier.Organization
	}
	return identifier.Individual
}

// forwardToInput passes non-key messages such as cursor blinks to the
// focused input.
func (m *Model) forwardToInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusDocument:
		m.document, cmd = m.document.Update(msg)
	case focusName:
		m.name, cmd = m.name.Update(msg)
	case focusRequested:
		m.requested, cmd = m.requested.Update(msg)
	}
	return cmd
}

// updateFocusedInput feeds a keystroke to the focused text input and writes
// the sanitized controller value back, so rejected keystrokes never show.
func (m *Model) updateFocusedInput(msg tea.KeyMsg) tea.Cmd {
	cmd := m.forwardToInput(msg)
	switch m.focus {
	case focusDocument:
		field := form.FieldCPF
		if m.draft.PersonKind() == identifier.Organization {
			field = form.FieldCNPJ
		}
		m.ctrl.ChangeField(field, m.document.Value())
	case focusName:
		m.ctrl.ChangeField(form.FieldName, m.name.Value())
	case focusRequested:
		m.ctrl.ChangeField(form.FieldRequestedAmount, m.requested.Value())
	default:
		return nil
	}
	m.sync(m.ctrl.Snapshot())
	return cmd
}

// sync copies controller state into the inputs.
func (m *Model) sync(d form.Draft) {
	m.draft = d

	m.document.CharLimit = d.PersonKind().Length()
	setIfChanged(&m.document, d.Document.Number)
	setIfChanged(&m.name, d.Name)

	requested := d.RequestedAmount
	if requested == "0" && m.requested.Value() == "" {
		requested = ""
	}
	setIfChanged(&m.requested, requested)

	if d.PersonKind() == identifier.Unset && m.focus == focusDocument {
		m.focus = focusKind
		m.document.Blur()
	}
}

func setIfChanged(in *textinput.Model, value string) {
	if in.Value() != value {
		in.SetValue(value)
	}
}

func (m *Model) next(step int) focusIndex {
	f := m.focus
	for {
		f = (f + focusIndex(step) + focusCount) % focusCount
		if f == focusDocument && m.draft.PersonKind() == identifier.Unset {
			continue
		}
		return f
	}
}

// setFocus moves focus, running the identifier check when the document
// field loses it.
func (m *Model) setFocus(f focusIndex) {
	if m.focus == focusDocument && f != focusDocument {
		m.ctrl.BlurIdentifier(m.draft.PersonKind())
		m.sync(m.ctrl.Snapshot())
	}
	m.focus = f

	m.document.Blur()
	m.name.Blur()
	m.requested.Blur()
	switch f {
	case focusDocument:
		m.document.Focus()
	case focusName:
		m.name.Focus()
	case focusRequested:
		m.requested.Focus()
	}
}

func (m *Model) label(f focusIndex, text string) string {
	if m.focus == f {
		return FocusedLabelStyle.Render(text)
	}
	return LabelStyle.Render(text)
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Solicitação de empréstimo"))
	b.WriteString("\n")

	b.WriteString(m.label(focusKind, labelPersonKind))
	b.WriteString(m.kindOptions())
	b.WriteString("\n")

	if kind := m.draft.PersonKind(); kind != identifier.Unset {
		input := m.document.View()
		switch m.draft.ValidityOf(kind) {
		case form.Invalid:
			input = InvalidFieldStyle.Render(input + "  ✗")
		case form.Valid:
			input = ValidFieldStyle.Render(input + "  ✓")
		}
		b.WriteString(m.label(focusDocument, kind.Label()))
		b.WriteString(input)
		b.WriteString("\n")
	}

	b.WriteString(m.label(focusName, labelName))
	b.WriteString(m.name.View())
	b.WriteString("\n")

	b.WriteString(LabelStyle.Render(labelAmountDue))
	b.WriteString(ReadOnlyStyle.Render(fmt.Sprintf("R$ %.2f", m.draft.AmountDue)))
	b.WriteString("\n")

	b.WriteString(m.label(focusRequested, labelRequested))
	b.WriteString(m.requested.View())
	b.WriteString("\n\n")

	b.WriteString(m.button())

	if m.draft.FormError != "" {
		b.WriteString("\n")
		b.WriteString(ErrorMessageStyle.Render(m.draft.FormError))
	}
	if m.draft.Notice != "" {
		b.WriteString("\n")
		if m.draft.Notice == form.MsgSubmissionFailed {
			b.WriteString(ErrorMessageStyle.Render(m.draft.Notice))
		} else {
			b.WriteString(NoticeStyle.Render(m.draft.Notice))
		}
	}

	return BoxStyle.Render(b.String()) + "\n" + HelpStyle.Render(helpText) + "\n"
}

func (m *Model) kindOptions() string {
	options := []struct {
		kind  identifier.Kind
		label string
	}{
		{identifier.Individual, labelIndividual},
		{identifier.Organization, labelOrganization},
	}

	var parts []string
	for _, o := range options {
		if m.draft.PersonKind() == o.kind {
			parts = append(parts, SelectedOptionStyle.Render("(•) "+o.label))
		} else {
			parts = append(parts, OptionStyle.Render("( ) "+o.label))
		}
	}
	return strings.Join(parts, "")
}

func (m *Model) button() string {
	switch {
	case m.draft.Submitting:
		return DisabledButtonStyle.Render(m.spinner.View() + " " + labelSubmitting)
	case m.focus == focusSubmit:
		return FocusedButtonStyle.Render(labelSubmit)
	default:
		return ButtonStyle.Render(labelSubmit)
	}
}
