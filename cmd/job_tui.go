package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"arma3-server-manager/arma"
	"arma3-server-manager/ui"
)

// jobPoller is the part of the backend client that follows async jobs.
type jobPoller interface {
	PollJob(ctx context.Context, jobID string, interval time.Duration, maxAttempts int, onStatus func(arma.JobStatus)) arma.JobStatus
}

type jobRef struct {
	Label string
	ID    string
}

// JobProgressMsg represents a status change of one job.
type JobProgressMsg struct {
	Type    string // "status", "finished", "done"
	Label   string
	Status  string
	Message string
}

// JobModel follows a set of backend jobs until each reaches a terminal status.
type JobModel struct {
	spinner      spinner.Model
	progressChan chan JobProgressMsg
	poller       jobPoller
	jobs         []jobRef
	ctx          context.Context

	status    map[string]string
	succeeded []string
	failed    []string
	done      bool
}

func initialJobModel(ctx context.Context, poller jobPoller, jobs []jobRef) JobModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	status := make(map[string]string, len(jobs))
	for _, j := range jobs {
		status[j.Label] = "PENDING"
	}
	return JobModel{
		spinner:      s,
		progressChan: make(chan JobProgressMsg, 100),
		poller:       poller,
		jobs:         jobs,
		ctx:          ctx,
		status:       status,
	}
}

func (m JobModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startPolling(),
		m.waitForActivity(),
	)
}

func (m JobModel) startPolling() tea.Cmd {
	return func() tea.Msg {
		go func() {
			defer close(m.progressChan)
			pollJobs(m.ctx, m.poller, m.jobs, m.progressChan)
		}()
		return nil
	}
}

// pollJobs follows every job concurrently and reports through progress.
func pollJobs(ctx context.Context, poller jobPoller, jobs []jobRef, progress chan<- JobProgressMsg) {
	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job jobRef) {
			defer wg.Done()
			final := poller.PollJob(ctx, job.ID, arma.DefaultPollInterval, arma.DefaultPollMaxAttempts, func(s arma.JobStatus) {
				progress <- JobProgressMsg{Type: "status", Label: job.Label, Status: s.Status, Message: s.Message}
			})
			progress <- JobProgressMsg{Type: "finished", Label: job.Label, Status: final.Status, Message: final.Message}
		}(job)
	}
	wg.Wait()
}

func (m JobModel) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.progressChan
		if !ok {
			return JobProgressMsg{Type: "done"}
		}
		return msg
	}
}

func (m JobModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" || m.done {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case JobProgressMsg:
		m = m.apply(msg)
		if m.done {
			return m, tea.Quit
		}
		return m, m.waitForActivity()
	}

	return m, nil
}

func (m JobModel) apply(msg JobProgressMsg) JobModel {
	switch msg.Type {
	case "done":
		m.done = true
	case "status":
		m.status[msg.Label] = msg.Status
	case "finished":
		m.status[msg.Label] = msg.Status
		if (arma.JobStatus{Status: msg.Status}).Succeeded() {
			m.succeeded = append(m.succeeded, msg.Label)
		} else {
			m.failed = append(m.failed, fmt.Sprintf("%s: %s", msg.Label, msg.Message))
		}
	}
	return m
}

func (m JobModel) View() string {
	var symbol string
	if m.done {
		symbol = ui.SuccessText.Render("✓")
	} else {
		symbol = m.spinner.View()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n %s %d/%d jobs finished\n\n", symbol, len(m.succeeded)+len(m.failed), len(m.jobs))
	for _, j := range m.jobs {
		fmt.Fprintf(&b, "  • %s %s\n", j.Label, ui.MutedText.Render(m.status[j.Label]))
	}
	if len(m.failed) > 0 {
		b.WriteString("\n" + ui.ErrorText.Render("Errors:") + "\n")
		for _, e := range m.failed {
			fmt.Fprintf(&b, "  • %s\n", e)
		}
	}
	if m.done {
		b.WriteString("\n")
	}
	return b.String()
}

// followJobs shows the job TUI on a terminal and plain lines otherwise.
// It returns the number of failed jobs.
func followJobs(ctx context.Context, poller jobPoller, jobs []jobRef) int {
	if ui.Interactive() {
		final, err := tea.NewProgram(initialJobModel(ctx, poller, jobs)).Run()
		if err == nil {
			return len(final.(JobModel).failed)
		}
	}

	progress := make(chan JobProgressMsg, 100)
	go func() {
		defer close(progress)
		pollJobs(ctx, poller, jobs, progress)
	}()
	failed := 0
	for msg := range progress {
		if msg.Type != "finished" {
			continue
		}
		if (arma.JobStatus{Status: msg.Status}).Succeeded() {
			fmt.Printf("%s %s\n", ui.SuccessText.Render("✓"), msg.Label)
		} else {
			failed++
			fmt.Printf("%s %s: %s\n", ui.ErrorText.Render("✗"), msg.Label, msg.Message)
		}
	}
	return failed
}
