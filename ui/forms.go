package ui

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"arma3-server-manager/arma"
	"arma3-server-manager/format"
	"arma3-server-manager/steam"
)

var ErrAborted = errors.New("aborted by user")

// Interactive reports whether both stdin and stdout are terminals.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func run(form *huh.Form) error {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// CollectionForm asks for a collection name and description.
func CollectionForm(name, description *string) error {
	return run(huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Collection name").
				Value(name).
				Validate(required("name")),
			huh.NewText().
				Title("Description").
				Value(description),
		),
	))
}

type ScheduleValues struct {
	Name       string
	Action     string
	Recurrence string
	Enabled    bool
}

// ScheduleForm edits v in place. Name is required; action and recurrence
// are picked from the backend's known values.
func ScheduleForm(v *ScheduleValues) error {
	if v.Recurrence == "" {
		v.Recurrence = arma.DefaultRecurrence
	}

	actions := []huh.Option[string]{}
	for _, a := range []string{arma.ScheduleServerRestart, arma.ScheduleServerStart, arma.ScheduleServerStop, arma.ScheduleModUpdate} {
		actions = append(actions, huh.NewOption(format.ActionLabel(a), a))
	}
	recurrences := []huh.Option[string]{}
	for _, r := range arma.ScheduleRecurrences {
		recurrences = append(recurrences, huh.NewOption(strings.ReplaceAll(r, "_", " "), r))
	}

	return run(huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Schedule name").
				Value(&v.Name).
				Validate(required("name")),
			huh.NewSelect[string]().
				Title("Action").
				Options(actions...).
				Value(&v.Action),
			huh.NewSelect[string]().
				Title("Runs").
				Options(recurrences...).
				Value(&v.Recurrence),
			huh.NewConfirm().
				Title("Enabled").
				Value(&v.Enabled),
		),
	))
}

// SubscribeForm asks for Steam Workshop ids until at least one is valid.
func SubscribeForm(input *string) error {
	return run(huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Subscribe to Mods").
				Description("One or more Steam Workshop ids or a collection id, separated by commas or spaces.").
				Placeholder("e.g. 123456 987654, 13579").
				Value(input).
				Validate(func(s string) error {
					if len(steam.ParseIDs(s)) == 0 {
						return steam.ErrNoIDs
					}
					return nil
				}),
		),
	))
}

// WebhookForm asks for a notification webhook.
func WebhookForm(url *string, sendServer, sendModUpdate *bool) error {
	return run(huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Webhook URL").
				Value(url).
				Validate(required("URL")),
			huh.NewConfirm().Title("Send server events").Value(sendServer),
			huh.NewConfirm().Title("Send mod update events").Value(sendModUpdate),
		),
	))
}

// RowsPerPageForm lets the user pick one of sizes.
func RowsPerPageForm(current *int, sizes []int) error {
	options := make([]huh.Option[int], 0, len(sizes))
	for _, s := range sizes {
		options = append(options, huh.NewOption(strconv.Itoa(s), s))
	}
	return run(huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Rows per page").
				Options(options...).
				Value(current),
		),
	))
}

// Confirm asks a yes/no question; declining is not an error.
func Confirm(title, description string) (bool, error) {
	var ok bool
	err := run(huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	))
	return ok, err
}

// ReadSecret prompts for a secret without echo when stdin is a terminal and
// reads a single line otherwise.
func ReadSecret(prompt string) (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stdout, prompt)
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stdout)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
