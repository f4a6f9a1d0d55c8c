// Package setup provides the interactive terminal wizard that writes a
// yaml config file for tx-guard.
package setup

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

const configFilename = "txguard.yaml"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

type wizardConfig struct {
	Input       string `yaml:"input"`
	Buffer      string `yaml:"buffer,omitempty"`
	OnMalformed string `yaml:"on_malformed,omitempty"`
	JournalDir  string `yaml:"journal_dir,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
}

// RunWizard launches the terminal configuration wizard and writes the
// resulting yaml config to the working directory.
func RunWizard() error {
	var (
		input       string
		bufferStr   string
		onMalformed string
		journalDir  string
		logLevel    string
		confirm     bool
	)

	// defaults
	bufferStr = "32"
	onMalformed = "abort"
	logLevel = "error"

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("TX-GUARD CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Configure your transaction processing run.\n"))

	fmt.Println(stepStyle.Render("STEP 1: INPUT"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Transaction CSV file").
				Description("Path to the input file (e.g. transactions.csv)").
				Value(&input).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("input file cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TX-GUARD CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: PROCESSING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Mailbox buffer size").
				Description("Per-client channel capacity (e.g. 32)").
				Value(&bufferStr).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil {
						return fmt.Errorf("must be an integer")
					}
					if n <= 0 {
						return fmt.Errorf("must be positive")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Malformed row policy").
				Options(
					huh.NewOption("Abort the run", "abort"),
					huh.NewOption("Skip the row and continue", "skip"),
				).
				Value(&onMalformed),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TX-GUARD CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: OBSERVABILITY"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Audit journal directory").
				Description("Leave empty to disable the journal").
				Value(&journalDir),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("Error", "error"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Debug", "debug"),
				).
				Value(&logLevel),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TX-GUARD CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Input: %s\nBuffer: %s\nOn malformed: %s\nJournal: %s\nLog level: %s\n",
		input, bufferStr, onMalformed, orDisabled(journalDir), logLevel,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	data, err := yaml.Marshal(wizardConfig{
		Input:       input,
		Buffer:      bufferStr,
		OnMalformed: onMalformed,
		JournalDir:  journalDir,
		LogLevel:    logLevel,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(configFilename, data, 0644); err != nil {
		return err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render("Saved " + configFilename))
	fmt.Println("Run: tx-guard --config " + configFilename)
	return nil
}

func orDisabled(s string) string {
	if s == "" {
		return "disabled"
	}
	return s
}
