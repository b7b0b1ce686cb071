package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/portal"
)

// formFile : yaml answers file, family switches the application type
type formFile struct {
	Family           bool `yaml:"family"`
	model.IntakeForm `yaml:",inline"`
}

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Inspect and submit the intake form",
}

var formShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved form as yaml",
	RunE:  runFormShow,
}

var formSubmitFlags struct {
	file  string
	draft bool
}

var formSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Walk every step of the form with answers from a yaml file",
	RunE:  runFormSubmit,
}

func init() {
	f := formSubmitCmd.Flags()
	f.StringVar(&formSubmitFlags.file, "file", "", "YAML answers file (required)")
	f.BoolVar(&formSubmitFlags.draft, "draft", false, "Save every step but leave the form open")
	_ = formSubmitCmd.MarkFlagRequired("file")

	formCmd.AddCommand(formShowCmd)
	formCmd.AddCommand(formSubmitCmd)
}

func newWizard(cmd *cobra.Command) (*portal.Wizard, error) {
	client, log, err := newClient()
	if err != nil {
		return nil, err
	}
	w := portal.NewWizard(client, portal.WithLogger(log))
	if !w.Load(cmd.Context()) {
		fmt.Fprintln(cmd.ErrOrStderr(), "No saved form yet, starting blank")
	}
	return w, nil
}

func runFormShow(cmd *cobra.Command, _ []string) error {
	w, err := newWizard(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# submitted: %t\n", w.Submitted())
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(formFile{Family: w.IsFamily(), IntakeForm: w.Form()})
}

func runFormSubmit(cmd *cobra.Command, _ []string) error {
	raw, err := os.ReadFile(formSubmitFlags.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", formSubmitFlags.file, err)
	}
	var answers formFile
	if err := yaml.Unmarshal(raw, &answers); err != nil {
		return fmt.Errorf("parse %s: %w", formSubmitFlags.file, err)
	}

	w, err := newWizard(cmd)
	if err != nil {
		return err
	}
	defer w.Wait()

	w.SetFamily(answers.Family)
	w.Update(func(form *model.IntakeForm) {
		id := form.ID
		*form = answers.IntakeForm
		form.ID = id
	})

	out := cmd.OutOrStdout()
	w.GoToStep(int(portal.StepPersonal))
	for !w.Submitted() {
		step := w.Step()
		if formSubmitFlags.draft && step == portal.LastStep {
			fmt.Fprintln(out, "Draft saved")
			return nil
		}
		if err := w.Next(cmd.Context()); err != nil {
			var invalid *portal.ValidationError
			if errors.As(err, &invalid) {
				printFieldErrors(cmd.ErrOrStderr(), step, invalid.Fields)
			}
			return fmt.Errorf("step %s: %w", step, err)
		}
		fmt.Fprintf(out, "Saved step %d: %s\n", int(step)+1, step)
	}

	fmt.Fprintln(out, "Form submitted")
	return nil
}

func printFieldErrors(out io.Writer, step portal.Step, fields map[string]string) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fmt.Fprintf(out, "%s has %d invalid field(s):\n", step, len(keys))
	for _, key := range keys {
		fmt.Fprintf(out, "  %s: %s\n", key, fields[key])
	}
}
