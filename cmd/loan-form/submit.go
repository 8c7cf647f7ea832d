// cmd/loan-form/submit.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"loan-intake/internal/form"
	"loan-intake/internal/identifier"
)

var (
	submitPersonType string
	submitDocument   string
	submitName       string
	submitRequested  string
	submitAmountDue  float64
)

// outcomeError marks a submission that was blocked or failed. The message
// has already been printed.
type outcomeError struct {
	outcome form.Outcome
}

func (e *outcomeError) Error() string {
	return fmt.Sprintf("submission %s", e.outcome.Status)
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Envia uma solicitação sem o formulário interativo",
	Example: `  loan-form submit --person-type PF --document 529.982.247-25 --name "Maria Souza" --requested 15000
  loan-form submit --person-type PJ --document 11222333000181 --name "Padaria Estrela" --requested 40000`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitPersonType, "person-type", "", "PF (pessoa física) or PJ (pessoa jurídica)")
	submitCmd.Flags().StringVar(&submitDocument, "document", "", "CPF or CNPJ, punctuation allowed")
	submitCmd.Flags().StringVar(&submitName, "name", "", "applicant name (letters and spaces)")
	submitCmd.Flags().StringVar(&submitRequested, "requested", "0", "requested amount, capped at 50000")
	submitCmd.Flags().Float64Var(&submitAmountDue, "amount-due", -1, "amount currently due (default from config)")
	_ = submitCmd.MarkFlagRequired("person-type")
	_ = submitCmd.MarkFlagRequired("document")
	_ = submitCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	kind := identifier.ParseKind(submitPersonType)
	if kind == identifier.Unset {
		return fmt.Errorf("invalid --person-type %q: expected PF or PJ", submitPersonType)
	}

	a, err := newApp(cmd.Context(), cfgFile, false)
	if err != nil {
		return err
	}
	defer a.Close()

	outcome := fillAndSubmit(cmd, a.ctrl, kind)

	message := outcome.Message
	if message == "" {
		message = a.ctrl.Snapshot().FormError
	}
	fmt.Fprintln(cmd.OutOrStdout(), message)

	if outcome.Status != form.StatusDecided {
		return &outcomeError{outcome: outcome}
	}
	return nil
}

func fillAndSubmit(cmd *cobra.Command, ctrl *form.Controller, kind identifier.Kind) form.Outcome {
	if submitAmountDue >= 0 {
		ctrl.SetAmountDue(submitAmountDue)
	}

	documentField := form.FieldCPF
	if kind == identifier.Organization {
		documentField = form.FieldCNPJ
	}

	ctrl.SetPersonKind(kind)
	ctrl.ChangeField(documentField, submitDocument)
	ctrl.BlurIdentifier(kind)
	ctrl.ChangeField(form.FieldName, submitName)
	ctrl.ChangeField(form.FieldRequestedAmount, submitRequested)

	return ctrl.Submit(cmd.Context())
}
