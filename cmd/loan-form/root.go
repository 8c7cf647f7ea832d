// cmd/loan-form/root.go
package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"loan-intake/internal/tui"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "loan-form",
	Short: "Formulário de solicitação de empréstimo",
	Long: `Coleta uma solicitação de empréstimo (CPF ou CNPJ, nome e valor
solicitado), valida os dígitos do documento e envia ao serviço de decisão.

Sem subcomando abre o formulário interativo no terminal.

Navegação:
  Tab/Shift+Tab  - Alternar campos
  ←/→            - Tipo de pessoa
  Enter          - Enviar
  Esc            - Sair`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runForm,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/config.yaml)")
}

func runForm(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfgFile, true)
	if err != nil {
		return err
	}
	defer a.Close()

	model := tui.NewModel(cmd.Context(), a.ctrl)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		a.log.Error("terminal form stopped", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}
