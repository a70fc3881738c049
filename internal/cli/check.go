// check.go implements the "namegate check" command: a one-shot name
// check from the terminal, without running the HTTP server.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shivansh-labs/namegate/internal/config"
	"github.com/shivansh-labs/namegate/internal/llm"
	"github.com/shivansh-labs/namegate/internal/model"
	"github.com/shivansh-labs/namegate/internal/portal"
	"github.com/shivansh-labs/namegate/internal/server"
	"github.com/shivansh-labs/namegate/internal/webdriver"
)

// NewCheckCommand creates the "check" cobra command.
func NewCheckCommand() *cobra.Command {
	var checkType string

	cmd := &cobra.Command{
		Use:   "check <name>",
		Short: "Check one company name against the portal",
		Long: `Run the full browser automation for a single name and print the
verdict. The name is formatted for the portal automatically (uppercased,
"PRIVATE LIMITED" appended).

Examples:
  namegate check "Acme Ventures"
  namegate check --type trademark "Acme Ventures"
  namegate check --json "Acme Ventures"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args[0], checkType)
		},
	}

	cmd.Flags().StringVar(&checkType, "type", "company", "Check type: company or trademark")
	return cmd
}

func runCheck(ctx context.Context, name, checkTypeFlag string) error {
	checkType, err := model.ParseCheckType(checkTypeFlag)
	if err != nil {
		return model.WrapCLIError(model.ExitConfigError, "invalid --type flag", err)
	}

	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(settings.LogLevel, settings.LogFormat)

	profile, err := portal.LoadProfile(settings.PortalProfile)
	if err != nil {
		return err
	}

	if up, reason, err := profile.StatusCheck(ctx); !up {
		if err != nil {
			return model.WrapCLIError(model.ExitPortalError, reason, err)
		}
		return model.NewCLIError(model.ExitPortalError, reason)
	}

	driverURL := settings.WebDriverURL
	if driverURL == "" {
		local, err := webdriver.StartLocal(ctx, localDriverPort, logger)
		if err != nil {
			return model.WrapCLIError(model.ExitDriverError, "failed to start local browser driver", err)
		}
		defer local.Stop()
		driverURL = local.URL
	}

	checker := &server.BrowserChecker{
		Driver:  webdriver.New(driverURL),
		Profile: profile,
		Adviser: llm.New(llm.Config{
			APIKey:     settings.OpenAIAPIKey,
			BaseURL:    settings.OpenAIBaseURL,
			ModelFast:  settings.ModelFast,
			ModelSmart: settings.ModelSmart,
		}, logger),
		Logger:        logger,
		ScreenshotDir: settings.ScreenshotDir,
	}

	result, err := checker.Check(ctx, name, checkType)
	if err != nil {
		return model.WrapCLIError(model.ExitPortalError,
			fmt.Sprintf("name check failed for %q", name), err)
	}

	printResult(name, result)
	return nil
}

// printResult writes the verdict to stdout in text or JSON form.
func printResult(name string, result *model.CheckResult) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]any{
			"name":   model.FormatCompanyName(name),
			"result": result,
		}, "", "  ")
		fmt.Fprintln(os.Stdout, string(data))
		return
	}

	fmt.Printf("Name:    %s\n", model.FormatCompanyName(name))
	fmt.Printf("Verdict: %s\n", result.Verdict)
	if len(result.BlockingMessages) > 0 {
		fmt.Println("\nConflicts:")
		for _, msg := range result.BlockingMessages {
			fmt.Printf("  - %s\n", msg)
		}
	}
	if len(result.RecommendedNames) > 0 {
		fmt.Println("\nSuggestions:")
		for _, s := range result.RecommendedNames {
			if s.Reason != "" {
				fmt.Printf("  - %s (%s)\n", s.Name, s.Reason)
			} else {
				fmt.Printf("  - %s\n", s.Name)
			}
		}
	}
}
