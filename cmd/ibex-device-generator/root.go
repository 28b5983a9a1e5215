package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ISISComputingGroup/IBEX-device-generator-new/internal/version"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/commands/generate"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/errors"
	"github.com/ISISComputingGroup/IBEX-device-generator-new/pkg/logging"
)

var (
	deviceName  string
	deviceCount int
	useGit      bool
	githubToken string
	logLevel    string
	interactive bool

	rootCmd = &cobra.Command{
		Use:   "ibex-device-generator <ioc_name> <ticket>",
		Short: "Scaffold an IBEX device integration",
		Long: `ibex-device-generator scaffolds everything a new device needs to run
under IBEX: the EPICS support submodule, the IOC application(s), the
system test framework, a lewis emulator and the starter OPI for the GUI.

The ioc_name must be 1-8 characters, uppercase letters, digits and
underscores, starting with a letter. The ticket must be an open issue
in the IBEX issue tracker.`,
		Args: cobra.ExactArgs(2),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(logLevel)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGenerate,
	}
)

// Execute runs the root command. This is called by main.main().
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		reportError(err)
	}
	return err
}

func init() {
	rootCmd.Flags().StringVar(&deviceName, "device_name", "",
		"Name of the device, defaults to the IOC name")
	rootCmd.Flags().IntVar(&deviceCount, "device_count", 1,
		"Number of IOC applications to generate")
	rootCmd.Flags().BoolVar(&useGit, "use_git", false,
		"Switch repositories to a ticket branch and commit after every step")
	rootCmd.Flags().StringVar(&githubToken, "github_token", "",
		"GitHub token used to create the support repository")
	rootCmd.Flags().StringVar(&logLevel, "log_level", "INFO",
		"Logging level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"Ask for confirmation before each step")

	rootCmd.AddCommand(versionCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	iocName := args[0]
	ticket, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Newf(errors.ErrInvalidTicket, "ticket must be a number, got %q", args[1])
	}

	logging.LogCommand("generate", args)

	_, err = generate.Generate(cmd.Context(), generate.Options{
		IOCName:          iocName,
		DeviceName:       deviceName,
		Ticket:           ticket,
		DeviceCount:      deviceCount,
		UseGit:           useGit,
		CreateGitHubRepo: githubToken != "",
		GitHubToken:      githubToken,
		Interactive:      interactive,
	})
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Device integration for %s is ready", iocName)
	return nil
}

func reportError(err error) {
	if genErr, ok := err.(*errors.GenError); ok {
		pterm.Error.Printfln("%s (%s)", genErr.Message, genErr.Code)
		return
	}
	pterm.Error.Printfln("%v", err)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ibex-device-generator version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}
