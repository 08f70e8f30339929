package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Login      *LoginCommand
	Signup     *SignupCommand
	Logout     *LogoutCommand
	Whoami     *WhoamiCommand
	Roles      *RolesCommand
	CreateUser *CreateUserCommand
	Sections   *SectionsCommand
	Summary    *SummaryCommand
	Options    *OptionsCommand
	List       *ListCommand
	Browse     *BrowseCommand
	Upload     *UploadCommand
	Status     *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "dataportal"
	parser.LongDescription = "Terminal client for the institutional data portal: analytics sections, CSV bulk updates and account administration."

	cmds := &commands{
		Login:      &LoginCommand{globals: &globals, version: version},
		Signup:     &SignupCommand{globals: &globals, version: version},
		Logout:     &LogoutCommand{globals: &globals, version: version},
		Whoami:     &WhoamiCommand{globals: &globals, version: version},
		Roles:      &RolesCommand{globals: &globals, version: version},
		CreateUser: &CreateUserCommand{globals: &globals, version: version},
		Sections:   &SectionsCommand{globals: &globals, version: version},
		Summary:    &SummaryCommand{globals: &globals, version: version},
		Options:    &OptionsCommand{globals: &globals, version: version},
		List:       &ListCommand{globals: &globals, version: version},
		Browse:     &BrowseCommand{globals: &globals, version: version},
		Upload:     &UploadCommand{globals: &globals, version: version},
		Status:     &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("login", "Log in", "Log in with email and password and store the session locally.", cmds.Login)
	parser.AddCommand("signup", "Create an account", "Register a new account and log in with it.", cmds.Signup)
	parser.AddCommand("logout", "Forget the stored session", "Remove the stored token and profile.", cmds.Logout)
	parser.AddCommand("whoami", "Show the logged-in user", "Show the logged-in profile and what the token says about itself.", cmds.Whoami)
	parser.AddCommand("roles", "List account roles", "List the roles an account can be given.", cmds.Roles)
	parser.AddCommand("create-user", "Provision an account (admin)", "Create a user account. Requires the administrator role.", cmds.CreateUser)
	parser.AddCommand("sections", "Show the home view", "List the analytics sections and the actions your role may use.", cmds.Sections)
	parser.AddCommand("summary", "Show a section summary", "Print a section's headline figures and trend charts.", cmds.Summary)
	parser.AddCommand("options", "Show filter values", "Print the values offered for each filter of a section.", cmds.Options)
	parser.AddCommand("list", "List a section's rows", "Print one filtered page of a section's table.", cmds.List)
	parser.AddCommand("browse", "Browse a section interactively", "Filter and page through a section from a prompt.", cmds.Browse)
	parser.AddCommand("upload", "Bulk-update a table from CSV", "Preview a CSV file and upload it to a backend table.", cmds.Upload)
	parser.AddCommand("status", "Show client status", "Show configuration, session and local upload history.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the dataportal CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// go-flags requires a subcommand, but --version is valid without one.
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("dataportal %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
