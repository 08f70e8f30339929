package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	EnvFile string `long:"env-file" description:"Dotenv file with PORTAL_* overrides" default:".env"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Also log to stderr"`
	Version bool   `long:"version" description:"Show version and exit"`
	NoColor bool   `long:"no-color" description:"Disable coloured output"`
}

// LoginCommand exchanges credentials for a session.
type LoginCommand struct {
	Email    string `long:"email" description:"Account email (required)"`
	Password string `long:"password" description:"Password; prompted for when omitted"`

	globals *GlobalFlags
	version string
	env     *appEnv // injectable for testing; nil means open the default environment
}

// SignupCommand registers a new account and logs in.
type SignupCommand struct {
	Email       string `long:"email" description:"Account email (required)"`
	Password    string `long:"password" description:"Password; prompted for when omitted"`
	Username    string `long:"username" description:"Login name (required)"`
	DisplayName string `long:"name" description:"Display name (required)"`
	RoleID      int    `long:"role" description:"Role id, see 'roles'" default:"1"`

	globals *GlobalFlags
	version string
	env     *appEnv
}

// LogoutCommand forgets the stored session.
type LogoutCommand struct {
	globals *GlobalFlags
	version string
	env     *appEnv
}

// WhoamiCommand shows the logged-in profile and token details.
type WhoamiCommand struct {
	globals *GlobalFlags
	version string
	env     *appEnv
}

// RolesCommand lists the roles an account can hold.
type RolesCommand struct {
	globals *GlobalFlags
	version string
	env     *appEnv
}

// CreateUserCommand provisions an account. Administrators only.
type CreateUserCommand struct {
	Email       string `long:"email" description:"Account email (required)"`
	Password    string `long:"password" description:"Initial password; prompted for when omitted"`
	Username    string `long:"username" description:"Login name (required)"`
	DisplayName string `long:"name" description:"Display name (required)"`
	RoleID      int    `long:"role" description:"Role id, see 'roles' (required)"`

	globals *GlobalFlags
	version string
	env     *appEnv
}

// SectionsCommand shows the home view: the sections and actions available
// to the current role.
type SectionsCommand struct {
	globals *GlobalFlags
	version string
	env     *appEnv
}

type sectionArg struct {
	Section string `positional-arg-name:"section" description:"Section key, see 'sections'"`
}

// SummaryCommand prints a section's headline figures and charts.
type SummaryCommand struct {
	Args sectionArg `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
	env     *appEnv
}

// OptionsCommand prints the values offered for each of a section's filters.
type OptionsCommand struct {
	Args sectionArg `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
	env     *appEnv
}

// ListCommand prints one page of a section's table.
type ListCommand struct {
	Args    sectionArg `positional-args:"yes" required:"yes"`
	Filter  []string   `long:"filter" short:"f" description:"Filter as field=value (repeatable)"`
	Search  string     `long:"search" short:"s" description:"Free-text search"`
	Page    int        `long:"page" short:"p" description:"Page number" default:"1"`
	PerPage int        `long:"per-page" description:"Rows per page (default from config)"`
	Chart   bool       `long:"chart" description:"Also print the grouped-count chart"`

	globals *GlobalFlags
	version string
	env     *appEnv
}

// BrowseCommand runs an interactive filter/paginate loop over a section.
type BrowseCommand struct {
	Args    sectionArg `positional-args:"yes" required:"yes"`
	PerPage int        `long:"per-page" description:"Rows per page (default from config)"`

	globals *GlobalFlags
	version string
	env     *appEnv
}

// UploadCommand sends a CSV file to bulk-update a backend table.
type UploadCommand struct {
	Table       string `long:"table" short:"t" description:"Target table (required)" choice:"student" choice:"course" choice:"department" choice:"alumni" choice:"alumini" choice:"designation" choice:"employee" choice:"employment_history" choice:"additional_roles" choice:"externship_info"`
	File        string `long:"file" description:"CSV file to upload (required)"`
	Yes         bool   `long:"yes" short:"y" description:"Skip the confirmation prompt"`
	SkipPreview bool   `long:"skip-preview" description:"Do not print the preview"`

	globals *GlobalFlags
	version string
	env     *appEnv
}

// StatusCommand shows configuration, session and local upload history.
type StatusCommand struct {
	Recent int `long:"recent" description:"Number of recent uploads to show" default:"5"`

	globals *GlobalFlags
	version string
	env     *appEnv
}
