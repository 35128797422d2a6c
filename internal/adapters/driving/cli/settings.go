package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage connection settings",
	Long: `View and configure how polydb reaches the database.

Settings are stored in config.toml in the configuration directory.`,
	Annotations: map[string]string{annotationNoDatabase: "true"},
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show current settings",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoDatabase: "true"},
	RunE:        runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a single setting",
	Long: `Change a single setting.

Keys:
  db.host               server hostname
  db.port               server port
  db.username           user name
  db.password           password
  db.tls                true or false
  db.direct_connection  true or false
  db.database           database name
  db.rate_limit         requests per second, 0 disables throttling
  db.timeout_seconds    connection and request timeout
  mirror.dir            directory of the local mirror`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{annotationNoDatabase: "true"},
	RunE:        runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:         "wizard",
	Short:       "Interactive setup wizard",
	Long:        `Prompt for each connection setting. Press enter to keep the current value.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoDatabase: "true"},
	RunE:        runSettingsWizard,
}

var settingsResetCmd = &cobra.Command{
	Use:         "reset",
	Short:       "Restore the public server defaults",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoDatabase: "true"},
	RunE:        runSettingsReset,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingsView is the printable form of the settings. The password is
// never included.
type settingsView struct {
	URI              string  `json:"uri"`
	Host             string  `json:"host"`
	Port             int     `json:"port"`
	Username         string  `json:"username"`
	PasswordSet      bool    `json:"password_set"`
	TLS              bool    `json:"tls"`
	DirectConnection bool    `json:"direct_connection"`
	Database         string  `json:"database"`
	RateLimit        float64 `json:"rate_limit"`
	TimeoutSeconds   int     `json:"timeout_seconds"`
	MirrorDir        string  `json:"mirror_dir,omitempty"`
}

func viewOf(s *domain.AppSettings) settingsView {
	c := s.Connection
	return settingsView{
		URI:              c.Redacted(),
		Host:             c.Host,
		Port:             c.Port,
		Username:         c.Username,
		PasswordSet:      c.Password != "",
		TLS:              c.TLS,
		DirectConnection: c.DirectConnection,
		Database:         c.Database,
		RateLimit:        c.RateLimit,
		TimeoutSeconds:   int(c.Timeout / time.Second),
		MirrorDir:        s.Mirror.Dir,
	}
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService(cmd)
	if err != nil {
		return err
	}
	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	v := viewOf(settings)

	return render(cmd, v, func() {
		cmd.Println(heading("Current Settings"))
		cmd.Println()
		cmd.Println(subtitleStyle.Render("[Connection]"))
		cmd.Println(field("URI", v.URI))
		cmd.Println(field("Database", v.Database))
		cmd.Println(field("TLS", yesNo(v.TLS)))
		cmd.Println(field("Direct", yesNo(v.DirectConnection)))
		cmd.Println(field("Rate limit", strconv.FormatFloat(v.RateLimit, 'g', -1, 64)+"/s"))
		cmd.Println(field("Timeout", strconv.Itoa(v.TimeoutSeconds)+"s"))
		cmd.Println()
		cmd.Println(subtitleStyle.Render("[Mirror]"))
		dir := v.MirrorDir
		if dir == "" {
			dir = "(default)"
		}
		cmd.Println(field("Directory", dir))
	})
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := settingsService(cmd)
	if err != nil {
		return err
	}
	if err := svc.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	value := args[1]
	if strings.HasSuffix(args[0], "password") {
		value = maskSecret(value)
	}
	cmd.Printf("%s = %s\n", args[0], value)
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService(cmd)
	if err != nil {
		return err
	}
	defaults := svc.GetDefaults()
	if err := svc.Save(&defaults); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Println(successStyle.Render("Settings restored to " + defaults.Connection.Redacted()))
	return nil
}

//nolint:errcheck // CLI output, errors ignored for UX
func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService(cmd)
	if err != nil {
		return err
	}
	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	c := &settings.Connection
	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println(heading("polyDB Connection Setup"))
	cmd.Println()

	c.Host = prompt(cmd, reader, "Host", c.Host)
	if c.Port, err = strconv.Atoi(prompt(cmd, reader, "Port", strconv.Itoa(c.Port))); err != nil {
		return fmt.Errorf("%w: port must be an integer", domain.ErrInvalidInput)
	}
	c.Username = prompt(cmd, reader, "Username", c.Username)

	cmd.Printf("Password [%s]: ", maskSecret(c.Password))
	if pw := readPasswordFrom(cmd, reader); pw != "" {
		c.Password = pw
	}
	cmd.Println()

	if c.TLS, err = strconv.ParseBool(prompt(cmd, reader, "Use TLS", strconv.FormatBool(c.TLS))); err != nil {
		return fmt.Errorf("%w: TLS must be true or false", domain.ErrInvalidInput)
	}
	c.Database = prompt(cmd, reader, "Database", c.Database)

	if err := svc.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Println()
	cmd.Println(successStyle.Render("Settings saved."))
	return nil
}

func prompt(cmd *cobra.Command, reader *bufio.Reader, label, current string) string {
	cmd.Printf("%s [%s]: ", label, current)
	if v := readLine(reader); v != "" {
		return v
	}
	return current
}

// readPasswordFrom reads from the terminal without echo when the command's
// input is one, otherwise from reader.
func readPasswordFrom(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && isTerminal(f) {
		return readPassword()
	}
	return readLine(reader)
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return "(not set)"
	case len(s) <= 8:
		return "****"
	default:
		return s[:2] + "..." + s[len(s)-2:]
	}
}
