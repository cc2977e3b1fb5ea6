package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dl-alexandre/gdxfer/internal/api"
	"github.com/dl-alexandre/gdxfer/internal/auth"
	"github.com/dl-alexandre/gdxfer/internal/config"
	"github.com/dl-alexandre/gdxfer/internal/files"
	"github.com/dl-alexandre/gdxfer/internal/logging"
	"github.com/dl-alexandre/gdxfer/internal/types"
	"github.com/dl-alexandre/gdxfer/internal/utils"
	"github.com/dl-alexandre/gdxfer/pkg/version"
)

// transferFlags are the root command's operation selectors
type transferFlags struct {
	ListFolder   string
	UploadFile   string
	ParentFolder string
	DownloadFile string
}

var (
	globalFlags types.GlobalFlags
	opFlags     transferFlags
	appConfig   *config.Config
	logger      logging.Logger = logging.NewNoOpLogger()
	session     *auth.Session

	// sessionFactory builds the authenticated session; tests replace it
	sessionFactory = bootstrapSession
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gdxfer",
		Short: "Upload, list and download Google Drive files",
		Long: `gdxfer is a small command-line wrapper around the Google Drive API.

It uploads a file and shares it publicly, lists a folder, or downloads
a file or a whole folder tree into the current directory.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              validateArgs,
		PersistentPreRunE: initRuntime,
		PreRunE:           openSession,
		RunE:              runTransfer,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&globalFlags.Config, "config", "", "Path to configuration file")
	pf.StringVar((*string)(&globalFlags.OutputFormat), "output", "", "Output format (text, table)")
	pf.StringVar(&globalFlags.OutputDir, "output-dir", "", "Directory downloads are written under")
	pf.StringVar(&globalFlags.LogFile, "log-file", "", "Path to log file")
	pf.BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "Suppress log output on stderr")
	pf.BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&globalFlags.Debug, "debug", false, "Enable debug output")

	f := cmd.Flags()
	f.StringVarP(&opFlags.ListFolder, "list-files", "l", "", "List the files in your drive (optionally under FOLDER)")
	setOptionalValue(f, "list-files", utils.RootFolderID)
	f.StringVarP(&opFlags.UploadFile, "upload-file", "u", "", "Pass a file to be uploaded to GDrive")
	f.StringVarP(&opFlags.ParentFolder, "parent-folder", "p", "", "Only for use with -u/--upload-file, sets parent folder for uploaded file")
	f.StringVarP(&opFlags.DownloadFile, "download-file", "d", "", "Download the requested file")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

// setOptionalValue lets the named flag be given without a value, in which case it takes def
func setOptionalValue(fs *pflag.FlagSet, name, def string) {
	if flag := fs.Lookup(name); flag != nil {
		flag.NoOptDefVal = def
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "Print the version number of gdxfer",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}
}

// validateArgs accepts a single positional FOLDER only after a bare -l,
// so "-l FOLDER" works like "--list-files=FOLDER".
func validateArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if len(args) == 1 && cmd.Flags().Changed("list-files") && opFlags.ListFolder == utils.RootFolderID {
		opFlags.ListFolder = args[0]
		return nil
	}
	return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
		fmt.Sprintf("unexpected arguments: %v", args)).Build())
}

func initRuntime(cmd *cobra.Command, args []string) error {
	overrides := config.Overrides{
		ConfigPath:   globalFlags.Config,
		OutputFormat: string(globalFlags.OutputFormat),
		OutputDir:    globalFlags.OutputDir,
		LogFile:      globalFlags.LogFile,
	}
	if globalFlags.Verbose || globalFlags.Debug {
		overrides.LogLevel = "debug"
	}

	cfg, err := config.Resolve(overrides)
	if err != nil {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).Build())
	}
	appConfig = cfg

	logger, err = logging.NewLogger(logging.LogConfig{
		Level:           logging.ParseLevel(cfg.LogLevel),
		OutputFile:      cfg.LogFile,
		EnableConsole:   !globalFlags.Quiet,
		EnableDebug:     globalFlags.Debug,
		RedactSensitive: true,
		EnableColor:     true,
		EnableTimestamp: true,
		MaxFileSize:     logging.DefaultLogConfig().MaxFileSize,
		Console:         cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func openSession(cmd *cobra.Command, args []string) error {
	s, err := sessionFactory(cmd.Context(), appConfig, logger)
	if err != nil {
		return err
	}
	session = s
	return nil
}

// bootstrapSession authorizes with the configured client and credential store
func bootstrapSession(ctx context.Context, cfg *config.Config, log logging.Logger) (*auth.Session, error) {
	oauthConfig, err := auth.LoadClientConfig(cfg.ClientSecretsPath(), utils.DefaultScopes)
	if err != nil {
		return nil, err
	}

	store, err := auth.NewStorage(cfg.CredentialsStore, cfg.CredentialsPath())
	if err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).Build())
	}
	log.Debug("Using credentials store", logging.F("store", store.Name()))

	mgr := auth.NewManager(oauthConfig, store, auth.ManagerOptions{Logger: log})
	return mgr.Bootstrap(ctx, api.Options{
		MaxRetries:   cfg.MaxRetries,
		RetryDelayMs: cfg.RetryBaseDelay,
		PageSize:     cfg.PageSize,
		Logger:       log,
	})
}

// runTransfer dispatches to exactly one operation: list, then upload, then download
func runTransfer(cmd *cobra.Command, args []string) error {
	out := NewOutputWriter(appConfig.OutputFormat, cmd.OutOrStdout())
	mgr := files.NewManager(session.Drive, files.Options{
		OutputDir:   appConfig.OutputDir,
		Concurrency: appConfig.DownloadConcurrency,
		Printer:     out,
		Logger:      logger,
	})

	ctx := cmd.Context()
	switch {
	case opFlags.ListFolder != "":
		_, err := mgr.List(ctx, opFlags.ListFolder, files.ListOptions{})
		return err
	case opFlags.UploadFile != "":
		return mgr.Upload(ctx, opFlags.UploadFile, opFlags.ParentFolder)
	case opFlags.DownloadFile != "":
		return mgr.Download(ctx, opFlags.DownloadFile)
	default:
		out.Printf("No valid options provided!\n")
		return nil
	}
}

// run executes cmd with args and returns the process exit code
func run(ctx context.Context, cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if closeErr := logger.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return utils.ExitCodeFor(err)
	}
	return utils.ExitSuccess
}

// Execute runs the root command and exits with the mapped exit code
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, rootCmd, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}
