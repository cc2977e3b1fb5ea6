package types

// OutputFormat selects how listings are rendered on stdout
type OutputFormat string

const (
	OutputFormatText  OutputFormat = "text"
	OutputFormatTable OutputFormat = "table"
)

// GlobalFlags holds persistent flags shared by every command
type GlobalFlags struct {
	Config       string
	OutputFormat OutputFormat
	OutputDir    string
	LogFile      string
	Quiet        bool
	Verbose      bool
	Debug        bool
}

// CLIError is the structured form of every failure surfaced to the user
type CLIError struct {
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	HTTPStatus  int                    `json:"httpStatus,omitempty"`
	DriveReason string                 `json:"driveReason,omitempty"`
	Retryable   bool                   `json:"retryable"`
	Context     map[string]interface{} `json:"context,omitempty"`
}
