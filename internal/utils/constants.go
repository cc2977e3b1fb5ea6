package utils

// OAuth scopes
const (
	ScopeFull = "https://www.googleapis.com/auth/drive"
	ScopeFile = "https://www.googleapis.com/auth/drive.file"
)

// DefaultScopes covers upload, public sharing and reads across the whole drive
var DefaultScopes = []string{ScopeFull}

// Retry configuration
const (
	DefaultMaxRetries   = 0
	DefaultRetryDelayMs = 1000
	MaxRetryDelayMs     = 32000
)

// Listing
const (
	DefaultListPageSize = 100
	RootFolderID        = "root"
)

// Drive v2 wire values
const (
	MimeTypeFolder   = "application/vnd.google-apps.folder"
	ParentLinkKind   = "drive#fileLink"
	PermissionAnyone = "anyone"
	RoleReader       = "reader"
)

// Local credential cache
const (
	DefaultCredentialsFile   = "mycreds.txt"
	DefaultClientSecretsFile = "client_secrets.json"
	KeyringServiceName       = "gdxfer"
	KeyringCredentialsKey    = "credentials"
)

// IsFolderMimeType reports whether mimeType is the Drive folder sentinel
func IsFolderMimeType(mimeType string) bool {
	return mimeType == MimeTypeFolder
}
