package types

// RequestType classifies a Drive call for logging and error context
type RequestType string

const (
	RequestTypeGetByID          RequestType = "GetByID"
	RequestTypeListOrSearch     RequestType = "ListOrSearch"
	RequestTypeDownloadOrExport RequestType = "DownloadOrExport"
	RequestTypeMutation         RequestType = "Mutation"
	RequestTypePermissionOp     RequestType = "PermissionOp"
)

// RequestContext carries the trace ID and the IDs a call touches
type RequestContext struct {
	InvolvedFileIDs   []string    `json:"involvedFileIds"`
	InvolvedParentIDs []string    `json:"involvedParentIds"`
	RequestType       RequestType `json:"requestType"`
	TraceID           string      `json:"traceId"`
}
