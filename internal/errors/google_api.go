// Package errors turns Drive API failures into the CLI's stable error codes.
package errors

import (
	"context"
	stderrors "errors"

	"google.golang.org/api/googleapi"

	"github.com/dl-alexandre/gdxfer/internal/logging"
	"github.com/dl-alexandre/gdxfer/internal/types"
	"github.com/dl-alexandre/gdxfer/internal/utils"
)

// ClassifyGoogleAPIError wraps err as a *utils.AppError with a code, retry hint and request context.
// Errors that are already classified pass through unchanged.
func ClassifyGoogleAPIError(err error, reqCtx *types.RequestContext, logger logging.Logger) error {
	if err == nil {
		return nil
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}

	var appErr *utils.AppError
	if stderrors.As(err, &appErr) {
		return err
	}

	traceID := ""
	requestType := ""
	if reqCtx != nil {
		traceID = reqCtx.TraceID
		requestType = string(reqCtx.RequestType)
	}

	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeCancelled, err.Error()).
			WithContext("traceId", traceID).
			Build())
	}

	var apiErr *googleapi.Error
	if !stderrors.As(err, &apiErr) {
		logger.Error("Non-API error",
			logging.F("error", err.Error()),
			logging.F("traceId", traceID),
		)
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeNetworkError, err.Error()).
			WithRetryable(true).
			WithContext("traceId", traceID).
			WithContext("requestType", requestType).
			Build())
	}

	code, retryable := codeFor(apiErr)

	logger.Error("API error classified",
		logging.F("httpStatus", apiErr.Code),
		logging.F("errorCode", code),
		logging.F("retryable", retryable),
		logging.F("message", apiErr.Message),
		logging.F("traceId", traceID),
	)

	builder := utils.NewCLIError(code, apiErr.Message).
		WithHTTPStatus(apiErr.Code).
		WithRetryable(retryable).
		WithContext("traceId", traceID).
		WithContext("requestType", requestType)

	if len(apiErr.Errors) > 0 {
		builder.WithDriveReason(apiErr.Errors[0].Reason)
		switch apiErr.Errors[0].Reason {
		case "storageQuotaExceeded":
			builder.WithContext("suggestedAction", "free up space in Google Drive or upgrade storage")
		case "dailyLimitExceeded":
			builder.WithContext("suggestedAction", "quota will reset in 24 hours")
		case "appNotAuthorizedToFile":
			builder.WithContext("suggestedAction", "file may require access via web interface first")
		case "insufficientFilePermissions":
			builder.WithContext("capability", "write_access_required")
		case "domainPolicy":
			builder.WithContext("suggestedAction", "contact domain administrator")
		}
	}

	switch code {
	case utils.ErrCodeAuthExpired:
		builder.WithContext("suggestedAction", "delete the cached credentials and run again to re-authenticate")
	case utils.ErrCodeFileNotFound:
		if reqCtx != nil && len(reqCtx.InvolvedFileIDs) > 0 {
			builder.WithContext("fileId", reqCtx.InvolvedFileIDs[0])
		}
		builder.WithContext("suggestedAction", "verify the file or folder ID is correct and accessible")
	case utils.ErrCodeRateLimited:
		builder.WithContext("suggestedAction", "wait before retrying or raise max_retries")
	}

	if apiErr.Code >= 500 && apiErr.Code <= 504 {
		builder.WithContext("serverError", true)
	}

	return utils.NewAppError(builder.Build())
}

func codeFor(apiErr *googleapi.Error) (string, bool) {
	switch apiErr.Code {
	case 400:
		code := utils.ErrCodeInvalidArgument
		for _, e := range apiErr.Errors {
			switch e.Reason {
			case "invalidSharingRequest":
				code = utils.ErrCodeSharingRestricted
			case "teamDriveFileLimitExceeded":
				code = utils.ErrCodeQuotaExceeded
			}
		}
		return code, false
	case 401:
		return utils.ErrCodeAuthExpired, false
	case 403:
		code, retryable := utils.ErrCodePermissionDenied, false
		for _, e := range apiErr.Errors {
			switch e.Reason {
			case "storageQuotaExceeded":
				code = utils.ErrCodeQuotaExceeded
			case "sharingRateLimitExceeded", "userRateLimitExceeded", "rateLimitExceeded":
				code, retryable = utils.ErrCodeRateLimited, true
			case "dailyLimitExceeded":
				code = utils.ErrCodeRateLimited
			case "domainPolicy":
				code = utils.ErrCodePolicyViolation
			case "insufficientScopes", "ACCESS_TOKEN_SCOPE_INSUFFICIENT":
				code = utils.ErrCodeScopeInsufficient
			case "cannotDownloadAbusiveFile", "fileNotDownloadable":
				code = utils.ErrCodeNotDownloadable
			}
		}
		return code, retryable
	case 404:
		return utils.ErrCodeFileNotFound, false
	case 409:
		return utils.ErrCodeInvalidArgument, false
	case 429:
		return utils.ErrCodeRateLimited, true
	case 500, 502, 503, 504:
		return utils.ErrCodeNetworkError, true
	default:
		return utils.ErrCodeUnknown, apiErr.Code >= 500
	}
}
