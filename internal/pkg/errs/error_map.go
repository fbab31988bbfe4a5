/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 21xx: Chat and Membership Business Logic Errors
	ErrChatNotFound:       {Code: ErrChatNotFound, Message: "Chat not found.", Status: http.StatusNotFound},
	ErrNotChatMember:      {Code: ErrNotChatMember, Message: "You are not a member of this chat.", Status: http.StatusForbidden},
	ErrNotGroupChat:       {Code: ErrNotGroupChat, Message: "This chat is not a group.", Status: http.StatusBadRequest},
	ErrNotGroupOwner:      {Code: ErrNotGroupOwner, Message: "Only the group owner can do that.", Status: http.StatusForbidden},
	ErrGroupPrivate:       {Code: ErrGroupPrivate, Message: "This group is private.", Status: http.StatusForbidden},
	ErrOwnerNotRemovable:  {Code: ErrOwnerNotRemovable, Message: "The group owner cannot be removed.", Status: http.StatusForbidden},
	ErrSelfRemoval:        {Code: ErrSelfRemoval, Message: "You cannot remove yourself here.", Status: http.StatusBadRequest},
	ErrMemberNotFound:     {Code: ErrMemberNotFound, Message: "This user is not in the group.", Status: http.StatusNotFound},
	ErrGroupHandleTaken:   {Code: ErrGroupHandleTaken, Message: "Group handle @%s is already taken.", Status: http.StatusConflict},
	ErrInvalidHandle:      {Code: ErrInvalidHandle, Message: "Handle must be 4-24 characters: a-z, 0-9 or _.", Status: http.StatusBadRequest},
	ErrTitleLength:        {Code: ErrTitleLength, Message: "Group title must be 2-120 characters.", Status: http.StatusBadRequest},
	ErrBioTooLong:         {Code: ErrBioTooLong, Message: "Bio must be at most 255 characters.", Status: http.StatusBadRequest},
	ErrTooManyMembers:     {Code: ErrTooManyMembers, Message: "At most %d members can be added at once.", Status: http.StatusBadRequest},
	ErrUsersNotFound:      {Code: ErrUsersNotFound, Message: "Unknown usernames: %s", Status: http.StatusNotFound},
	ErrSelfDirectChat:     {Code: ErrSelfDirectChat, Message: "You cannot open a direct chat with yourself.", Status: http.StatusBadRequest},
	ErrSavedChatImmutable: {Code: ErrSavedChatImmutable, Message: "Saved messages cannot be deleted.", Status: http.StatusBadRequest},
	ErrMembersRequired:    {Code: ErrMembersRequired, Message: "Provide at least one username.", Status: http.StatusBadRequest},

	// 22xx: Message Ledger Errors
	ErrMessageEmpty:    {Code: ErrMessageEmpty, Message: "Message text must not be empty.", Status: http.StatusBadRequest},
	ErrMessageNotFound: {Code: ErrMessageNotFound, Message: "Message not found.", Status: http.StatusNotFound},
	ErrMessageNotOwned: {Code: ErrMessageNotOwned, Message: "You can only delete your own messages.", Status: http.StatusForbidden},
	ErrWriteBlocked:    {Code: ErrWriteBlocked, Message: "This user does not accept messages from you.", Status: http.StatusForbidden},

	// 23xx: Media Errors
	ErrMediaKindInvalid: {Code: ErrMediaKindInvalid, Message: "Invalid media kind.", Status: http.StatusBadRequest},
	ErrMediaTooLarge:    {Code: ErrMediaTooLarge, Message: "File must be smaller than %dMB.", Status: http.StatusRequestEntityTooLarge},
	ErrMediaEmpty:       {Code: ErrMediaEmpty, Message: "File is empty or malformed.", Status: http.StatusBadRequest},

	// 3xxx: User, Session, and Security Errors
	ErrUnauthorized:        {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrUserNotFound:        {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},
	ErrInvalidUsername:     {Code: ErrInvalidUsername, Message: "Username must be 4-24 characters: a-z, 0-9 or _.", Status: http.StatusBadRequest},
	ErrInvalidPassword:     {Code: ErrInvalidPassword, Message: "Password must be 6-50 characters.", Status: http.StatusBadRequest},
	ErrInvalidDisplayName:  {Code: ErrInvalidDisplayName, Message: "Display name must be 2-80 characters.", Status: http.StatusBadRequest},
	ErrUsernameTaken:       {Code: ErrUsernameTaken, Message: "Username @%s is already taken.", Status: http.StatusConflict},
	ErrInvalidCredentials:  {Code: ErrInvalidCredentials, Message: "Incorrect username or password.", Status: http.StatusUnauthorized},
	ErrProfileFieldInvalid: {Code: ErrProfileFieldInvalid, Message: "Invalid profile field: %s.", Status: http.StatusBadRequest},

	// 31xx: Verification Workflow Errors
	ErrVerifyAdminOnly:  {Code: ErrVerifyAdminOnly, Message: "Only a verification admin can do that.", Status: http.StatusForbidden},
	ErrVerifySelf:       {Code: ErrVerifySelf, Message: "You cannot verify yourself.", Status: http.StatusBadRequest},
	ErrVerifyCooldown:   {Code: ErrVerifyCooldown, Message: "Verification was rejected. Retry after: %s", Status: http.StatusTooManyRequests},
	ErrReviewerNotFound: {Code: ErrReviewerNotFound, Message: "Verification reviewer account not found.", Status: http.StatusNotFound},

	// 5xxx: Internal System Errors
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again.", Status: http.StatusInternalServerError},
}
