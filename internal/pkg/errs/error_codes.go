/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 21xx: Chat and Membership Business Logic Errors
const (
	// ErrChatNotFound indicates that the referenced chat does not exist.
	ErrChatNotFound = 2101

	// ErrNotChatMember indicates that the acting user is not a member of the chat.
	ErrNotChatMember = 2102

	// ErrNotGroupChat indicates that a group-only operation targeted a non-group chat.
	ErrNotGroupChat = 2103

	// ErrNotGroupOwner indicates that a privileged group operation was attempted by a non-owner.
	ErrNotGroupOwner = 2104

	// ErrGroupPrivate indicates a self-join attempt on a non-public group.
	ErrGroupPrivate = 2105

	// ErrOwnerNotRemovable indicates an attempt to remove the group owner from the group.
	ErrOwnerNotRemovable = 2106

	// ErrSelfRemoval indicates an attempt to remove oneself through the member-removal operation.
	ErrSelfRemoval = 2107

	// ErrMemberNotFound indicates that the target user is not a member of the group.
	ErrMemberNotFound = 2108

	// ErrGroupHandleTaken indicates that the requested public group handle is already in use.
	ErrGroupHandleTaken = 2109

	// ErrInvalidHandle indicates a handle that does not match the handle grammar.
	ErrInvalidHandle = 2110

	// ErrTitleLength indicates a group title outside the allowed length bounds.
	ErrTitleLength = 2111

	// ErrBioTooLong indicates a group bio exceeding the length ceiling.
	ErrBioTooLong = 2112

	// ErrTooManyMembers indicates too many members requested in a single operation.
	ErrTooManyMembers = 2113

	// ErrUsersNotFound indicates one or more requested handles resolve to no account.
	ErrUsersNotFound = 2114

	// ErrSelfDirectChat indicates an attempt to open a direct chat with oneself.
	ErrSelfDirectChat = 2115

	// ErrSavedChatImmutable indicates an attempt to delete a saved (self) chat.
	ErrSavedChatImmutable = 2116

	// ErrMembersRequired indicates a member operation with an empty handle list.
	ErrMembersRequired = 2117
)

// 22xx: Message Ledger Errors
const (
	// ErrMessageEmpty indicates a send attempt with an empty message body.
	ErrMessageEmpty = 2201

	// ErrMessageNotFound indicates that the referenced message does not exist in the chat.
	ErrMessageNotFound = 2202

	// ErrMessageNotOwned indicates a delete attempt on another user's message.
	ErrMessageNotOwned = 2203

	// ErrWriteBlocked indicates the direct-chat peer does not accept messages.
	ErrWriteBlocked = 2204
)

// 23xx: Media Errors
const (
	// ErrMediaKindInvalid indicates an unsupported media kind.
	ErrMediaKindInvalid = 2301

	// ErrMediaTooLarge indicates a media payload exceeding the size ceiling.
	ErrMediaTooLarge = 2302

	// ErrMediaEmpty indicates an empty or undecodable media payload.
	ErrMediaEmpty = 2303
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates a missing, invalid, or expired credential.
	ErrUnauthorized = 3001

	// ErrUserNotFound indicates that the referenced account does not exist.
	ErrUserNotFound = 3002

	// ErrInvalidUsername indicates a username that does not match the handle grammar.
	ErrInvalidUsername = 3003

	// ErrInvalidPassword indicates a password outside the allowed length bounds.
	ErrInvalidPassword = 3004

	// ErrInvalidDisplayName indicates a display name outside the allowed length bounds.
	ErrInvalidDisplayName = 3005

	// ErrUsernameTaken indicates the requested username is already registered.
	ErrUsernameTaken = 3006

	// ErrInvalidCredentials indicates a failed username/password check.
	ErrInvalidCredentials = 3007

	// ErrProfileFieldInvalid indicates a profile update field outside its bounds.
	ErrProfileFieldInvalid = 3008
)

// 31xx: Verification Workflow Errors
const (
	// ErrVerifyAdminOnly indicates a verification action attempted by a non-admin account.
	ErrVerifyAdminOnly = 3101

	// ErrVerifySelf indicates a verification request or decision targeting oneself.
	ErrVerifySelf = 3102

	// ErrVerifyCooldown indicates the verification-request cooldown has not yet elapsed.
	ErrVerifyCooldown = 3103

	// ErrReviewerNotFound indicates no verification reviewer account exists.
	ErrReviewerNotFound = 3104
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates a media storage upload or presign failure.
	ErrFileStorageFailed = 5001
)
