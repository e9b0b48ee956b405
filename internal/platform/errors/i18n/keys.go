package i18n

// Error codes must match internal/platform/errors/codes.go. They are
// duplicated as strings to avoid an import cycle.
const (
	CodeUnknown                   = "UNKNOWN"
	CodeNotYourSession            = "NOT_YOUR_SESSION"
	CodeStaleSession              = "STALE_SESSION"
	CodeInsufficientBalance       = "INSUFFICIENT_BALANCE"
	CodeSessionInProgress         = "SESSION_IN_PROGRESS"
	CodeNotYourConfirmation       = "NOT_YOUR_CONFIRMATION"
	CodeCharacterNameEmpty        = "CHARACTER_NAME_EMPTY"
	CodeCharacterNameTooLong      = "CHARACTER_NAME_TOO_LONG"
	CodeCharacterBackstoryEmpty   = "CHARACTER_BACKSTORY_EMPTY"
	CodeCharacterBackstoryTooLong = "CHARACTER_BACKSTORY_TOO_LONG"
	CodeCharacterTraitsTooLong    = "CHARACTER_TRAITS_TOO_LONG"
	CodeCharacterRequired         = "CHARACTER_REQUIRED"
	CodeCreditAmountInvalid       = "CREDIT_AMOUNT_INVALID"
	CodePermissionDenied          = "PERMISSION_DENIED"
	CodeUnauthenticated           = "UNAUTHENTICATED"
	CodeInvalidArgument           = "INVALID_ARGUMENT"
	CodeNotFound                  = "NOT_FOUND"
	CodeTransport                 = "TRANSPORT"
	CodeGenerator                 = "GENERATOR"
	CodeStorage                   = "STORAGE"
)

// Notice keys for non-error user-facing text.
const (
	NoticeWelcome          = "notice.welcome"
	NoticeLowBalance       = "notice.low_balance"
	NoticeExhausted        = "notice.exhausted"
	NoticeTimedOut         = "notice.timed_out"
	NoticeTitleOpening     = "notice.title_opening"
	NoticeTitle            = "notice.title"
	NoticeFooter           = "notice.footer"
	NoticeResetTitle       = "notice.reset_title"
	NoticeResetPrompt      = "notice.reset_prompt"
	NoticeResetDone        = "notice.reset_done"
	NoticeResetCancelled   = "notice.reset_cancelled"
	NoticeResetExpired     = "notice.reset_expired"
	NoticeResetNoCharacter = "notice.reset_no_character"
	NoticeBalance          = "notice.balance"
	NoticeCreditsGranted   = "notice.credits_granted"
	NoticeFailure          = "notice.failure"
	LabelConfirmReset      = "label.confirm_reset"
	LabelCancel            = "label.cancel"
)
