package i18n

var enUS = map[Code]string{
	CodeUnknown:                   "Something went wrong. Please try again.",
	CodeNotYourSession:            "This isn't your adventure! Start your own to play.",
	CodeStaleSession:              "This adventure has moved on. Use the latest message to continue.",
	CodeInsufficientBalance:       "You don't have enough credits to continue (balance {{amount .Balance}}, needed {{cost .Required}}).",
	CodeSessionInProgress:         "You already have an adventure in progress.",
	CodeNotYourConfirmation:       "This confirmation isn't for you.",
	CodeCharacterNameEmpty:        "Your character needs a name.",
	CodeCharacterNameTooLong:      "Character names are limited to {{.Max}} characters.",
	CodeCharacterBackstoryEmpty:   "Your character needs a backstory.",
	CodeCharacterBackstoryTooLong: "Backstories are limited to {{.Max}} characters.",
	CodeCharacterTraitsTooLong:    "The {{.Field}} list is limited to {{.Max}} characters.",
	CodeCharacterRequired:         "You need a character first. Create one to begin your adventure.",
	CodeCreditAmountInvalid:       "Amount must be positive.",
	CodePermissionDenied:          "You do not have permission to use this command.",
	CodeUnauthenticated:           "Sign in to continue.",
	CodeInvalidArgument:           "That request could not be understood.",
	CodeNotFound:                  "Nothing was found.",
	CodeTransport:                 "Something went wrong. Please try again.",
	CodeGenerator:                 "Something went wrong. Please try again.",
	CodeStorage:                   "Something went wrong. Please try again.",

	NoticeWelcome:          "Welcome, adventurer! You've been granted {{amount .Amount}} credits to begin your journey.",
	NoticeLowBalance:       "Your credits are running low ({{amount .Balance}} remaining).",
	NoticeExhausted:        "You've run out of credits. Your adventure pauses here.",
	NoticeTimedOut:         "Your adventure has timed out due to inactivity.",
	NoticeTitleOpening:     "{{.Name}}'s Adventure Begins!",
	NoticeTitle:            "{{.Name}}'s Adventure",
	NoticeFooter:           "Credits remaining: {{amount .Balance}} | Choice cost: {{cost .Cost}}",
	NoticeResetTitle:       "Reset Character",
	NoticeResetPrompt:      "Are you sure? This deletes your character and ends your current adventure.",
	NoticeResetDone:        "Your character has been deleted. Start again to create a new one.",
	NoticeResetCancelled:   "Reset cancelled.",
	NoticeResetExpired:     "Reset confirmation timed out.",
	NoticeResetNoCharacter: "You don't have a character to reset.",
	NoticeBalance:          "Your balance is {{amount .Balance}} credits.",
	NoticeCreditsGranted:   "Added {{amount .Amount}} credits to {{.User}}. New balance: {{amount .Balance}}.",
	NoticeFailure:          "Something went wrong. Please try again.",
	LabelConfirmReset:      "Yes, reset",
	LabelCancel:            "Cancel",
}
